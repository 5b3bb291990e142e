package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-glade/glade/backend"
	"github.com/valerio/go-glade/glade/input"
	"github.com/valerio/go-glade/glade/input/action"
	"github.com/valerio/go-glade/glade/input/event"
	"github.com/valerio/go-glade/glade/render"
	"github.com/valerio/go-glade/glade/video"
)

const (
	minTermWidth  = 40
	minTermHeight = 12
	minLogWidth   = 30
	logCapacity   = 200

	// Key expiry timeout - slightly longer than typical key repeat interval
	keyTimeout = 100 * time.Millisecond
)

// Backend implements the Backend interface using tcell. Every terminal cell
// shows two vertically stacked pixels with a half-block glyph in 24-bit
// color; displays larger than the terminal are sampled down.
type Backend struct {
	newScreen func() (tcell.Screen, error)
	screen    tcell.Screen
	config    backend.BackendConfig
	buffer    *video.PixelBuffer

	layout     layout
	dirty      []bool
	anyDirty   bool
	tooSmall   bool
	logBuffer  *LogBuffer
	logVersion uint64
	logLevel   *slog.LevelVar

	eventQueue []backend.InputEvent
	keyStates  map[action.Action]time.Time // Last time each key was pressed
	activeKeys map[action.Action]bool      // Keys active in previous frame
	signalled  atomic.Bool
	stopSignal chan struct{}

	now func() time.Time
}

// layout maps the display onto terminal cells.
type layout struct {
	step   int // display pixels per cell column, and per half cell row
	cols   int
	rows   int
	logX   int
	width  int
	height int
}

// New creates a new terminal backend
func New() *Backend {
	return NewWithScreen(tcell.NewScreen)
}

// NewWithScreen creates a backend drawing on screens made by newScreen,
// e.g. a tcell simulation screen.
func NewWithScreen(newScreen func() (tcell.Screen, error)) *Backend {
	return &Backend{
		newScreen: newScreen,
		logLevel:  new(slog.LevelVar),
		now:       time.Now,
	}
}

// Init initializes the terminal backend
func (t *Backend) Init(config backend.BackendConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	buffer, err := video.NewPixelBuffer(config.Width, config.Height)
	if err != nil {
		return fmt.Errorf("failed to allocate device buffer: %w", err)
	}

	screen, err := t.newScreen()
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}

	t.config = config
	t.buffer = buffer
	t.screen = screen
	t.keyStates = make(map[action.Action]time.Time)
	t.activeKeys = make(map[action.Action]bool)

	// Logs go to the side panel, stderr would corrupt the screen
	t.logBuffer = NewLogBuffer(logCapacity)
	t.logLevel.Set(slog.LevelInfo)
	slog.SetDefault(slog.New(NewLogBufferHandler(t.logBuffer, t.logLevel)))

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.relayout()

	// Set up signal handling for graceful shutdown
	t.stopSignal = make(chan struct{})
	go t.handleSignals()

	slog.Info("Terminal backend initialized",
		"display", fmt.Sprintf("%dx%d", config.Width, config.Height),
		"pixels_per_cell", t.layout.step)
	return nil
}

func (t *Backend) Buffer() *video.PixelBuffer { return t.buffer }

// WriteSection marks the cells covering the section for redraw. Cells are
// drawn on the next Update.
func (t *Backend) WriteSection(left, top, right, bottom int) error {
	if t.buffer == nil {
		return backend.ErrNotInitialized
	}

	region, ok := render.ClipSection(t.buffer, left, top, right, bottom)
	if !ok || t.tooSmall {
		return nil
	}

	step := t.layout.step
	x0, x1 := region.X/step, min((region.Right()-1)/step, t.layout.cols-1)
	y0, y1 := region.Y/(2*step), min((region.Bottom()-1)/(2*step), t.layout.rows-1)
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			t.dirty[cy*t.layout.cols+cx] = true
		}
	}
	t.anyDirty = true
	return nil
}

// Update draws pending cells and processes events
func (t *Backend) Update() ([]backend.InputEvent, error) {
	if t.screen == nil {
		return nil, backend.ErrNotInitialized
	}

	now := t.now()

	// Poll for input events synchronously
	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.relayout()
		}
	}

	events := t.collectKeyEvents(now)

	// Add non-game input events (pause, snapshot, etc)
	events = append(events, t.eventQueue...)
	t.eventQueue = t.eventQueue[:0]

	if t.signalled.Load() {
		events = append(events, backend.QuitEvent())
	}

	t.draw()
	t.screen.Show()
	return events, nil
}

// Cleanup cleans up terminal resources
func (t *Backend) Cleanup() error {
	if t.stopSignal != nil {
		close(t.stopSignal)
		t.stopSignal = nil
	}
	if t.screen != nil {
		slog.Info("Cleaning up terminal backend")
		t.screen.Fini()
		t.screen = nil
	}
	return nil
}

// LogBuffer exposes captured logs.
func (t *Backend) LogBuffer() *LogBuffer { return t.logBuffer }

// SetLogLevel changes which records reach the log panel.
func (t *Backend) SetLogLevel(level slog.Level) {
	old := t.logLevel.Level()
	t.logLevel.Set(level)
	if old != level {
		slog.Info("Log filter changed", "from", old, "to", level)
	}
}

func (t *Backend) handleSignals() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signals)

	select {
	case <-signals:
		t.signalled.Store(true)
	case <-t.stopSignal:
	}
}

func (t *Backend) relayout() {
	termWidth, termHeight := t.screen.Size()
	t.screen.Clear()

	t.tooSmall = termWidth < minTermWidth || termHeight < minTermHeight
	if t.tooSmall {
		style := tcell.StyleDefault.Foreground(tcell.ColorRed)
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		drawText(t.screen, 0, termHeight/2, termWidth, msg, style)
		return
	}

	// border on every side, log panel on the right when there is room
	availCols := termWidth - 2 - minLogWidth
	if availCols < termWidth/2 {
		availCols = termWidth - 2
	}
	availRows := termHeight - 2

	step := 1
	for ceilDiv(t.buffer.Width(), step) > availCols || ceilDiv(t.buffer.Height(), 2*step) > availRows {
		step++
	}

	cols := ceilDiv(t.buffer.Width(), step)
	rows := ceilDiv(t.buffer.Height(), 2*step)
	t.layout = layout{
		step:   step,
		cols:   cols,
		rows:   rows,
		logX:   cols + 3,
		width:  termWidth,
		height: termHeight,
	}

	t.dirty = make([]bool, cols*rows)
	for i := range t.dirty {
		t.dirty[i] = true
	}
	t.anyDirty = true
	t.logVersion = 0

	t.drawFrame()
}

func (t *Backend) drawFrame() {
	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	right, bottom := t.layout.cols+1, t.layout.rows+1

	for x := 1; x < right; x++ {
		t.screen.SetContent(x, 0, '─', nil, borderStyle)
		t.screen.SetContent(x, bottom, '─', nil, borderStyle)
	}
	for y := 1; y < bottom; y++ {
		t.screen.SetContent(0, y, '│', nil, borderStyle)
		t.screen.SetContent(right, y, '│', nil, borderStyle)
	}
	t.screen.SetContent(0, 0, '┌', nil, borderStyle)
	t.screen.SetContent(right, 0, '┐', nil, borderStyle)
	t.screen.SetContent(0, bottom, '└', nil, borderStyle)
	t.screen.SetContent(right, bottom, '┘', nil, borderStyle)

	title := t.config.Title
	if title == "" {
		title = "glade"
	}
	drawText(t.screen, 2, 0, right-2, " "+title+" ", titleStyle)
}

func (t *Backend) draw() {
	if t.tooSmall {
		return
	}

	if t.anyDirty {
		t.drawCells()
	}

	if t.layout.logX+minLogWidth/2 < t.layout.width {
		if v := t.logBuffer.Version(); v != t.logVersion {
			t.logVersion = v
			t.drawLogs()
		}
	}
}

func (t *Backend) drawCells() {
	step := t.layout.step
	for cy := 0; cy < t.layout.rows; cy++ {
		for cx := 0; cx < t.layout.cols; cx++ {
			i := cy*t.layout.cols + cx
			if !t.dirty[i] {
				continue
			}
			t.dirty[i] = false

			px, py := cx*step, cy*2*step
			top := t.buffer.PixelAt(px, py)
			bottom := top
			if py+step < t.buffer.Height() {
				bottom = t.buffer.PixelAt(px, py+step)
			}

			style := tcell.StyleDefault.Foreground(toTcell(top)).Background(toTcell(bottom))
			t.screen.SetContent(cx+1, cy+1, '▀', nil, style)
		}
	}
	t.anyDirty = false
}

func (t *Backend) drawLogs() {
	x := t.layout.logX
	width := t.layout.width - x
	height := t.layout.height - 2

	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow)
	clearRect(t.screen, x, 0, width, t.layout.height)
	drawText(t.screen, x, 0, width, " Logs ", titleStyle)

	entries := t.logBuffer.GetRecent(height)
	for i, entry := range entries {
		style := tcell.StyleDefault.Foreground(levelColor(entry.Level))
		drawText(t.screen, x, 1+i, width, FormatLogEntry(entry), style)
	}
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	var (
		act action.Action
		ok  bool
	)
	if ev.Key() == tcell.KeyRune {
		act, ok = runeMapping[ev.Rune()]
	} else {
		act, ok = keyMapping[ev.Key()]
	}
	if !ok {
		return
	}

	slog.Debug("Key event", "key", ev.Name(), "action", act)
	if !act.IsGameInput() {
		t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: act, Type: event.Press})
		return
	}

	// Terminals report no key releases and a single direction at a time,
	// so a new direction cancels the others
	if act.IsDirection() {
		for _, dir := range []action.Action{action.ButtonUp, action.ButtonDown, action.ButtonLeft, action.ButtonRight} {
			delete(t.keyStates, dir)
		}
	}
	t.keyStates[act] = now
}

// collectKeyEvents turns key repeat timestamps into press, hold and
// release events for game inputs.
func (t *Backend) collectKeyEvents(now time.Time) []backend.InputEvent {
	var events []backend.InputEvent

	// Track which keys are currently active this frame
	currentlyActive := make(map[action.Action]bool)
	for act, lastPressed := range t.keyStates {
		if now.Sub(lastPressed) >= keyTimeout {
			delete(t.keyStates, act)
			continue
		}

		currentlyActive[act] = true
		if t.activeKeys[act] {
			events = append(events, backend.InputEvent{Action: act, Type: event.Hold})
		} else {
			events = append(events, backend.InputEvent{Action: act, Type: event.Press})
		}
	}

	// Check for released keys (were active last frame but not this frame)
	for act := range t.activeKeys {
		if !currentlyActive[act] {
			events = append(events, backend.InputEvent{Action: act, Type: event.Release})
		}
	}

	t.activeKeys = currentlyActive
	return events
}

// tcellKeyNameMap converts tcell keys to key names used in default mappings
var tcellKeyNameMap = map[tcell.Key]string{
	tcell.KeyEnter:  "Enter",
	tcell.KeyUp:     "Up",
	tcell.KeyDown:   "Down",
	tcell.KeyLeft:   "Left",
	tcell.KeyRight:  "Right",
	tcell.KeyEscape: "Escape",
	tcell.KeyF9:     "F9",
	tcell.KeyF10:    "F10",
	tcell.KeyF12:    "F12",
}

// buildKeyMapping creates the key mapping from default mappings
func buildKeyMapping() map[tcell.Key]action.Action {
	mapping := make(map[tcell.Key]action.Action)
	for key, keyName := range tcellKeyNameMap {
		if act, ok := input.GetDefaultMapping(keyName); ok {
			mapping[key] = act
		}
	}
	mapping[tcell.KeyCtrlC] = action.EngineQuit
	return mapping
}

// buildRuneMapping creates the rune mapping from default mappings
func buildRuneMapping() map[rune]action.Action {
	mapping := make(map[rune]action.Action)
	for keyName, act := range input.DefaultKeyMap {
		if r := []rune(keyName); len(r) == 1 {
			mapping[r[0]] = act
		}
	}
	mapping[' '] = input.DefaultKeyMap["Space"]
	return mapping
}

var (
	keyMapping  = buildKeyMapping()
	runeMapping = buildRuneMapping()
)
