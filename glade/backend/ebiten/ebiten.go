//go:build ebiten

package ebiten

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/valerio/go-glade/glade/backend"
	"github.com/valerio/go-glade/glade/input/action"
	"github.com/valerio/go-glade/glade/input/event"
	"github.com/valerio/go-glade/glade/render"
	"github.com/valerio/go-glade/glade/video"
)

// Backend shows the display in an Ebitengine window. Ebitengine runs the
// main loop, so the engine drives it through Run rather than calling Update
// itself.
type Backend struct {
	config backend.BackendConfig
	buffer *video.PixelBuffer

	// rgba mirrors the device buffer in the layout WritePixels expects
	rgba   []byte
	image  *ebiten.Image
	dirty  bool
	events []backend.InputEvent
}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Init(config backend.BackendConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	buffer, err := video.NewPixelBuffer(config.Width, config.Height)
	if err != nil {
		return fmt.Errorf("failed to allocate device buffer: %w", err)
	}

	b.config = config
	b.buffer = buffer
	b.rgba = make([]byte, config.Width*config.Height*4)
	for i := 3; i < len(b.rgba); i += 4 {
		b.rgba[i] = 0xff
	}

	ebiten.SetWindowTitle(config.Title)
	ebiten.SetWindowSize(config.Width*config.Scale(), config.Height*config.Scale())
	ebiten.SetVsyncEnabled(config.VSync)
	ebiten.SetFullscreen(config.Fullscreen)

	slog.Info("Ebiten backend initialized", "display", fmt.Sprintf("%dx%d", config.Width, config.Height))
	return nil
}

func (b *Backend) Buffer() *video.PixelBuffer { return b.buffer }

// WriteSection converts the section into the RGBA mirror. The window picks
// it up on the next draw.
func (b *Backend) WriteSection(left, top, right, bottom int) error {
	if b.buffer == nil {
		return backend.ErrNotInitialized
	}

	region, ok := render.ClipSection(b.buffer, left, top, right, bottom)
	if !ok {
		return nil
	}

	for y := region.Y; y < region.Bottom(); y++ {
		for x := region.X; x < region.Right(); x++ {
			r, g, bl := b.buffer.PixelAt(x, y).Channels()
			i := (y*b.buffer.Width() + x) * 4
			b.rgba[i], b.rgba[i+1], b.rgba[i+2] = r, g, bl
		}
	}
	b.dirty = true
	return nil
}

// Update returns the input collected at the start of the current tick.
func (b *Backend) Update() ([]backend.InputEvent, error) {
	if b.buffer == nil {
		return nil, backend.ErrNotInitialized
	}
	events := b.events
	b.events = nil
	return events, nil
}

func (b *Backend) Cleanup() error {
	return nil
}

// Run hands the main loop to Ebitengine, calling step once per tick until
// it reports quit or fails.
func (b *Backend) Run(step func() (bool, error)) error {
	if b.buffer == nil {
		return backend.ErrNotInitialized
	}

	err := ebiten.RunGame(&game{backend: b, step: step})
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

type game struct {
	backend *Backend
	step    func() (bool, error)
}

func (g *game) Update() error {
	g.backend.pollKeys()

	quit, err := g.step()
	if err != nil {
		return err
	}
	if quit {
		return ebiten.Termination
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	b := g.backend
	if b.image == nil {
		b.image = ebiten.NewImage(b.buffer.Width(), b.buffer.Height())
		b.dirty = true
	}
	if b.dirty {
		b.image.WritePixels(b.rgba)
		b.dirty = false
	}
	screen.DrawImage(b.image, nil)
}

func (g *game) Layout(_, _ int) (int, int) {
	return g.backend.buffer.Width(), g.backend.buffer.Height()
}

func (b *Backend) pollKeys() {
	if ebiten.IsWindowBeingClosed() {
		b.events = append(b.events, backend.QuitEvent())
	}

	for key, act := range keyMapping {
		switch {
		case inpututil.IsKeyJustPressed(key):
			b.events = append(b.events, backend.InputEvent{Action: act, Type: event.Press})
		case act.IsGameInput() && inpututil.IsKeyJustReleased(key):
			b.events = append(b.events, backend.InputEvent{Action: act, Type: event.Release})
		case act.IsGameInput() && ebiten.IsKeyPressed(key):
			b.events = append(b.events, backend.InputEvent{Action: act, Type: event.Hold})
		}
	}
}

// keyMapping maps Ebitengine keys to actions
var keyMapping = map[ebiten.Key]action.Action{
	// Engine controls
	ebiten.KeyF9:     action.EngineSnapshot,
	ebiten.KeyF10:    action.EngineProfileToggle,
	ebiten.KeyF12:    action.EngineSnapshot,
	ebiten.KeyEscape: action.EngineQuit,
	ebiten.KeySpace:  action.EnginePauseToggle,
	ebiten.KeyO:      action.EngineStepFrame,

	// Game controls
	ebiten.KeyEnter:      action.ButtonStart,
	ebiten.KeyZ:          action.ButtonA,
	ebiten.KeyX:          action.ButtonB,
	ebiten.KeyArrowUp:    action.ButtonUp,
	ebiten.KeyArrowDown:  action.ButtonDown,
	ebiten.KeyArrowLeft:  action.ButtonLeft,
	ebiten.KeyArrowRight: action.ButtonRight,
	ebiten.KeyW:          action.ButtonUp,
	ebiten.KeyS:          action.ButtonDown,
	ebiten.KeyA:          action.ButtonLeft,
	ebiten.KeyD:          action.ButtonRight,
}
