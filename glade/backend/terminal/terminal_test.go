package terminal

import (
	"log/slog"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-glade/glade/backend"
	"github.com/valerio/go-glade/glade/input/action"
	"github.com/valerio/go-glade/glade/input/event"
	"github.com/valerio/go-glade/glade/render"
	"github.com/valerio/go-glade/glade/video"
)

func newSimulated(t *testing.T, w, h int) (*Backend, tcell.SimulationScreen, *time.Time) {
	t.Helper()

	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	sim := tcell.NewSimulationScreen("UTF-8")
	b := NewWithScreen(func() (tcell.Screen, error) { return sim, nil })
	now := time.Unix(0, 0)
	b.now = func() time.Time { return now }

	require.NoError(t, b.Init(backend.BackendConfig{Title: "test", Width: w, Height: h}))
	t.Cleanup(func() { _ = b.Cleanup() })
	return b, sim, &now
}

func cellColors(t *testing.T, sim tcell.SimulationScreen, x, y int) (rune, tcell.Color, tcell.Color) {
	t.Helper()
	ch, _, style, _ := sim.GetContent(x, y)
	fg, bg, _ := style.Decompose()
	return ch, fg, bg
}

func TestTerminal_DrawsHalfBlocks(t *testing.T) {
	b, sim, _ := newSimulated(t, 16, 8)
	assert.Equal(t, 1, b.layout.step)
	assert.Equal(t, 16, b.layout.cols)
	assert.Equal(t, 4, b.layout.rows)

	b.Buffer().Fill(video.Blue)
	b.Buffer().SetPixel(0, 0, video.Red)
	require.NoError(t, b.WriteSection(0, 0, 16, 8))
	_, err := b.Update()
	require.NoError(t, err)

	ch, fg, bg := cellColors(t, sim, 1, 1)
	assert.Equal(t, '▀', ch)
	assert.Equal(t, tcell.NewRGBColor(255, 0, 0), fg)
	assert.Equal(t, tcell.NewRGBColor(0, 0, 255), bg)
}

func TestTerminal_RedrawsOnlyDirtyCells(t *testing.T) {
	b, sim, _ := newSimulated(t, 16, 8)
	_, err := b.Update()
	require.NoError(t, err)

	b.Buffer().Fill(video.Green)
	require.NoError(t, b.WriteSection(4, 2, 6, 4))
	_, err = b.Update()
	require.NoError(t, err)

	_, fg, _ := cellColors(t, sim, 1+4, 1+1)
	assert.Equal(t, tcell.NewRGBColor(0, 255, 0), fg, "dirty cell redrawn")

	_, fg, _ = cellColors(t, sim, 1, 1)
	assert.Equal(t, tcell.NewRGBColor(0, 0, 0), fg, "clean cell left alone")
}

func TestTerminal_SamplesLargeDisplays(t *testing.T) {
	b, _, _ := newSimulated(t, 200, 100)

	assert.Equal(t, 5, b.layout.step)
	assert.Equal(t, 40, b.layout.cols)
	assert.Equal(t, 10, b.layout.rows)

	// sections past the sampled grid are clamped
	require.NoError(t, b.WriteSection(190, 90, 400, 400))
	assert.True(t, b.dirty[len(b.dirty)-1])
}

func TestTerminal_KeyEvents(t *testing.T) {
	b, sim, now := newSimulated(t, 16, 8)

	sim.InjectKey(tcell.KeyRune, 'z', tcell.ModNone)
	events, err := b.Update()
	require.NoError(t, err)
	assert.Contains(t, events, backend.InputEvent{Action: action.ButtonA, Type: event.Press})

	*now = now.Add(50 * time.Millisecond)
	sim.InjectKey(tcell.KeyRune, 'z', tcell.ModNone)
	events, _ = b.Update()
	assert.Contains(t, events, backend.InputEvent{Action: action.ButtonA, Type: event.Hold})

	*now = now.Add(time.Second)
	events, _ = b.Update()
	assert.Contains(t, events, backend.InputEvent{Action: action.ButtonA, Type: event.Release})
}

func TestTerminal_DirectionsAreExclusive(t *testing.T) {
	b, sim, _ := newSimulated(t, 16, 8)

	sim.InjectKey(tcell.KeyLeft, 0, tcell.ModNone)
	sim.InjectKey(tcell.KeyUp, 0, tcell.ModNone)
	events, _ := b.Update()

	assert.Equal(t, []backend.InputEvent{{Action: action.ButtonUp, Type: event.Press}}, events)
}

func TestTerminal_EngineKeys(t *testing.T) {
	b, sim, _ := newSimulated(t, 16, 8)

	sim.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
	sim.InjectKey(tcell.KeyRune, ' ', tcell.ModNone)
	events, _ := b.Update()

	assert.Equal(t, []backend.InputEvent{
		backend.QuitEvent(),
		{Action: action.EnginePauseToggle, Type: event.Press},
	}, events)
}

func TestTerminal_CapturesLogs(t *testing.T) {
	b, _, _ := newSimulated(t, 16, 8)

	slog.Info("hello", "frame", 3)
	slog.Debug("hidden")

	recent := b.LogBuffer().GetRecent(1)
	require.Len(t, recent, 1)
	assert.Equal(t, "hello frame=3", recent[0].Message)

	b.SetLogLevel(slog.LevelDebug)
	slog.Debug("shown")
	assert.Equal(t, "shown", b.LogBuffer().GetRecent(1)[0].Message)
}

func TestTerminal_NotInitialized(t *testing.T) {
	b := New()

	_, err := b.Update()
	assert.ErrorIs(t, err, backend.ErrNotInitialized)
	assert.ErrorIs(t, b.WriteSection(0, 0, 1, 1), backend.ErrNotInitialized)
	assert.NoError(t, b.Cleanup())
}

func TestTerminalImplementsBackend(t *testing.T) {
	var _ backend.Backend = (*Backend)(nil)
	var _ render.Sink = (*Backend)(nil)
}
