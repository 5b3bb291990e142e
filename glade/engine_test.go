package glade

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-glade/glade/assets"
	"github.com/valerio/go-glade/glade/backend"
	"github.com/valerio/go-glade/glade/backend/headless"
	"github.com/valerio/go-glade/glade/graphics"
	"github.com/valerio/go-glade/glade/input/action"
	"github.com/valerio/go-glade/glade/input/event"
	"github.com/valerio/go-glade/glade/screen"
	"github.com/valerio/go-glade/glade/video"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Display.Width = 40
	cfg.Display.Height = 20
	cfg.Scale = 2
	cfg.Limiter = "none"
	cfg.FixedStep = 10 * time.Millisecond
	cfg.SnapshotDir = ""
	return cfg
}

func testTextures() *assets.Manager {
	m := assets.NewManager(nil)
	tex := video.MustPixelBuffer(4, 4)
	tex.Fill(video.Red)
	m.Register("block", tex)
	return m
}

func newTestEngine(t *testing.T, frames int) (*Engine, *headless.Backend) {
	t.Helper()
	b := headless.New(frames, headless.SnapshotConfig{})
	e, err := New(testConfig(), b, testTextures())
	require.NoError(t, err)
	return e, b
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{name: "default", mutate: func(*Config) {}, valid: true},
		{name: "zero width", mutate: func(c *Config) { c.Display.Width = 0 }},
		{name: "zero scale", mutate: func(c *Config) { c.Scale = 0 }},
		{name: "indivisible", mutate: func(c *Config) { c.Scale = 7 }},
		{name: "negative fps", mutate: func(c *Config) { c.FPS = -1 }},
		{name: "unknown limiter", mutate: func(c *Config) { c.Limiter = "sometimes" }},
		{name: "unknown snapshot format", mutate: func(c *Config) { c.SnapshotFormat = "gif" }},
		{name: "webp", mutate: func(c *Config) { c.SnapshotFormat = "webp" }, valid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if tt.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestNew_RejectsIndivisibleDisplay(t *testing.T) {
	cfg := testConfig()
	cfg.Scale = 3
	_, err := New(cfg, headless.New(1, headless.SnapshotConfig{}), testTextures())
	assert.ErrorIs(t, err, video.ErrDimensionMismatch)
}

func TestEngine_StartWithoutScreen(t *testing.T) {
	e, _ := newTestEngine(t, 1)
	assert.ErrorIs(t, e.Start(nil), ErrNoScreen)
}

func TestEngine_RunsUntilBackendQuits(t *testing.T) {
	e, b := newTestEngine(t, 5)

	var deltas []time.Duration
	scr := screen.New()
	sprite := scr.AddSprite(graphics.NewSprite(graphics.NewFrame("block", 0, 0, 4, 4), 0, 0))
	sprite.SetVelocity(100, 0)
	scr.SetActivity(func(_ *screen.Screen, delta time.Duration) {
		deltas = append(deltas, delta)
	})

	require.NoError(t, e.Start(scr))

	stats := b.Stats()
	assert.Equal(t, 5, stats.Frames)
	assert.GreaterOrEqual(t, stats.PixelsWritten, 40*20, "first frame pushes the whole display")
	assert.Equal(t, []time.Duration{0, 10 * time.Millisecond, 10 * time.Millisecond, 10 * time.Millisecond, 10 * time.Millisecond}, deltas)

	assert.InDelta(t, 4.0, sprite.Position().X, 1e-9, "four 10ms steps at 100px/s")
	assert.Equal(t, video.Red, b.Buffer().PixelAt(8, 0), "sprite is scaled into the device buffer")
}

func TestEngine_TransitionTo(t *testing.T) {
	e, _ := newTestEngine(t, 0)

	first := screen.New()
	_, err := e.Layers().Create(-1, e.Renderer().Size())
	require.NoError(t, err)

	e.TransitionTo(func() *screen.Screen { return first })
	quit, err := e.Step()
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Same(t, first, e.Screen())
	assert.Equal(t, 1, e.Layers().Len(), "layers built before the first screen are kept")

	second := screen.New()
	built := 0
	e.TransitionTo(func() *screen.Screen {
		built++
		return second
	})
	assert.Same(t, first, e.Screen(), "the swap waits for the next frame")

	_, err = e.Step()
	require.NoError(t, err)
	assert.Same(t, second, e.Screen())
	assert.Equal(t, 1, built)
	assert.Equal(t, 0, e.Layers().Len(), "a replaced screen takes its layers with it")
	require.Len(t, e.Renderer().LastPushed(), 1)
	assert.Equal(t, e.Renderer().Composite().Rect(), e.Renderer().LastPushed()[0], "a new screen starts with a full redraw")

	e.TransitionTo(func() *screen.Screen { return nil })
	_, err = e.Step()
	assert.ErrorIs(t, err, ErrNoScreen)
}

func TestEngine_PauseAndStep(t *testing.T) {
	e, _ := newTestEngine(t, 0)

	updates := 0
	var lastDelta time.Duration
	scr := screen.New()
	scr.SetActivity(func(_ *screen.Screen, delta time.Duration) {
		updates++
		lastDelta = delta
	})
	e.TransitionTo(func() *screen.Screen { return scr })

	_, err := e.Step()
	require.NoError(t, err)
	assert.Equal(t, 1, updates)

	e.Input().Trigger(action.EnginePauseToggle, event.Press)
	assert.True(t, e.Paused())

	_, err = e.Step()
	require.NoError(t, err)
	assert.Equal(t, 1, updates, "paused frames skip screen updates")

	e.Input().Trigger(action.EngineStepFrame, event.Press)
	_, err = e.Step()
	require.NoError(t, err)
	assert.Equal(t, 2, updates)
	assert.Equal(t, time.Second/30, lastDelta, "a single step advances one nominal frame")

	_, err = e.Step()
	require.NoError(t, err)
	assert.Equal(t, 2, updates)
}

func TestEngine_PausedFramesPushNothing(t *testing.T) {
	e, b := newTestEngine(t, 0)

	scr := screen.New()
	sprite := scr.AddSprite(graphics.NewSprite(graphics.NewFrame("block", 0, 0, 4, 4), 0, 0))
	sprite.SetVelocity(100, 0)
	e.TransitionTo(func() *screen.Screen { return scr })

	for range 2 {
		_, err := e.Step()
		require.NoError(t, err)
	}
	require.NotEmpty(t, e.Renderer().LastPushed(), "moving sprite")

	e.Input().Trigger(action.EnginePauseToggle, event.Press)
	before := b.Stats().PixelsWritten
	for range 3 {
		_, err := e.Step()
		require.NoError(t, err)
		assert.Empty(t, e.Renderer().LastPushed())
	}
	assert.Equal(t, before, b.Stats().PixelsWritten)
	assert.Equal(t, video.Red, b.Buffer().PixelAt(2, 0), "frame stays on the display")
}

func TestEngine_QuitAction(t *testing.T) {
	e, _ := newTestEngine(t, 0)
	e.TransitionTo(func() *screen.Screen { return screen.New() })

	_, err := e.Step()
	require.NoError(t, err)

	e.Input().Trigger(action.EngineQuit, event.Press)
	quit, err := e.Step()
	require.NoError(t, err)
	assert.True(t, quit)
}

func TestEngine_Snapshot(t *testing.T) {
	cfg := testConfig()
	cfg.SnapshotDir = t.TempDir()
	e, err := New(cfg, headless.New(0, headless.SnapshotConfig{}), testTextures())
	require.NoError(t, err)

	e.TransitionTo(func() *screen.Screen { return screen.New() })
	_, err = e.Step()
	require.NoError(t, err)

	path, err := e.Snapshot()
	require.NoError(t, err)
	assert.FileExists(t, path)
}

type failingBackend struct {
	*headless.Backend
	err error
}

func (f *failingBackend) Update() ([]backend.InputEvent, error) {
	return nil, f.err
}

func TestEngine_BackendErrorStopsLoop(t *testing.T) {
	boom := errors.New("display unplugged")
	b := &failingBackend{Backend: headless.New(0, headless.SnapshotConfig{}), err: boom}
	e, err := New(testConfig(), b, testTextures())
	require.NoError(t, err)

	err = e.Start(screen.New())
	assert.ErrorIs(t, err, boom)
}

type drivenBackend struct {
	*headless.Backend
	runs int
}

func (d *drivenBackend) Run(step func() (bool, error)) error {
	for {
		d.runs++
		quit, err := step()
		if err != nil || quit {
			return err
		}
	}
}

func TestEngine_UsesDriver(t *testing.T) {
	b := &drivenBackend{Backend: headless.New(3, headless.SnapshotConfig{})}
	e, err := New(testConfig(), b, testTextures())
	require.NoError(t, err)

	require.NoError(t, e.Start(screen.New()))
	assert.Equal(t, 3, b.runs)
}
