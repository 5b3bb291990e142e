// Package glade ties the compositor together: it owns the renderer, the
// current screen, input and frame timing, and drives them from a backend.
package glade

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/valerio/go-glade/glade/backend"
	"github.com/valerio/go-glade/glade/debug"
	"github.com/valerio/go-glade/glade/graphics"
	"github.com/valerio/go-glade/glade/input"
	"github.com/valerio/go-glade/glade/input/action"
	"github.com/valerio/go-glade/glade/input/event"
	"github.com/valerio/go-glade/glade/render"
	"github.com/valerio/go-glade/glade/screen"
	"github.com/valerio/go-glade/glade/timing"
	"github.com/valerio/go-glade/glade/video"
)

// ErrNoScreen is returned when the engine has no screen to run.
var ErrNoScreen = errors.New("no screen to run")

// Engine runs the frame loop: advance the clock, update the current
// screen, composite, push changed sections and poll input.
type Engine struct {
	cfg      Config
	backend  backend.Backend
	textures graphics.TextureProvider
	renderer *render.Renderer
	input    *input.Manager
	clock    *timing.Clock
	limiter  timing.Limiter
	profiler *debug.Profiler

	current *screen.Screen
	next    func() *screen.Screen

	paused   bool
	stepOnce bool
	quit     bool
}

// New initializes b with the display configuration and creates an engine
// rendering into it.
func New(cfg Config, b backend.Backend, textures graphics.TextureProvider) (*Engine, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b == nil {
		return nil, errors.New("engine needs a backend")
	}

	e := &Engine{
		cfg:      cfg,
		backend:  b,
		textures: textures,
		input:    input.NewManager(),
		limiter:  timing.NewLimiter(cfg.Limiter, cfg.FPS),
	}

	if cfg.FixedStep > 0 {
		e.clock = timing.NewFixedClock(cfg.FixedStep)
	} else {
		e.clock = timing.NewClock(cfg.MaxFrameDelta)
	}

	e.profiler = debug.NewProfiler(slog.Default(), cfg.ProfileInterval)
	e.profiler.SetEnabled(cfg.Profile)

	display := cfg.Display
	if display.Callbacks.OnQuit == nil {
		display.Callbacks.OnQuit = e.Quit
	}
	if err := b.Init(display); err != nil {
		return nil, fmt.Errorf("failed to initialize backend: %w", err)
	}

	renderer, err := render.NewRenderer(b, textures, render.Options{
		Scale:           cfg.Scale,
		MaxSections:     cfg.MaxSections,
		BackgroundColor: cfg.BackgroundColor,
		SpriteLayerZ:    cfg.SpriteLayerZ,
		Profiler:        e.profiler,
	})
	if err != nil {
		_ = b.Cleanup()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	e.renderer = renderer

	e.registerEngineActions()

	slog.Info("Engine initialized",
		"display", fmt.Sprintf("%dx%d", cfg.Display.Width, cfg.Display.Height),
		"scale", cfg.Scale,
		"fps", cfg.FPS,
		"limiter", cfg.Limiter)
	return e, nil
}

func (e *Engine) registerEngineActions() {
	e.input.On(action.EngineQuit, event.Press, e.Quit)
	e.input.On(action.EnginePauseToggle, event.Press, func() {
		e.paused = !e.paused
		e.limiter.Reset()
		slog.Info("Pause toggled", "paused", e.paused)
	})
	e.input.On(action.EngineStepFrame, event.Press, func() {
		if e.paused {
			e.stepOnce = true
		}
	})
	e.input.On(action.EngineSnapshot, event.Press, func() {
		if _, err := e.Snapshot(); err != nil {
			slog.Error("Failed to save snapshot", "error", err)
		}
	})
	e.input.On(action.EngineProfileToggle, event.Press, func() {
		e.profiler.SetEnabled(!e.profiler.Enabled())
		slog.Info("Profiler toggled", "enabled", e.profiler.Enabled())
	})
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Renderer gives screens access to layers and the composite size.
func (e *Engine) Renderer() *render.Renderer { return e.renderer }

// Layers is shorthand for Renderer().Layers().
func (e *Engine) Layers() *render.LayerManager { return e.renderer.Layers() }

// Textures is the provider frames are resolved against.
func (e *Engine) Textures() graphics.TextureProvider { return e.textures }

// Input is the game control state.
func (e *Engine) Input() *input.Manager { return e.input }

// Clock is the frame clock.
func (e *Engine) Clock() *timing.Clock { return e.clock }

// Profiler is the section profiler shared with the renderer.
func (e *Engine) Profiler() *debug.Profiler { return e.profiler }

// Screen is the screen currently running, nil before the first frame.
func (e *Engine) Screen() *screen.Screen { return e.current }

// Paused reports whether screen updates are suspended.
func (e *Engine) Paused() bool { return e.paused }

// Quit stops the loop at the end of the current frame.
func (e *Engine) Quit() { e.quit = true }

// TransitionTo replaces the current screen at the start of the next frame.
// When a screen is already running its layers are cleared before build
// runs, so the new screen starts from an empty stack. The first frame of
// the new screen is a full redraw.
func (e *Engine) TransitionTo(build func() *screen.Screen) {
	e.next = build
}

// Start runs initial until the backend or a screen asks to quit, then
// releases the backend.
func (e *Engine) Start(initial *screen.Screen) (err error) {
	if initial == nil && e.next == nil {
		return ErrNoScreen
	}
	if initial != nil {
		e.TransitionTo(func() *screen.Screen { return initial })
	}

	defer func() {
		if cerr := e.backend.Cleanup(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to clean up backend: %w", cerr)
		}
	}()

	if driver, ok := e.backend.(backend.Driver); ok {
		return driver.Run(e.Step)
	}

	e.limiter.Reset()
	for {
		quit, err := e.Step()
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
		e.limiter.WaitForNextFrame()
	}
}

// Step runs one frame and reports whether the engine wants to stop.
func (e *Engine) Step() (bool, error) {
	if e.quit {
		return true, nil
	}

	if err := e.applyTransition(); err != nil {
		return true, err
	}
	if e.current == nil {
		return true, ErrNoScreen
	}

	e.profiler.Start("frame")
	delta := e.clock.Tick()

	if !e.paused || e.stepOnce {
		if e.paused {
			delta = timing.FrameDuration(e.cfg.FPS)
		}
		e.stepOnce = false

		e.profiler.Start("update")
		e.current.Update(delta)
		e.profiler.Stop("update")
	}

	if err := e.renderer.Render(e.current); err != nil {
		e.profiler.Stop("frame")
		return true, fmt.Errorf("failed to render frame: %w", err)
	}

	events, err := e.backend.Update()
	if err != nil {
		e.profiler.Stop("frame")
		return true, fmt.Errorf("backend update failed: %w", err)
	}

	e.input.EndFrame()
	for _, evt := range events {
		e.input.Trigger(evt.Action, evt.Type)
	}

	e.profiler.Stop("frame")
	e.profiler.Report()

	return e.quit, nil
}

func (e *Engine) applyTransition() error {
	if e.next == nil {
		return nil
	}

	build := e.next
	e.next = nil

	if e.current != nil {
		e.renderer.Layers().Clear()
	}
	scr := build()
	if scr == nil {
		return ErrNoScreen
	}

	e.current = scr
	e.input.Reset()
	e.clock.Reset()
	e.renderer.ForceFullRedraw()

	slog.Debug("Screen changed", "sprites", len(scr.Sprites()))
	return nil
}

// Snapshot saves the device buffer to the configured snapshot directory.
func (e *Engine) Snapshot() (string, error) {
	dir := e.cfg.SnapshotDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	path, err := debug.SaveFrameToDir(e.backend.Buffer(), "glade", dir, e.cfg.SnapshotFormat, 1)
	if err != nil {
		return "", err
	}
	slog.Info("Saved snapshot", "path", path)
	return path, nil
}

// Config configures an Engine.
type Config struct {
	// Display is handed to the backend. Width and Height are the device
	// resolution.
	Display backend.BackendConfig

	// Scale is the integer factor between the composite buffer and the
	// device. The device size must be a multiple of it.
	Scale int

	FPS     int
	Limiter string

	MaxSections     int
	BackgroundColor video.Color

	// SpriteLayerZ places sprites between layers; nil draws them on top.
	SpriteLayerZ *int

	// MaxFrameDelta clamps the delta passed to screens after a stall.
	MaxFrameDelta time.Duration

	// FixedStep makes every frame advance by the same delta, regardless of
	// wall time.
	FixedStep time.Duration

	Profile         bool
	ProfileInterval time.Duration

	SnapshotDir    string
	SnapshotFormat string
}

// DefaultConfig is a 240x240 panel at half resolution, the usual setup for
// small SPI displays.
func DefaultConfig() Config {
	return Config{
		Display: backend.BackendConfig{
			Title:       "glade",
			Width:       240,
			Height:      240,
			WindowScale: 2,
		},
		Scale:           2,
		FPS:             timing.DefaultFPS,
		Limiter:         "adaptive",
		MaxSections:     render.DefaultMaxSections,
		MaxFrameDelta:   250 * time.Millisecond,
		ProfileInterval: 5 * time.Second,
		SnapshotFormat:  debug.FormatPNG,
	}
}

func (c Config) withDefaults() Config {
	if c.Scale == 0 {
		c.Scale = 1
	}
	if c.FPS == 0 {
		c.FPS = timing.DefaultFPS
	}
	if c.SnapshotFormat == "" {
		c.SnapshotFormat = debug.FormatPNG
	}
	return c
}

// Validate checks the display and scale settings.
func (c Config) Validate() error {
	if err := c.Display.Validate(); err != nil {
		return err
	}
	if c.Scale < 1 {
		return fmt.Errorf("%w: %d", video.ErrInvalidScale, c.Scale)
	}
	if c.Display.Width%c.Scale != 0 || c.Display.Height%c.Scale != 0 {
		return fmt.Errorf("%w: %dx%d display is not a multiple of scale %d",
			video.ErrDimensionMismatch, c.Display.Width, c.Display.Height, c.Scale)
	}
	if c.FPS < 0 {
		return fmt.Errorf("invalid fps: %d", c.FPS)
	}
	switch c.Limiter {
	case "", "adaptive", "ticker", "none":
	default:
		return fmt.Errorf("unknown limiter %q", c.Limiter)
	}
	switch c.SnapshotFormat {
	case "", debug.FormatPNG, debug.FormatWebP:
	default:
		return fmt.Errorf("%w: %s", debug.ErrUnknownFormat, c.SnapshotFormat)
	}
	return nil
}
