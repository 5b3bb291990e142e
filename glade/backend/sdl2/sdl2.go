//go:build sdl2

package sdl2

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/valerio/go-glade/glade/backend"
	"github.com/valerio/go-glade/glade/input/action"
	"github.com/valerio/go-glade/glade/input/event"
	"github.com/valerio/go-glade/glade/render"
	"github.com/valerio/go-glade/glade/video"
	"github.com/veandco/go-sdl2/sdl"
)

// Backend implements the Backend interface using SDL2 bindings
// Note: building this requires SDL2 development libraries installed.
// Default builds skip this and use a stubbed renderer, see build tags (sdl2)
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	running  bool
	config   backend.BackendConfig

	buffer   *video.PixelBuffer
	sections render.SectionBuffer
	pending  bool

	events []backend.InputEvent
}

// New creates a new SDL2 backend
func New() *Backend {
	return &Backend{}
}

// Init initializes the SDL2 backend
func (s *Backend) Init(config backend.BackendConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	buffer, err := video.NewPixelBuffer(config.Width, config.Height)
	if err != nil {
		return fmt.Errorf("failed to allocate device buffer: %w", err)
	}
	s.buffer = buffer
	s.config = config

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("failed to initialize SDL2: %w", err)
	}

	flags := uint32(sdl.WINDOW_SHOWN)
	if config.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}
	window, err := sdl.CreateWindow(
		config.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(config.Width*config.Scale()),
		int32(config.Height*config.Scale()),
		flags,
	)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("failed to create window: %w", err)
	}
	s.window = window

	rendererFlags := uint32(sdl.RENDERER_ACCELERATED)
	if config.VSync {
		rendererFlags |= sdl.RENDERER_PRESENTVSYNC
	}
	renderer, err := sdl.CreateRenderer(window, -1, rendererFlags)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	s.renderer = renderer

	// The texture mirrors the device buffer, sections are streamed into it
	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_RGB565,
		sdl.TEXTUREACCESS_STREAMING,
		int32(config.Width),
		int32(config.Height),
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create texture: %w", err)
	}
	s.texture = texture

	s.running = true
	slog.Info("SDL2 backend initialized", "display", fmt.Sprintf("%dx%d", config.Width, config.Height), "window_scale", config.Scale())
	return nil
}

func (s *Backend) Buffer() *video.PixelBuffer { return s.buffer }

// WriteSection uploads the section to the streaming texture.
func (s *Backend) WriteSection(left, top, right, bottom int) error {
	if s.texture == nil {
		return backend.ErrNotInitialized
	}

	region, data, ok := s.sections.Extract(s.buffer, left, top, right, bottom)
	if !ok {
		return nil
	}

	// SDL reads 16-bit pixels in native (little-endian) order
	for i := 0; i+1 < len(data); i += 2 {
		data[i], data[i+1] = data[i+1], data[i]
	}

	rect := sdl.Rect{X: int32(region.X), Y: int32(region.Y), W: int32(region.Width), H: int32(region.Height)}
	if err := s.texture.Update(&rect, unsafe.Pointer(&data[0]), region.Width*video.BytesPerPixel); err != nil {
		return fmt.Errorf("failed to update texture: %w", err)
	}
	s.pending = true
	return nil
}

// Update presents the texture and processes events
func (s *Backend) Update() ([]backend.InputEvent, error) {
	if s.renderer == nil {
		return nil, backend.ErrNotInitialized
	}

	s.events = s.events[:0]
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		s.handleEvent(ev)
	}

	if !s.running {
		return append(s.events, backend.QuitEvent()), nil
	}

	if s.pending {
		s.renderer.SetDrawColor(0, 0, 0, 255)
		s.renderer.Clear()
		s.renderer.Copy(s.texture, nil, nil)
		s.renderer.Present()
		s.pending = false
	}

	return s.events, nil
}

// Cleanup cleans up SDL2 resources
func (s *Backend) Cleanup() error {
	slog.Info("Cleaning up SDL2 backend")

	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()

	return nil
}

func (s *Backend) handleEvent(ev sdl.Event) {
	switch e := ev.(type) {
	case *sdl.QuitEvent:
		s.running = false
		if s.config.Callbacks.OnQuit != nil {
			s.config.Callbacks.OnQuit()
		}

	case *sdl.WindowEvent:
		// the window contents are lost on expose, show the whole texture again
		if e.Event == sdl.WINDOWEVENT_EXPOSED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			s.pending = true
		}

	case *sdl.KeyboardEvent:
		act, ok := keyMapping[e.Keysym.Sym]
		if !ok {
			return
		}
		switch {
		case e.Type == sdl.KEYDOWN && e.Repeat == 0:
			s.events = append(s.events, backend.InputEvent{Action: act, Type: event.Press})
		case e.Type == sdl.KEYDOWN:
			if act.IsGameInput() {
				s.events = append(s.events, backend.InputEvent{Action: act, Type: event.Hold})
			}
		case e.Type == sdl.KEYUP && act.IsGameInput():
			// Only game controls track releases
			s.events = append(s.events, backend.InputEvent{Action: act, Type: event.Release})
		}
	}
}

// keyMapping maps SDL2 keys to actions
var keyMapping = map[sdl.Keycode]action.Action{
	// Engine controls
	sdl.K_F9:     action.EngineSnapshot,
	sdl.K_F10:    action.EngineProfileToggle,
	sdl.K_F12:    action.EngineSnapshot,
	sdl.K_ESCAPE: action.EngineQuit,
	sdl.K_SPACE:  action.EnginePauseToggle,
	sdl.K_o:      action.EngineStepFrame,

	// Game controls
	sdl.K_RETURN: action.ButtonStart,
	sdl.K_z:      action.ButtonA,
	sdl.K_x:      action.ButtonB,
	sdl.K_UP:     action.ButtonUp,
	sdl.K_DOWN:   action.ButtonDown,
	sdl.K_LEFT:   action.ButtonLeft,
	sdl.K_RIGHT:  action.ButtonRight,
	sdl.K_w:      action.ButtonUp,
	sdl.K_s:      action.ButtonDown,
	sdl.K_a:      action.ButtonLeft,
	sdl.K_d:      action.ButtonRight,
}
