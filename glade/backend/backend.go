package backend

import (
	"errors"
	"fmt"

	"github.com/valerio/go-glade/glade/input/action"
	"github.com/valerio/go-glade/glade/input/event"
	"github.com/valerio/go-glade/glade/video"
)

// ErrNotInitialized is returned by backends used before Init.
var ErrNotInitialized = errors.New("backend not initialized")

// Backend represents a display platform (output + input).
// Backends are responsible for:
// - Owning the device buffer the renderer scales frames into
// - Presenting the sections the renderer reports as changed
// - Translating platform-specific input events to Actions
type Backend interface {
	// Init configures the backend with the provided configuration.
	// This is a required step before calling any other method.
	Init(config BackendConfig) error

	// Buffer is the device-resolution buffer frames are scaled into.
	Buffer() *video.PixelBuffer

	// WriteSection pushes the rectangle [left,right) x [top,bottom) of
	// Buffer to the display. Sections are clipped to the display; a section
	// completely outside it is ignored.
	WriteSection(left, top, right, bottom int) error

	// Update finishes the frame and polls for platform events.
	Update() ([]InputEvent, error)

	// Cleanup resources when shutting down
	Cleanup() error
}

// InputEvent is an action reported by a backend.
type InputEvent struct {
	Action action.Action
	Type   event.Type
}

// BackendConfig holds configuration for backends
type BackendConfig struct {
	Title string

	// Width and Height are the display size in device pixels.
	Width  int
	Height int

	// WindowScale enlarges windowed backends on the desktop. It does not
	// change the device buffer size.
	WindowScale int

	VSync      bool
	Fullscreen bool
	Callbacks  BackendCallbacks
}

// BackendCallbacks allows backends to communicate with the engine
type BackendCallbacks struct {
	// Backend requests shutdown (e.g., window close)
	OnQuit func()
}

// Validate checks the display size.
func (c BackendConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: display %dx%d", video.ErrInvalidDimensions, c.Width, c.Height)
	}
	return nil
}

// Scale returns WindowScale, defaulting to 1.
func (c BackendConfig) Scale() int {
	return max(c.WindowScale, 1)
}

// QuitEvent is the event backends emit when the user closes them.
func QuitEvent() InputEvent {
	return InputEvent{Action: action.EngineQuit, Type: event.Press}
}

// Driver is implemented by backends that own the main loop, such as game
// frameworks that must call into the program from their own thread. The
// engine hands them a step function instead of running its own loop; step
// reports true once the engine wants to stop.
type Driver interface {
	Run(step func() (quit bool, err error)) error
}
