//go:build !sdl2

package sdl2

import (
	"errors"

	"github.com/valerio/go-glade/glade/backend"
	"github.com/valerio/go-glade/glade/video"
)

var errUnavailable = errors.New("SDL2 backend not available - build with -tags sdl2 to enable")

// Backend stub for when SDL2 is not available
type Backend struct{}

// New creates a stub SDL2 backend that returns an error
func New() *Backend {
	return &Backend{}
}

// Init returns an error indicating SDL2 is not available
func (s *Backend) Init(config backend.BackendConfig) error {
	return errUnavailable
}

func (s *Backend) Buffer() *video.PixelBuffer { return nil }

func (s *Backend) WriteSection(left, top, right, bottom int) error {
	return errUnavailable
}

// Update returns an error
func (s *Backend) Update() ([]backend.InputEvent, error) {
	return nil, errUnavailable
}

// Cleanup does nothing
func (s *Backend) Cleanup() error {
	return nil
}
