//go:build !ebiten

package ebiten

import (
	"errors"

	"github.com/valerio/go-glade/glade/backend"
	"github.com/valerio/go-glade/glade/video"
)

var errUnavailable = errors.New("Ebiten backend not available - build with -tags ebiten to enable")

// Backend stub for builds without the ebiten tag
type Backend struct{}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Init(config backend.BackendConfig) error {
	return errUnavailable
}

func (b *Backend) Buffer() *video.PixelBuffer { return nil }

func (b *Backend) WriteSection(left, top, right, bottom int) error {
	return errUnavailable
}

func (b *Backend) Update() ([]backend.InputEvent, error) {
	return nil, errUnavailable
}

func (b *Backend) Cleanup() error {
	return nil
}

func (b *Backend) Run(step func() (bool, error)) error {
	return errUnavailable
}
