// Package graphics implements the drawable surfaces of the compositor:
// scrollable layers, texture frames and movable sprites.
package graphics

import (
	"github.com/valerio/go-glade/glade/geom"
	"github.com/valerio/go-glade/glade/video"
)

// Frame names a sub-rectangle of a texture atlas. Frames are plain values
// and are compared by value.
type Frame struct {
	TextureName string
	X, Y        int
	Width       int
	Height      int
}

// NewFrame creates a frame covering (x, y, width, height) of the named texture.
func NewFrame(textureName string, x, y, width, height int) Frame {
	return Frame{TextureName: textureName, X: x, Y: y, Width: width, Height: height}
}

// Origin is the top-left pixel of the frame on its texture.
func (f Frame) Origin() geom.Point {
	return geom.Point{X: f.X, Y: f.Y}
}

// Size returns the frame dimensions.
func (f Frame) Size() geom.Dimensions {
	return geom.Dimensions{Width: f.Width, Height: f.Height}
}

// Rect is the frame's rectangle on its texture.
func (f Frame) Rect() geom.RenderRegion {
	return geom.RenderRegion{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height}
}

// TextureProvider returns already decoded, resident texture atlases by name.
// Implementations own the buffers; callers only read from them.
type TextureProvider interface {
	Texture(name string) (*video.PixelBuffer, error)
}
