package video

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/valerio/go-glade/glade/geom"
)

// BytesPerPixel is fixed by the 16bpp 5:6:5 format.
const BytesPerPixel = 2

var (
	// ErrInvalidDimensions is returned when a buffer would have no pixels or
	// its backing slice does not match width*height*BytesPerPixel.
	ErrInvalidDimensions = errors.New("video: invalid buffer dimensions")
)

// PixelBuffer is a fixed-size 5:6:5 raster stored row-major with no padding
// between rows. Each pixel takes two bytes, high byte first, which is the
// order SPI panels expect on the wire.
type PixelBuffer struct {
	width  int
	height int
	pix    []byte
}

// NewPixelBuffer allocates a zeroed (black) buffer.
func NewPixelBuffer(width, height int) (*PixelBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	return &PixelBuffer{
		width:  width,
		height: height,
		pix:    make([]byte, width*height*BytesPerPixel),
	}, nil
}

// MustPixelBuffer is like NewPixelBuffer but panics on invalid dimensions.
// Only use it with sizes known to be valid.
func MustPixelBuffer(width, height int) *PixelBuffer {
	b, err := NewPixelBuffer(width, height)
	if err != nil {
		panic(err)
	}
	return b
}

// WrapPixelBuffer uses pix as the storage for a width x height buffer without
// copying it.
func WrapPixelBuffer(width, height int, pix []byte) (*PixelBuffer, error) {
	if width <= 0 || height <= 0 || len(pix) != width*height*BytesPerPixel {
		return nil, fmt.Errorf("%w: %dx%d with %d bytes", ErrInvalidDimensions, width, height, len(pix))
	}

	return &PixelBuffer{width: width, height: height, pix: pix}, nil
}

func (b *PixelBuffer) Width() int  { return b.width }
func (b *PixelBuffer) Height() int { return b.height }

// Stride is the number of bytes in one row.
func (b *PixelBuffer) Stride() int { return b.width * BytesPerPixel }

// Bytes exposes the raw storage.
func (b *PixelBuffer) Bytes() []byte { return b.pix }

// Dimensions returns the buffer size.
func (b *PixelBuffer) Dimensions() geom.Dimensions {
	return geom.Dimensions{Width: b.width, Height: b.height}
}

// Rect returns the full buffer area as a region anchored at the origin.
func (b *PixelBuffer) Rect() geom.RenderRegion {
	return geom.RenderRegion{Width: b.width, Height: b.height}
}

// Offset returns the byte index of the pixel at (x, y).
func (b *PixelBuffer) Offset(x, y int) int {
	return (y*b.width + x) * BytesPerPixel
}

// PixelAt returns the color at (x, y). Out of range reads return Black.
func (b *PixelBuffer) PixelAt(x, y int) Color {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return Black
	}
	i := b.Offset(x, y)
	return Color(uint16(b.pix[i])<<8 | uint16(b.pix[i+1]))
}

// SetPixel writes a single pixel; out of range writes are ignored.
func (b *PixelBuffer) SetPixel(x, y int, c Color) {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return
	}
	i := b.Offset(x, y)
	b.pix[i] = c.Hi()
	b.pix[i+1] = c.Lo()
}

// Fill sets every pixel to c.
func (b *PixelBuffer) Fill(c Color) {
	b.FillRect(b.Rect(), c)
}

// FillRect sets every pixel of r, clipped to the buffer, to c.
func (b *PixelBuffer) FillRect(r geom.RenderRegion, c Color) {
	area, ok := r.Intersect(b.Rect())
	if !ok {
		return
	}

	// Paint the first row pixel by pixel, then copy it down.
	stride := b.Stride()
	rowBytes := area.Width * BytesPerPixel
	first := b.Offset(area.X, area.Y)
	hi, lo := c.Hi(), c.Lo()
	for i := first; i < first+rowBytes; i += BytesPerPixel {
		b.pix[i] = hi
		b.pix[i+1] = lo
	}
	row := b.pix[first : first+rowBytes]
	for y := 1; y < area.Height; y++ {
		start := first + y*stride
		copy(b.pix[start:start+rowBytes], row)
	}
}

// ColorModel implements image.Image.
func (b *PixelBuffer) ColorModel() color.Model { return ColorModel }

// Bounds implements image.Image.
func (b *PixelBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// At implements image.Image so buffers can be handed to image encoders.
func (b *PixelBuffer) At(x, y int) color.Color {
	return b.PixelAt(x, y)
}
