package render

import (
	"github.com/valerio/go-glade/glade/geom"
	"github.com/valerio/go-glade/glade/video"
)

// Sink is the display the renderer pushes finished frames to.
//
// The renderer scales its composite into Buffer, then calls WriteSection
// once per changed rectangle. Coordinates are device pixels; right and
// bottom are exclusive. Sinks clip sections that fall partly outside the
// display and ignore sections that fall completely outside it.
type Sink interface {
	Buffer() *video.PixelBuffer
	WriteSection(left, top, right, bottom int) error
}

// SectionBuffer extracts rectangles of a device buffer into contiguous,
// row-major bytes, the layout display transports expect for a windowed
// write. The backing array is reused between calls.
type SectionBuffer struct {
	data []byte
}

// ClipSection converts exclusive section edges into a region clipped to
// buf. The boolean is false when nothing of the section is on the buffer.
func ClipSection(buf *video.PixelBuffer, left, top, right, bottom int) (geom.RenderRegion, bool) {
	section := geom.RenderRegion{X: left, Y: top, Width: right - left, Height: bottom - top}
	return section.Intersect(buf.Rect())
}

// Extract clips the section to buf and returns its pixels. The returned
// slice is only valid until the next call.
func (s *SectionBuffer) Extract(buf *video.PixelBuffer, left, top, right, bottom int) (geom.RenderRegion, []byte, bool) {
	region, ok := ClipSection(buf, left, top, right, bottom)
	if !ok {
		return geom.RenderRegion{}, nil, false
	}

	rowBytes := region.Width * video.BytesPerPixel
	size := rowBytes * region.Height
	if cap(s.data) < size {
		s.data = make([]byte, size)
	}
	out := s.data[:size]

	pix := buf.Bytes()
	for row := 0; row < region.Height; row++ {
		start := buf.Offset(region.X, region.Y+row)
		copy(out[row*rowBytes:(row+1)*rowBytes], pix[start:start+rowBytes])
	}
	return region, out, true
}
