package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-glade/glade/geom"
	"github.com/valerio/go-glade/glade/video"
)

func TestSectionBuffer_Extract(t *testing.T) {
	buf := video.MustPixelBuffer(4, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			buf.SetPixel(x, y, video.Color(y*4+x+1))
		}
	}

	var s SectionBuffer
	region, data, ok := s.Extract(buf, 1, 1, 3, 3)
	require.True(t, ok)

	assert.Equal(t, geom.RenderRegion{X: 1, Y: 1, Width: 2, Height: 2}, region)
	assert.Equal(t, []byte{0, 6, 0, 7, 0, 10, 0, 11}, data)
}

func TestSectionBuffer_ExtractClips(t *testing.T) {
	buf := video.MustPixelBuffer(4, 3)
	var s SectionBuffer

	tests := []struct {
		name                     string
		left, top, right, bottom int
		want                     geom.RenderRegion
		ok                       bool
	}{
		{"inside", 0, 0, 4, 3, geom.RenderRegion{Width: 4, Height: 3}, true},
		{"overhang right and bottom", 2, 1, 10, 10, geom.RenderRegion{X: 2, Y: 1, Width: 2, Height: 2}, true},
		{"negative start", -5, -5, 1, 1, geom.RenderRegion{Width: 1, Height: 1}, true},
		{"outside", 4, 0, 8, 3, geom.RenderRegion{}, false},
		{"inverted", 3, 3, 1, 1, geom.RenderRegion{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			region, data, ok := s.Extract(buf, tt.left, tt.top, tt.right, tt.bottom)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, region)
			assert.Len(t, data, tt.want.Area()*video.BytesPerPixel)
		})
	}
}
