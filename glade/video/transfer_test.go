package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-glade/glade/geom"
)

func assertScaledBlocks(t *testing.T, src, dst *PixelBuffer, scale int, area geom.RenderRegion) {
	t.Helper()
	for y := area.Y; y < area.Bottom(); y++ {
		for x := area.X; x < area.Right(); x++ {
			expected := src.PixelAt(x, y)
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					if !assert.Equal(t, expected, dst.PixelAt(x*scale+dx, y*scale+dy),
						"source (%d,%d) block offset (%d,%d)", x, y, dx, dy) {
						return
					}
				}
			}
		}
	}
}

func TestNoRotationTransferrer_Scales(t *testing.T) {
	for _, scale := range []int{1, 2, 3, 4} {
		src := patterned(7, 5)
		dst := MustPixelBuffer(7*scale, 5*scale)

		err := NoRotationTransferrer{}.Transfer(src, dst, scale, nil)
		require.NoError(t, err)
		assertScaledBlocks(t, src, dst, scale, src.Rect())
	}
}

func TestNoRotationTransferrer_DimensionMismatch(t *testing.T) {
	src := MustPixelBuffer(10, 10)
	dst := MustPixelBuffer(19, 20)
	before := append([]byte(nil), dst.Bytes()...)

	err := NoRotationTransferrer{}.Transfer(src, dst, 2, nil)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Equal(t, before, dst.Bytes())

	err = NoRotationTransferrer{}.Transfer(src, MustPixelBuffer(10, 10), 0, nil)
	assert.ErrorIs(t, err, ErrInvalidScale)
}

func TestNoRotationTransferrer_Region(t *testing.T) {
	src := patterned(8, 8)
	dst := MustPixelBuffer(16, 16)
	region := geom.RenderRegion{X: 3, Y: 2, Width: 4, Height: 3}

	err := NoRotationTransferrer{}.Transfer(src, dst, 2, &region)
	require.NoError(t, err)

	assertScaledBlocks(t, src, dst, 2, region)

	// nothing outside the scaled region was touched
	scaled := region.Scale(2)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if !scaled.Contains(x, y) {
				assert.Equal(t, Black, dst.PixelAt(x, y), "pixel (%d,%d)", x, y)
			}
		}
	}
}

func TestNoRotationTransferrer_RegionClipped(t *testing.T) {
	src := patterned(4, 4)
	dst := MustPixelBuffer(12, 12)

	region := geom.RenderRegion{X: 2, Y: -1, Width: 10, Height: 2}
	require.NoError(t, NoRotationTransferrer{}.Transfer(src, dst, 3, &region))
	assertScaledBlocks(t, src, dst, 3, geom.RenderRegion{X: 2, Y: 0, Width: 2, Height: 1})

	outside := geom.RenderRegion{X: 9, Y: 9, Width: 2, Height: 2}
	require.NoError(t, NoRotationTransferrer{}.Transfer(src, dst, 3, &outside))
}

func BenchmarkTransfer(b *testing.B) {
	src := patterned(120, 120)
	dst := MustPixelBuffer(240, 240)
	transferrer := NoRotationTransferrer{}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = transferrer.Transfer(src, dst, 2, nil)
	}
}
