package video

import (
	"errors"
	"fmt"

	"github.com/valerio/go-glade/glade/geom"
)

var (
	// ErrDimensionMismatch is returned when a target is not exactly the
	// source scaled by the requested factor.
	ErrDimensionMismatch = errors.New("video: source and target dimensions are incompatible")

	// ErrInvalidScale is returned for scale factors below 1.
	ErrInvalidScale = errors.New("video: scale must be at least 1")
)

// Transferrer copies a composited buffer into a device buffer.
type Transferrer interface {
	// Transfer copies source into target, upscaling by scale. When region is
	// non-nil only that part of the source (in source coordinates) is copied.
	Transfer(source, target *PixelBuffer, scale int, region *geom.RenderRegion) error
}

// NoRotationTransferrer performs nearest-neighbor integer upscaling with no
// rotation: every source pixel becomes a scale x scale block.
type NoRotationTransferrer struct{}

var _ Transferrer = NoRotationTransferrer{}

func (NoRotationTransferrer) Transfer(source, target *PixelBuffer, scale int, region *geom.RenderRegion) error {
	if scale < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidScale, scale)
	}
	if source.width*scale != target.width || source.height*scale != target.height {
		return fmt.Errorf("%w: %dx%d at scale %d vs %dx%d", ErrDimensionMismatch,
			source.width, source.height, scale, target.width, target.height)
	}

	area := source.Rect()
	if region != nil {
		clipped, ok := region.Intersect(area)
		if !ok {
			return nil
		}
		area = clipped
	}

	transferArea(source, target, scale, area)
	return nil
}

// transferArea replicates each source pixel scale times across one target
// row, then copies that finished row scale-1 times downwards instead of
// recomputing it.
func transferArea(source, target *PixelBuffer, scale int, area geom.RenderRegion) {
	src := source.pix
	dst := target.pix
	srcStride := source.Stride()
	dstStride := target.Stride()
	srcRowBytes := area.Width * BytesPerPixel
	dstRowBytes := srcRowBytes * scale

	for row := area.Y; row < area.Bottom(); row++ {
		s := row*srcStride + area.X*BytesPerPixel
		end := s + srcRowBytes
		rowStart := row*scale*dstStride + area.X*scale*BytesPerPixel

		if scale == 1 {
			copy(dst[rowStart:rowStart+dstRowBytes], src[s:end])
			continue
		}

		d := rowStart
		for ; s < end; s += BytesPerPixel {
			hi, lo := src[s], src[s+1]
			for i := 0; i < scale; i++ {
				dst[d] = hi
				dst[d+1] = lo
				d += BytesPerPixel
			}
		}

		line := dst[rowStart : rowStart+dstRowBytes]
		for sy := 1; sy < scale; sy++ {
			o := rowStart + sy*dstStride
			copy(dst[o:o+dstRowBytes], line)
		}
	}
}
