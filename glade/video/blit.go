package video

import "github.com/valerio/go-glade/glade/geom"

// DrawOperation describes a rectangular pixel copy between two buffers.
type DrawOperation struct {
	Source       *PixelBuffer
	Target       *PixelBuffer
	SourceOrigin geom.Point
	TargetOrigin geom.Point
	Size         geom.Dimensions

	// When UseTransparency is set, source pixels equal to TransparentColor
	// leave the target untouched.
	UseTransparency  bool
	TransparentColor Color
}

// Blit executes op. The rectangle is clipped against both buffers first, so
// callers may pass rectangles that hang off either edge; whatever remains
// outside is skipped and never wraps into a neighbouring row.
func Blit(op DrawOperation) {
	src, dst, size, ok := clipOperation(op)
	if !ok {
		return
	}

	source := op.Source.pix
	target := op.Target.pix
	srcStride := op.Source.Stride()
	dstStride := op.Target.Stride()
	rowBytes := size.Width * BytesPerPixel
	s := op.Source.Offset(src.X, src.Y)
	d := op.Target.Offset(dst.X, dst.Y)

	if !op.UseTransparency {
		for row := 0; row < size.Height; row++ {
			copy(target[d:d+rowBytes], source[s:s+rowBytes])
			s += srcStride
			d += dstStride
		}
		return
	}

	hi, lo := op.TransparentColor.Hi(), op.TransparentColor.Lo()
	for row := 0; row < size.Height; row++ {
		si, di := s, d
		end := s + rowBytes
		for ; si < end; si, di = si+BytesPerPixel, di+BytesPerPixel {
			h, l := source[si], source[si+1]
			if h == hi && l == lo {
				continue
			}
			target[di] = h
			target[di+1] = l
		}
		s += srcStride
		d += dstStride
	}
}

// clipOperation shrinks the operation so it reads only inside the source and
// writes only inside the target.
func clipOperation(op DrawOperation) (src, dst geom.Point, size geom.Dimensions, ok bool) {
	if op.Source == nil || op.Target == nil {
		return src, dst, size, false
	}
	return ClipCopy(op.SourceOrigin, op.TargetOrigin, op.Size, op.Source.Dimensions(), op.Target.Dimensions())
}

// ClipCopy clips a copy of size pixels from src on a surface of srcDims to
// dst on a surface of dstDims. Both corners move together, so the clipped
// copy reads and writes the same pixels the unclipped one would have. ok is
// false when nothing is left to copy.
func ClipCopy(src, dst geom.Point, size, srcDims, dstDims geom.Dimensions) (geom.Point, geom.Point, geom.Dimensions, bool) {
	src.X, dst.X, size.Width = clipAxis(src.X, dst.X, size.Width, srcDims.Width, dstDims.Width)
	src.Y, dst.Y, size.Height = clipAxis(src.Y, dst.Y, size.Height, srcDims.Height, dstDims.Height)
	return src, dst, size, size.Width > 0 && size.Height > 0
}

// clipAxis clips a one-dimensional span [start, start+length) against a
// source of length srcLen and a target of length dstLen.
func clipAxis(srcStart, dstStart, length, srcLen, dstLen int) (int, int, int) {
	if lead := max(-srcStart, -dstStart, 0); lead > 0 {
		srcStart += lead
		dstStart += lead
		length -= lead
	}
	length = min(length, srcLen-srcStart, dstLen-dstStart)
	return srcStart, dstStart, length
}
