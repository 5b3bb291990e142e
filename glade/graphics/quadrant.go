package graphics

import "github.com/valerio/go-glade/glade/geom"

// quadrant is one non-wrapping piece of a rectangle drawn on a toroidal
// buffer. Position is where the piece lives in the buffer; Offset is where
// the piece starts relative to the unwrapped rectangle's top-left corner.
type quadrant struct {
	Position geom.Point
	Offset   geom.Point
	Size     geom.Dimensions
}

// wrapQuadrants splits the rectangle starting at start (already inside
// bounds) with the given size, at most bounds in each axis, into the pieces
// that land on a buffer of size bounds whose edges wrap around.
//
// Pieces come back in draw order: bottom-right of the start point, then
// bottom-left (wrapped horizontally), top-right (wrapped vertically) and
// top-left (wrapped both ways). Empty pieces are omitted.
func wrapQuadrants(start geom.Point, size, bounds geom.Dimensions) []quadrant {
	rightWidth := min(size.Width, bounds.Width-start.X)
	leftWidth := size.Width - rightWidth
	lowerHeight := min(size.Height, bounds.Height-start.Y)
	upperHeight := size.Height - lowerHeight

	candidates := [4]quadrant{
		{
			Position: start,
			Size:     geom.Dimensions{Width: rightWidth, Height: lowerHeight},
		},
		{
			Position: geom.Point{X: 0, Y: start.Y},
			Offset:   geom.Point{X: rightWidth},
			Size:     geom.Dimensions{Width: leftWidth, Height: lowerHeight},
		},
		{
			Position: geom.Point{X: start.X, Y: 0},
			Offset:   geom.Point{Y: lowerHeight},
			Size:     geom.Dimensions{Width: rightWidth, Height: upperHeight},
		},
		{
			Position: geom.Point{},
			Offset:   geom.Point{X: rightWidth, Y: lowerHeight},
			Size:     geom.Dimensions{Width: leftWidth, Height: upperHeight},
		},
	}

	quadrants := make([]quadrant, 0, len(candidates))
	for _, q := range candidates {
		if q.Size.Width > 0 && q.Size.Height > 0 {
			quadrants = append(quadrants, q)
		}
	}
	return quadrants
}
