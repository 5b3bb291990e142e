// Package geom holds the integer geometry shared by the compositor: points,
// sizes and the axis-aligned rectangles used for dirty-region tracking.
package geom

import (
	"cmp"
	"fmt"
)

// Point is an integer position in buffer space.
type Point struct {
	X, Y int
}

// Add returns p translated by o.
func (p Point) Add(o Point) Point {
	return Point{X: p.X + o.X, Y: p.Y + o.Y}
}

// Vector is a fractional 2D offset. Layers keep their scroll state as a Vector
// so sub-pixel scrolling accumulates until it crosses a whole pixel.
type Vector struct {
	X, Y float64
}

// Dimensions is a width/height pair.
type Dimensions struct {
	Width, Height int
}

// RenderRegion is an axis-aligned rectangle in target-buffer coordinates.
type RenderRegion struct {
	X, Y          int
	Width, Height int
}

// Empty reports whether the region covers no pixels.
func (r RenderRegion) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Right is the exclusive right edge.
func (r RenderRegion) Right() int { return r.X + r.Width }

// Bottom is the exclusive bottom edge.
func (r RenderRegion) Bottom() int { return r.Y + r.Height }

// Area returns the number of pixels covered by the region.
func (r RenderRegion) Area() int {
	if r.Empty() {
		return 0
	}
	return r.Width * r.Height
}

// Contains reports whether the pixel at (x, y) lies inside the region.
func (r RenderRegion) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Intersect returns the overlap of r and o. The boolean is false when the two
// regions do not share a single pixel.
func (r RenderRegion) Intersect(o RenderRegion) (RenderRegion, bool) {
	x0 := max(r.X, o.X)
	y0 := max(r.Y, o.Y)
	x1 := min(r.Right(), o.Right())
	y1 := min(r.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return RenderRegion{}, false
	}
	return RenderRegion{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, true
}

// Union returns the smallest region containing both r and o. Empty inputs are
// ignored.
func (r RenderRegion) Union(o RenderRegion) RenderRegion {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	x0 := min(r.X, o.X)
	y0 := min(r.Y, o.Y)
	x1 := max(r.Right(), o.Right())
	y1 := max(r.Bottom(), o.Bottom())
	return RenderRegion{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Scale multiplies every coordinate by factor, mapping a region from the
// composite buffer onto an upscaled device buffer.
func (r RenderRegion) Scale(factor int) RenderRegion {
	return RenderRegion{
		X:      r.X * factor,
		Y:      r.Y * factor,
		Width:  r.Width * factor,
		Height: r.Height * factor,
	}
}

func (r RenderRegion) String() string {
	return fmt.Sprintf("(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// Compare orders regions by x, then y, then width, then height.
func Compare(a, b RenderRegion) int {
	if c := cmp.Compare(a.X, b.X); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Y, b.Y); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Width, b.Width); c != 0 {
		return c
	}
	return cmp.Compare(a.Height, b.Height)
}
