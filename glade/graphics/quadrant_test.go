package graphics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/go-glade/glade/geom"
)

func TestWrapQuadrants_Count(t *testing.T) {
	bounds := geom.Dimensions{Width: 100, Height: 100}

	tests := []struct {
		name  string
		start geom.Point
		size  geom.Dimensions
		want  int
	}{
		{"no wrap", geom.Point{X: 10, Y: 10}, geom.Dimensions{Width: 20, Height: 20}, 1},
		{"origin at zero full size", geom.Point{}, bounds, 1},
		{"horizontal wrap", geom.Point{X: 90, Y: 0}, geom.Dimensions{Width: 20, Height: 20}, 2},
		{"vertical wrap", geom.Point{X: 0, Y: 95}, geom.Dimensions{Width: 20, Height: 20}, 2},
		{"both wrap", geom.Point{X: 95, Y: 95}, geom.Dimensions{Width: 20, Height: 20}, 4},
		{"exactly at edge", geom.Point{X: 80, Y: 80}, geom.Dimensions{Width: 20, Height: 20}, 1},
		{"last column", geom.Point{X: 99, Y: 0}, geom.Dimensions{Width: 100, Height: 1}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, wrapQuadrants(tt.start, tt.size, bounds), tt.want)
		})
	}
}

func TestWrapQuadrants_HorizontalSplit(t *testing.T) {
	qs := wrapQuadrants(geom.Point{X: 90}, geom.Dimensions{Width: 20, Height: 20}, geom.Dimensions{Width: 100, Height: 100})

	assert.Equal(t, []quadrant{
		{Position: geom.Point{X: 90}, Size: geom.Dimensions{Width: 10, Height: 20}},
		{Position: geom.Point{}, Offset: geom.Point{X: 10}, Size: geom.Dimensions{Width: 10, Height: 20}},
	}, qs)
}

// Every cell of the unwrapped rectangle must land exactly once on the
// wrapped position it maps to.
func TestWrapQuadrants_CoverExactlyOnce(t *testing.T) {
	bounds := geom.Dimensions{Width: 7, Height: 5}

	for sx := 0; sx < bounds.Width; sx++ {
		for sy := 0; sy < bounds.Height; sy++ {
			for _, size := range []geom.Dimensions{{Width: 1, Height: 1}, {Width: 3, Height: 4}, bounds} {
				start := geom.Point{X: sx, Y: sy}
				t.Run(fmt.Sprintf("%v %v", start, size), func(t *testing.T) {
					seen := make(map[geom.Point]int)
					for _, q := range wrapQuadrants(start, size, bounds) {
						for dy := 0; dy < q.Size.Height; dy++ {
							for dx := 0; dx < q.Size.Width; dx++ {
								rel := geom.Point{X: q.Offset.X + dx, Y: q.Offset.Y + dy}
								pos := geom.Point{X: q.Position.X + dx, Y: q.Position.Y + dy}

								assert.Equal(t, (start.X+rel.X)%bounds.Width, pos.X)
								assert.Equal(t, (start.Y+rel.Y)%bounds.Height, pos.Y)
								seen[rel]++
							}
						}
					}

					assert.Len(t, seen, size.Width*size.Height)
					for rel, n := range seen {
						assert.Equal(t, 1, n, "cell %v drawn %d times", rel, n)
					}
				})
			}
		}
	}
}
