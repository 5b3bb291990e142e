package graphics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-glade/glade/geom"
)

var testFrame = NewFrame("atlas", 0, 0, 8, 6)

func TestSprite_FirstQueryReportsNewOnly(t *testing.T) {
	s := NewSprite(testFrame, 10.9, 3.2)

	changes := s.RenderRegionIfChanged()

	assert.Nil(t, changes.Old)
	require.NotNil(t, changes.New)
	assert.Equal(t, geom.RenderRegion{X: 10, Y: 3, Width: 8, Height: 6}, *changes.New)
}

func TestSprite_ZeroValue(t *testing.T) {
	var s Sprite
	s.SetFrame(testFrame)

	changes := s.RenderRegionIfChanged()
	require.NotNil(t, changes.New)
	assert.Nil(t, changes.Old)
}

func TestSprite_StationaryIsSuppressed(t *testing.T) {
	s := NewSprite(testFrame, 5, 5)
	s.RenderRegionIfChanged()

	for i := 0; i < 5; i++ {
		s.Update(16 * time.Millisecond)
		changes := s.RenderRegionIfChanged()

		assert.Nil(t, changes.New, "update %d", i+2)
		require.NotNil(t, changes.Old)
		assert.Equal(t, geom.RenderRegion{X: 5, Y: 5, Width: 8, Height: 6}, *changes.Old)
	}
}

func TestSprite_SubPixelMoveIsSuppressed(t *testing.T) {
	s := NewSprite(testFrame, 5, 5)
	s.RenderRegionIfChanged()

	s.SetPosition(5.4, 5.9)
	assert.Nil(t, s.RenderRegionIfChanged().New)

	s.Move(0.5, 0)
	assert.Nil(t, s.RenderRegionIfChanged().New)
}

func TestSprite_WholePixelMoveReportsBoth(t *testing.T) {
	s := NewSprite(testFrame, 5, 5)
	s.RenderRegionIfChanged()

	s.Move(1, 0)
	changes := s.RenderRegionIfChanged()

	require.NotNil(t, changes.Old)
	require.NotNil(t, changes.New)
	assert.NotEqual(t, *changes.Old, *changes.New)
	assert.Equal(t, geom.RenderRegion{X: 5, Y: 5, Width: 8, Height: 6}, *changes.Old)
	assert.Equal(t, geom.RenderRegion{X: 6, Y: 5, Width: 8, Height: 6}, *changes.New)

	// the next query compares against the new rectangle
	assert.Nil(t, s.RenderRegionIfChanged().New)
}

func TestSprite_FrameChangeReportsSameRect(t *testing.T) {
	s := NewSprite(testFrame, 0, 0)
	s.RenderRegionIfChanged()

	s.SetFrame(NewFrame("atlas", 8, 0, 8, 6))
	changes := s.RenderRegionIfChanged()

	require.NotNil(t, changes.New)
	assert.Equal(t, *changes.Old, *changes.New)

	s.SetFrame(NewFrame("atlas", 8, 0, 8, 6))
	assert.Nil(t, s.RenderRegionIfChanged().New)
}

func TestSprite_UpdateIntegratesVelocity(t *testing.T) {
	s := NewSprite(testFrame, 0, 10)
	s.SetVelocity(60, -20)

	s.Update(500 * time.Millisecond)

	assert.InDelta(t, 30, s.Position().X, 1e-9)
	assert.InDelta(t, 0, s.Position().Y, 1e-9)
	assert.Equal(t, geom.Vector{X: 60, Y: -20}, s.Velocity())
}

func TestSprite_UpdateRunsActivityAfterMovement(t *testing.T) {
	s := NewSprite(testFrame, 0, 0)
	s.SetVelocity(10, 0)

	var seen geom.Vector
	calls := 0
	s.Activity = func(sp *Sprite) {
		calls++
		seen = sp.Position()
	}

	s.Update(time.Second)

	assert.Equal(t, 1, calls)
	assert.Equal(t, geom.Vector{X: 10}, seen)
}

func TestSprite_VacatedRegionOnce(t *testing.T) {
	s := NewSprite(testFrame, 2, 3)

	_, ok := s.VacatedRegion()
	assert.False(t, ok, "never drawn")

	s.RenderRegionIfChanged()
	s.Destroy()
	assert.True(t, s.Destroyed())

	region, ok := s.VacatedRegion()
	require.True(t, ok)
	assert.Equal(t, geom.RenderRegion{X: 2, Y: 3, Width: 8, Height: 6}, region)

	_, ok = s.VacatedRegion()
	assert.False(t, ok)
}

func TestSprite_ZOrder(t *testing.T) {
	s := NewSprite(testFrame, 0, 0)
	s.SetZOrder(3)
	assert.Equal(t, 3, s.ZOrder())
}
