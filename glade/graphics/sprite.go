package graphics

import (
	"time"

	"github.com/valerio/go-glade/glade/geom"
)

// RegionChanges is what a sprite reports to its screen each frame. Old is
// the rectangle the sprite occupied when it was last drawn, New the
// rectangle it occupies now. A nil New means nothing visible changed.
type RegionChanges struct {
	Old *geom.RenderRegion
	New *geom.RenderRegion
}

// Sprite is a movable entity drawn with the current frame of a texture
// atlas. Positions are continuous; only the truncated integer position is
// used for drawing and region tracking.
type Sprite struct {
	x, y       float64
	velocityX  float64
	velocityY  float64
	zOrder     int
	frame      Frame
	destroyed  bool
	changed    bool
	lastFrame  Frame
	lastRegion geom.RenderRegion
	hasLast    bool
	vacated    bool

	// Activity runs once per update after velocity has been integrated.
	Activity func(s *Sprite)
}

// NewSprite creates a sprite drawn with frame at (x, y).
func NewSprite(frame Frame, x, y float64) *Sprite {
	return &Sprite{frame: frame, x: x, y: y, changed: true}
}

// Position returns the sprite's continuous position.
func (s *Sprite) Position() geom.Vector { return geom.Vector{X: s.x, Y: s.y} }

// SetPosition moves the sprite.
func (s *Sprite) SetPosition(x, y float64) {
	if x != s.x || y != s.y {
		s.changed = true
	}
	s.x, s.y = x, y
}

// Move offsets the sprite position.
func (s *Sprite) Move(dx, dy float64) {
	s.SetPosition(s.x+dx, s.y+dy)
}

// Velocity is expressed in pixels per second.
func (s *Sprite) Velocity() geom.Vector { return geom.Vector{X: s.velocityX, Y: s.velocityY} }

func (s *Sprite) SetVelocity(vx, vy float64) {
	s.velocityX, s.velocityY = vx, vy
}

func (s *Sprite) Frame() Frame { return s.frame }

// SetFrame changes the texture region the sprite is drawn with.
func (s *Sprite) SetFrame(f Frame) {
	if f != s.frame {
		s.changed = true
	}
	s.frame = f
}

// ZOrder is the draw order within a screen. Larger values draw on top.
func (s *Sprite) ZOrder() int { return s.zOrder }

// SetZOrder changes the draw order. Screens pick it up on their next sort.
func (s *Sprite) SetZOrder(z int) { s.zOrder = z }

// Destroy marks the sprite for removal at the next screen update.
func (s *Sprite) Destroy() { s.destroyed = true }

func (s *Sprite) Destroyed() bool { return s.destroyed }

// Bounds is the rectangle the sprite occupies at its current position.
func (s *Sprite) Bounds() geom.RenderRegion {
	return geom.RenderRegion{
		X:      int(s.x),
		Y:      int(s.y),
		Width:  s.frame.Width,
		Height: s.frame.Height,
	}
}

// Update integrates velocity over delta and then runs the activity hook.
func (s *Sprite) Update(delta time.Duration) {
	if s.velocityX != 0 || s.velocityY != 0 {
		seconds := delta.Seconds()
		s.Move(s.velocityX*seconds, s.velocityY*seconds)
	}

	if s.Activity != nil {
		s.Activity(s)
	}
}

// RenderRegionIfChanged reports the sprite's old and new rectangles and
// records the new one as drawn. New is nil when neither the frame nor the
// truncated rectangle changed since the previous call, which covers
// sub-pixel movement.
func (s *Sprite) RenderRegionIfChanged() RegionChanges {
	var changes RegionChanges
	if s.hasLast {
		old := s.lastRegion
		changes.Old = &old
	}

	if !s.changed && s.hasLast {
		return changes
	}
	s.changed = false

	current := s.Bounds()
	if s.hasLast && s.frame == s.lastFrame && current == s.lastRegion {
		return changes
	}

	s.lastRegion = current
	s.lastFrame = s.frame
	s.hasLast = true
	changes.New = &current
	return changes
}

// VacatedRegion returns the rectangle the sprite was last drawn in. It
// yields a region only once, so a destroyed sprite clears its last position
// exactly one time.
func (s *Sprite) VacatedRegion() (geom.RenderRegion, bool) {
	if s.vacated || !s.hasLast {
		return geom.RenderRegion{}, false
	}
	s.vacated = true
	return s.lastRegion, true
}
