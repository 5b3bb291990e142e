// Package screen holds the scene graph of a game state: its sprites, sorted
// by z-order, and the set of regions that changed during the last update.
package screen

import (
	"cmp"
	"log/slog"
	"slices"
	"time"

	"github.com/valerio/go-glade/glade/geom"
	"github.com/valerio/go-glade/glade/graphics"
)

// Screen is one game state. Sprites are added and removed through its
// methods; Update advances them and collects the regions that need redraw.
type Screen struct {
	sprites    []*graphics.Sprite
	sortNeeded bool
	regions    *geom.RegionSet
	activity   func(s *Screen, delta time.Duration)
	updating   bool
	updates    uint64

	// sprites being visited by Update, so removals from activities do not
	// shift the walk
	visiting []*graphics.Sprite

	// vacated regions of sprites removed between updates
	pending []geom.RenderRegion
}

// New creates an empty screen.
func New() *Screen {
	return &Screen{regions: geom.NewRegionSet(16)}
}

// SetActivity installs the per-frame game logic hook. It runs once per
// Update, after sprites moved and before regions are collected.
func (s *Screen) SetActivity(fn func(s *Screen, delta time.Duration)) {
	s.activity = fn
}

// AddSprite adds sprite to the scene graph. Adding a sprite twice is a
// no-op. The sprite list is re-sorted at the start of the next Update.
func (s *Screen) AddSprite(sprite *graphics.Sprite) *graphics.Sprite {
	if sprite == nil || slices.Contains(s.sprites, sprite) {
		return sprite
	}

	slog.Debug("Adding sprite to scene graph", "z", sprite.ZOrder())
	s.sprites = append(s.sprites, sprite)
	s.sortNeeded = true
	return sprite
}

// RemoveSprite takes sprite out of the scene graph immediately. The area it
// was last drawn in is reported as modified by the next Update.
func (s *Screen) RemoveSprite(sprite *graphics.Sprite) {
	i := slices.Index(s.sprites, sprite)
	if i < 0 {
		return
	}

	slog.Debug("Removing sprite from scene graph", "z", sprite.ZOrder())
	s.sprites = slices.Delete(s.sprites, i, i+1)
	region, ok := sprite.VacatedRegion()
	switch {
	case !ok:
	case s.updating:
		s.regions.Add(region)
	default:
		s.pending = append(s.pending, region)
	}
}

// RequestSort re-sorts sprites at the next Update, for callers that changed
// a z-order after adding the sprite.
func (s *Screen) RequestSort() { s.sortNeeded = true }

// Sprites returns the live sprites in draw order. The slice is owned by the
// screen and must not be modified.
func (s *Screen) Sprites() []*graphics.Sprite { return s.sprites }

// ModifiedRegions is the set of regions that changed during the last
// Update.
func (s *Screen) ModifiedRegions() *geom.RegionSet { return s.regions }

// Updates counts the calls to Update, so consumers of ModifiedRegions can
// tell a fresh set from one they already handled.
func (s *Screen) Updates() uint64 { return s.updates }

// Update advances the screen by delta.
//
// Destroyed sprites are dropped first and their last rectangle recorded,
// then the remaining sprites move and the activity hook runs. Finally the
// old and new rectangles of every sprite that visibly changed are added to
// the modified regions. Each sprite present when Update starts is advanced
// at most once, even if activities remove other sprites meanwhile.
func (s *Screen) Update(delta time.Duration) {
	s.regions.Clear()
	for _, region := range s.pending {
		s.regions.Add(region)
	}
	s.pending = s.pending[:0]
	s.updates++

	s.updating = true
	defer func() { s.updating = false }()

	if s.sortNeeded {
		slog.Debug("Resorting sprite list", "sprites", len(s.sprites))
		slices.SortStableFunc(s.sprites, func(a, b *graphics.Sprite) int {
			return cmp.Compare(a.ZOrder(), b.ZOrder())
		})
		s.sortNeeded = false
	}

	s.visiting = append(s.visiting[:0], s.sprites...)
	for i := len(s.visiting) - 1; i >= 0; i-- {
		sprite := s.visiting[i]
		idx := slices.Index(s.sprites, sprite)
		if idx < 0 {
			continue
		}
		if !sprite.Destroyed() {
			sprite.Update(delta)
			continue
		}

		s.sprites = slices.Delete(s.sprites, idx, idx+1)
		if region, ok := sprite.VacatedRegion(); ok {
			s.regions.Add(region)
		}
	}
	clear(s.visiting)

	if s.activity != nil {
		s.activity(s, delta)
	}

	for _, sprite := range s.sprites {
		changes := sprite.RenderRegionIfChanged()
		if changes.New == nil {
			continue
		}
		if changes.Old != nil {
			s.regions.Add(*changes.Old)
		}
		s.regions.Add(*changes.New)
	}
}
