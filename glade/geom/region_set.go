package geom

import "slices"

// RegionSet is an ordered set of render regions. Regions are kept sorted by
// Compare and identical rectangles are stored once. Overlapping but unequal
// rectangles are kept as separate entries.
type RegionSet struct {
	regions []RenderRegion
}

// NewRegionSet creates an empty set with room for capacity regions.
func NewRegionSet(capacity int) *RegionSet {
	return &RegionSet{regions: make([]RenderRegion, 0, capacity)}
}

// Add inserts r and reports whether it was not already present. Empty
// regions cover no pixels and are dropped.
func (s *RegionSet) Add(r RenderRegion) bool {
	if r.Empty() {
		return false
	}
	i, found := slices.BinarySearchFunc(s.regions, r, Compare)
	if found {
		return false
	}
	s.regions = slices.Insert(s.regions, i, r)
	return true
}

// AddAll inserts every region of o into s.
func (s *RegionSet) AddAll(o *RegionSet) {
	if o == nil {
		return
	}
	for _, r := range o.regions {
		s.Add(r)
	}
}

// Contains reports whether an identical rectangle is in the set.
func (s *RegionSet) Contains(r RenderRegion) bool {
	_, found := slices.BinarySearchFunc(s.regions, r, Compare)
	return found
}

// Len returns the number of distinct regions.
func (s *RegionSet) Len() int {
	return len(s.regions)
}

// Clear empties the set, keeping its storage.
func (s *RegionSet) Clear() {
	s.regions = s.regions[:0]
}

// Regions returns the regions in ascending order. The slice is owned by the
// set and is only valid until the next mutation.
func (s *RegionSet) Regions() []RenderRegion {
	return s.regions
}

// Bounds returns the bounding box of every region in the set.
func (s *RegionSet) Bounds() (RenderRegion, bool) {
	if len(s.regions) == 0 {
		return RenderRegion{}, false
	}
	bounds := s.regions[0]
	for _, r := range s.regions[1:] {
		bounds = bounds.Union(r)
	}
	return bounds, true
}
