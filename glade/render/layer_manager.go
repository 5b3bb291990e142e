package render

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/valerio/go-glade/glade/geom"
	"github.com/valerio/go-glade/glade/graphics"
)

var (
	ErrLayerExists   = errors.New("a layer already uses this z-index")
	ErrLayerNotFound = errors.New("no layer at this z-index")
)

type zLayer struct {
	z     int
	layer *graphics.Layer
}

// LayerManager keeps the background and foreground layers of a renderer,
// ordered by z-index. Lower z-indexes are composited first.
type LayerManager struct {
	layers   []zLayer
	textures graphics.TextureProvider
}

// NewLayerManager creates an empty manager whose layers draw from textures.
func NewLayerManager(textures graphics.TextureProvider) *LayerManager {
	return &LayerManager{textures: textures}
}

// Create allocates a layer of the given size at z.
func (m *LayerManager) Create(z int, dims geom.Dimensions) (*graphics.Layer, error) {
	if _, ok := m.Layer(z); ok {
		return nil, fmt.Errorf("%w: %d", ErrLayerExists, z)
	}

	layer, err := graphics.NewLayer(dims, m.textures)
	if err != nil {
		return nil, err
	}

	return layer, m.Add(z, layer)
}

// Add places an existing layer at z. Each z-index holds a single layer.
func (m *LayerManager) Add(z int, layer *graphics.Layer) error {
	i, found := m.search(z)
	if found {
		return fmt.Errorf("%w: %d", ErrLayerExists, z)
	}

	slog.Debug("Adding layer", "z", z, "width", layer.Width(), "height", layer.Height())
	m.layers = slices.Insert(m.layers, i, zLayer{z: z, layer: layer})
	return nil
}

// Remove takes the layer at z out of the manager.
func (m *LayerManager) Remove(z int) error {
	i, found := m.search(z)
	if !found {
		return fmt.Errorf("%w: %d", ErrLayerNotFound, z)
	}

	slog.Debug("Removing layer", "z", z)
	m.layers = slices.Delete(m.layers, i, i+1)
	return nil
}

// Layer returns the layer at z.
func (m *LayerManager) Layer(z int) (*graphics.Layer, bool) {
	if i, found := m.search(z); found {
		return m.layers[i].layer, true
	}
	return nil, false
}

// Len is the number of managed layers.
func (m *LayerManager) Len() int { return len(m.layers) }

// Clear removes every layer.
func (m *LayerManager) Clear() { m.layers = m.layers[:0] }

// ZIndexes lists the occupied z-indexes in ascending order.
func (m *LayerManager) ZIndexes() []int {
	out := make([]int, len(m.layers))
	for i, l := range m.layers {
		out[i] = l.z
	}
	return out
}

// markAllChanged forces every layer to report its region on the next
// render.
func (m *LayerManager) markAllChanged() {
	for _, l := range m.layers {
		l.layer.MarkChanged()
	}
}

// renderBelow composites the layers with z < to onto the target.
func (m *LayerManager) renderBelow(to int, target compositeTarget) {
	for _, l := range m.layers {
		if l.z >= to {
			break
		}
		m.renderLayer(l, target)
	}
}

// renderFrom composites the layers with z >= from onto the target.
func (m *LayerManager) renderFrom(from int, target compositeTarget) {
	for _, l := range m.layers {
		if l.z < from {
			continue
		}
		m.renderLayer(l, target)
	}
}

func (m *LayerManager) renderLayer(l zLayer, target compositeTarget) {
	if region, ok := l.layer.RenderToBuffer(target.buffer); ok {
		target.regions.Add(region)
	}
}

func (m *LayerManager) search(z int) (int, bool) {
	return slices.BinarySearchFunc(m.layers, z, func(l zLayer, z int) int {
		return cmp.Compare(l.z, z)
	})
}
