// Package render composites layers and sprites into a single frame and
// pushes the parts that changed to a display sink.
package render

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/valerio/go-glade/glade/debug"
	"github.com/valerio/go-glade/glade/geom"
	"github.com/valerio/go-glade/glade/graphics"
	"github.com/valerio/go-glade/glade/screen"
	"github.com/valerio/go-glade/glade/video"
)

// DefaultMaxSections is how many separate rectangles a frame may push
// before they are merged into their bounding box.
const DefaultMaxSections = 32

// Options configures a Renderer.
type Options struct {
	// Scale is the integer upscaling factor from the composite buffer to the
	// sink buffer. Zero means 1.
	Scale int

	// MaxSections caps the number of WriteSection calls per frame. Zero
	// means DefaultMaxSections.
	MaxSections int

	// BackgroundColor fills the composite where no layer draws.
	BackgroundColor video.Color

	// SpriteLayerZ is the z-index sprites are drawn at. Layers below it are
	// covered by sprites, layers at or above it cover sprites. Nil draws
	// sprites above every layer.
	SpriteLayerZ *int

	Transferrer video.Transferrer
	Profiler    *debug.Profiler
}

type compositeTarget struct {
	buffer  *video.PixelBuffer
	regions *geom.RegionSet
}

// Renderer owns the composite buffer and the sprite layer that aliases it.
type Renderer struct {
	sink        Sink
	composite   *video.PixelBuffer
	spriteLayer *graphics.Layer
	layers      *LayerManager
	transferrer video.Transferrer
	profiler    *debug.Profiler

	scale       int
	maxSections int
	spriteZ     *int
	background  video.Color

	regions    *geom.RegionSet
	fullRedraw bool
	lastPushed []geom.RenderRegion

	// screen update whose regions were last pushed
	shown        *screen.Screen
	shownUpdates uint64
}

// NewRenderer creates a renderer for sink. The sink buffer dimensions must
// be an exact multiple of the scale.
func NewRenderer(sink Sink, textures graphics.TextureProvider, opts Options) (*Renderer, error) {
	if sink == nil || sink.Buffer() == nil {
		return nil, errors.New("renderer needs a sink with a buffer")
	}

	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}
	if scale < 0 {
		return nil, fmt.Errorf("%w: %d", video.ErrInvalidScale, scale)
	}

	device := sink.Buffer()
	if device.Width()%scale != 0 || device.Height()%scale != 0 {
		return nil, fmt.Errorf("%w: %dx%d display is not a multiple of scale %d",
			video.ErrDimensionMismatch, device.Width(), device.Height(), scale)
	}

	composite, err := video.NewPixelBuffer(device.Width()/scale, device.Height()/scale)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate composite buffer: %w", err)
	}

	r := &Renderer{
		sink:        sink,
		composite:   composite,
		spriteLayer: graphics.NewLayerFromBuffer(composite, textures),
		layers:      NewLayerManager(textures),
		transferrer: opts.Transferrer,
		profiler:    opts.Profiler,
		scale:       scale,
		maxSections: opts.MaxSections,
		spriteZ:     opts.SpriteLayerZ,
		background:  opts.BackgroundColor,
		regions:     geom.NewRegionSet(DefaultMaxSections),
		fullRedraw:  true,
	}
	if r.transferrer == nil {
		r.transferrer = video.NoRotationTransferrer{}
	}
	if r.maxSections <= 0 {
		r.maxSections = DefaultMaxSections
	}

	slog.Debug("Renderer created",
		"composite", fmt.Sprintf("%dx%d", composite.Width(), composite.Height()),
		"scale", scale)
	return r, nil
}

// Layers gives access to the background and foreground layers.
func (r *Renderer) Layers() *LayerManager { return r.layers }

// Composite is the unscaled frame buffer.
func (r *Renderer) Composite() *video.PixelBuffer { return r.composite }

// Scale is the composite to display upscaling factor.
func (r *Renderer) Scale() int { return r.scale }

// Size is the composite size, i.e. the size of the game world on screen.
func (r *Renderer) Size() geom.Dimensions { return r.composite.Dimensions() }

// ForceFullRedraw pushes the whole frame on the next Render, e.g. after a
// screen change.
func (r *Renderer) ForceFullRedraw() { r.fullRedraw = true }

// LastPushed returns the composite-space regions sent to the sink by the
// last Render. The slice is reused by the next Render.
func (r *Renderer) LastPushed() []geom.RenderRegion { return r.lastPushed }

// Render composites the layers and the sprites of scr, then pushes every
// changed region to the sink. A nil screen renders the layers only. The
// regions of a screen update are pushed once; rendering again without an
// Update in between only pushes layer changes.
func (r *Renderer) Render(scr *screen.Screen) error {
	r.profiler.Start("render")
	defer r.profiler.Stop("render")

	r.regions.Clear()
	if scr != nil && (scr != r.shown || scr.Updates() != r.shownUpdates) {
		r.regions.AddAll(scr.ModifiedRegions())
		r.shown, r.shownUpdates = scr, scr.Updates()
	}

	full := r.fullRedraw
	if full {
		r.layers.markAllChanged()
	}

	r.profiler.Start("composite")
	r.composite.Fill(r.background)
	target := compositeTarget{buffer: r.composite, regions: r.regions}
	var err error
	if r.spriteZ == nil {
		r.layers.renderFrom(math.MinInt, target)
		err = r.drawSprites(scr)
	} else {
		r.layers.renderBelow(*r.spriteZ, target)
		err = r.drawSprites(scr)
		r.layers.renderFrom(*r.spriteZ, target)
	}
	r.profiler.Stop("composite")
	if err != nil {
		return err
	}

	if full {
		r.regions.Clear()
		r.regions.Add(r.composite.Rect())
		r.fullRedraw = false
	}

	return r.push()
}

func (r *Renderer) drawSprites(scr *screen.Screen) error {
	if scr == nil {
		return nil
	}

	for _, s := range scr.Sprites() {
		if s.Destroyed() {
			continue
		}
		b := s.Bounds()
		err := r.spriteLayer.DrawFrame(s.Frame(), geom.Point{X: b.X, Y: b.Y}, graphics.DrawOptions{SkipChangeTracking: true})
		if err != nil {
			return fmt.Errorf("failed to draw sprite: %w", err)
		}
	}
	return nil
}

// SpriteLayer exposes the layer sprites are drawn on, mainly to change its
// transparent key color.
func (r *Renderer) SpriteLayer() *graphics.Layer { return r.spriteLayer }

func (r *Renderer) push() error {
	r.lastPushed = r.lastPushed[:0]
	if r.regions.Len() == 0 {
		return nil
	}

	sections := r.regions.Regions()
	if len(sections) > r.maxSections {
		bounds, _ := r.regions.Bounds()
		slog.Debug("Collapsing changed regions", "regions", len(sections), "bounds", bounds)
		sections = []geom.RenderRegion{bounds}
	}

	r.profiler.Start("transfer")
	defer r.profiler.Stop("transfer")

	device := r.sink.Buffer()
	for _, region := range sections {
		visible, ok := region.Intersect(r.composite.Rect())
		if !ok {
			continue
		}

		if err := r.transferrer.Transfer(r.composite, device, r.scale, &visible); err != nil {
			return fmt.Errorf("failed to transfer region %v: %w", visible, err)
		}

		scaled := visible.Scale(r.scale)
		if err := r.sink.WriteSection(scaled.X, scaled.Y, scaled.Right(), scaled.Bottom()); err != nil {
			return fmt.Errorf("failed to write section %v: %w", scaled, err)
		}
		r.lastPushed = append(r.lastPushed, visible)
	}
	return nil
}
