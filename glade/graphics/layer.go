package graphics

import (
	"fmt"
	"math"

	"github.com/valerio/go-glade/glade/geom"
	"github.com/valerio/go-glade/glade/video"
)

// shiftEpsilon is the smallest scroll amount that counts as a change.
const shiftEpsilon = 1e-9

// Layer is an independently scrollable pixel surface composited into the
// final frame.
//
// Scrolling never moves pixels. The layer keeps an internal origin that marks
// which buffer pixel is its logical top-left corner; addressing wraps around
// the buffer edges, so every draw and composite is split into at most four
// non-wrapping quadrants.
type Layer struct {
	buffer   *video.PixelBuffer
	textures TextureProvider
	aliased  bool

	internalOrigin   geom.Vector
	cameraOffset     geom.Point
	hasRenderChanges bool

	// BackgroundColor is used by Clear.
	BackgroundColor video.Color

	// TransparentColor is the key color skipped when drawing textures, and
	// when compositing the layer if DrawWithTransparency is set.
	TransparentColor video.Color

	// DrawWithTransparency makes RenderToBuffer skip TransparentColor pixels
	// so lower layers show through. It makes compositing slower, so only
	// enable it on layers that need it.
	DrawWithTransparency bool
}

// DrawOptions tweaks a single DrawTexture call.
type DrawOptions struct {
	// IgnoreTransparency copies every pixel, including the transparent key.
	IgnoreTransparency bool

	// SkipChangeTracking leaves the layer's changed flag alone. The sprite
	// layer uses it because sprite changes are tracked per sprite.
	SkipChangeTracking bool
}

// NewLayer creates a layer backed by a freshly allocated buffer.
func NewLayer(dims geom.Dimensions, textures TextureProvider) (*Layer, error) {
	buffer, err := video.NewPixelBuffer(dims.Width, dims.Height)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate layer: %w", err)
	}

	return newLayer(buffer, textures, false), nil
}

// NewLayerFromBuffer creates a layer that draws straight into an existing
// buffer it does not own. The renderer uses it for the sprite layer, which
// aliases the composite buffer.
func NewLayerFromBuffer(buffer *video.PixelBuffer, textures TextureProvider) *Layer {
	return newLayer(buffer, textures, true)
}

func newLayer(buffer *video.PixelBuffer, textures TextureProvider, aliased bool) *Layer {
	return &Layer{
		buffer:           buffer,
		textures:         textures,
		aliased:          aliased,
		BackgroundColor:  video.Black,
		TransparentColor: video.Magenta,
	}
}

func (l *Layer) Width() int  { return l.buffer.Width() }
func (l *Layer) Height() int { return l.buffer.Height() }

// Buffer returns the layer's storage.
func (l *Layer) Buffer() *video.PixelBuffer { return l.buffer }

// Aliased reports whether the layer draws into a buffer it does not own.
func (l *Layer) Aliased() bool { return l.aliased }

// CameraOffset is where the layer's top-left corner sits on the target.
func (l *Layer) CameraOffset() geom.Point { return l.cameraOffset }

// SetCameraOffset moves the layer relative to the camera.
func (l *Layer) SetCameraOffset(p geom.Point) {
	if p != l.cameraOffset {
		l.hasRenderChanges = true
	}
	l.cameraOffset = p
}

// Origin returns the internal scroll origin, always within
// [0,Width) x [0,Height).
func (l *Layer) Origin() geom.Vector { return l.internalOrigin }

// HasRenderChanges reports whether the layer changed since it was last
// rendered.
func (l *Layer) HasRenderChanges() bool { return l.hasRenderChanges }

// MarkChanged forces the next RenderToBuffer to report the layer as changed.
func (l *Layer) MarkChanged() { l.hasRenderChanges = true }

// Clear fills the whole buffer with the background color.
func (l *Layer) Clear() {
	l.buffer.Fill(l.BackgroundColor)
	l.hasRenderChanges = true
}

// DrawFrame draws the texture region described by frame with its top-left
// corner at topLeftOnLayer.
func (l *Layer) DrawFrame(frame Frame, topLeftOnLayer geom.Point, opts DrawOptions) error {
	if l.textures == nil {
		return fmt.Errorf("layer has no texture provider to draw %q", frame.TextureName)
	}

	texture, err := l.textures.Texture(frame.TextureName)
	if err != nil {
		return fmt.Errorf("failed to draw frame: %w", err)
	}

	l.DrawTexture(texture, frame.Origin(), topLeftOnLayer, frame.Size(), opts)
	return nil
}

// DrawTexture copies size pixels from texture, starting at topLeftOnTexture,
// onto the layer at topLeftOnLayer in layer coordinates. The rectangle is
// clipped to the layer and to the texture; a rectangle that ends up empty is
// a no-op.
func (l *Layer) DrawTexture(texture *video.PixelBuffer, topLeftOnTexture, topLeftOnLayer geom.Point, size geom.Dimensions, opts DrawOptions) {
	if texture == nil {
		return
	}

	src, dst, size, ok := video.ClipCopy(topLeftOnTexture, topLeftOnLayer, size, texture.Dimensions(), l.buffer.Dimensions())
	if !ok {
		return
	}

	start := geom.Point{
		X: (dst.X + int(l.internalOrigin.X)) % l.buffer.Width(),
		Y: (dst.Y + int(l.internalOrigin.Y)) % l.buffer.Height(),
	}

	for _, q := range wrapQuadrants(start, size, l.buffer.Dimensions()) {
		video.Blit(video.DrawOperation{
			Source:           texture,
			Target:           l.buffer,
			SourceOrigin:     src.Add(q.Offset),
			TargetOrigin:     q.Position,
			Size:             q.Size,
			UseTransparency:  !opts.IgnoreTransparency,
			TransparentColor: l.TransparentColor,
		})
	}

	if !opts.SkipChangeTracking {
		l.hasRenderChanges = true
	}
}

// Shift scrolls the visible contents by delta pixels, wrapping whatever
// leaves one edge onto the opposite edge. It only moves the internal origin,
// so it costs the same regardless of the layer size.
func (l *Layer) Shift(delta geom.Vector) {
	l.internalOrigin.X = wrap(l.internalOrigin.X-delta.X, float64(l.buffer.Width()))
	l.internalOrigin.Y = wrap(l.internalOrigin.Y-delta.Y, float64(l.buffer.Height()))

	if math.Abs(delta.X) > shiftEpsilon || math.Abs(delta.Y) > shiftEpsilon {
		l.hasRenderChanges = true
	}
}

// wrap normalizes v into [0, size).
func wrap(v, size float64) float64 {
	v = math.Mod(v, size)
	if v < 0 {
		v += size
	}
	// v+size can round up to size for tiny negative v
	if v >= size {
		v = 0
	}
	return v
}

// RenderToBuffer composites the layer onto target with its top-left corner
// at the camera offset.
//
// It returns false when the layer is the target itself (the aliased sprite
// layer) or lies completely outside it. A layer without changes is still
// drawn, so transparent content above it composites correctly, but reports
// no region. Otherwise the visible part of the layer is returned and the
// changed flag is reset.
func (l *Layer) RenderToBuffer(target *video.PixelBuffer) (geom.RenderRegion, bool) {
	if target == l.buffer {
		return geom.RenderRegion{}, false
	}

	footprint := geom.RenderRegion{
		X:      l.cameraOffset.X,
		Y:      l.cameraOffset.Y,
		Width:  l.buffer.Width(),
		Height: l.buffer.Height(),
	}
	visible, ok := footprint.Intersect(target.Rect())
	if !ok {
		return geom.RenderRegion{}, false
	}

	origin := geom.Point{X: int(l.internalOrigin.X), Y: int(l.internalOrigin.Y)}
	for _, q := range wrapQuadrants(origin, l.buffer.Dimensions(), l.buffer.Dimensions()) {
		video.Blit(video.DrawOperation{
			Source:           l.buffer,
			Target:           target,
			SourceOrigin:     q.Position,
			TargetOrigin:     l.cameraOffset.Add(q.Offset),
			Size:             q.Size,
			UseTransparency:  l.DrawWithTransparency,
			TransparentColor: l.TransparentColor,
		})
	}

	if !l.hasRenderChanges {
		return geom.RenderRegion{}, false
	}

	l.hasRenderChanges = false
	return visible, true
}
