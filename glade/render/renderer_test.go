package render

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-glade/glade/geom"
	"github.com/valerio/go-glade/glade/graphics"
	"github.com/valerio/go-glade/glade/screen"
	"github.com/valerio/go-glade/glade/video"
)

type section struct{ left, top, right, bottom int }

type fakeSink struct {
	buffer   *video.PixelBuffer
	sections []section
	err      error
}

func newFakeSink(w, h int) *fakeSink {
	return &fakeSink{buffer: video.MustPixelBuffer(w, h)}
}

func (s *fakeSink) Buffer() *video.PixelBuffer { return s.buffer }

func (s *fakeSink) WriteSection(left, top, right, bottom int) error {
	s.sections = append(s.sections, section{left, top, right, bottom})
	return s.err
}

func (s *fakeSink) reset() { s.sections = nil }

type textures map[string]*video.PixelBuffer

func (m textures) Texture(name string) (*video.PixelBuffer, error) {
	if tex, ok := m[name]; ok {
		return tex, nil
	}
	return nil, errors.New("missing texture " + name)
}

func solid(w, h int, c video.Color) *video.PixelBuffer {
	b := video.MustPixelBuffer(w, h)
	b.Fill(c)
	return b
}

func newTestRenderer(t *testing.T, sink *fakeSink, tex textures, opts Options) *Renderer {
	t.Helper()
	r, err := NewRenderer(sink, tex, opts)
	require.NoError(t, err)
	return r
}

func TestNewRenderer_Validation(t *testing.T) {
	_, err := NewRenderer(newFakeSink(30, 20), nil, Options{Scale: 4})
	assert.ErrorIs(t, err, video.ErrDimensionMismatch)

	_, err = NewRenderer(newFakeSink(30, 20), nil, Options{Scale: -1})
	assert.ErrorIs(t, err, video.ErrInvalidScale)

	_, err = NewRenderer(nil, nil, Options{})
	assert.Error(t, err)

	r, err := NewRenderer(newFakeSink(30, 20), nil, Options{Scale: 2})
	require.NoError(t, err)
	assert.Equal(t, geom.Dimensions{Width: 15, Height: 10}, r.Size())
	assert.Equal(t, 2, r.Scale())
}

func TestRenderer_FirstFrameIsFullRedraw(t *testing.T) {
	sink := newFakeSink(16, 8)
	r := newTestRenderer(t, sink, nil, Options{Scale: 2, BackgroundColor: video.Blue})

	require.NoError(t, r.Render(screen.New()))

	assert.Equal(t, []section{{0, 0, 16, 8}}, sink.sections)
	assert.Equal(t, video.Blue, sink.buffer.PixelAt(15, 7))
	assert.Equal(t, []geom.RenderRegion{{Width: 8, Height: 4}}, r.LastPushed())

	sink.reset()
	require.NoError(t, r.Render(screen.New()))
	assert.Empty(t, sink.sections, "nothing changed")

	r.ForceFullRedraw()
	require.NoError(t, r.Render(nil))
	assert.Equal(t, []section{{0, 0, 16, 8}}, sink.sections)
}

func TestRenderer_SpriteMovePushesOldAndNew(t *testing.T) {
	sink := newFakeSink(40, 40)
	tex := textures{"atlas": solid(4, 4, video.Red)}
	r := newTestRenderer(t, sink, tex, Options{Scale: 2})

	scr := screen.New()
	sp := scr.AddSprite(graphics.NewSprite(graphics.NewFrame("atlas", 0, 0, 4, 4), 2, 2))
	scr.Update(time.Millisecond)
	require.NoError(t, r.Render(scr))
	assert.Equal(t, video.Red, sink.buffer.PixelAt(4, 4))

	sink.reset()
	sp.Move(10, 0)
	scr.Update(time.Millisecond)
	require.NoError(t, r.Render(scr))

	assert.ElementsMatch(t, []section{{4, 4, 12, 12}, {24, 4, 32, 12}}, sink.sections)
	assert.Equal(t, video.Black, sink.buffer.PixelAt(4, 4), "old position cleared")
	assert.Equal(t, video.Red, sink.buffer.PixelAt(24, 4))
	assert.Equal(t, video.Red, sink.buffer.PixelAt(31, 11))
	assert.Equal(t, video.Black, sink.buffer.PixelAt(32, 11))
}

func TestRenderer_ScreenRegionsPushedOnce(t *testing.T) {
	sink := newFakeSink(20, 20)
	tex := textures{"atlas": solid(4, 4, video.Red)}
	r := newTestRenderer(t, sink, tex, Options{})

	scr := screen.New()
	sp := scr.AddSprite(graphics.NewSprite(graphics.NewFrame("atlas", 0, 0, 4, 4), 0, 0))
	scr.Update(0)
	require.NoError(t, r.Render(scr))

	sp.Move(5, 0)
	scr.Update(0)
	sink.reset()
	require.NoError(t, r.Render(scr))
	assert.Len(t, sink.sections, 2)

	sink.reset()
	require.NoError(t, r.Render(scr))
	assert.Empty(t, sink.sections, "no update since the last push")
	assert.Equal(t, video.Red, sink.buffer.PixelAt(5, 0), "sprite still composited")

	other := screen.New()
	other.AddSprite(graphics.NewSprite(graphics.NewFrame("atlas", 0, 0, 4, 4), 10, 10))
	other.Update(0)
	require.NoError(t, r.Render(other))
	assert.Contains(t, sink.sections, section{10, 10, 14, 14}, "a different screen is not mistaken for the last one")
}

func TestRenderer_SpriteTransparency(t *testing.T) {
	atlas := solid(2, 1, video.Green)
	atlas.SetPixel(0, 0, video.Magenta)

	sink := newFakeSink(4, 4)
	r := newTestRenderer(t, sink, textures{"atlas": atlas}, Options{BackgroundColor: video.White})

	scr := screen.New()
	scr.AddSprite(graphics.NewSprite(graphics.NewFrame("atlas", 0, 0, 2, 1), 0, 0))
	scr.Update(0)
	require.NoError(t, r.Render(scr))

	assert.Equal(t, video.White, sink.buffer.PixelAt(0, 0))
	assert.Equal(t, video.Green, sink.buffer.PixelAt(1, 0))
}

func TestRenderer_LayerOrder(t *testing.T) {
	sink := newFakeSink(8, 8)
	tex := textures{"atlas": solid(8, 8, video.Red)}
	spriteZ := 10
	r := newTestRenderer(t, sink, tex, Options{SpriteLayerZ: &spriteZ})

	below, err := r.Layers().Create(0, geom.Dimensions{Width: 8, Height: 8})
	require.NoError(t, err)
	below.BackgroundColor = video.Blue
	below.Clear()

	above, err := r.Layers().Create(20, geom.Dimensions{Width: 2, Height: 2})
	require.NoError(t, err)
	above.BackgroundColor = video.Yellow
	above.Clear()

	scr := screen.New()
	scr.AddSprite(graphics.NewSprite(graphics.NewFrame("atlas", 0, 0, 4, 4), 0, 0))
	scr.Update(0)
	require.NoError(t, r.Render(scr))

	assert.Equal(t, video.Yellow, sink.buffer.PixelAt(0, 0), "layer above sprites")
	assert.Equal(t, video.Red, sink.buffer.PixelAt(3, 3), "sprite above the lower layer")
	assert.Equal(t, video.Blue, sink.buffer.PixelAt(5, 5), "lower layer")
}

func TestRenderer_SpriteLayerPlacement(t *testing.T) {
	zero := 0
	tests := []struct {
		name    string
		spriteZ *int
		layerZ  int
		want    video.Color
	}{
		{name: "sprites above the topmost layer", layerZ: math.MaxInt, want: video.Red},
		{name: "sprites above the bottom layer", layerZ: math.MinInt, want: video.Red},
		{name: "sprites at zero under a layer at zero", spriteZ: &zero, layerZ: 0, want: video.Green},
		{name: "sprites at zero over a negative layer", spriteZ: &zero, layerZ: -1, want: video.Red},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := newFakeSink(4, 4)
			tex := textures{"atlas": solid(2, 2, video.Red)}
			r := newTestRenderer(t, sink, tex, Options{SpriteLayerZ: tt.spriteZ})

			layer, err := r.Layers().Create(tt.layerZ, geom.Dimensions{Width: 4, Height: 4})
			require.NoError(t, err)
			layer.BackgroundColor = video.Green
			layer.Clear()

			scr := screen.New()
			scr.AddSprite(graphics.NewSprite(graphics.NewFrame("atlas", 0, 0, 2, 2), 0, 0))
			scr.Update(0)
			require.NoError(t, r.Render(scr))

			assert.Equal(t, tt.want, sink.buffer.PixelAt(0, 0))
			assert.Equal(t, video.Green, sink.buffer.PixelAt(3, 3), "layer is composited")
		})
	}
}

func TestRenderer_LayerChangesArePushed(t *testing.T) {
	sink := newFakeSink(20, 20)
	r := newTestRenderer(t, sink, nil, Options{})

	layer, err := r.Layers().Create(0, geom.Dimensions{Width: 5, Height: 5})
	require.NoError(t, err)
	layer.SetCameraOffset(geom.Point{X: 10, Y: 10})
	require.NoError(t, r.Render(nil))

	sink.reset()
	require.NoError(t, r.Render(nil))
	assert.Empty(t, sink.sections)

	layer.Shift(geom.Vector{X: 1})
	require.NoError(t, r.Render(nil))
	assert.Equal(t, []section{{10, 10, 15, 15}}, sink.sections)
}

func TestRenderer_CollapsesManySections(t *testing.T) {
	sink := newFakeSink(64, 8)
	tex := textures{"atlas": solid(1, 1, video.Red)}
	r := newTestRenderer(t, sink, tex, Options{MaxSections: 3})

	scr := screen.New()
	for i := 0; i < 5; i++ {
		scr.AddSprite(graphics.NewSprite(graphics.NewFrame("atlas", 0, 0, 1, 1), float64(i*10), 2))
	}
	require.NoError(t, r.Render(scr))
	sink.reset()

	scr.Update(0)
	require.NoError(t, r.Render(scr))

	assert.Equal(t, []section{{0, 2, 41, 3}}, sink.sections)
}

func TestRenderer_OffscreenRegionsAreClipped(t *testing.T) {
	sink := newFakeSink(10, 10)
	tex := textures{"atlas": solid(4, 4, video.Red)}
	r := newTestRenderer(t, sink, tex, Options{})
	require.NoError(t, r.Render(nil))
	sink.reset()

	scr := screen.New()
	scr.AddSprite(graphics.NewSprite(graphics.NewFrame("atlas", 0, 0, 4, 4), 8, -2))
	scr.AddSprite(graphics.NewSprite(graphics.NewFrame("atlas", 0, 0, 4, 4), 30, 30))
	scr.Update(0)
	require.NoError(t, r.Render(scr))

	assert.Equal(t, []section{{8, 0, 10, 2}}, sink.sections)
	assert.Equal(t, video.Red, sink.buffer.PixelAt(9, 1))
}

func TestRenderer_Errors(t *testing.T) {
	t.Run("missing texture", func(t *testing.T) {
		sink := newFakeSink(4, 4)
		r := newTestRenderer(t, sink, textures{}, Options{})

		scr := screen.New()
		scr.AddSprite(graphics.NewSprite(graphics.NewFrame("nope", 0, 0, 1, 1), 0, 0))
		scr.Update(0)

		assert.Error(t, r.Render(scr))
		assert.Empty(t, sink.sections)
	})

	t.Run("sink failure", func(t *testing.T) {
		sink := newFakeSink(4, 4)
		sink.err = errors.New("bus error")
		r := newTestRenderer(t, sink, nil, Options{})

		assert.ErrorIs(t, r.Render(nil), sink.err)
	})
}
