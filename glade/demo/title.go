package demo

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/valerio/go-glade/glade"
	"github.com/valerio/go-glade/glade/geom"
	"github.com/valerio/go-glade/glade/graphics"
	"github.com/valerio/go-glade/glade/input/action"
	"github.com/valerio/go-glade/glade/screen"
)

const (
	edgePadding    = 5
	starScrollRate = 20 // px/s
	animationStep  = 500 * time.Millisecond
)

// Title is the title screen state.
type Title struct {
	engine   *glade.Engine
	screen   *screen.Screen
	size     geom.Dimensions
	stars    *graphics.Layer
	prompt   *graphics.Layer
	banner   *graphics.Sprite
	invaders []*graphics.Sprite

	animElapsed time.Duration
	animStep    int
}

// TitleScreen returns a builder for engine.TransitionTo. Build failures are
// logged and end the run.
func TitleScreen(e *glade.Engine) func() *screen.Screen {
	return func() *screen.Screen {
		t, err := NewTitle(e)
		if err != nil {
			slog.Error("Failed to build title screen", "error", err)
			return nil
		}
		return t.Screen()
	}
}

// NewTitle builds the title screen: a scrolling star field, an opaque
// prompt strip, a bouncing banner and a row of marching invaders.
func NewTitle(e *glade.Engine) (*Title, error) {
	t := &Title{
		engine: e,
		screen: screen.New(),
		size:   e.Renderer().Size(),
	}

	if err := t.createLayers(); err != nil {
		return nil, err
	}

	t.banner = t.screen.AddSprite(graphics.NewSprite(TitleFrame, edgePadding, edgePadding))
	t.banner.SetVelocity(12, 10)
	t.banner.SetZOrder(1)

	for i := range 4 {
		frame := EnemyFrames[i%2][0]
		x := float64(edgePadding + i*(frame.Width+4))
		y := float64(t.size.Height / 2)
		invader := t.screen.AddSprite(graphics.NewSprite(frame, x, y))
		invader.SetVelocity(8, 0)
		t.invaders = append(t.invaders, invader)
	}

	t.screen.SetActivity(t.activity)
	slog.Info("Started title screen")
	return t, nil
}

func (t *Title) createLayers() error {
	stars, err := t.engine.Layers().Create(-2, t.size)
	if err != nil {
		return fmt.Errorf("failed to create star layer: %w", err)
	}
	err = stars.DrawFrame(graphics.NewFrame(StarsTexture, 0, 0, t.size.Width, t.size.Height),
		geom.Point{}, graphics.DrawOptions{IgnoreTransparency: true})
	if err != nil {
		return err
	}
	t.stars = stars

	glyph, err := t.engine.Textures().Texture(PromptTexture)
	if err != nil {
		return err
	}

	strip := geom.Dimensions{Width: t.size.Width, Height: glyph.Height() + 2}
	prompt, err := graphics.NewLayer(strip, t.engine.Textures())
	if err != nil {
		return fmt.Errorf("failed to create prompt layer: %w", err)
	}
	prompt.BackgroundColor = BackgroundColor
	prompt.Clear()
	prompt.DrawTexture(glyph, geom.Point{},
		geom.Point{X: (strip.Width - glyph.Width()) / 2, Y: 1},
		glyph.Dimensions(), graphics.DrawOptions{})
	prompt.SetCameraOffset(geom.Point{X: 0, Y: t.size.Height - strip.Height - edgePadding})

	if err := t.engine.Layers().Add(-1, prompt); err != nil {
		return err
	}
	t.prompt = prompt
	return nil
}

// Screen is the scene graph of the title.
func (t *Title) Screen() *screen.Screen { return t.screen }

// Banner is the bouncing title sprite.
func (t *Title) Banner() *graphics.Sprite { return t.banner }

// Stars is the scrolling background layer.
func (t *Title) Stars() *graphics.Layer { return t.stars }

func (t *Title) activity(_ *screen.Screen, delta time.Duration) {
	in := t.engine.Input()
	if in.WasPressed(action.ButtonA) || in.WasPressed(action.ButtonStart) {
		t.engine.TransitionTo(GameScreen(t.engine))
		return
	}

	t.stars.Shift(geom.Vector{X: -starScrollRate * delta.Seconds()})

	bounce(t.banner, t.size)
	t.marchInvaders(delta)
}

func (t *Title) marchInvaders(delta time.Duration) {
	t.animElapsed += delta
	if t.animElapsed >= animationStep {
		t.animElapsed -= animationStep
		t.animStep ^= 1
		for i, inv := range t.invaders {
			inv.SetFrame(EnemyFrames[i%2][t.animStep])
		}
	}

	first := t.invaders[0].Bounds()
	last := t.invaders[len(t.invaders)-1].Bounds()
	v := t.invaders[0].Velocity()
	if (v.X < 0 && first.X < edgePadding) || (v.X > 0 && last.Right() > t.size.Width-edgePadding) {
		for _, inv := range t.invaders {
			inv.SetVelocity(-v.X, 0)
		}
	}
}

// bounce reverses a sprite's velocity when it leaves the padded area.
func bounce(s *graphics.Sprite, area geom.Dimensions) {
	pos := s.Position()
	v := s.Velocity()
	f := s.Frame()

	if (v.X < 0 && pos.X < edgePadding) || (v.X > 0 && pos.X+float64(f.Width) > float64(area.Width-edgePadding)) {
		v.X = -v.X
	}
	if (v.Y < 0 && pos.Y < edgePadding) || (v.Y > 0 && pos.Y+float64(f.Height) > float64(area.Height-edgePadding)) {
		v.Y = -v.Y
	}
	s.SetVelocity(v.X, v.Y)
}
