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
	startingLives     = 3
	heartGap          = 5
	enemyColumns      = 6
	enemyRows         = 3
	enemySpeed        = 5  // px/s
	playerSpeed       = 40 // px/s
	shotSpeed         = 35 // px/s
	explosionLifetime = 500 * time.Millisecond
	enemyAnimation    = time.Second
)

type enemy struct {
	sprite *graphics.Sprite
	color  int
}

type explosion struct {
	sprite *graphics.Sprite
	age    time.Duration
}

// Game is the playing screen: the player moves along the bottom edge and
// shoots a grid of enemies that marches down the screen.
type Game struct {
	engine *glade.Engine
	screen *screen.Screen
	size   geom.Dimensions

	player     *graphics.Sprite
	lives      []*graphics.Sprite
	enemies    []enemy
	shots      []*graphics.Sprite
	explosions []explosion

	enemyVelocity float64
	lastHitLeft   bool
	animElapsed   time.Duration
	animStep      int
}

// GameScreen returns a builder for engine.TransitionTo.
func GameScreen(e *glade.Engine) func() *screen.Screen {
	return func() *screen.Screen {
		g, err := NewGame(e)
		if err != nil {
			slog.Error("Failed to build game screen", "error", err)
			return nil
		}
		return g.Screen()
	}
}

// NewGame builds a fresh game with a full enemy wave.
func NewGame(e *glade.Engine) (*Game, error) {
	g := &Game{
		engine:        e,
		screen:        screen.New(),
		size:          e.Renderer().Size(),
		enemyVelocity: enemySpeed,
		lastHitLeft:   true,
	}

	stars, err := e.Layers().Create(-1, g.size)
	if err != nil {
		return nil, fmt.Errorf("failed to create star layer: %w", err)
	}
	err = stars.DrawFrame(graphics.NewFrame(StarsTexture, 0, 0, g.size.Width, g.size.Height),
		geom.Point{}, graphics.DrawOptions{IgnoreTransparency: true})
	if err != nil {
		return nil, err
	}

	for i := range startingLives {
		x := g.size.Width - (HeartFrame.Width+heartGap)*(i+1)
		g.lives = append(g.lives, g.screen.AddSprite(graphics.NewSprite(HeartFrame, float64(x), heartGap)))
	}

	g.player = g.screen.AddSprite(graphics.NewSprite(PlayerFrame,
		float64(g.size.Width-PlayerFrame.Width)/2,
		float64(g.size.Height-PlayerFrame.Height)))

	g.spawnWave()
	g.screen.SetActivity(g.activity)

	slog.Info("Started game screen", "enemies", len(g.enemies))
	return g, nil
}

// Screen is the scene graph of the game.
func (g *Game) Screen() *screen.Screen { return g.screen }

// Player is the player's ship.
func (g *Game) Player() *graphics.Sprite { return g.player }

// Enemies returns the live enemy count.
func (g *Game) Enemies() int { return len(g.enemies) }

// Lives returns the remaining lives.
func (g *Game) Lives() int { return len(g.lives) }

// Shots returns the shots in flight.
func (g *Game) Shots() int { return len(g.shots) }

func (g *Game) spawnWave() {
	for _, en := range g.enemies {
		g.screen.RemoveSprite(en.sprite)
	}
	g.enemies = g.enemies[:0]
	g.enemyVelocity = enemySpeed
	g.lastHitLeft = true

	top := HeartFrame.Height + 2*heartGap
	for col := range enemyColumns {
		for row := range enemyRows {
			color := (row + col) % 2
			frame := EnemyFrames[color][g.animStep]
			x := col*(frame.Width+2) + edgePadding
			y := top + row*(frame.Height+5)

			s := g.screen.AddSprite(graphics.NewSprite(frame, float64(x), float64(y)))
			s.SetVelocity(g.enemyVelocity, 0)
			g.enemies = append(g.enemies, enemy{sprite: s, color: color})
		}
	}
}

func (g *Game) activity(_ *screen.Screen, delta time.Duration) {
	g.movePlayer()
	g.moveEnemies(delta)
	g.processShots()
	g.processExplosions(delta)

	switch {
	case len(g.enemies) == 0:
		slog.Info("Wave cleared")
		g.engine.TransitionTo(TitleScreen(g.engine))
	case g.enemiesLanded():
		g.loseLife()
	}
}

func (g *Game) movePlayer() {
	in := g.engine.Input()
	switch {
	case in.IsDown(action.ButtonLeft):
		g.player.SetVelocity(-playerSpeed, 0)
	case in.IsDown(action.ButtonRight):
		g.player.SetVelocity(playerSpeed, 0)
	default:
		g.player.SetVelocity(0, 0)
	}

	pos := g.player.Position()
	maxX := float64(g.size.Width - PlayerFrame.Width)
	g.player.SetPosition(min(max(pos.X, 0), maxX), pos.Y)

	if in.WasPressed(action.ButtonA) {
		b := g.player.Bounds()
		shot := graphics.NewSprite(ShotFrame, float64(b.X+b.Width/2), float64(b.Y-ShotFrame.Height))
		shot.SetVelocity(0, -shotSpeed)
		g.shots = append(g.shots, g.screen.AddSprite(shot))
	}
}

func (g *Game) moveEnemies(delta time.Duration) {
	g.animElapsed += delta
	if g.animElapsed >= enemyAnimation {
		g.animElapsed -= enemyAnimation
		g.animStep ^= 1
		for _, en := range g.enemies {
			en.sprite.SetFrame(EnemyFrames[en.color][g.animStep])
		}
	}

	hit := false
	for _, en := range g.enemies {
		b := en.sprite.Bounds()
		if g.lastHitLeft && b.Right() >= g.size.Width {
			hit = true
			break
		}
		if !g.lastHitLeft && b.X <= 0 {
			hit = true
			break
		}
	}
	if !hit {
		return
	}

	g.lastHitLeft = !g.lastHitLeft
	g.enemyVelocity = -g.enemyVelocity
	for _, en := range g.enemies {
		en.sprite.SetVelocity(g.enemyVelocity, 0)
		en.sprite.Move(0, float64(en.sprite.Frame().Height))
	}
}

func (g *Game) processShots() {
	for i := len(g.shots) - 1; i >= 0; i-- {
		shot := g.shots[i]
		sb := shot.Bounds()

		if sb.Bottom() <= 0 {
			g.removeShot(i)
			continue
		}

		for j := len(g.enemies) - 1; j >= 0; j-- {
			en := g.enemies[j]
			if _, ok := sb.Intersect(en.sprite.Bounds()); !ok {
				continue
			}

			pos := en.sprite.Position()
			g.screen.RemoveSprite(en.sprite)
			g.enemies = append(g.enemies[:j], g.enemies[j+1:]...)
			g.removeShot(i)

			boom := g.screen.AddSprite(graphics.NewSprite(ExplosionFrame, pos.X, pos.Y))
			g.explosions = append(g.explosions, explosion{sprite: boom})
			break
		}
	}
}

func (g *Game) removeShot(i int) {
	g.screen.RemoveSprite(g.shots[i])
	g.shots = append(g.shots[:i], g.shots[i+1:]...)
}

func (g *Game) processExplosions(delta time.Duration) {
	for i := len(g.explosions) - 1; i >= 0; i-- {
		g.explosions[i].age += delta
		if g.explosions[i].age >= explosionLifetime {
			g.screen.RemoveSprite(g.explosions[i].sprite)
			g.explosions = append(g.explosions[:i], g.explosions[i+1:]...)
		}
	}
}

func (g *Game) enemiesLanded() bool {
	line := g.player.Bounds().Y
	for _, en := range g.enemies {
		if en.sprite.Bounds().Bottom() > line {
			return true
		}
	}
	return false
}

func (g *Game) loseLife() {
	if len(g.lives) == 0 {
		return
	}

	last := len(g.lives) - 1
	g.lives[last].Destroy()
	g.lives = g.lives[:last]
	slog.Info("Life lost", "remaining", len(g.lives))

	if len(g.lives) == 0 {
		g.engine.TransitionTo(TitleScreen(g.engine))
		return
	}
	g.spawnWave()
}
