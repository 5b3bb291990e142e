// Package demo is a small invaders game used to exercise the compositor:
// a title screen with a scrolling star field and a bouncing banner, and a
// game screen with marching enemies, shots and explosions. Its textures are
// generated in code so it runs without asset files.
package demo

import (
	"math/rand/v2"

	"github.com/valerio/go-glade/glade/graphics"
	"github.com/valerio/go-glade/glade/video"
)

// Texture names registered by RegisterTextures.
const (
	SpritesTexture = "demo/sprites"
	StarsTexture   = "demo/stars"
	PromptTexture  = "demo/prompt"
)

// Registrar is the part of a texture manager the demo needs.
type Registrar interface {
	Register(name string, buf *video.PixelBuffer)
}

var (
	enemyBlue  = video.RGB(0x40, 0x80, 0xFF)
	enemyRed   = video.RGB(0xFF, 0x40, 0x40)
	playerTint = video.RGB(0x40, 0xFF, 0x60)
	flame      = video.RGB(0xFF, 0xC0, 0x20)
	dimStar    = video.RGB(0x60, 0x60, 0x80)

	// BackgroundColor is the clear color of both screens.
	BackgroundColor = video.RGB(0x08, 0x08, 0x18)
)

// Frames of the sprite atlas.
var (
	TitleFrame     = graphics.NewFrame(SpritesTexture, 0, 0, 40, 12)
	EnemyFrames    = [2][2]graphics.Frame{{graphics.NewFrame(SpritesTexture, 0, 12, 8, 8), graphics.NewFrame(SpritesTexture, 8, 12, 8, 8)}, {graphics.NewFrame(SpritesTexture, 16, 12, 8, 8), graphics.NewFrame(SpritesTexture, 24, 12, 8, 8)}}
	ExplosionFrame = graphics.NewFrame(SpritesTexture, 32, 12, 8, 8)
	PlayerFrame    = graphics.NewFrame(SpritesTexture, 40, 12, 11, 6)
	HeartFrame     = graphics.NewFrame(SpritesTexture, 51, 12, 5, 5)
	ShotFrame      = graphics.NewFrame(SpritesTexture, 56, 12, 1, 3)
)

var titleArt = []string{
	"########################################",
	"#......................................#",
	"#.###..#....###..####..####............#",
	"#.#....#....#.#..#..#..#...............#",
	"#.#.##.#....###..#..#..###.............#",
	"#.#..#.#....#.#..#..#..#...............#",
	"#.####.####.#.#..####..####............#",
	"#......................................#",
	"#..ooooooooooooooooooooooooooooooooo...#",
	"#......................................#",
	"#......................................#",
	"########################################",
}

var enemyArt = [2][]string{
	{
		"..#..#..",
		"...##...",
		"..####..",
		".##.##.#",
		"########",
		"#.####.#",
		"#.#..#.#",
		"...##...",
	},
	{
		"..#..#..",
		"#..##..#",
		"#.####.#",
		"###.####",
		"########",
		"..####..",
		".#....#.",
		"#......#",
	},
}

var explosionArt = []string{
	"#..#...#",
	".#..#.#.",
	"..#.....",
	"##....##",
	".....#..",
	".#.#..#.",
	"#...#..#",
	"........",
}

var playerArt = []string{
	".....#.....",
	"....###....",
	".#########.",
	"###########",
	"###########",
	"#.#.....#.#",
}

var heartArt = []string{
	".#.#.",
	"#####",
	"#####",
	".###.",
	"..#..",
}

var promptArt = []string{
	"..######..",
	".#......#.",
	"#..####..#",
	"#..#..#..#",
	"#..####..#",
	"#..#..#..#",
	"#..#..#..#",
	".#......#.",
	"..######..",
}

// paint draws art at (x, y): '#' and 'o' pixels use fg and accent, every
// other rune is transparent.
func paint(buf *video.PixelBuffer, x, y int, art []string, fg, accent video.Color) {
	for row, line := range art {
		for col, r := range line {
			c := video.Magenta
			switch r {
			case '#':
				c = fg
			case 'o':
				c = accent
			}
			buf.SetPixel(x+col, y+row, c)
		}
	}
}

// NewSpriteAtlas draws every sprite frame into one 64x20 texture.
func NewSpriteAtlas() *video.PixelBuffer {
	atlas := video.MustPixelBuffer(64, 20)
	atlas.Fill(video.Magenta)

	paint(atlas, TitleFrame.X, TitleFrame.Y, titleArt, video.White, flame)
	for color, tint := range []video.Color{enemyBlue, enemyRed} {
		for step, art := range enemyArt {
			f := EnemyFrames[color][step]
			paint(atlas, f.X, f.Y, art, tint, tint)
		}
	}
	paint(atlas, ExplosionFrame.X, ExplosionFrame.Y, explosionArt, flame, flame)
	paint(atlas, PlayerFrame.X, PlayerFrame.Y, playerArt, playerTint, playerTint)
	paint(atlas, HeartFrame.X, HeartFrame.Y, heartArt, enemyRed, enemyRed)
	atlas.FillRect(ShotFrame.Rect(), video.White)
	return atlas
}

// NewStarField draws a w x h tile of random stars on the background color.
// The tile wraps seamlessly because layers scroll toroidally.
func NewStarField(w, h int, seed uint64) *video.PixelBuffer {
	stars := video.MustPixelBuffer(w, h)
	stars.Fill(BackgroundColor)

	rng := rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	for range w * h / 40 {
		c := dimStar
		if rng.IntN(4) == 0 {
			c = video.White
		}
		stars.SetPixel(rng.IntN(w), rng.IntN(h), c)
	}
	return stars
}

// NewPromptGlyph draws the "press A" button glyph.
func NewPromptGlyph() *video.PixelBuffer {
	glyph := video.MustPixelBuffer(len(promptArt[0]), len(promptArt))
	glyph.Fill(video.Magenta)
	paint(glyph, 0, 0, promptArt, enemyRed, enemyRed)
	return glyph
}

// RegisterTextures generates the demo textures into r. The star field
// matches the composite size so it tiles the whole screen.
func RegisterTextures(r Registrar, width, height int) {
	r.Register(SpritesTexture, NewSpriteAtlas())
	r.Register(StarsTexture, NewStarField(width, height, 1))
	r.Register(PromptTexture, NewPromptGlyph())
}
