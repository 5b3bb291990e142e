// Package assets loads texture atlases from a file system and keeps them
// resident as RGB565 pixel buffers.
package assets

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sync"

	_ "github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/bmp"

	"github.com/valerio/go-glade/glade/graphics"
	"github.com/valerio/go-glade/glade/video"
)

var _ graphics.TextureProvider = (*Manager)(nil)

// ErrTextureNotFound is returned for names that are neither registered nor
// present in the file system.
var ErrTextureNotFound = errors.New("texture not found")

// alphaThreshold is the alpha below which a pixel becomes the transparent
// key color.
const alphaThreshold = 0x80

// Manager resolves texture names to decoded buffers. Textures are decoded
// on first use and cached; procedurally generated textures can be
// registered directly. Safe for concurrent use.
type Manager struct {
	mu               sync.RWMutex
	fsys             fs.FS
	textures         map[string]*video.PixelBuffer
	transparentColor video.Color
}

// NewManager creates a manager reading from fsys, which may be nil when
// every texture is registered in code.
func NewManager(fsys fs.FS) *Manager {
	return &Manager{
		fsys:             fsys,
		textures:         make(map[string]*video.PixelBuffer),
		transparentColor: video.Magenta,
	}
}

// NewDirManager creates a manager reading textures from a directory.
func NewDirManager(dir string) *Manager {
	return NewManager(os.DirFS(dir))
}

// SetTransparentColor changes the color translucent pixels decode to. It
// only affects textures loaded afterwards.
func (m *Manager) SetTransparentColor(c video.Color) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transparentColor = c
}

// Register makes buf available under name, replacing any cached texture.
func (m *Manager) Register(name string, buf *video.PixelBuffer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.textures[name] = buf
}

// Texture returns the named texture, loading it on first use. Names are
// slash-separated paths relative to the manager's file system.
func (m *Manager) Texture(name string) (*video.PixelBuffer, error) {
	m.mu.RLock()
	tex, ok := m.textures[name]
	m.mu.RUnlock()
	if ok {
		return tex, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// another caller may have loaded it meanwhile
	if tex, ok := m.textures[name]; ok {
		return tex, nil
	}

	tex, err := m.load(name)
	if err != nil {
		return nil, err
	}
	m.textures[name] = tex
	return tex, nil
}

// Preload loads every named texture, stopping at the first failure.
func (m *Manager) Preload(names ...string) error {
	for _, name := range names {
		if _, err := m.Texture(name); err != nil {
			return err
		}
	}
	return nil
}

// Len is the number of resident textures.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.textures)
}

func (m *Manager) load(name string) (*video.PixelBuffer, error) {
	if m.fsys == nil {
		return nil, fmt.Errorf("%w: %s", ErrTextureNotFound, name)
	}

	f, err := m.fsys.Open(path.Clean(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTextureNotFound, name)
		}
		return nil, fmt.Errorf("texture: open %s: %w", name, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", name, err)
	}

	buf, err := FromImage(img, m.transparentColor)
	if err != nil {
		return nil, fmt.Errorf("texture: convert %s: %w", name, err)
	}

	slog.Debug("Texture loaded", "name", name, "format", format, "width", buf.Width(), "height", buf.Height())
	return buf, nil
}

// FromImage converts img to an RGB565 buffer. Pixels with alpha below one
// half become transparent; opaque pixels that happen to equal transparent
// are nudged by one green step so they stay visible.
func FromImage(img image.Image, transparent video.Color) (*video.PixelBuffer, error) {
	b := img.Bounds()
	buf, err := video.NewPixelBuffer(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)

			px := transparent
			if c.A >= alphaThreshold {
				px = video.RGB(c.R, c.G, c.B)
				if px == transparent {
					px ^= 1 << 5
				}
			}
			buf.SetPixel(x-b.Min.X, y-b.Min.Y, px)
		}
	}
	return buf, nil
}
