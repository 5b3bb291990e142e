// Package config reads the engine configuration from JSON files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/valerio/go-glade/glade"
	"github.com/valerio/go-glade/glade/video"
)

// ErrInvalid is returned for configurations that parse but cannot run.
var ErrInvalid = errors.New("invalid configuration")

// DefaultFile is the file name Load falls back to.
const DefaultFile = "glade.json"

// Config is the on-disk engine configuration.
type Config struct {
	Backend   string          `json:"backend"`
	Display   DisplayConfig   `json:"display"`
	Engine    EngineConfig    `json:"engine"`
	Snapshots SnapshotsConfig `json:"snapshots"`
	Textures  TexturesConfig  `json:"textures"`
}

// DisplayConfig describes the physical display.
type DisplayConfig struct {
	Title       string `json:"title"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Scale       int    `json:"scale"`
	WindowScale int    `json:"windowScale"`
	VSync       bool   `json:"vsync"`
	Fullscreen  bool   `json:"fullscreen"`
}

// EngineConfig holds frame loop and compositor settings.
type EngineConfig struct {
	FPS             int    `json:"fps"`
	Limiter         string `json:"limiter"`
	MaxSections     int    `json:"maxSections"`
	Background      string `json:"background"`
	SpriteLayerZ    *int   `json:"spriteLayerZ,omitempty"`
	MaxFrameDeltaMs int    `json:"maxFrameDeltaMs"`
	FixedStepMs     int    `json:"fixedStepMs"`
	Profile         bool   `json:"profile"`
	ProfileEveryMs  int    `json:"profileIntervalMs"`
}

// SnapshotsConfig controls frame dumps.
type SnapshotsConfig struct {
	Dir      string `json:"dir"`
	Format   string `json:"format"`
	Interval int    `json:"interval"`
}

// TexturesConfig points at the texture directory.
type TexturesConfig struct {
	Dir     string   `json:"dir"`
	Preload []string `json:"preload"`
}

// Default mirrors glade.DefaultConfig.
func Default() *Config {
	d := glade.DefaultConfig()
	return &Config{
		Backend: "terminal",
		Display: DisplayConfig{
			Title:       d.Display.Title,
			Width:       d.Display.Width,
			Height:      d.Display.Height,
			Scale:       d.Scale,
			WindowScale: d.Display.WindowScale,
		},
		Engine: EngineConfig{
			FPS:             d.FPS,
			Limiter:         d.Limiter,
			MaxSections:     d.MaxSections,
			Background:      "#000000",
			MaxFrameDeltaMs: int(d.MaxFrameDelta / time.Millisecond),
			ProfileEveryMs:  int(d.ProfileInterval / time.Millisecond),
		},
		Snapshots: SnapshotsConfig{
			Format: d.SnapshotFormat,
		},
	}
}

// Loader loads engine configuration from JSON files using fs.FS interface
type Loader struct {
	fsys     fs.FS
	basePath string
}

// NewLoader creates a new config loader from filesystem path
func NewLoader(basePath string) *Loader {
	return &Loader{
		fsys:     os.DirFS(basePath),
		basePath: basePath,
	}
}

// NewFSLoader creates a new config loader from fs.FS
func NewFSLoader(fsys fs.FS, basePath string) *Loader {
	return &Loader{
		fsys:     fsys,
		basePath: basePath,
	}
}

// Load reads name on top of the defaults, so files only need the keys they
// change. An empty name loads DefaultFile.
func (l *Loader) Load(name string) (*Config, error) {
	if name == "" {
		name = DefaultFile
	}

	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return cfg, nil
}

// Validate checks the fields the engine cannot default.
func (c *Config) Validate() error {
	switch c.Backend {
	case "headless", "terminal", "sdl2", "ebiten":
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalid, c.Backend)
	}
	if c.Snapshots.Interval < 0 {
		return fmt.Errorf("%w: negative snapshot interval", ErrInvalid)
	}

	engine, err := c.EngineConfig()
	if err != nil {
		return err
	}
	if err := engine.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// EngineConfig converts the file to the engine's configuration.
func (c *Config) EngineConfig() (glade.Config, error) {
	cfg, err := c.Engine.toEngine(c.Display)
	if err != nil {
		return glade.Config{}, err
	}
	cfg.SnapshotDir = c.Snapshots.Dir
	cfg.SnapshotFormat = c.Snapshots.Format
	return cfg, nil
}

func (e EngineConfig) toEngine(d DisplayConfig) (glade.Config, error) {
	background, err := ParseColor(e.Background)
	if err != nil {
		return glade.Config{}, err
	}

	cfg := glade.DefaultConfig()
	cfg.Display.Title = d.Title
	cfg.Display.Width = d.Width
	cfg.Display.Height = d.Height
	cfg.Display.WindowScale = d.WindowScale
	cfg.Display.VSync = d.VSync
	cfg.Display.Fullscreen = d.Fullscreen
	cfg.Scale = d.Scale
	cfg.FPS = e.FPS
	cfg.Limiter = e.Limiter
	cfg.MaxSections = e.MaxSections
	cfg.BackgroundColor = background
	cfg.SpriteLayerZ = e.SpriteLayerZ
	cfg.MaxFrameDelta = time.Duration(e.MaxFrameDeltaMs) * time.Millisecond
	cfg.FixedStep = time.Duration(e.FixedStepMs) * time.Millisecond
	cfg.Profile = e.Profile
	cfg.ProfileInterval = time.Duration(e.ProfileEveryMs) * time.Millisecond
	return cfg, nil
}

// ParseColor parses "#RRGGBB" (or "RRGGBB") into a 5:6:5 color. An empty
// string is black.
func ParseColor(s string) (video.Color, error) {
	if s == "" {
		return video.Black, nil
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return 0, fmt.Errorf("%w: color %q is not #RRGGBB", ErrInvalid, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: color %q: %w", ErrInvalid, s, err)
	}
	return video.RGB(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}
