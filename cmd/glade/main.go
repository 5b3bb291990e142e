package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli"

	"github.com/valerio/go-glade/glade"
	"github.com/valerio/go-glade/glade/assets"
	"github.com/valerio/go-glade/glade/backend"
	"github.com/valerio/go-glade/glade/backend/ebiten"
	"github.com/valerio/go-glade/glade/backend/headless"
	"github.com/valerio/go-glade/glade/backend/sdl2"
	"github.com/valerio/go-glade/glade/backend/terminal"
	"github.com/valerio/go-glade/glade/config"
	"github.com/valerio/go-glade/glade/demo"
	"github.com/valerio/go-glade/glade/timing"
)

func main() {
	app := newApp()

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running glade", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "glade"
	app.Description = "Software 2D compositor for small displays, running the invaders demo"
	app.Usage = "glade [options]"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "Path to a JSON engine configuration",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Display backend: terminal, headless, sdl2 or ebiten",
			Value: "terminal",
		},
		cli.IntFlag{
			Name:  "width",
			Usage: "Display width in device pixels",
		},
		cli.IntFlag{
			Name:  "height",
			Usage: "Display height in device pixels",
		},
		cli.IntFlag{
			Name:  "scale",
			Usage: "Integer scale from the composite buffer to the display",
		},
		cli.IntFlag{
			Name:  "fps",
			Usage: "Target frame rate",
		},
		cli.StringFlag{
			Name:  "limiter",
			Usage: "Frame limiter: adaptive, ticker or none",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save frame snapshots every N frames in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory)",
		},
		cli.StringFlag{
			Name:  "snapshot-format",
			Usage: "Snapshot image format: png or webp",
		},
		cli.StringFlag{
			Name:  "textures",
			Usage: "Directory textures are loaded from",
		},
		cli.BoolFlag{
			Name:  "profile",
			Usage: "Log render timings periodically",
		},
	}
	app.Action = run
	return app
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		return err
	}

	b, err := createBackend(cfg, c.Int("frames"))
	if err != nil {
		return err
	}
	if cfg.Backend == "headless" {
		// frames must be reproducible without a display pacing them
		engineCfg.Limiter = "none"
		if engineCfg.FixedStep == 0 {
			engineCfg.FixedStep = timing.FrameDuration(engineCfg.FPS)
		}
	}

	textures := assets.NewManager(nil)
	if cfg.Textures.Dir != "" {
		textures = assets.NewDirManager(cfg.Textures.Dir)
	}
	if err := textures.Preload(cfg.Textures.Preload...); err != nil {
		return fmt.Errorf("failed to preload textures: %w", err)
	}
	demo.RegisterTextures(textures, engineCfg.Display.Width/engineCfg.Scale, engineCfg.Display.Height/engineCfg.Scale)

	engine, err := glade.New(engineCfg, b, textures)
	if err != nil {
		return err
	}

	engine.TransitionTo(demo.TitleScreen(engine))
	return engine.Start(nil)
}

// loadConfig reads the optional config file, then applies the flags that
// were set explicitly.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.NewLoader(filepath.Dir(path)).Load(filepath.Base(path))
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if c.IsSet("backend") || c.String("config") == "" {
		cfg.Backend = c.String("backend")
	}
	if c.IsSet("width") {
		cfg.Display.Width = c.Int("width")
	}
	if c.IsSet("height") {
		cfg.Display.Height = c.Int("height")
	}
	if c.IsSet("scale") {
		cfg.Display.Scale = c.Int("scale")
	}
	if c.IsSet("fps") {
		cfg.Engine.FPS = c.Int("fps")
	}
	if c.IsSet("limiter") {
		cfg.Engine.Limiter = c.String("limiter")
	}
	if c.IsSet("snapshot-interval") {
		cfg.Snapshots.Interval = c.Int("snapshot-interval")
	}
	if c.IsSet("snapshot-dir") {
		cfg.Snapshots.Dir = c.String("snapshot-dir")
	}
	if c.IsSet("snapshot-format") {
		cfg.Snapshots.Format = c.String("snapshot-format")
	}
	if c.IsSet("textures") {
		cfg.Textures.Dir = c.String("textures")
	}
	if c.Bool("profile") {
		cfg.Engine.Profile = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func createBackend(cfg *config.Config, frames int) (backend.Backend, error) {
	switch cfg.Backend {
	case "headless":
		if frames <= 0 {
			return nil, errors.New("headless mode requires --frames option with a positive value")
		}

		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
		slog.SetDefault(slog.New(handler))

		snapshots, err := headless.CreateSnapshotConfig(cfg.Snapshots.Interval, cfg.Snapshots.Dir, "glade", cfg.Snapshots.Format)
		if err != nil {
			return nil, err
		}
		return headless.New(frames, snapshots), nil
	case "sdl2":
		return sdl2.New(), nil
	case "ebiten":
		return ebiten.New(), nil
	default:
		return terminal.New(), nil
	}
}
