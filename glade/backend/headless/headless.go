package headless

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/valerio/go-glade/glade/backend"
	"github.com/valerio/go-glade/glade/debug"
	"github.com/valerio/go-glade/glade/render"
	"github.com/valerio/go-glade/glade/video"
)

// Backend implements the Backend interface for automated testing and batch
// processing. It never displays anything; it counts what would have been
// pushed to a display and optionally saves snapshots of the device buffer.
type Backend struct {
	config         backend.BackendConfig
	buffer         *video.PixelBuffer
	frameCount     int
	maxFrames      int
	snapshotConfig SnapshotConfig
	stats          Stats
}

// Stats describes the display traffic since Init.
type Stats struct {
	Frames        int
	Sections      int
	PixelsWritten int
	// IdleFrames counts frames that wrote no section at all.
	IdleFrames int

	frameSections int
}

// SnapshotConfig holds configuration for frame snapshots
type SnapshotConfig struct {
	Enabled   bool
	Interval  int    // Save snapshot every N frames
	Directory string // Directory to save snapshots
	BaseName  string // Prefix for snapshot filenames
	Format    string // debug.FormatPNG or debug.FormatWebP
}

// New creates a backend that quits after maxFrames frames. Zero runs until
// the engine stops it.
func New(maxFrames int, snapshotConfig SnapshotConfig) *Backend {
	return &Backend{
		maxFrames:      maxFrames,
		snapshotConfig: snapshotConfig,
	}
}

func (h *Backend) Init(config backend.BackendConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	buffer, err := video.NewPixelBuffer(config.Width, config.Height)
	if err != nil {
		return fmt.Errorf("failed to allocate device buffer: %w", err)
	}

	h.config = config
	h.buffer = buffer
	h.frameCount = 0
	h.stats = Stats{}

	slog.Info("Running headless mode",
		"frames", h.maxFrames,
		"display", fmt.Sprintf("%dx%d", config.Width, config.Height),
		"snapshot_interval", h.snapshotConfig.Interval,
		"snapshot_dir", h.snapshotConfig.Directory)
	return nil
}

func (h *Backend) Buffer() *video.PixelBuffer { return h.buffer }

func (h *Backend) WriteSection(left, top, right, bottom int) error {
	if h.buffer == nil {
		return backend.ErrNotInitialized
	}

	region, ok := render.ClipSection(h.buffer, left, top, right, bottom)
	if !ok {
		return nil
	}

	h.stats.Sections++
	h.stats.frameSections++
	h.stats.PixelsWritten += region.Area()
	return nil
}

// Update finishes a frame and handles snapshots
func (h *Backend) Update() ([]backend.InputEvent, error) {
	if h.buffer == nil {
		return nil, backend.ErrNotInitialized
	}

	var events []backend.InputEvent

	h.frameCount++
	h.stats.Frames++
	if h.stats.frameSections == 0 {
		h.stats.IdleFrames++
	}
	h.stats.frameSections = 0

	// Save snapshot if needed
	if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval == 0 {
		h.saveSnapshot()
	}

	// Log progress periodically
	if h.frameCount%100 == 0 {
		slog.Debug("Frame progress", "completed", h.frameCount, "total", h.maxFrames)
	}

	// Check if we've reached the target frame count
	if h.maxFrames > 0 && h.frameCount >= h.maxFrames {
		// Save final snapshot if enabled and we haven't just saved one
		if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval != 0 {
			h.saveSnapshot()
		}

		slog.Info("Headless execution completed",
			"frames", h.frameCount,
			"sections", h.stats.Sections,
			"pixels", h.stats.PixelsWritten,
			"idle_frames", h.stats.IdleFrames)

		// Signal completion via quit event
		events = append(events, backend.QuitEvent())
	}

	return events, nil
}

// Stats returns the display traffic counters.
func (h *Backend) Stats() Stats { return h.stats }

func (h *Backend) Cleanup() error {
	return nil
}

// CreateSnapshotConfig creates a snapshot configuration from CLI parameters
func CreateSnapshotConfig(interval int, directory, baseName, format string) (SnapshotConfig, error) {
	config := SnapshotConfig{
		Enabled:  interval > 0,
		Interval: interval,
		BaseName: baseName,
		Format:   format,
	}

	if !config.Enabled {
		return config, nil
	}
	if config.BaseName == "" {
		config.BaseName = "glade"
	}
	if config.Format == "" {
		config.Format = debug.FormatPNG
	}
	if config.Format != debug.FormatPNG && config.Format != debug.FormatWebP {
		return config, fmt.Errorf("%w: %q", debug.ErrUnknownFormat, config.Format)
	}

	// Set up snapshot directory
	if directory == "" {
		tempDir, err := os.MkdirTemp("", "glade-snapshots-*")
		if err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = tempDir
	} else {
		if err := os.MkdirAll(directory, 0755); err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = directory
	}

	return config, nil
}

// saveSnapshot saves the device buffer for the current frame
func (h *Backend) saveSnapshot() {
	baseName := fmt.Sprintf("%s_frame_%d", h.snapshotConfig.BaseName, h.frameCount)

	if _, err := debug.SaveFrameToDir(h.buffer, baseName, h.snapshotConfig.Directory, h.snapshotConfig.Format, 1); err != nil {
		slog.Error("Failed to save snapshot", "frame", h.frameCount, "error", err)
	}
}
