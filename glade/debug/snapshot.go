package debug

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"

	"github.com/valerio/go-glade/glade/video"
)

// Snapshot formats.
const (
	FormatPNG  = "png"
	FormatWebP = "webp"
)

var ErrUnknownFormat = errors.New("unknown snapshot format")

// EncodeFrame writes buf as an image in the given format. A scale above one
// enlarges the image with nearest-neighbor sampling, which keeps tiny
// composite buffers readable.
func EncodeFrame(w io.Writer, buf *video.PixelBuffer, format string, scale int) error {
	var img image.Image = buf
	if scale > 1 {
		dst := image.NewRGBA(image.Rect(0, 0, buf.Width()*scale, buf.Height()*scale))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), buf, buf.Bounds(), draw.Src, nil)
		img = dst
	}

	switch format {
	case FormatPNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("failed to encode PNG: %w", err)
		}
	case FormatWebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("failed to encode WebP: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return nil
}

// SaveFrameToDir saves buf with a timestamped name inside directory, or the
// working directory when directory is empty. It returns the written path.
func SaveFrameToDir(buf *video.PixelBuffer, baseName, directory, format string, scale int) (string, error) {
	if buf == nil {
		return "", errors.New("no frame data available for snapshot")
	}

	outputDir := directory
	if outputDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		outputDir = cwd
	}

	timestamp := time.Now().Format("20060102_150405.000")
	filePath := filepath.Join(outputDir, fmt.Sprintf("%s_%s.%s", baseName, timestamp, format))

	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", filePath, err)
	}
	defer file.Close()

	if err := EncodeFrame(file, buf, format, scale); err != nil {
		os.Remove(filePath)
		return "", err
	}

	slog.Info("Snapshot saved", "path", filePath, "size", fmt.Sprintf("%dx%d", buf.Width()*max(scale, 1), buf.Height()*max(scale, 1)), "format", format)
	return filePath, nil
}
