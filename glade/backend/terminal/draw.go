package terminal

import (
	"log/slog"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-glade/glade/video"
)

func toTcell(c video.Color) tcell.Color {
	r, g, b := c.Channels()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func levelColor(level slog.Level) tcell.Color {
	switch {
	case level >= slog.LevelError:
		return tcell.ColorRed
	case level >= slog.LevelWarn:
		return tcell.ColorYellow
	case level >= slog.LevelInfo:
		return tcell.ColorWhite
	default:
		return tcell.ColorGray
	}
}

// drawText writes text from (x, y), cutting it at maxWidth cells.
func drawText(s tcell.Screen, x, y, maxWidth int, text string, style tcell.Style) {
	i := 0
	for _, ch := range text {
		if i >= maxWidth {
			return
		}
		s.SetContent(x+i, y, ch, nil, style)
		i++
	}
}

func clearRect(s tcell.Screen, x, y, w, h int) {
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			s.SetContent(col, row, ' ', nil, tcell.StyleDefault)
		}
	}
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
