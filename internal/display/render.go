package display

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/nutshell/internal/frame"
)

const upperHalf = "▀"

func hex(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

// Render draws a snapshot with half-block characters, two pixel rows per
// text line. An odd last row is drawn against the terminal background.
func Render(s *frame.VideoSample) string {
	if s == nil || s.Width == 0 || s.Height == 0 {
		return ""
	}
	var b strings.Builder
	for y := 0; y < s.Height; y += 2 {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < s.Width; x++ {
			style := lipgloss.NewStyle().Foreground(hex(s.At(x, y)))
			if y+1 < s.Height {
				style = style.Background(hex(s.At(x, y+1)))
			}
			b.WriteString(style.Render(upperHalf))
		}
	}
	return b.String()
}
