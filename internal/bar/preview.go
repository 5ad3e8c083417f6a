package bar

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Theme holds the colours the bar is drawn with, in packed 0x00BBGGRR form.
type Theme struct {
	Background uint32
	Light      bool
}

func (t Theme) foreground() uint32 {
	if t.Light {
		return 0x000000
	}
	return 0xffffff
}

func fromPacked(c uint32) colorful.Color {
	return colorful.Color{
		R: float64(c&0xff) / 255,
		G: float64((c>>8)&0xff) / 255,
		B: float64((c>>16)&0xff) / 255,
	}
}

func toPacked(c colorful.Color) uint32 {
	r, g, b := c.Clamped().RGB255()
	return uint32(b)<<16 | uint32(g)<<8 | uint32(r)
}

// hex converts a packed 0x00BBGGRR colour into "#rrggbb".
func hex(c uint32) lipgloss.Color {
	return lipgloss.Color(fromPacked(c).Hex())
}

// Highlight derives the active-workspace colour from the bar background:
// a step towards white on dark themes and towards black on light ones.
func Highlight(bg uint32, light bool) uint32 {
	target := colorful.Color{R: 1, G: 1, B: 1}
	if light {
		target = colorful.Color{}
	}
	return toPacked(fromPacked(bg).BlendLab(target, 0.25))
}

func (t Theme) style(txt Text) lipgloss.Style {
	fg, bg := t.foreground(), t.Background
	if txt.FG != nil {
		fg = *txt.FG
	}
	if txt.BG != nil {
		bg = *txt.BG
	}
	return lipgloss.NewStyle().Foreground(hex(fg)).Background(hex(bg))
}

func (t Theme) section(segs []Segment) string {
	var b strings.Builder
	for _, seg := range segs {
		for _, txt := range seg.Texts {
			b.WriteString(t.style(txt).Render(txt.Value))
		}
	}
	return b.String()
}

// Preview draws a snapshot as a single terminal line of the given width,
// with the centre section centred and the right section flush right.
func Preview(s Snapshot, t Theme, width int) string {
	left := t.section(s.Left)
	center := t.section(s.Center)
	right := t.section(s.Right)

	fill := lipgloss.NewStyle().Background(hex(t.Background))
	used := lipgloss.Width(left) + lipgloss.Width(center) + lipgloss.Width(right)
	if width <= used {
		return left + center + right
	}

	free := width - used
	leftGap := (width-lipgloss.Width(center))/2 - lipgloss.Width(left)
	if leftGap < 0 {
		leftGap = 0
	}
	if leftGap > free {
		leftGap = free
	}
	return left +
		fill.Render(strings.Repeat(" ", leftGap)) +
		center +
		fill.Render(strings.Repeat(" ", free-leftGap)) +
		right
}

// PlainText flattens a snapshot without styling.
func PlainText(s Snapshot) string {
	var b strings.Builder
	for _, segs := range [][]Segment{s.Left, s.Center, s.Right} {
		for _, seg := range segs {
			for _, txt := range seg.Texts {
				b.WriteString(txt.Value)
			}
		}
	}
	return b.String()
}
