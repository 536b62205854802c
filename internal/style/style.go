package style

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/gamut"
)

const (
	ColorLightGrey = lipgloss.Color("245")
	ColorCyan      = lipgloss.Color("63")
	ColorFuscia    = lipgloss.Color("170")
	ColorDarkGrey  = lipgloss.Color("241")
	ColorGrey2     = lipgloss.Color("235")
	ColorGrey3     = lipgloss.Color("236")

	// Portal header gradient.
	ColorFairyPink   = lipgloss.Color("#F25D94")
	ColorFairyViolet = lipgloss.Color("#874BFD")
)

const Background1 = "✧"

var (
	HotkeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	SubTextStyle = lipgloss.NewStyle().
			Foreground(ColorLightGrey).
			Italic(true)

	SubTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 0, 1).
			Foreground(ColorFuscia)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorFuscia)

	SubScreenStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ColorCyan).
			Background(ColorGrey2).
			Padding(1, 1)

	PortalBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorFairyViolet).
			Padding(1, 2)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorCyan).
			Padding(0, 1)

	// One tile of the gallery grid.
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorFairyPink).
			Padding(0, 1).
			MarginRight(1)

	CaptionStyle = lipgloss.NewStyle().
			Foreground(ColorDarkGrey)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorDarkGrey).
			PaddingTop(1)

	EmptyStyle = lipgloss.NewStyle().
			Foreground(ColorDarkGrey).
			Italic(true)
)

var Subtle = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}

var DialogBoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorFairyViolet).
	Padding(1, 0).
	BorderTop(true).
	BorderLeft(true).
	BorderRight(true).
	BorderBottom(true)

var Blends = gamut.Blends(lipgloss.Color("#F25D94"), lipgloss.Color("#EDFF82"), 50)

// Rainbow colors each rune of s with the next color of the palette.
func Rainbow(base lipgloss.Style, s string, colors []color.Color) string {
	if len(colors) == 0 {
		return base.Render(s)
	}
	var b strings.Builder
	i := 0
	for _, r := range s {
		c, _ := colorful.MakeColor(colors[i%len(colors)])
		b.WriteString(base.Foreground(lipgloss.Color(c.Hex())).Render(string(r)))
		i++
	}
	return b.String()
}

// RenderSubscreen centers a titled panel over the sparkle background.
func RenderSubscreen(w, h int, title, content string) string {
	return lipgloss.Place(
		w,
		h,
		lipgloss.Center,
		lipgloss.Center,
		SubScreenStyle.Render(
			lipgloss.JoinVertical(
				lipgloss.Left,
				TitleStyle.Render(title),
				content,
			),
		),
		lipgloss.WithWhitespaceChars(Background1),
		lipgloss.WithWhitespaceForeground(Subtle),
	)
}

// Truncate shortens s to at most width cells, ending in an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
