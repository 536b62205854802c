package style

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// ramp returns n colors evenly spaced from start to end, blended in Hcl.
func ramp(n int, start, end color.Color) []lipgloss.Color {
	if n <= 0 {
		return nil
	}
	from, _ := colorful.MakeColor(start)
	to, _ := colorful.MakeColor(end)

	out := make([]lipgloss.Color, n)
	for i := range n {
		var t float64
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		out[i] = lipgloss.Color(from.BlendHcl(to, t).Clamped().Hex())
	}
	return out
}

func graphemes(s string) []string {
	var out []string
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		out = append(out, gr.Str())
	}
	return out
}

// ApplyBoldForegroundGrad renders input bold with a horizontal gradient from
// color1 to color2. Every line of a multi-line input shares one ramp sized
// to the longest line, so columns line up.
func ApplyBoldForegroundGrad(input string, color1, color2 color.Color) string {
	if input == "" {
		return ""
	}

	lines := strings.Split(input, "\n")
	split := make([][]string, len(lines))
	widest := 0
	for i, line := range lines {
		split[i] = graphemes(line)
		widest = max(widest, len(split[i]))
	}

	colors := ramp(widest, color1, color2)
	base := lipgloss.NewStyle().Bold(true)

	var b strings.Builder
	for i, clusters := range split {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, c := range clusters {
			if strings.TrimSpace(c) == "" {
				b.WriteString(c)
				continue
			}
			b.WriteString(base.Foreground(colors[j]).Render(c))
		}
	}
	return b.String()
}
