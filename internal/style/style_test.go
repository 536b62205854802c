package style

import (
	"image/color"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"fits", "https://a.gif", 20, "https://a.gif"},
		{"exact", "abcd", 4, "abcd"},
		{"cut", "abcdefgh", 5, "abcd…"},
		{"zero width", "abc", 0, ""},
		{"wide runes", "✨✨✨✨", 5, "✨✨…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.in, tt.width)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, lipgloss.Width(got), tt.width)
		})
	}
}

func TestRenderSubscreenContainsTitle(t *testing.T) {
	out := RenderSubscreen(60, 20, "Logs", "hello")
	assert.Contains(t, out, "Logs")
	assert.Contains(t, out, "hello")
}

func TestApplyBoldForegroundGrad(t *testing.T) {
	assert.Empty(t, ApplyBoldForegroundGrad("", ColorFairyPink, ColorFairyViolet))

	out := ApplyBoldForegroundGrad("🖼 Portal\nfairy", ColorFairyPink, ColorFairyViolet)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, lipgloss.Width("🖼 Portal"), lipgloss.Width(lines[0]))
	assert.Equal(t, 5, lipgloss.Width(lines[1]))
}

func TestRampEndpoints(t *testing.T) {
	colors := ramp(3, color.Black, color.White)
	assert.Len(t, colors, 3)
	assert.Equal(t, lipgloss.Color("#000000"), colors[0])
	assert.Equal(t, lipgloss.Color("#ffffff"), colors[2])
	assert.Nil(t, ramp(0, ColorFairyPink, ColorFairyViolet))
}
