// Package thumbnail renders linked images as terminal half-block art.
package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	maxImageBytes = 16 << 20
	// maxPixels bounds the decoded frame; links come from anyone who can
	// append to the list.
	maxPixels = 4096 * 4096
)

var ErrImageTooLarge = errors.New("image too large")

// Fetch downloads the image at url and renders it width cells wide. For an
// animated GIF only the first frame is drawn.
func Fetch(ctx context.Context, client *http.Client, url string, width int) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: %s", url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", url, err)
	}
	if err := checkSize(cfg); err != nil {
		return "", fmt.Errorf("decode %s: %w", url, err)
	}

	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", url, err)
	}
	return Render(img, width), nil
}

func checkSize(cfg image.Config) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}
	return nil
}

// Render draws img width cells wide. Each cell carries two vertical pixels:
// the upper one as the foreground of "▀", the lower one as its background.
// Images taller than they are wide are squeezed to at most width rows.
func Render(img image.Image, width int) string {
	b := img.Bounds()
	if width <= 0 || b.Dx() == 0 || b.Dy() == 0 {
		return ""
	}

	rows := (int64(width)*int64(b.Dy())/int64(b.Dx()) + 1) / 2
	rows = min(max(rows, 1), int64(width))

	dst := image.NewRGBA(image.Rect(0, 0, width, int(rows)*2))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)

	var out strings.Builder
	for y := 0; y < int(rows)*2; y += 2 {
		if y > 0 {
			out.WriteByte('\n')
		}
		for x := 0; x < width; x++ {
			out.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(hex(dst.At(x, y)))).
				Background(lipgloss.Color(hex(dst.At(x, y+1)))).
				Render("▀"))
		}
	}
	return out.String()
}

func hex(c color.Color) string {
	cf, _ := colorful.MakeColor(c)
	return cf.Hex()
}

// Placeholder is drawn where an image could not be loaded.
func Placeholder(width, rows int, label string) string {
	if width <= 0 {
		return ""
	}
	if rows < 1 {
		rows = 1
	}
	return lipgloss.NewStyle().
		Width(width).
		Height(rows).
		Align(lipgloss.Center, lipgloss.Center).
		Faint(true).
		Render(label)
}
