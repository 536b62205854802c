package internal

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/0naama/gifportal/internal/portal"
	"github.com/0naama/gifportal/internal/style"
	"github.com/0naama/gifportal/internal/thumbnail"
)

// GalleryScreen shows the submit input and the grid of gifs.
type GalleryScreen struct {
	input    textinput.Model
	viewport viewport.Model

	width, height int
	items         []portal.Item
	model         *Model
}

func NewGalleryScreen(m *Model) *GalleryScreen {
	ti := textinput.New()
	ti.Placeholder = "Enter link to a gif"
	ti.Prompt = "🔗 "
	// links are stored as typed; the program bounds their size
	ti.CharLimit = 0
	ti.Focus()

	s := &GalleryScreen{
		input:    ti,
		viewport: viewport.New(0, 0),
		model:    m,
	}
	s.SetSize(m.width, m.height)
	return s
}

func (s *GalleryScreen) Update(msg tea.Msg) (ScreenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.SetSize(msg.Width, msg.Height)
		return s, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			value := s.input.Value()
			return s, func() tea.Msg { return GallerySubmitMsg{Value: value} }
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			s.viewport, cmd = s.viewport.Update(msg)
			return s, cmd
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *GalleryScreen) View() string {
	input := style.InputStyle.
		Width(s.innerWidth()).
		Render(s.input.View() + "  " + style.HotkeyStyle.Render("(enter) Submit"))

	return renderPortal(s.width, s.height, s.model.cfg.TwitterHandle,
		lipgloss.JoinVertical(lipgloss.Left, input, "", s.viewport.View()),
	)
}

// SetItems replaces the grid contents. Items are shown in the given order.
func (s *GalleryScreen) SetItems(items []portal.Item) {
	s.items = items
	s.Refresh()
}

// Refresh redraws the grid, picking up newly loaded thumbnails.
func (s *GalleryScreen) Refresh() {
	s.viewport.SetContent(s.renderGrid())
}

func (s *GalleryScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.viewport.Width = s.innerWidth()
	// header, input, spacing, footer and the portal frame
	s.viewport.Height = max(height-16, 3)
	s.Refresh()
}

func (s *GalleryScreen) innerWidth() int {
	return max(s.width-12, 20)
}

func (s *GalleryScreen) thumbWidth() int {
	if w := s.model.cfg.ThumbnailWidth; w > 0 {
		return w
	}
	return 24
}

func (s *GalleryScreen) renderGrid() string {
	if len(s.items) == 0 {
		return style.EmptyStyle.Render("No gifs yet. Paste a link above to add the first one.")
	}

	tw := s.thumbWidth()
	cardWidth := tw + style.CardStyle.GetHorizontalFrameSize()
	columns := max(s.viewport.Width/cardWidth, 1)

	var rows []string
	var row []string
	for i, item := range s.items {
		row = append(row, s.renderCard(item, tw))
		if len(row) == columns || i == len(s.items)-1 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	return strings.Join(rows, "\n")
}

func (s *GalleryScreen) renderCard(item portal.Item, width int) string {
	caption := style.CaptionStyle.Render(style.Truncate(item.Link, width))
	if !s.model.thumbnailsEnabled() {
		return style.CardStyle.Render(caption)
	}

	art, loaded := s.model.thumbnails[item.Link]
	switch {
	case !loaded:
		art = thumbnail.Placeholder(width, width/2, "loading…")
	case art == "":
		art = thumbnail.Placeholder(width, width/2, "no preview")
	}
	return style.CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, art, caption))
}
