package internal

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/0naama/gifportal/internal/style"
)

// LoadingCancelledMsg is sent when the user abandons the pending remote call
type LoadingCancelledMsg struct{}

// LoadingScreen covers the portal while a remote call is in flight.
type LoadingScreen struct {
	spinner       spinner.Model
	message       string
	width, height int
}

func NewLoadingScreen(message string, m *Model) (*LoadingScreen, tea.Cmd) {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(style.ColorFairyPink)

	screen := &LoadingScreen{
		spinner: s,
		message: message,
		width:   m.width,
		height:  m.height,
	}
	return screen, screen.spinner.Tick
}

func (s *LoadingScreen) Update(msg tea.Msg) (ScreenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.SetSize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if msg.String() == "esc" {
			return s, func() tea.Msg { return LoadingCancelledMsg{} }
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *LoadingScreen) View() string {
	title := lipgloss.NewStyle().
		Align(lipgloss.Center).
		Render(style.Rainbow(lipgloss.NewStyle(), "Waiting on the network", style.Blends))

	body := lipgloss.NewStyle().
		Padding(1).
		Width(50).
		Align(lipgloss.Center).
		Render(s.spinner.View() + " " + s.message)

	hint := style.SubTextStyle.Render("esc to stop waiting")

	return lipgloss.Place(s.width, s.height,
		lipgloss.Center, lipgloss.Center,
		style.DialogBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Center, title, body, hint)),
		lipgloss.WithWhitespaceChars(style.Background1),
		lipgloss.WithWhitespaceForeground(style.Subtle),
	)
}

func (s *LoadingScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
}
