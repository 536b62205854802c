package internal

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/0naama/gifportal/internal/style"
)

const (
	portalTitle    = "🖼 Fairyverse Portal"
	portalSubTitle = "View your sparkling GIF collection in the fairyverse ✨"
)

// Messages sent from the portal screens to parent

// ConnectRequestedMsg asks the wallet for an explicit connection.
type ConnectRequestedMsg struct{}

// InitializeRequestedMsg asks for the one-time creation of the gif account.
type InitializeRequestedMsg struct{}

// GallerySubmitMsg carries the link typed into the gallery input.
type GallerySubmitMsg struct {
	Value string
}

// renderPortal frames body with the portal header and footer, centered on
// the sparkle background.
func renderPortal(w, h int, twitterHandle, body string) string {
	header := lipgloss.JoinVertical(
		lipgloss.Left,
		style.ApplyBoldForegroundGrad(portalTitle, style.ColorFairyPink, style.ColorFairyViolet),
		style.SubTextStyle.Render(portalSubTitle),
	)

	parts := []string{header, "", body}
	if twitterHandle != "" {
		parts = append(parts, style.FooterStyle.Render(fmt.Sprintf("built on @%s", twitterHandle)))
	}

	return lipgloss.Place(
		w,
		h,
		lipgloss.Center,
		lipgloss.Center,
		style.PortalBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...)),
		lipgloss.WithWhitespaceChars(style.Background1),
		lipgloss.WithWhitespaceForeground(style.Subtle),
	)
}

func hotkey(k, label string) string {
	return fmt.Sprintf("%s %s", style.HotkeyStyle.Render("("+k+")"), label)
}

// ConnectScreen is shown until a wallet session exists.
type ConnectScreen struct {
	width, height int
	twitterHandle string
}

func NewConnectScreen(m *Model) *ConnectScreen {
	return &ConnectScreen{
		width:         m.width,
		height:        m.height,
		twitterHandle: m.cfg.TwitterHandle,
	}
}

func (s *ConnectScreen) Update(msg tea.Msg) (ScreenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.SetSize(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch msg.String() {
		case "c", "enter":
			return s, func() tea.Msg { return ConnectRequestedMsg{} }
		case "q":
			return s, tea.Quit
		}
	}
	return s, nil
}

func (s *ConnectScreen) View() string {
	return renderPortal(s.width, s.height, s.twitterHandle,
		lipgloss.JoinVertical(
			lipgloss.Left,
			hotkey("c", "Connect to Wallet"),
			hotkey("q", "Quit"),
		),
	)
}

func (s *ConnectScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// InitializeScreen is shown while the gif account has not been read.
type InitializeScreen struct {
	width, height int
	twitterHandle string
}

func NewInitializeScreen(m *Model) *InitializeScreen {
	return &InitializeScreen{
		width:         m.width,
		height:        m.height,
		twitterHandle: m.cfg.TwitterHandle,
	}
}

func (s *InitializeScreen) Update(msg tea.Msg) (ScreenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.SetSize(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch msg.String() {
		case "i", "enter":
			return s, func() tea.Msg { return InitializeRequestedMsg{} }
		case "q":
			return s, tea.Quit
		}
	}
	return s, nil
}

func (s *InitializeScreen) View() string {
	return renderPortal(s.width, s.height, s.twitterHandle,
		lipgloss.JoinVertical(
			lipgloss.Left,
			hotkey("i", "Do One-Time Initialization For GIF Program Account"),
			hotkey("q", "Quit"),
		),
	)
}

func (s *InitializeScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
}
