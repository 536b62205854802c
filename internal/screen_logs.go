package internal

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/0naama/gifportal/internal/style"
)

// LogsCancelledMsg signals user wants to close logs
type LogsCancelledMsg struct{}

type logsKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Refresh key.Binding
	Back    key.Binding
}

func (k logsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Refresh, k.Back}
}

func (k logsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// LogsScreen shows what the client logged, including every remote call
// failure, since the portal itself never surfaces those.
type LogsScreen struct {
	viewport      viewport.Model
	width, height int
	help          help.Model
	keys          logsKeyMap
	debugBuffer   *DebugBuffer
}

func NewLogsScreen(debugBuffer *DebugBuffer, m *Model) *LogsScreen {
	s := &LogsScreen{
		viewport:    viewport.New(max(m.width-10, 0), max(m.height-10, 0)),
		width:       m.width,
		height:      m.height,
		help:        help.New(),
		debugBuffer: debugBuffer,
		keys: logsKeyMap{
			Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
			Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
			Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
			Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		},
	}
	s.RefreshContent()
	return s
}

func (s *LogsScreen) Update(msg tea.Msg) (ScreenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.SetSize(msg.Width, msg.Height)
		return s, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keys.Back):
			return s, func() tea.Msg { return LogsCancelledMsg{} }
		case key.Matches(msg, s.keys.Refresh):
			s.RefreshContent()
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return s, cmd
}

func (s *LogsScreen) View() string {
	footer := lipgloss.JoinHorizontal(
		lipgloss.Left,
		s.help.View(s.keys),
		"  ",
		fmt.Sprintf("%3.f%%", s.viewport.ScrollPercent()*100),
	)
	return style.RenderSubscreen(s.width, s.height, "Logs",
		lipgloss.JoinVertical(lipgloss.Left, s.viewport.View(), " ", footer),
	)
}

func (s *LogsScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.viewport.Width = max(width-10, 0)
	s.viewport.Height = max(height-10, 0)
}

// RefreshContent reloads the buffer and scrolls to the newest line.
func (s *LogsScreen) RefreshContent() {
	if s.debugBuffer != nil {
		s.viewport.SetContent(s.debugBuffer.String())
	}
	s.viewport.GotoBottom()
}
