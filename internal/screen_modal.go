package internal

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/0naama/gifportal/internal/style"
)

// ModalType identifies the type of modal for proper handling
type ModalType int

const (
	ModalTypeError ModalType = iota
	// ModalTypeWalletMissing blocks until the user acknowledges that no
	// wallet could be found.
	ModalTypeWalletMissing
	// ModalTypeApproveConnection is the wallet's prompt for an explicit connect.
	ModalTypeApproveConnection
)

// Messages sent from ModalScreen to parent
type ModalCancelledMsg struct{}

type ModalButtonClickedMsg struct {
	ButtonClicked string
	Type          ModalType
}

// ModalScreen is a centered dialog with one or two buttons. With two
// buttons the last one is the affirmative choice and starts selected.
type ModalScreen struct {
	form          *huh.Form
	width, height int

	modalType ModalType
	title     string
	content   string
	buttons   []string
}

func NewModalScreen(modalType ModalType, title, content string, buttons []string, m *Model) *ModalScreen {
	if len(buttons) == 0 {
		buttons = []string{"OK"}
	}

	s := &ModalScreen{
		modalType: modalType,
		title:     title,
		content:   content,
		buttons:   buttons,
		width:     m.width,
		height:    m.height,
	}
	s.form = s.buildForm()
	return s
}

func (s *ModalScreen) buildForm() *huh.Form {
	confirm := huh.NewConfirm().Key("confirm")
	if len(s.buttons) == 1 {
		confirm = confirm.Affirmative(s.buttons[0]).Negative("")
	} else {
		selected := true
		confirm = confirm.
			Value(&selected).
			Affirmative(s.buttons[len(s.buttons)-1]).
			Negative(s.buttons[0])
	}

	keyMap := huh.NewDefaultKeyMap()
	keyMap.Confirm.Toggle.SetKeys("left", "right", "h", "l", "tab")

	theme := huh.ThemeCharm()
	theme.Focused.Base = theme.Focused.Base.
		UnsetBorderLeft().
		UnsetBorderStyle()

	return huh.NewForm(huh.NewGroup(confirm)).
		WithWidth(60).
		WithShowHelp(false).
		WithShowErrors(false).
		WithKeyMap(keyMap).
		WithTheme(theme)
}

func (s *ModalScreen) Init() tea.Cmd {
	return s.form.Init()
}

func (s *ModalScreen) Update(msg tea.Msg) (ScreenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.SetSize(msg.Width, msg.Height)
		return s, nil
	case tea.KeyMsg:
		if msg.String() == "esc" {
			return s, func() tea.Msg { return ModalCancelledMsg{} }
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}
	if s.form.State == huh.StateCompleted {
		return s, s.clicked()
	}
	return s, cmd
}

// clicked maps the confirm value back to a button label.
func (s *ModalScreen) clicked() tea.Cmd {
	button := s.buttons[len(s.buttons)-1]
	if !s.form.GetBool("confirm") && len(s.buttons) > 1 {
		button = s.buttons[0]
	}
	modalType := s.modalType
	return func() tea.Msg {
		return ModalButtonClickedMsg{ButtonClicked: button, Type: modalType}
	}
}

func (s *ModalScreen) View() string {
	title := lipgloss.NewStyle().
		Align(lipgloss.Center).
		Render(style.Rainbow(lipgloss.NewStyle(), s.title, style.Blends))

	body := lipgloss.NewStyle().
		Padding(1).
		Render(wordwrap.String(s.content, 56))

	buttons := lipgloss.NewStyle().
		Width(50).
		Align(lipgloss.Center).
		Render(s.form.View())

	return lipgloss.Place(s.width, s.height,
		lipgloss.Center, lipgloss.Center,
		style.DialogBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Center, title, body, buttons)),
		lipgloss.WithWhitespaceChars(style.Background1),
		lipgloss.WithWhitespaceForeground(style.Subtle),
	)
}

func (s *ModalScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// Type returns the kind of modal being shown
func (s *ModalScreen) Type() ModalType {
	return s.modalType
}
