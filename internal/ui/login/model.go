// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package login provides the login and signup screen for the TUI.
package login

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatterm/internal/api"
	"github.com/jeranaias/chatterm/internal/auth"
	"github.com/jeranaias/chatterm/internal/ui/styles"
)

// =============================================================================
// MESSAGES
// =============================================================================

// AuthenticatedMsg signals that login succeeded and the app should
// switch to the chat view.
type AuthenticatedMsg struct{}

// SignupDoneMsg signals that account creation succeeded. The user
// still has to log in.
type SignupDoneMsg struct{}

// authResultMsg carries the outcome of a login or signup attempt.
type authResultMsg struct {
	signup bool
	err    error
}

// =============================================================================
// FORM MODES AND FIELDS
// =============================================================================

// Mode selects which form the screen shows.
type Mode int

const (
	ModeLogin Mode = iota
	ModeSignup
)

const (
	fieldUsername = iota
	fieldPassword
	fieldConfirm
)

// =============================================================================
// LOGIN MODEL
// =============================================================================

// Model is the Bubble Tea model for the login and signup screen.
type Model struct {
	controller *auth.Controller
	theme      *styles.Theme

	mode    Mode
	inputs  []textinput.Model
	focused int

	submitting bool
	errText    string
	infoText   string

	width  int
	height int
}

// New creates the login screen bound to an auth controller.
func New(controller *auth.Controller, theme *styles.Theme) Model {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	confirm := textinput.New()
	confirm.Placeholder = "confirm password"
	confirm.CharLimit = 128
	confirm.EchoMode = textinput.EchoPassword
	confirm.EchoCharacter = '*'

	return Model{
		controller: controller,
		theme:      theme,
		mode:       ModeLogin,
		inputs:     []textinput.Model{username, password, confirm},
		width:      80,
		height:     24,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case authResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.errText = api.UserMessage(msg.err)
			// Validation failures carry text written for the user.
			var clientErr *api.ClientError
			if api.IsValidationError(msg.err) && errors.As(msg.err, &clientErr) {
				m.errText = clientErr.Message
			}
			return m, nil
		}
		if msg.signup {
			m.mode = ModeLogin
			m.infoText = "Account created. Log in to continue."
			m.errText = ""
			m.resetFields()
			return m, SignupDone
		}
		return m, Authenticated

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateFocused(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.submitting {
		return m, nil
	}

	switch msg.String() {
	case "tab", "down":
		m.focusNext(1)
		return m, nil
	case "shift+tab", "up":
		m.focusNext(-1)
		return m, nil
	case "ctrl+t":
		m.toggleMode()
		return m, nil
	case "esc":
		m.errText = ""
		return m, nil
	case "enter":
		return m.submit()
	}

	return m.updateFocused(msg)
}

func (m Model) updateFocused(msg tea.Msg) (Model, tea.Cmd) {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}
	return m, tea.Batch(cmds...)
}

// fieldCount returns how many inputs the current mode uses.
func (m Model) fieldCount() int {
	if m.mode == ModeSignup {
		return 3
	}
	return 2
}

func (m *Model) focusNext(dir int) {
	n := m.fieldCount()
	m.inputs[m.focused].Blur()
	m.focused = (m.focused + dir + n) % n
	m.inputs[m.focused].Focus()
}

func (m *Model) toggleMode() {
	if m.mode == ModeLogin {
		m.mode = ModeSignup
	} else {
		m.mode = ModeLogin
	}
	m.errText = ""
	m.infoText = ""
	if m.focused >= m.fieldCount() {
		m.inputs[m.focused].Blur()
		m.focused = 0
		m.inputs[0].Focus()
	}
}

func (m *Model) resetFields() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
	m.focused = 0
	m.inputs[0].Focus()
}

// submit validates locally and dispatches the network call.
func (m Model) submit() (Model, tea.Cmd) {
	username := strings.TrimSpace(m.inputs[fieldUsername].Value())
	password := m.inputs[fieldPassword].Value()

	if username == "" || password == "" {
		m.errText = "Username and password are required"
		return m, nil
	}

	if m.mode == ModeSignup {
		confirm := m.inputs[fieldConfirm].Value()
		if password != confirm {
			m.errText = "Passwords do not match"
			return m, nil
		}
		m.submitting = true
		m.errText = ""
		return m, m.signupCmd(username, password, confirm)
	}

	m.submitting = true
	m.errText = ""
	return m, m.loginCmd(username, password)
}

func (m Model) loginCmd(username, password string) tea.Cmd {
	controller := m.controller
	return func() tea.Msg {
		err := controller.Login(context.Background(), username, password)
		return authResultMsg{err: err}
	}
}

func (m Model) signupCmd(username, password, confirm string) tea.Cmd {
	controller := m.controller
	return func() tea.Msg {
		err := controller.Signup(context.Background(), username, password, confirm)
		return authResultMsg{signup: true, err: err}
	}
}

// Authenticated is the command emitted when login completes.
func Authenticated() tea.Msg {
	return AuthenticatedMsg{}
}

// SignupDone is the command emitted when signup completes.
func SignupDone() tea.Msg {
	return SignupDoneMsg{}
}

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	title := "Log in to chatterm"
	action := "create account: ctrl+t"
	if m.mode == ModeSignup {
		title = "Create a chatterm account"
		action = "back to login: ctrl+t"
	}

	var rows []string
	rows = append(rows, m.theme.FormTitle.Render(title), "")

	labels := []string{"Username", "Password", "Confirm password"}
	for i := 0; i < m.fieldCount(); i++ {
		rows = append(rows,
			m.theme.FormLabel.Render(labels[i]),
			m.inputs[i].View(),
		)
	}

	rows = append(rows, "")

	if m.submitting {
		rows = append(rows, m.theme.FormHint.Render("Signing in..."))
	} else if m.errText != "" {
		rows = append(rows, styles.RenderError(m.errText))
	} else if m.infoText != "" {
		rows = append(rows, styles.RenderSuccess(m.infoText))
	}

	rows = append(rows, "",
		m.theme.FormHint.Render("enter: submit | tab: next field | "+action+" | ctrl+c: quit"))

	form := m.theme.FormBox.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, form)
}
