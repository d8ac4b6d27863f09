// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/acshell/internal/identity"
)

// =============================================================================
// LOGIN FORM
// =============================================================================

// maxLoginAttempts failed prompts before the shell exits.
const maxLoginAttempts = 3

type loginField int

const (
	fieldUsername loginField = iota
	fieldPassword
	fieldTOTP
)

type loginModel struct {
	username textinput.Model
	password textinput.Model
	totp     textinput.Model

	field    loginField
	needTOTP bool
	attempts int
	errText  string
}

func newLoginModel() loginModel {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Width = 24

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128
	password.Width = 24

	totp := textinput.New()
	totp.Placeholder = "one-time code"
	totp.CharLimit = 8
	totp.Width = 24

	return loginModel{
		username: username,
		password: password,
		totp:     totp,
	}
}

func (l *loginModel) focusCmd() tea.Cmd {
	l.username.Focus()
	return textinput.Blink
}

// loginResultMsg carries the outcome of an authentication attempt.
type loginResultMsg struct {
	user identity.User
	err  error
}

// update handles key input on the login form. It returns a command
// when an authentication attempt should run.
func (m *Model) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	l := &m.login

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "shift+tab":
			l.cycleField()
			return m, nil
		case "enter":
			if l.field == fieldUsername {
				l.setField(fieldPassword)
				return m, nil
			}
			return m, m.authenticateCmd()
		}

	case loginResultMsg:
		return m.handleLoginResult(msg)
	}

	var cmd tea.Cmd
	switch l.field {
	case fieldUsername:
		l.username, cmd = l.username.Update(msg)
	case fieldPassword:
		l.password, cmd = l.password.Update(msg)
	case fieldTOTP:
		l.totp, cmd = l.totp.Update(msg)
	}
	return m, cmd
}

func (l *loginModel) cycleField() {
	next := l.field + 1
	if next > fieldPassword && !l.needTOTP {
		next = fieldUsername
	}
	if next > fieldTOTP {
		next = fieldUsername
	}
	l.setField(next)
}

func (l *loginModel) setField(f loginField) {
	l.field = f
	l.username.Blur()
	l.password.Blur()
	l.totp.Blur()
	switch f {
	case fieldUsername:
		l.username.Focus()
	case fieldPassword:
		l.password.Focus()
	case fieldTOTP:
		l.totp.Focus()
	}
}

func (m *Model) authenticateCmd() tea.Cmd {
	creds := identity.Credentials{
		Username: m.login.username.Value(),
		Password: m.login.password.Value(),
		TOTPCode: m.login.totp.Value(),
	}
	store := m.store
	return func() tea.Msg {
		user, err := store.Authenticate(creds)
		return loginResultMsg{user: user, err: err}
	}
}

func (m *Model) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	l := &m.login

	switch {
	case msg.err == nil:
		m.user = msg.user
		m.loggedIn = true
		m.sessions.Begin(msg.user)
		m.state = stateMenu
		m.menuIdx = 0
		m.setFlash("Logged in as "+msg.user.Username, false)
		return m, nil

	case errors.Is(msg.err, identity.ErrTOTPRequired):
		l.needTOTP = true
		l.errText = ""
		l.setField(fieldTOTP)
		return m, textinput.Blink

	case errors.Is(msg.err, identity.ErrLocked):
		l.errText = "Account temporarily locked. Try again later."

	default:
		l.attempts++
		if l.attempts >= maxLoginAttempts {
			return m, tea.Quit
		}
		l.errText = "Invalid username or password."
	}

	l.password.SetValue("")
	l.totp.SetValue("")
	l.needTOTP = false
	l.setField(fieldPassword)
	return m, textinput.Blink
}
