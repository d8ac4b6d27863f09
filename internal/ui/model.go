// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/acshell/internal/identity"
	"github.com/jeranaias/acshell/internal/session"
	"github.com/jeranaias/acshell/internal/ui/styles"
	"github.com/jeranaias/acshell/internal/workspace"
)

// =============================================================================
// SHELL MODEL
// =============================================================================

// state identifies which screen the shell is showing.
type state int

const (
	stateLogin state = iota
	stateMenu
	stateBrowser
	stateReader
	stateEditor
	stateConfirmDelete
	stateInfo
)

// WorkspaceChangedMsg is sent by the filesystem watcher when files
// changed outside the shell.
type WorkspaceChangedMsg struct {
	Paths []string
}

// menu entries, in display order.
var menuEntries = []string{
	"Browse files",
	"Create a file",
	"My permissions",
	"Log out",
	"Quit",
}

// Model is the root Bubble Tea model for the shell.
type Model struct {
	state state
	keys  keyMap
	theme *styles.Theme

	store    *identity.Store
	executor *workspace.Executor
	sessions *session.Manager

	width  int
	height int

	user     identity.User
	loggedIn bool

	login   loginModel
	menuIdx int
	browser browserModel
	reader  readerModel
	editor  editorModel
	confirm confirmModel

	// flash is a transient status line shown in the footer.
	flash      string
	flashError bool
	warning    string
}

// New creates the shell model.
func New(store *identity.Store, executor *workspace.Executor, sessions *session.Manager) Model {
	return Model{
		state:    stateLogin,
		keys:     defaultKeyMap(),
		theme:    styles.New(80, 24),
		store:    store,
		executor: executor,
		sessions: sessions,
		login:    newLoginModel(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.login.focusCmd(), session.TickCmd())
}

// setFlash records a transient footer message.
func (m *Model) setFlash(msg string, isError bool) {
	m.flash = msg
	m.flashError = isError
}

// logout drops back to the login screen.
func (m *Model) logout() tea.Cmd {
	m.sessions.End()
	m.loggedIn = false
	m.user = identity.User{}
	m.state = stateLogin
	m.login = newLoginModel()
	m.flash = ""
	m.warning = ""
	return m.login.focusCmd()
}
