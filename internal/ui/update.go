// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/acshell/internal/session"
	"github.com/jeranaias/acshell/internal/workspace"
)

// =============================================================================
// ROOT UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.Resize(msg.Width, msg.Height)
		if m.state == stateReader {
			m.reader.viewport.Width = msg.Width - 4
			m.reader.viewport.Height = msg.Height - 4
		}
		return m, nil

	case session.TickMsg:
		return m, m.sessions.HandleTick()

	case session.WarningMsg:
		m.warning = "Session expires in " + session.FormatDuration(msg.Remaining)
		return m, nil

	case session.ExpiredMsg:
		if m.loggedIn {
			m.setFlash("Session expired. Please log in again.", true)
			return m, m.logout()
		}
		return m, nil

	case WorkspaceChangedMsg:
		if m.state == stateBrowser {
			m.loadBrowser()
		}
		return m, nil

	case loginResultMsg:
		return m.updateLogin(msg)

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		m.flash = ""
		if m.loggedIn {
			m.sessions.Touch()
			m.warning = ""
		}
	}

	switch m.state {
	case stateLogin:
		return m.updateLogin(msg)
	case stateMenu:
		return m.updateMenu(msg)
	case stateBrowser:
		return m.updateBrowser(msg)
	case stateReader:
		return m.updateReader(msg)
	case stateEditor:
		return m.updateEditor(msg)
	case stateConfirmDelete:
		return m.updateConfirm(msg)
	case stateInfo:
		return m.updateInfo(msg)
	}
	return m, nil
}

func (m *Model) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Up):
		if m.menuIdx > 0 {
			m.menuIdx--
		}

	case key.Matches(keyMsg, m.keys.Down):
		if m.menuIdx < len(menuEntries)-1 {
			m.menuIdx++
		}

	case key.Matches(keyMsg, m.keys.Enter):
		switch m.menuIdx {
		case 0: // Browse files
			m.loadBrowser()
			m.state = stateBrowser
		case 1: // Create a file
			return m.openCreator()
		case 2: // My permissions
			m.state = stateInfo
		case 3: // Log out
			return m, m.logout()
		case 4: // Quit
			return m, tea.Quit
		}
	}
	return m, nil
}

// flashOpError maps executor errors to user-facing footer messages.
// Denials stay generic: the message never reveals whether the target
// exists.
func (m *Model) flashOpError(err error) {
	switch {
	case errors.Is(err, workspace.ErrDenied):
		m.setFlash("Access denied.", true)
	case errors.Is(err, workspace.ErrNotFound):
		m.setFlash("File not found.", true)
	case errors.Is(err, workspace.ErrAlreadyExists):
		m.setFlash("File already exists.", true)
	case errors.Is(err, workspace.ErrNameInvalid):
		m.setFlash("Invalid file name.", true)
	default:
		m.setFlash("Operation failed.", true)
	}
}
