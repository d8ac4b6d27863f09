// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// PERMISSIONS VIEW
// =============================================================================

func (m *Model) updateInfo(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(keyMsg, m.keys.Back) || key.Matches(keyMsg, m.keys.Enter) {
			m.state = stateMenu
		}
	}
	return m, nil
}

// permissionsLines builds the body of the permissions screen.
func (m *Model) permissionsLines() []string {
	table := m.executor.Controller().Table()

	perms := table.PermissionsFor(m.user.Role)
	ops := make([]string, 0, len(perms))
	for _, p := range perms {
		ops = append(ops, string(p))
	}

	return []string{
		"User: " + m.user.Username,
		"Role: " + string(m.user.Role),
		"",
		"Operations: " + strings.Join(ops, ", "),
		"Folders:    " + strings.Join(table.FoldersFor(m.user.Role), ", "),
		"Personal:   " + m.user.PersonalFolder(),
	}
}
