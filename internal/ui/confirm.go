// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// DELETE CONFIRMATION
// =============================================================================

type confirmModel struct {
	path string
}

func (m *Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case keyMsg.String() == "y" || keyMsg.String() == "Y":
		if err := m.executor.Delete(m.user, m.confirm.path); err != nil {
			m.flashOpError(err)
		} else {
			m.setFlash("Deleted "+m.confirm.path, false)
		}
		m.state = stateBrowser
		m.loadBrowser()

	case keyMsg.String() == "n" || keyMsg.String() == "N",
		key.Matches(keyMsg, m.keys.Back):
		m.setFlash("Cancelled.", false)
		m.state = stateBrowser
	}
	return m, nil
}
