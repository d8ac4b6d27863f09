// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// FILE READER
// =============================================================================

type readerModel struct {
	path     string
	viewport viewport.Model
}

// openReader reads and renders a file into the viewport.
func (m *Model) openReader(relPath string) (tea.Model, tea.Cmd) {
	data, err := m.executor.Read(m.user, relPath)
	if err != nil {
		m.flashOpError(err)
		return m, nil
	}

	width := m.width
	if width <= 0 {
		width = 80
	}
	height := m.height - 4
	if height < 5 {
		height = 5
	}

	vp := viewport.New(width-4, height)
	vp.SetContent(renderFile(relPath, data, width-6))

	m.reader = readerModel{path: relPath, viewport: vp}
	m.state = stateReader
	return m, nil
}

func (m *Model) updateReader(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Back):
			m.state = stateBrowser
			return m, nil
		case key.Matches(keyMsg, m.keys.Edit):
			return m.openEditor(m.reader.path)
		}
	}

	var cmd tea.Cmd
	m.reader.viewport, cmd = m.reader.viewport.Update(msg)
	return m, cmd
}
