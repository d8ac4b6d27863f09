// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/acshell/internal/workspace"
)

// =============================================================================
// FILE BROWSER
// =============================================================================

// browserRow is one line in the browser: a folder header or a file.
type browserRow struct {
	folder   string
	entry    workspace.Entry
	isHeader bool
}

type browserModel struct {
	rows   []browserRow
	cursor int
}

// loadBrowser rebuilds the listing from the executor.
func (m *Model) loadBrowser() {
	var rows []browserRow

	folders, err := m.executor.Folders(m.user)
	if err != nil {
		m.setFlash("Access denied.", true)
		m.browser.rows = nil
		return
	}
	for _, folder := range folders {
		rows = append(rows, browserRow{folder: folder, isHeader: true})
		entries, err := m.executor.List(m.user, folder)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir {
				continue
			}
			rows = append(rows, browserRow{folder: folder, entry: e})
		}
	}
	m.browser.rows = rows
	if m.browser.cursor >= len(rows) {
		m.browser.cursor = 0
	}
	m.browser.snapToFile(1)
}

// snapToFile moves the cursor off header rows in the given direction.
func (b *browserModel) snapToFile(dir int) {
	for b.cursor >= 0 && b.cursor < len(b.rows) && b.rows[b.cursor].isHeader {
		b.cursor += dir
	}
	if b.cursor < 0 || b.cursor >= len(b.rows) {
		b.cursor = 0
		for b.cursor < len(b.rows) && b.rows[b.cursor].isHeader {
			b.cursor++
		}
	}
}

// selected returns the file under the cursor, if any.
func (b *browserModel) selected() (browserRow, bool) {
	if b.cursor < 0 || b.cursor >= len(b.rows) {
		return browserRow{}, false
	}
	row := b.rows[b.cursor]
	if row.isHeader {
		return browserRow{}, false
	}
	return row, true
}

func (m *Model) updateBrowser(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	b := &m.browser

	switch {
	case key.Matches(keyMsg, m.keys.Up):
		if b.cursor > 0 {
			b.cursor--
			b.snapToFile(-1)
		}

	case key.Matches(keyMsg, m.keys.Down):
		if b.cursor < len(b.rows)-1 {
			b.cursor++
			b.snapToFile(1)
		}

	case key.Matches(keyMsg, m.keys.Enter):
		if row, ok := b.selected(); ok {
			return m.openReader(row.entry.Rel)
		}

	case key.Matches(keyMsg, m.keys.Edit):
		if row, ok := b.selected(); ok {
			return m.openEditor(row.entry.Rel)
		}

	case key.Matches(keyMsg, m.keys.New):
		return m.openCreator()

	case key.Matches(keyMsg, m.keys.Delete):
		if row, ok := b.selected(); ok {
			m.confirm = confirmModel{path: row.entry.Rel}
			m.state = stateConfirmDelete
		}

	case key.Matches(keyMsg, m.keys.Refresh):
		m.loadBrowser()
		m.setFlash("Refreshed.", false)

	case key.Matches(keyMsg, m.keys.Back):
		m.state = stateMenu
	}
	return m, nil
}
