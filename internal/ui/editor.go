// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// FILE EDITOR
// =============================================================================

type editorModel struct {
	// creating is true for a new file: the path field is editable and
	// the save goes through Create instead of Edit.
	creating bool
	path     textinput.Model
	body     textarea.Model
	// pathFocused tracks which control receives input.
	pathFocused bool
	folders     []string
}

// openEditor loads an existing file into the editor.
func (m *Model) openEditor(relPath string) (tea.Model, tea.Cmd) {
	data, err := m.executor.Read(m.user, relPath)
	if err != nil {
		m.flashOpError(err)
		return m, nil
	}

	ed := m.newEditor(false)
	ed.path.SetValue(relPath)
	ed.body.SetValue(string(data))
	ed.body.Focus()

	m.editor = ed
	m.state = stateEditor
	return m, textarea.Blink
}

// openCreator opens an empty editor for a new file.
func (m *Model) openCreator() (tea.Model, tea.Cmd) {
	folders, err := m.executor.CreationFolders(m.user)
	if err != nil {
		m.flashOpError(err)
		return m, nil
	}

	ed := m.newEditor(true)
	ed.folders = folders
	ed.pathFocused = true
	ed.path.Focus()

	m.editor = ed
	m.state = stateEditor
	return m, textinput.Blink
}

func (m *Model) newEditor(creating bool) editorModel {
	path := textinput.New()
	path.Placeholder = "folder/filename.txt"
	path.CharLimit = 256
	path.Width = 40

	body := textarea.New()
	body.Placeholder = "File content..."
	width := m.width - 6
	if width < 20 {
		width = 60
	}
	height := m.height - 8
	if height < 5 {
		height = 10
	}
	body.SetWidth(width)
	body.SetHeight(height)

	return editorModel{creating: creating, path: path, body: body}
}

func (m *Model) updateEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	ed := &m.editor

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.keys.Back):
			m.state = stateBrowser
			m.loadBrowser()
			return m, nil

		case key.Matches(keyMsg, m.keys.Save):
			return m.saveEditor()

		case keyMsg.String() == "tab" && ed.creating:
			ed.pathFocused = !ed.pathFocused
			if ed.pathFocused {
				ed.body.Blur()
				ed.path.Focus()
				return m, textinput.Blink
			}
			ed.path.Blur()
			ed.body.Focus()
			return m, textarea.Blink

		case keyMsg.String() == "enter" && ed.creating && ed.pathFocused:
			ed.pathFocused = false
			ed.path.Blur()
			ed.body.Focus()
			return m, textarea.Blink
		}
	}

	var cmd tea.Cmd
	if ed.pathFocused {
		ed.path, cmd = ed.path.Update(msg)
	} else {
		ed.body, cmd = ed.body.Update(msg)
	}
	return m, cmd
}

func (m *Model) saveEditor() (tea.Model, tea.Cmd) {
	ed := &m.editor
	relPath := strings.TrimSpace(ed.path.Value())
	if relPath == "" {
		m.setFlash("Enter a file path first.", true)
		return m, nil
	}
	content := []byte(ed.body.Value())

	var err error
	if ed.creating {
		err = m.executor.Create(m.user, relPath, content)
	} else {
		err = m.executor.Edit(m.user, relPath, content)
	}
	if err != nil {
		m.flashOpError(err)
		return m, nil
	}

	m.setFlash("Saved "+relPath, false)
	m.state = stateBrowser
	m.loadBrowser()
	return m, nil
}
