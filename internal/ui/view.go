// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/acshell/internal/util"
)

// =============================================================================
// ROOT VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	var body string
	switch m.state {
	case stateLogin:
		body = m.viewLogin()
	case stateMenu:
		body = m.viewMenu()
	case stateBrowser:
		body = m.viewBrowser()
	case stateReader:
		body = m.viewReader()
	case stateEditor:
		body = m.viewEditor()
	case stateConfirmDelete:
		body = m.viewConfirm()
	case stateInfo:
		body = m.viewInfo()
	}
	return m.viewHeader() + "\n" + body + "\n" + m.viewStatusBar()
}

func (m Model) viewHeader() string {
	title := m.theme.HeaderTitle.Render("acshell")
	right := ""
	if m.loggedIn {
		right = m.user.Username + " " +
			m.theme.HeaderRole.Render("["+string(m.user.Role)+"]")
	}

	width := m.theme.Width
	gap := width - lipgloss.Width(title) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Render(title + strings.Repeat(" ", gap) + right)
}

func (m Model) viewStatusBar() string {
	var parts []string

	switch {
	case m.flash != "":
		if m.flashError {
			parts = append(parts, m.theme.Error.Render(m.flash))
		} else {
			parts = append(parts, m.theme.Success.Render(m.flash))
		}
	case m.warning != "":
		parts = append(parts, m.theme.Warning.Render(m.warning))
	}

	parts = append(parts, m.shortcuts())
	return m.theme.StatusBar.Render(strings.Join(parts, "  "))
}

// shortcuts returns the key hints for the current screen.
func (m Model) shortcuts() string {
	var pairs [][2]string
	switch m.state {
	case stateLogin:
		pairs = [][2]string{{"tab", "next field"}, {"enter", "log in"}, {"ctrl+c", "quit"}}
	case stateMenu:
		pairs = [][2]string{{"↑/↓", "move"}, {"enter", "select"}, {"ctrl+c", "quit"}}
	case stateBrowser:
		pairs = [][2]string{
			{"enter", "open"}, {"e", "edit"}, {"n", "new"},
			{"d", "delete"}, {"r", "refresh"}, {"esc", "menu"},
		}
	case stateReader:
		pairs = [][2]string{{"↑/↓", "scroll"}, {"e", "edit"}, {"esc", "back"}}
	case stateEditor:
		pairs = [][2]string{{"ctrl+s", "save"}, {"esc", "cancel"}}
	case stateConfirmDelete:
		pairs = [][2]string{{"y", "delete"}, {"n", "cancel"}}
	case stateInfo:
		pairs = [][2]string{{"esc", "back"}}
	}

	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, m.theme.ShortcutKey.Render(p[0])+" "+m.theme.ShortcutDesc.Render(p[1]))
	}
	return strings.Join(out, "  ")
}

// =============================================================================
// SCREENS
// =============================================================================

func (m Model) viewLogin() string {
	l := m.login

	var b strings.Builder
	b.WriteString(m.theme.DialogTitle.Render("Sign in") + "\n\n")
	b.WriteString(m.fieldLabel("Username", l.field == fieldUsername) + " " + l.username.View() + "\n")
	b.WriteString(m.fieldLabel("Password", l.field == fieldPassword) + " " + l.password.View() + "\n")
	if l.needTOTP {
		b.WriteString(m.fieldLabel("Code    ", l.field == fieldTOTP) + " " + l.totp.View() + "\n")
	}
	if l.errText != "" {
		b.WriteString("\n" + m.theme.Error.Render(l.errText) + "\n")
	}

	box := m.theme.InputBox.Render(b.String())
	return lipgloss.Place(m.theme.Width, m.contentHeight(), lipgloss.Center, lipgloss.Center, box)
}

func (m Model) fieldLabel(name string, active bool) string {
	if active {
		return m.theme.FieldActive.Render("> " + name)
	}
	return m.theme.FieldLabel.Render("  " + name)
}

func (m Model) viewMenu() string {
	var b strings.Builder
	for i, entry := range menuEntries {
		if i == m.menuIdx {
			b.WriteString(m.theme.MenuSelected.Render("> "+entry) + "\n")
		} else {
			b.WriteString(m.theme.MenuItem.Render("  "+entry) + "\n")
		}
	}
	return lipgloss.Place(m.theme.Width, m.contentHeight(), lipgloss.Center, lipgloss.Center, b.String())
}

func (m Model) viewBrowser() string {
	if len(m.browser.rows) == 0 {
		return m.theme.Hint.Render("  No accessible files.")
	}

	var b strings.Builder
	for i, row := range m.browser.rows {
		if row.isHeader {
			b.WriteString("\n" + m.theme.FolderName.Render(row.folder+"/") + "\n")
			continue
		}
		name := util.TruncateWidth(row.entry.Name, 48)
		meta := fmt.Sprintf("%6d B  %s", row.entry.Size, row.entry.ModTime.Format("2006-01-02 15:04"))
		line := fmt.Sprintf("  %-50s %s", name, m.theme.FileMeta.Render(meta))
		if i == m.browser.cursor {
			b.WriteString(m.theme.MenuSelected.Render(line) + "\n")
		} else {
			b.WriteString(m.theme.MenuItem.Render(line) + "\n")
		}
	}
	return b.String()
}

func (m Model) viewReader() string {
	title := m.theme.FolderName.Render(util.TruncateRunes(m.reader.path, 64))
	return title + "\n" + m.theme.ContentBox.Render(m.reader.viewport.View())
}

func (m Model) viewEditor() string {
	ed := m.editor

	var b strings.Builder
	if ed.creating {
		b.WriteString(m.theme.DialogTitle.Render("New file") + "\n")
		b.WriteString(m.fieldLabel("Path", ed.pathFocused) + " " + ed.path.View() + "\n")
		if len(ed.folders) > 0 {
			b.WriteString(m.theme.Hint.Render("  folders: "+strings.Join(ed.folders, ", ")) + "\n")
		}
	} else {
		b.WriteString(m.theme.FolderName.Render(ed.path.Value()) + "\n")
	}
	b.WriteString("\n" + ed.body.View())
	return b.String()
}

func (m Model) viewConfirm() string {
	body := m.theme.DialogTitle.Render("Delete file?") + "\n\n" +
		m.confirm.path + "\n\n" +
		m.theme.DangerButton.Render("y: delete") + "  " +
		m.theme.MenuItem.Render("n: cancel")
	box := m.theme.DialogBox.Render(body)
	return lipgloss.Place(m.theme.Width, m.contentHeight(), lipgloss.Center, lipgloss.Center, box)
}

func (m Model) viewInfo() string {
	body := m.theme.DialogTitle.Render("Permissions") + "\n\n" +
		strings.Join(m.permissionsLines(), "\n")
	return m.theme.ContentBox.Render(body)
}

func (m Model) contentHeight() int {
	h := m.theme.Height - 2
	if h < 5 {
		h = 5
	}
	return h
}
