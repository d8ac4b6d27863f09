// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components for the shell. It detects the
// terminal's color capability once at construction.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// Header and status bar
	Header       lipgloss.Style
	HeaderTitle  lipgloss.Style
	HeaderRole   lipgloss.Style
	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// Lists and menus
	MenuItem     lipgloss.Style
	MenuSelected lipgloss.Style
	FolderName   lipgloss.Style
	FileName     lipgloss.Style
	FileMeta     lipgloss.Style

	// Forms
	Prompt      lipgloss.Style
	InputBox    lipgloss.Style
	FieldLabel  lipgloss.Style
	FieldActive lipgloss.Style

	// Feedback
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Hint    lipgloss.Style

	// Dialogs
	DialogBox    lipgloss.Style
	DialogTitle  lipgloss.Style
	DangerButton lipgloss.Style

	// Content
	ContentBox lipgloss.Style
}

// New creates a theme sized to the current terminal.
func New(width, height int) *Theme {
	t := &Theme{
		IsDark:       lipgloss.HasDarkBackground(),
		ColorProfile: termenv.ColorProfile(),
		Width:        width,
		Height:       height,
	}

	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1).
		Width(width)
	t.HeaderTitle = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.HeaderRole = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextDim).
		Padding(0, 1).
		Width(width)
	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.MenuItem = lipgloss.NewStyle().
		Foreground(Text).
		Padding(0, 2)
	t.MenuSelected = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true).
		Padding(0, 2)
	t.FolderName = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.FileName = lipgloss.NewStyle().
		Foreground(Text)
	t.FileMeta = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Prompt = lipgloss.NewStyle().
		Foreground(Cyan)
	t.InputBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.FieldLabel = lipgloss.NewStyle().
		Foreground(TextDim)
	t.FieldActive = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	t.Success = lipgloss.NewStyle().
		Foreground(Emerald)
	t.Error = lipgloss.NewStyle().
		Foreground(Rose)
	t.Warning = lipgloss.NewStyle().
		Foreground(Amber)
	t.Hint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.DialogBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(1, 2)
	t.DialogTitle = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)
	t.DangerButton = lipgloss.NewStyle().
		Foreground(Surface).
		Background(Rose).
		Padding(0, 2).
		Bold(true)

	t.ContentBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	return t
}

// Resize updates width-dependent styles after a terminal resize.
func (t *Theme) Resize(width, height int) {
	t.Width = width
	t.Height = height
	t.Header = t.Header.Width(width)
	t.StatusBar = t.StatusBar.Width(width)
}
