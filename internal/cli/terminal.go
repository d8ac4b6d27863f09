// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - TTY detection and terminal capabilities for acshell.
package cli

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// IsTTY returns true if stdin is a terminal. Interactive prompts are
// only possible when it is.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStdoutTTY returns true if stdout is a terminal.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// =============================================================================
// TERMINAL SIZE
// =============================================================================

const (
	// DefaultTerminalWidth is the fallback width when detection fails.
	DefaultTerminalWidth = 80

	// MinTerminalWidth is the minimum width used for wrapping.
	MinTerminalWidth = 40
)

// TerminalWidth returns the current terminal width, clamped to a
// usable minimum, with a fallback when detection fails.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	return width
}

// =============================================================================
// COLOR SUPPORT
// =============================================================================

// ColorEnabled reports whether colored output should be used: stdout
// is a TTY, NO_COLOR is unset, and the terminal is not truly dumb.
func ColorEnabled() bool {
	if !IsStdoutTTY() {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return termenv.DefaultOutput().Profile != termenv.Ascii
}

// ReadPassword reads a line from the terminal with echo disabled.
func ReadPassword(prompt string) (string, error) {
	_, _ = os.Stdout.WriteString(prompt)
	defer func() { _, _ = os.Stdout.WriteString("\n") }()
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
