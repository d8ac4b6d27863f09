// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"
	"testing"

	"github.com/jeranaias/acshell/internal/ui/styles"
	"github.com/jeranaias/acshell/internal/workspace"
)

func TestSnapToFile_SkipsHeaders(t *testing.T) {
	b := browserModel{
		rows: []browserRow{
			{folder: "reports", isHeader: true},
			{folder: "reports", entry: workspace.Entry{Name: "q1.txt", Rel: "reports/q1.txt"}},
			{folder: "code", isHeader: true},
			{folder: "code", entry: workspace.Entry{Name: "main.go", Rel: "code/main.go"}},
		},
	}

	b.cursor = 0
	b.snapToFile(1)
	if b.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", b.cursor)
	}

	b.cursor = 2
	b.snapToFile(1)
	if b.cursor != 3 {
		t.Fatalf("cursor = %d, want 3", b.cursor)
	}

	// Moving up from a header lands on the file above it.
	b.cursor = 2
	b.snapToFile(-1)
	if b.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", b.cursor)
	}
}

func TestSnapToFile_OnlyHeaders(t *testing.T) {
	b := browserModel{
		rows: []browserRow{
			{folder: "reports", isHeader: true},
			{folder: "code", isHeader: true},
		},
	}
	b.snapToFile(1)
	if _, ok := b.selected(); ok {
		t.Fatal("selected() should report no file when only headers exist")
	}
}

func TestSelected_RejectsHeader(t *testing.T) {
	b := browserModel{
		rows: []browserRow{
			{folder: "reports", isHeader: true},
			{folder: "reports", entry: workspace.Entry{Name: "q1.txt", Rel: "reports/q1.txt"}},
		},
	}

	b.cursor = 0
	if _, ok := b.selected(); ok {
		t.Fatal("header row must not be selectable")
	}

	b.cursor = 1
	row, ok := b.selected()
	if !ok || row.entry.Rel != "reports/q1.txt" {
		t.Fatalf("selected() = %+v, %v", row, ok)
	}
}

func TestRenderFile_PlainTextPassthrough(t *testing.T) {
	content := "just some notes\nsecond line\n"
	got := renderFile("reports/notes.txt", []byte(content), 80)
	if got != content {
		t.Fatalf("plain text should pass through unchanged, got %q", got)
	}
}

func TestRenderFile_HighlightsGo(t *testing.T) {
	code := "package main\n\nfunc main() {}\n"
	got := renderFile("code/main.go", []byte(code), 80)
	if !strings.Contains(got, "\x1b[") {
		t.Fatal("Go source should be ANSI highlighted")
	}
}

func TestRenderFile_Markdown(t *testing.T) {
	got := renderFile("design/plan.md", []byte("# Title\n\nbody\n"), 80)
	if got == "" {
		t.Fatal("markdown rendering returned nothing")
	}
	if strings.HasPrefix(got, "# Title") {
		t.Fatal("markdown should be rendered, not passed through")
	}
}

func TestShortcuts_CoverEveryScreen(t *testing.T) {
	m := Model{keys: defaultKeyMap(), theme: styles.New(80, 24)}
	for _, st := range []state{
		stateLogin, stateMenu, stateBrowser, stateReader,
		stateEditor, stateConfirmDelete, stateInfo,
	} {
		m.state = st
		if m.shortcuts() == "" {
			t.Fatalf("state %d has no shortcut hints", st)
		}
	}
}
