// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
)

// =============================================================================
// FILE RENDERING
// =============================================================================

// renderFile renders file content for the reader: markdown through
// glamour, known source types through chroma, everything else as-is.
func renderFile(path string, content []byte, width int) string {
	ext := strings.ToLower(filepath.Ext(path))

	if ext == ".md" || ext == ".markdown" {
		if out, err := renderMarkdown(string(content), width); err == nil {
			return out
		}
	}

	if lexer := lexers.Match(filepath.Base(path)); lexer != nil {
		return highlightCode(string(content), lexer)
	}
	return string(content)
}

func renderMarkdown(text string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(text)
}

// highlightCode applies ANSI syntax highlighting with chroma.
func highlightCode(code string, lexer chroma.Lexer) string {
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}
