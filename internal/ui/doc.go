// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui implements the Bubble Tea shell: login form, main menu,
// file browser, reader, editor, delete confirmation, and the
// permissions view. Every file operation goes through the workspace
// executor; the UI never touches the filesystem directly.
package ui
