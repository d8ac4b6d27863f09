// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the acshell
// TUI. All colors use Lip Gloss AdaptiveColor so the same theme reads
// well on light and dark terminals.
package styles
