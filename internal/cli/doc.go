// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses command-line arguments and implements the
// non-TUI surfaces: the plain-mode interactive shell for dumb
// terminals, and the audit/config/version subcommands.
package cli
