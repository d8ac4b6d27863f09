// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management
// for acshell.
//
// Supports both TOML and JSON configuration formats, with sensible
// defaults, environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.acshell/config.toml
//   - ~/.acshell/config.json
//   - Built-in defaults
//
// The configuration carries the role policy matrix (role -> permitted
// operations and accessible folders) consumed read-only at startup by the
// access package. The matrix is process-lifetime static: nothing in the
// shell mutates it at runtime.
package config
