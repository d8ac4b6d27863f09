// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package workspace executes file operations inside the workspace root.
//
// Every operation goes through the access controller before touching
// the filesystem; a denied request returns a generic refusal without a
// single stat call, so denial never confirms whether a file exists.
// Two rules layer on top of the controller's decision: the shared
// folder accepts edits but not new files, and files in named folders
// can only be deleted by the sysadmin role.
//
// The package also seeds the initial folder layout and watches the
// workspace for external changes so the browser can refresh.
package workspace
