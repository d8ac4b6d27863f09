// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package access implements the authorization engine: the mapping from
// (role, operation, target path) to an allow/deny decision.
//
// Three collaborators make up the engine:
//
//   - Table: the static role -> {operations, folders} policy matrix,
//     loaded once at startup and read-only thereafter. Unknown roles
//     resolve to the empty policy (fail-closed).
//   - Resolver: normalizes a requested path against the workspace root
//     and classifies it as personal, named, or invalid. Paths that would
//     escape the root - upward traversal or symlink escape - are always
//     invalid. Another user's personal folder is invalid, never named.
//   - Controller: orders the checks. Operation capability is verified
//     before any path classification so a role lacking an operation is
//     rejected before folder names can leak through differentiated
//     denials. Callers receive a plain boolean; the typed deny reason
//     goes to the audit trail only.
//
// The engine never touches the filesystem beyond symlink resolution; the
// workspace package performs the actual file operations after an Allow.
package access
