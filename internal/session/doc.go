// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks the authenticated login session: who is
// logged in, under which role, and how long they have been idle.
// An idle session expires after a configurable timeout and the shell
// drops back to the login prompt.
package session
