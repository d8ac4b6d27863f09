// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package identity manages the user store and authentication.
//
// Users live in a JSON file on disk. Each record carries a username, a
// password verifier (legacy MD5 digest or bcrypt), a role name, and an
// optional TOTP secret. Authentication returns a generic credential
// error to callers; the specific failure cause (unknown user, bad
// password, lockout) is reported only to the audit recorder so login
// prompts cannot be used to enumerate accounts.
//
// Usernames are normalized (NFKC, lowercased, trimmed) before lookup
// and at load time. Names that begin with the personal-folder prefix
// are rejected at load so a user record can never collide with another
// user's personal folder.
package identity
