// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package audit provides the audit trail for authentication attempts and
// access decisions.
//
// Every event carries {timestamp, actor, operation, target, decision,
// reason}. The trail is write-only from the core's perspective: nothing
// in the authorization path reads it back, and a failed audit write never
// changes an access decision.
//
// Two sinks are provided: an append-only JSONL file with size rotation
// and an HMAC chain for tamper evidence, and an optional sqlite store for
// querying recent activity. Credentials are redacted before any event is
// persisted.
package audit
