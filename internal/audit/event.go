// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// EVENT TYPES
// =============================================================================

// EventType distinguishes the two classes of audited activity.
type EventType string

const (
	// EventAuth records an authentication attempt.
	EventAuth EventType = "auth"

	// EventAccess records an access-control decision.
	EventAccess EventType = "access"

	// EventFileOp records an executed file operation.
	EventFileOp EventType = "file_op"
)

// =============================================================================
// AUDIT EVENT
// =============================================================================

// Event is a single audit record.
type Event struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Type      EventType         `json:"type"`
	Actor     string            `json:"actor"`
	Role      string            `json:"role,omitempty"`
	Operation string            `json:"operation,omitempty"`
	Target    string            `json:"target,omitempty"`
	Decision  string            `json:"decision"` // "allow" | "deny" | "success" | "failure"
	Reason    string            `json:"reason,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`

	// Mac chains this record to its predecessor for tamper evidence.
	// Populated by the logger, never by callers.
	Mac string `json:"mac,omitempty"`
}

// NewEvent creates an event with a fresh ID and the current time.
func NewEvent(typ EventType, actor string) Event {
	return Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Type:      typ,
		Actor:     actor,
	}
}

// ToLogLine formats the event as a single human-readable line for the
// review command.
func (e *Event) ToLogLine() string {
	ts := e.Timestamp.Format("2006-01-02 15:04:05")
	reason := e.Reason
	if reason == "" {
		reason = "-"
	}
	target := e.Target
	if target == "" {
		target = "-"
	}
	return fmt.Sprintf("%s | %-7s | %-12s | %-6s | %-40s | %-5s | %s",
		ts, e.Type, e.Actor, e.Operation, target, e.Decision, reason)
}

// ToJSON formats the event as a single JSON line.
func (e *Event) ToJSON() (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
