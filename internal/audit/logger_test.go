// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jeranaias/acshell/internal/access"
)

func newTestLogger(t *testing.T, opts ...LoggerOption) *Logger {
	t.Helper()
	dir := t.TempDir()
	l, err := NewLogger(filepath.Join(dir, "audit.log"), opts...)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

// =============================================================================
// LOGGING TESTS
// =============================================================================

func TestLog_WritesJSONL(t *testing.T) {
	l := newTestLogger(t)

	l.RecordAuth("alice", true, "")
	l.RecordDecision("alice", access.RoleManager, access.OpRead, "reports/q1.txt", true, "")

	events, err := ReadEvents(l.Path())
	if err != nil {
		t.Fatalf("ReadEvents failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("event count = %d, want 2", len(events))
	}
	if events[0].Type != EventAuth || events[0].Decision != "success" {
		t.Errorf("first event = %+v", events[0])
	}
	if events[1].Type != EventAccess || events[1].Operation != "read" {
		t.Errorf("second event = %+v", events[1])
	}
	if events[0].ID == events[1].ID {
		t.Error("event IDs should be unique")
	}
}

func TestLog_DenyKeepsReasonInternally(t *testing.T) {
	// Deny reasons exist in the audit trail; the caller-facing result
	// is a bare boolean elsewhere.
	l := newTestLogger(t)
	l.RecordDecision("bob", access.RoleGuest, access.OpWrite, "shared/x.txt", false,
		access.ReasonOperationNotPermitted.String())

	events, _ := ReadEvents(l.Path())
	if events[0].Reason != "operation_not_permitted" {
		t.Errorf("Reason = %q, want operation_not_permitted", events[0].Reason)
	}
}

// =============================================================================
// REDACTION TESTS
// =============================================================================

func TestLog_RedactsCredentials(t *testing.T) {
	l := newTestLogger(t)

	event := NewEvent(EventAuth, "alice")
	event.Decision = "failure"
	event.Reason = "password=hunter2 rejected"
	event.Metadata = map[string]string{"detail": "pwd: hunter2"}
	if err := l.Log(event); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	data, _ := os.ReadFile(l.Path())
	if strings.Contains(string(data), "hunter2") {
		t.Error("raw credential leaked into audit log")
	}
	if !strings.Contains(string(data), "[REDACTED]") {
		t.Error("expected redaction marker in audit log")
	}
}

func TestLog_RedactsVerifierDigests(t *testing.T) {
	l := newTestLogger(t)

	event := NewEvent(EventAuth, "alice")
	event.Decision = "failure"
	event.Reason = "mismatch 5f4dcc3b5aa765d61d8327deb882cf99"
	_ = l.Log(event)

	data, _ := os.ReadFile(l.Path())
	if strings.Contains(string(data), "5f4dcc3b5aa765d61d8327deb882cf99") {
		t.Error("verifier digest leaked into audit log")
	}
}

// =============================================================================
// CHAIN TESTS
// =============================================================================

func TestVerifyChain_Intact(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(KeyEnvVar, "")
	t.Setenv(KeyFileEnvVar, "")

	path := filepath.Join(dir, "audit.log")
	l, err := NewLogger(path)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		l.RecordAuth("alice", i%2 == 0, "")
	}
	l.Close()

	key, err := LoadOrCreateKey(dir)
	if err != nil {
		t.Fatalf("LoadOrCreateKey failed: %v", err)
	}
	if err := VerifyChain(path, key); err != nil {
		t.Errorf("VerifyChain on intact log failed: %v", err)
	}
}

func TestVerifyChain_DetectsTampering(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(KeyEnvVar, "")
	t.Setenv(KeyFileEnvVar, "")

	path := filepath.Join(dir, "audit.log")
	l, err := NewLogger(path)
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	l.RecordAuth("alice", true, "")
	l.RecordAuth("mallory", false, "bad_credentials")
	l.Close()

	// Flip the recorded decision on mallory's failure.
	data, _ := os.ReadFile(path)
	tampered := strings.Replace(string(data), `"failure"`, `"success"`, 1)
	if err := os.WriteFile(path, []byte(tampered), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	key, _ := LoadOrCreateKey(dir)
	if err := VerifyChain(path, key); err == nil {
		t.Error("VerifyChain should detect a modified record")
	}
}

func TestChain_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(KeyEnvVar, "")
	t.Setenv(KeyFileEnvVar, "")

	path := filepath.Join(dir, "audit.log")
	l, _ := NewLogger(path)
	l.RecordAuth("alice", true, "")
	l.Close()

	l2, err := NewLogger(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	l2.RecordAuth("bob", true, "")
	l2.Close()

	key, _ := LoadOrCreateKey(dir)
	if err := VerifyChain(path, key); err != nil {
		t.Errorf("chain should continue across reopen: %v", err)
	}
}

// =============================================================================
// ROTATION TESTS
// =============================================================================

func TestLog_Rotation(t *testing.T) {
	l := newTestLogger(t, WithMaxFileSize(200))

	for i := 0; i < 20; i++ {
		l.RecordAuth("alice", true, "")
	}

	dir := filepath.Dir(l.Path())
	entries, _ := os.ReadDir(dir)
	rotated := 0
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "audit.log.") {
			rotated++
		}
	}
	if rotated == 0 {
		t.Error("expected at least one rotated audit log")
	}
}

// =============================================================================
// RECENT TESTS
// =============================================================================

func TestRecent(t *testing.T) {
	l := newTestLogger(t)
	for i := 0; i < 10; i++ {
		l.RecordAuth("alice", true, "")
	}

	events, err := l.Recent(3)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("Recent(3) returned %d events", len(events))
	}
}
