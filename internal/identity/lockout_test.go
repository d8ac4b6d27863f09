// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLockout_LocksAtThreshold(t *testing.T) {
	l := NewLockout(WithMaxAttempts(3))

	if l.RecordFailure("alice") {
		t.Error("locked after 1 failure")
	}
	if l.RecordFailure("alice") {
		t.Error("locked after 2 failures")
	}
	if !l.RecordFailure("alice") {
		t.Error("not locked after 3 failures")
	}
	if !l.IsLocked("alice") {
		t.Error("IsLocked = false after threshold")
	}
	if l.IsLocked("bob") {
		t.Error("unrelated user locked")
	}
	if l.Remaining("alice") <= 0 {
		t.Error("Remaining should be positive while locked")
	}
}

func TestLockout_SuccessResetsCounter(t *testing.T) {
	l := NewLockout(WithMaxAttempts(3))

	l.RecordFailure("alice")
	l.RecordFailure("alice")
	l.RecordSuccess("alice")

	if l.Attempts("alice") != 0 {
		t.Errorf("Attempts = %d after success, want 0", l.Attempts("alice"))
	}
	if l.RecordFailure("alice") {
		t.Error("locked on first failure of a fresh series")
	}
}

func TestLockout_ExpiryStartsFreshSeries(t *testing.T) {
	l := NewLockout(WithMaxAttempts(2), WithLockoutDuration(time.Minute))

	now := time.Now()
	l.now = func() time.Time { return now }

	l.RecordFailure("alice")
	l.RecordFailure("alice")
	if !l.IsLocked("alice") {
		t.Fatal("should be locked")
	}

	now = now.Add(2 * time.Minute)
	if l.IsLocked("alice") {
		t.Error("lockout should have expired")
	}
	if l.RecordFailure("alice") {
		t.Error("first failure after expiry should not re-lock")
	}
}

func TestLockout_Unlock(t *testing.T) {
	l := NewLockout(WithMaxAttempts(1))
	l.RecordFailure("alice")
	if !l.IsLocked("alice") {
		t.Fatal("should be locked")
	}
	l.Unlock("alice")
	if l.IsLocked("alice") {
		t.Error("Unlock did not clear the lockout")
	}
}

func TestLockout_StatePersistsAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lockout_state.json")

	l := NewLockout(WithMaxAttempts(2), WithPersistPath(path))
	l.RecordFailure("alice")
	l.RecordFailure("alice")

	l2 := NewLockout(WithMaxAttempts(2), WithPersistPath(path))
	if !l2.IsLocked("alice") {
		t.Error("lockout did not survive restart")
	}
}
