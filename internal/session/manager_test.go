// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/acshell/internal/access"
	"github.com/jeranaias/acshell/internal/identity"
)

func testUser() identity.User {
	return identity.User{Username: "alice", Role: access.RoleManager}
}

func TestManager_Lifecycle(t *testing.T) {
	m := NewManager(DefaultConfig())

	if m.Active() {
		t.Error("fresh manager should have no active session")
	}

	id := m.Begin(testUser())
	if !strings.HasPrefix(id, "sess_") {
		t.Errorf("session ID = %q, want sess_ prefix", id)
	}
	if !m.Active() {
		t.Error("session should be active after Begin")
	}
	if m.Role() != access.RoleManager {
		t.Errorf("Role = %q", m.Role())
	}
	u, ok := m.User()
	if !ok || u.Username != "alice" {
		t.Errorf("User = %+v, %v", u, ok)
	}

	id2 := m.Begin(testUser())
	if id2 == id {
		t.Error("Begin should mint a new session ID")
	}

	m.End()
	if m.Active() {
		t.Error("session should be inactive after End")
	}
	if _, ok := m.User(); ok {
		t.Error("User should report no session after End")
	}
}

func TestManager_Timeout(t *testing.T) {
	m := NewManager(Config{Timeout: 30 * time.Millisecond, WarningBefore: 10 * time.Millisecond})
	m.Begin(testUser())

	if m.Expired() {
		t.Error("fresh session should not be expired")
	}
	time.Sleep(40 * time.Millisecond)
	if !m.Expired() {
		t.Error("idle session should have expired")
	}
	if m.Active() {
		t.Error("expired session should not be active")
	}
}

func TestManager_TouchResetsIdle(t *testing.T) {
	m := NewManager(Config{Timeout: 50 * time.Millisecond, WarningBefore: 10 * time.Millisecond})
	m.Begin(testUser())

	time.Sleep(30 * time.Millisecond)
	m.Touch()
	time.Sleep(30 * time.Millisecond)

	if m.Expired() {
		t.Error("activity should have pushed the timeout out")
	}
}

func TestManager_Remaining(t *testing.T) {
	m := NewManager(Config{Timeout: time.Hour, WarningBefore: time.Minute})
	m.Begin(testUser())

	r := m.Remaining()
	if r <= 0 || r > time.Hour {
		t.Errorf("Remaining = %v", r)
	}
}

func TestGetStatus(t *testing.T) {
	m := NewManager(DefaultConfig())

	if st := m.GetStatus(); st.Username != "" || st.Expired {
		t.Errorf("logged-out status = %+v", st)
	}

	m.Begin(testUser())
	st := m.GetStatus()
	if st.Username != "alice" || st.Role != access.RoleManager {
		t.Errorf("status = %+v", st)
	}
	if st.ID == "" || st.Expired {
		t.Errorf("status = %+v", st)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{45 * time.Second, "45s"},
		{2 * time.Minute, "2m"},
		{3*time.Minute + 20*time.Second, "3m 20s"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.d); got != tc.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}
