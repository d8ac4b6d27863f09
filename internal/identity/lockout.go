// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jeranaias/acshell/internal/util"
)

// =============================================================================
// LOCKOUT TRACKING
// =============================================================================

const (
	// DefaultMaxAttempts is the number of consecutive failures that
	// triggers a lockout.
	DefaultMaxAttempts = 3

	// DefaultLockoutDuration is how long a locked account stays locked.
	DefaultLockoutDuration = 15 * time.Minute
)

// attemptRecord tracks consecutive failures for one username.
type attemptRecord struct {
	Count       int       `json:"count"`
	LastAttempt time.Time `json:"last_attempt"`
	LockedUntil time.Time `json:"locked_until,omitempty"`
}

func (a *attemptRecord) locked(now time.Time) bool {
	return now.Before(a.LockedUntil)
}

// Lockout counts failed logins per username and locks accounts that
// exceed the threshold. State optionally persists across restarts so
// a relaunch does not reset an attacker's counter.
type Lockout struct {
	mu          sync.Mutex
	attempts    map[string]*attemptRecord
	maxAttempts int
	duration    time.Duration
	persistPath string
	now         func() time.Time
}

// LockoutOption is a functional option for configuring Lockout.
type LockoutOption func(*Lockout)

// WithMaxAttempts sets the failure threshold.
func WithMaxAttempts(n int) LockoutOption {
	return func(l *Lockout) {
		if n > 0 {
			l.maxAttempts = n
		}
	}
}

// WithLockoutDuration sets how long a lockout lasts.
func WithLockoutDuration(d time.Duration) LockoutOption {
	return func(l *Lockout) {
		if d > 0 {
			l.duration = d
		}
	}
}

// WithPersistPath enables persistent lockout state at path.
func WithPersistPath(path string) LockoutOption {
	return func(l *Lockout) {
		l.persistPath = path
	}
}

// NewLockout creates a lockout tracker and loads any persisted state.
func NewLockout(opts ...LockoutOption) *Lockout {
	l := &Lockout{
		attempts:    make(map[string]*attemptRecord),
		maxAttempts: DefaultMaxAttempts,
		duration:    DefaultLockoutDuration,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.loadState()
	return l
}

// IsLocked reports whether username is currently locked out.
func (l *Lockout) IsLocked(username string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.attempts[username]
	return ok && rec.locked(l.now())
}

// Remaining returns the time until the lockout on username expires, or
// zero when not locked.
func (l *Lockout) Remaining(username string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.attempts[username]
	if !ok {
		return 0
	}
	if d := rec.LockedUntil.Sub(l.now()); d > 0 {
		return d
	}
	return 0
}

// RecordFailure counts a failed login and reports whether the account
// is now locked.
func (l *Lockout) RecordFailure(username string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	rec, ok := l.attempts[username]
	if !ok {
		rec = &attemptRecord{}
		l.attempts[username] = rec
	}
	if !rec.locked(now) && !rec.LockedUntil.IsZero() {
		// Expired lockout: start a fresh series.
		rec.Count = 0
		rec.LockedUntil = time.Time{}
	}

	rec.Count++
	rec.LastAttempt = now
	if rec.Count >= l.maxAttempts {
		rec.LockedUntil = now.Add(l.duration)
	}
	l.saveStateLocked()
	return rec.locked(now)
}

// RecordSuccess clears the failure counter for username. A success
// while locked does not unlock the account.
func (l *Lockout) RecordSuccess(username string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.attempts[username]
	if !ok {
		return
	}
	if rec.locked(l.now()) {
		return
	}
	delete(l.attempts, username)
	l.saveStateLocked()
}

// Unlock clears all lockout state for username.
func (l *Lockout) Unlock(username string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, username)
	l.saveStateLocked()
}

// Attempts returns the current consecutive failure count for username.
func (l *Lockout) Attempts(username string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if rec, ok := l.attempts[username]; ok {
		return rec.Count
	}
	return 0
}

// MaxAttempts returns the configured failure threshold.
func (l *Lockout) MaxAttempts() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.maxAttempts
}

// =============================================================================
// PERSISTENCE
// =============================================================================

type lockoutState struct {
	Attempts map[string]*attemptRecord `json:"attempts"`
	SavedAt  time.Time                 `json:"saved_at"`
}

func (l *Lockout) loadState() {
	if l.persistPath == "" {
		return
	}
	data, err := os.ReadFile(l.persistPath)
	if err != nil {
		return
	}
	var state lockoutState
	if err := json.Unmarshal(data, &state); err != nil {
		return
	}
	if state.Attempts != nil {
		l.attempts = state.Attempts
	}
}

func (l *Lockout) saveStateLocked() {
	if l.persistPath == "" {
		return
	}
	state := lockoutState{Attempts: l.attempts, SavedAt: l.now()}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return
	}
	if err := util.AtomicWriteFile(l.persistPath, data, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to persist lockout state: %v\n", err)
	}
}
