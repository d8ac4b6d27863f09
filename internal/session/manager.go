// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strconv"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jeranaias/acshell/internal/access"
	"github.com/jeranaias/acshell/internal/identity"
)

// =============================================================================
// SESSION MANAGER
// =============================================================================

const (
	// DefaultTimeout is the idle timeout for a login session.
	DefaultTimeout = 15 * time.Minute

	// DefaultWarningBefore is how long before expiry the warning fires.
	DefaultWarningBefore = 2 * time.Minute
)

// Manager tracks the current login session and its idle timeout. A nil
// user means nobody is logged in.
type Manager struct {
	mu sync.Mutex

	id           string
	user         *identity.User
	startTime    time.Time
	lastActivity time.Time

	timeout       time.Duration
	warningBefore time.Duration
	warningShown  bool
}

// Config holds session manager settings.
type Config struct {
	// Timeout is the idle timeout (default 15 minutes).
	Timeout time.Duration

	// WarningBefore is how long before expiry to warn (default 2 minutes).
	WarningBefore time.Duration
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:       DefaultTimeout,
		WarningBefore: DefaultWarningBefore,
	}
}

// NewManager creates a session manager with no active session.
func NewManager(cfg Config) *Manager {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.WarningBefore <= 0 || cfg.WarningBefore >= cfg.Timeout {
		cfg.WarningBefore = DefaultWarningBefore
	}
	return &Manager{
		timeout:       cfg.Timeout,
		warningBefore: cfg.WarningBefore,
	}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Begin starts a session for an authenticated user, replacing any
// previous session.
func (m *Manager) Begin(user identity.User) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	m.id = "sess_" + uuid.NewString()
	m.user = &user
	m.startTime = now
	m.lastActivity = now
	m.warningShown = false
	return m.id
}

// End terminates the current session.
func (m *Manager) End() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id = ""
	m.user = nil
}

// Active reports whether a session is in progress and not expired.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user != nil && time.Since(m.lastActivity) < m.timeout
}

// User returns the logged-in user, if any.
func (m *Manager) User() (identity.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return identity.User{}, false
	}
	return *m.user, true
}

// Role returns the logged-in user's role, or the empty role.
func (m *Manager) Role() access.Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return ""
	}
	return m.user.Role
}

// ID returns the current session ID, empty when logged out.
func (m *Manager) ID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id
}

// =============================================================================
// ACTIVITY AND TIMEOUT
// =============================================================================

// Touch records user activity, pushing the timeout out.
func (m *Manager) Touch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastActivity = time.Now()
	m.warningShown = false
}

// IdleTime returns how long since the last recorded activity.
func (m *Manager) IdleTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Since(m.lastActivity)
}

// Remaining returns the time until the session expires.
func (m *Manager) Remaining() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	remaining := m.timeout - time.Since(m.lastActivity)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Expired reports whether the session has idled out.
func (m *Manager) Expired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user != nil && time.Since(m.lastActivity) >= m.timeout
}

// shouldWarnLocked reports whether the pre-expiry warning is due.
func (m *Manager) shouldWarnLocked() bool {
	if m.user == nil || m.warningShown {
		return false
	}
	idle := time.Since(m.lastActivity)
	return idle >= m.timeout-m.warningBefore && idle < m.timeout
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// TickMsg is sent once a second to drive timeout checks.
type TickMsg struct {
	Time time.Time
}

// WarningMsg indicates the session is about to expire.
type WarningMsg struct {
	Remaining time.Duration
}

// ExpiredMsg indicates the session has idled out.
type ExpiredMsg struct{}

// TickCmd returns a command that ticks once a second.
func TickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// HandleTick evaluates timeout state and emits the due messages,
// always rescheduling the next tick.
func (m *Manager) HandleTick() tea.Cmd {
	m.mu.Lock()
	expired := m.user != nil && time.Since(m.lastActivity) >= m.timeout
	warn := !expired && m.shouldWarnLocked()
	var remaining time.Duration
	if warn {
		remaining = m.timeout - time.Since(m.lastActivity)
		m.warningShown = true
	}
	m.mu.Unlock()

	cmds := []tea.Cmd{TickCmd()}
	if warn {
		cmds = append(cmds, func() tea.Msg { return WarningMsg{Remaining: remaining} })
	}
	if expired {
		cmds = append(cmds, func() tea.Msg { return ExpiredMsg{} })
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// STATUS
// =============================================================================

// Status is a point-in-time snapshot of the session.
type Status struct {
	ID        string
	Username  string
	Role      access.Role
	StartTime time.Time
	Duration  time.Duration
	IdleTime  time.Duration
	Remaining time.Duration
	Expired   bool
}

// GetStatus returns the current session status.
func (m *Manager) GetStatus() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Status{ID: m.id}
	if m.user == nil {
		return st
	}
	now := time.Now()
	idle := now.Sub(m.lastActivity)
	remaining := m.timeout - idle
	if remaining < 0 {
		remaining = 0
	}
	st.Username = m.user.Username
	st.Role = m.user.Role
	st.StartTime = m.startTime
	st.Duration = now.Sub(m.startTime)
	st.IdleTime = idle
	st.Remaining = remaining
	st.Expired = idle >= m.timeout
	return st
}

// FormatDuration renders a duration as "3m 20s" for status lines.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return strconv.Itoa(int(d.Seconds())) + "s"
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return strconv.Itoa(mins) + "m"
	}
	return strconv.Itoa(mins) + "m " + strconv.Itoa(secs) + "s"
}
