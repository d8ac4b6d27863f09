// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/pquerna/otp/totp"

	"github.com/jeranaias/acshell/internal/access"
	"github.com/jeranaias/acshell/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

// Callers see only these two errors. Whether the name or the password
// (or the second factor) was wrong stays in the audit trail.
var (
	// ErrInvalidCredentials is the generic authentication failure.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrLocked is returned while an account is locked out.
	ErrLocked = errors.New("account locked: too many failed attempts")

	// ErrTOTPRequired signals that the account needs a one-time code.
	ErrTOTPRequired = errors.New("one-time code required")
)

// Internal failure causes, recorded to the audit trail only.
const (
	causeUnknownUser    = "unknown_user"
	causeBadCredentials = "bad_credentials"
	causeBadTOTP        = "bad_totp"
	causeLockedOut      = "locked_out"
)

// =============================================================================
// STORE
// =============================================================================

// Recorder receives the outcome of every authentication attempt.
type Recorder interface {
	RecordAuth(username string, success bool, reason string)
}

// Credentials is one login attempt.
type Credentials struct {
	Username string
	Password string
	// TOTPCode is consulted only for accounts with a TOTP secret.
	TOTPCode string
}

// Store holds the users loaded from the JSON file and answers
// authentication requests.
type Store struct {
	mu       sync.RWMutex
	path     string
	users    map[string]User
	lockout  *Lockout
	recorder Recorder
	hasher   Verifier
}

// StoreOption is a functional option for configuring the Store.
type StoreOption func(*Store)

// WithRecorder attaches an audit recorder for auth outcomes.
func WithRecorder(r Recorder) StoreOption {
	return func(s *Store) { s.recorder = r }
}

// WithLockout attaches a lockout tracker.
func WithLockout(l *Lockout) StoreOption {
	return func(s *Store) { s.lockout = l }
}

// WithHasher sets the verifier used when creating or rehashing
// accounts. Verification always auto-detects per record.
func WithHasher(v Verifier) StoreOption {
	return func(s *Store) { s.hasher = v }
}

// Open loads the user store at path, seeding the default accounts when
// the file does not exist yet.
func Open(path string, opts ...StoreOption) (*Store, error) {
	s := &Store{
		path:   path,
		users:  make(map[string]User),
		hasher: BcryptVerifier{},
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		for _, u := range DefaultUsers() {
			s.users[u.Username] = u
		}
		if err := s.save(); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user store: %w", err)
	}

	var records []User
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("malformed user store %s: %w", path, err)
	}
	for _, u := range records {
		u.Username = NormalizeUsername(u.Username)
		if err := ValidateUsername(u.Username); err != nil {
			return nil, fmt.Errorf("user store %s: %w", path, err)
		}
		if _, dup := s.users[u.Username]; dup {
			return nil, fmt.Errorf("user store %s: duplicate user %q", path, u.Username)
		}
		u.Role = access.Role(strings.ToLower(string(u.Role)))
		s.users[u.Username] = u
	}
	return s, nil
}

// DefaultUsers returns the seed accounts, one per role, each with its
// username as the initial password.
func DefaultUsers() []User {
	seed := []struct {
		name string
		role access.Role
	}{
		{"sysadmin", access.RoleSysadmin},
		{"admin", access.RoleAdmin},
		{"manager", access.RoleManager},
		{"designer", access.RoleDesigner},
		{"developer", access.RoleDeveloper},
		{"analyst", access.RoleAnalyst},
		{"guest", access.RoleGuest},
	}
	users := make([]User, 0, len(seed))
	for _, u := range seed {
		hash, _ := MD5Verifier{}.Hash(u.name)
		users = append(users, User{Username: u.name, PasswordHash: hash, Role: u.role})
	}
	return users
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

// Authenticate checks one login attempt. On success it returns the
// user record; on failure the error never distinguishes an unknown
// user from a wrong password.
func (s *Store) Authenticate(creds Credentials) (User, error) {
	username := NormalizeUsername(creds.Username)

	if s.lockout != nil && s.lockout.IsLocked(username) {
		s.record(username, false, causeLockedOut)
		return User{}, ErrLocked
	}

	s.mu.RLock()
	user, known := s.users[username]
	s.mu.RUnlock()

	if !known {
		// Burn a digest so unknown users are not distinguishable from
		// wrong passwords by response time.
		MD5Verifier{}.Verify(creds.Password, strings.Repeat("0", 32))
		return User{}, s.fail(username, causeUnknownUser)
	}

	if !DetectVerifier(user.PasswordHash).Verify(creds.Password, user.PasswordHash) {
		return User{}, s.fail(username, causeBadCredentials)
	}

	if user.TOTPSecret != "" {
		if creds.TOTPCode == "" {
			return User{}, ErrTOTPRequired
		}
		if !totp.Validate(creds.TOTPCode, user.TOTPSecret) {
			return User{}, s.fail(username, causeBadTOTP)
		}
	}

	if s.lockout != nil {
		s.lockout.RecordSuccess(username)
	}
	s.record(username, true, "")
	return user, nil
}

// fail records a failed attempt and maps it to the caller-facing error.
func (s *Store) fail(username, cause string) error {
	s.record(username, false, cause)
	if s.lockout != nil && s.lockout.RecordFailure(username) {
		return ErrLocked
	}
	return ErrInvalidCredentials
}

func (s *Store) record(username string, success bool, reason string) {
	if s.recorder != nil {
		s.recorder.RecordAuth(username, success, reason)
	}
}

// =============================================================================
// ACCOUNT MANAGEMENT
// =============================================================================

// Lookup returns the user record for a normalized username.
func (s *Store) Lookup(username string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[NormalizeUsername(username)]
	return u, ok
}

// Users returns all records sorted by username.
func (s *Store) Users() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users
}

// SetPassword rehashes username's password with the store's hasher and
// persists the change.
func (s *Store) SetPassword(username, password string) error {
	username = NormalizeUsername(username)
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[username]
	if !ok {
		return fmt.Errorf("no such user: %s", username)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	s.users[username] = user
	return s.saveLocked()
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	users := make([]User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })

	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user store: %w", err)
	}
	if err := util.AtomicWriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write user store: %w", err)
	}
	return nil
}
