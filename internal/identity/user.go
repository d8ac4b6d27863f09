// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/acshell/internal/access"
)

// =============================================================================
// USER RECORD
// =============================================================================

// User is a single account in the user store.
type User struct {
	// Username is the normalized login name, also the stem of the
	// user's personal folder (user_<username>).
	Username string `json:"username"`

	// PasswordHash is the stored verifier: a 32-char hex MD5 digest
	// for legacy records, or a bcrypt hash for new ones.
	PasswordHash string `json:"password_hash"`

	// Role is the user's single assigned role.
	Role access.Role `json:"role"`

	// TOTPSecret, when set, enables a second factor for this account.
	TOTPSecret string `json:"totp_secret,omitempty"`
}

// PersonalFolder returns the name of the user's personal folder.
func (u User) PersonalFolder() string {
	return access.PersonalPrefix + u.Username
}

// =============================================================================
// USERNAME NORMALIZATION
// =============================================================================

const maxUsernameLen = 64

// NormalizeUsername canonicalizes a login name: NFKC fold, trim,
// lowercase. Lookup and storage both go through this, so visually
// equivalent Unicode spellings resolve to one account.
func NormalizeUsername(name string) string {
	name = norm.NFKC.String(name)
	name = strings.TrimSpace(name)
	return strings.ToLower(name)
}

// ValidateUsername checks a normalized username against store rules.
func ValidateUsername(name string) error {
	if name == "" {
		return fmt.Errorf("username is empty")
	}
	if len(name) > maxUsernameLen {
		return fmt.Errorf("username exceeds %d characters", maxUsernameLen)
	}
	if strings.HasPrefix(name, access.PersonalPrefix) {
		// A username like "user_bob" would make its personal folder
		// "user_user_bob" and let it shadow another user's folder in
		// path classification.
		return fmt.Errorf("username must not begin with %q", access.PersonalPrefix)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-' || r == '.':
		default:
			return fmt.Errorf("username contains invalid character %q", r)
		}
	}
	return nil
}
