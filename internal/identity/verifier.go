// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// =============================================================================
// PASSWORD VERIFIERS
// =============================================================================

// Verifier hashes and checks passwords. The store detects the scheme
// per record from the stored hash, so legacy and modern records can
// coexist in one users file.
type Verifier interface {
	// Hash produces a stored verifier for a new password.
	Hash(password string) (string, error)

	// Verify reports whether password matches the stored verifier.
	Verify(password, stored string) bool

	// Name identifies the scheme ("md5", "bcrypt").
	Name() string
}

// MD5Verifier implements the legacy scheme: the stored value is the
// lowercase hex MD5 digest of the password. Kept for compatibility
// with existing user files; new accounts should use bcrypt.
type MD5Verifier struct{}

// Hash returns the hex MD5 digest of password.
func (MD5Verifier) Hash(password string) (string, error) {
	sum := md5.Sum([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

// Verify compares digests in constant time.
func (v MD5Verifier) Verify(password, stored string) bool {
	got, _ := v.Hash(password)
	return subtle.ConstantTimeCompare([]byte(got), []byte(strings.ToLower(stored))) == 1
}

// Name returns "md5".
func (MD5Verifier) Name() string { return "md5" }

// BcryptVerifier implements bcrypt password hashing.
type BcryptVerifier struct {
	// Cost is the bcrypt work factor; zero means bcrypt.DefaultCost.
	Cost int
}

// Hash returns a bcrypt hash of password.
func (v BcryptVerifier) Hash(password string) (string, error) {
	cost := v.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash failed: %w", err)
	}
	return string(h), nil
}

// Verify checks password against a bcrypt hash.
func (BcryptVerifier) Verify(password, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

// Name returns "bcrypt".
func (BcryptVerifier) Name() string { return "bcrypt" }

// isHexDigest reports whether s looks like a 32-char hex MD5 digest.
func isHexDigest(s string) bool {
	if len(s) != 32 {
		return false
	}
	for _, r := range strings.ToLower(s) {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

// DetectVerifier picks the scheme for a stored hash. Unrecognized
// values get the bcrypt verifier, which will simply fail to match.
func DetectVerifier(stored string) Verifier {
	if isHexDigest(stored) {
		return MD5Verifier{}
	}
	return BcryptVerifier{}
}
