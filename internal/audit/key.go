// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package audit

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/jeranaias/acshell/internal/util"
)

// =============================================================================
// HMAC KEY MANAGEMENT
// =============================================================================

const (
	// KeyEnvVar is the environment variable carrying a hex-encoded
	// HMAC key.
	KeyEnvVar = "ACSHELL_AUDIT_HMAC_KEY"

	// KeyFileEnvVar is the environment variable pointing to a key file.
	KeyFileEnvVar = "ACSHELL_AUDIT_HMAC_KEY_FILE"

	// DefaultKeyFileName is the key file created next to the audit log
	// when no key is configured.
	DefaultKeyFileName = ".audit_hmac_key"

	// KeySize is the HMAC key size in bytes (256 bits).
	KeySize = 32
)

// LoadOrCreateKey loads the audit HMAC key.
//
// Priority: the ACSHELL_AUDIT_HMAC_KEY environment variable (hex), then
// the file named by ACSHELL_AUDIT_HMAC_KEY_FILE, then the default key
// file in auditDir. When no key exists anywhere, one is generated and
// written to the default key file with owner-only permissions, so a
// fresh install gets tamper evidence without setup.
func LoadOrCreateKey(auditDir string) ([]byte, error) {
	if keyHex := os.Getenv(KeyEnvVar); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil {
			return nil, fmt.Errorf("invalid HMAC key in %s: %w", KeyEnvVar, err)
		}
		if len(key) != KeySize {
			return nil, fmt.Errorf("HMAC key must be %d bytes, got %d", KeySize, len(key))
		}
		return key, nil
	}

	if keyPath := os.Getenv(KeyFileEnvVar); keyPath != "" {
		return readKeyFile(keyPath)
	}

	defaultPath := filepath.Join(auditDir, DefaultKeyFileName)
	if _, err := os.Stat(defaultPath); err == nil {
		return readKeyFile(defaultPath)
	}

	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate HMAC key: %w", err)
	}
	if err := util.AtomicWriteFile(defaultPath, key, 0600); err != nil {
		return nil, fmt.Errorf("failed to persist HMAC key: %w", err)
	}
	return key, nil
}

// readKeyFile reads and validates a key file, refusing keys readable by
// other users.
func readKeyFile(path string) ([]byte, error) {
	if err := checkKeyFilePermissions(path); err != nil {
		return nil, err
	}
	key, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read HMAC key file %s: %w", path, err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("HMAC key file %s must hold %d bytes, got %d", path, KeySize, len(key))
	}
	return key, nil
}

// checkKeyFilePermissions verifies the key file is owner-only. On
// Windows mode bits are meaningless, so the check is delegated to an
// ACL inspection.
func checkKeyFilePermissions(path string) error {
	if runtime.GOOS == "windows" {
		return verifyWindowsACL(path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat HMAC key file: %w", err)
	}
	if mode := info.Mode().Perm(); mode&0077 != 0 {
		return fmt.Errorf("HMAC key file %s has insecure permissions %o (want 0600)", path, mode)
	}
	return nil
}
