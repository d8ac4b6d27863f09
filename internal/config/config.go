// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/acshell/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete acshell configuration.
type Config struct {
	// Version of the configuration schema.
	Version string `toml:"version" json:"version"`

	// Workspace configuration (root directory, seeding).
	Workspace WorkspaceConfig `toml:"workspace" json:"workspace"`

	// Roles is the role policy matrix: role name -> permitted operations
	// and accessible top-level folders. Read-only after load.
	Roles map[string]RolePolicy `toml:"roles" json:"roles"`

	// Security configuration (login attempts, lockout, audit sinks).
	Security SecurityConfig `toml:"security" json:"security"`

	// UI configuration.
	UI UIConfig `toml:"ui" json:"ui"`
}

// WorkspaceConfig contains workspace filesystem configuration.
type WorkspaceConfig struct {
	// Root is the workspace root directory. All file operations resolve
	// strictly inside this directory. Relative paths are resolved against
	// the current working directory at load time.
	Root string `toml:"root" json:"root"`

	// UsersFile is the path to the identity records file (users.json).
	UsersFile string `toml:"users_file" json:"users_file"`

	// SeedSampleFiles creates role folders, personal folders, and sample
	// files on first run.
	SeedSampleFiles bool `toml:"seed_sample_files" json:"seed_sample_files"`

	// SharedFolder is the common folder excluded from file creation even
	// when writable. Editing existing files there stays allowed.
	SharedFolder string `toml:"shared_folder" json:"shared_folder"`
}

// RolePolicy describes what a single role may do.
type RolePolicy struct {
	// Permissions is the set of permitted operation names
	// ("list", "read", "write", "delete", "config").
	Permissions []string `toml:"permissions" json:"permissions"`

	// Folders is the set of accessible top-level folder names.
	Folders []string `toml:"folders" json:"folders"`
}

// SecurityConfig contains security-related configuration.
type SecurityConfig struct {
	// MaxLoginAttempts is the number of failed logins the interactive
	// shell allows before giving up. Presentation-layer policy, not a
	// core invariant.
	MaxLoginAttempts int `toml:"max_login_attempts" json:"max_login_attempts"`

	// LockoutEnabled enables per-username lockout after repeated failures.
	LockoutEnabled bool `toml:"lockout_enabled" json:"lockout_enabled"`

	// LockoutDurationMinutes is how long a username stays locked.
	LockoutDurationMinutes int `toml:"lockout_duration_minutes" json:"lockout_duration_minutes"`

	// SessionTimeoutSecs is the idle session timeout in seconds.
	// Valid range is 900-1800 (15-30 minutes); values outside the range
	// are clamped.
	SessionTimeoutSecs int `toml:"session_timeout_secs" json:"session_timeout_secs"`

	// AuditEnabled enables audit logging.
	AuditEnabled bool `toml:"audit_enabled" json:"audit_enabled"`

	// AuditLogPath is the audit log file path (empty = ~/.acshell/audit.log).
	AuditLogPath string `toml:"audit_log_path" json:"audit_log_path"`

	// AuditDBPath is the sqlite audit store path (empty = disabled).
	AuditDBPath string `toml:"audit_db_path" json:"audit_db_path"`

	// TOTPRequired requires a TOTP code at login for users that have a
	// TOTP secret enrolled.
	TOTPRequired bool `toml:"totp_required" json:"totp_required"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto".
	Theme string `toml:"theme" json:"theme"`

	// PlainMode forces the line-oriented shell instead of the TUI.
	PlainMode bool `toml:"plain_mode" json:"plain_mode"`

	// ShowSizes displays file sizes in listings.
	ShowSizes bool `toml:"show_sizes" json:"show_sizes"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
//
// The default role matrix matches the historical deployment: seven roles,
// five operations, shared folder visible to everyone.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Workspace: WorkspaceConfig{
			Root:            "workspace",
			UsersFile:       "users.json",
			SeedSampleFiles: true,
			SharedFolder:    "shared",
		},

		Roles: map[string]RolePolicy{
			"sysadmin": {
				Permissions: []string{"read", "write", "delete", "list", "config"},
				Folders:     []string{"system", "backups", "logs", "reports", "design", "code", "analytics", "temp", "shared"},
			},
			"admin": {
				Permissions: []string{"read", "write", "delete", "list"},
				Folders:     []string{"reports", "backups", "shared"},
			},
			"manager": {
				Permissions: []string{"read", "write", "list"},
				Folders:     []string{"reports", "shared"},
			},
			"designer": {
				Permissions: []string{"read", "write", "list"},
				Folders:     []string{"design", "shared"},
			},
			"developer": {
				Permissions: []string{"read", "write", "list"},
				Folders:     []string{"code", "temp", "shared"},
			},
			"analyst": {
				Permissions: []string{"read", "list"},
				Folders:     []string{"reports", "analytics", "shared"},
			},
			"guest": {
				Permissions: []string{"read"},
				Folders:     []string{"shared"},
			},
		},

		Security: SecurityConfig{
			MaxLoginAttempts:       3,
			LockoutEnabled:         true,
			LockoutDurationMinutes: 15,
			SessionTimeoutSecs:     1800,
			AuditEnabled:           true,
			AuditLogPath:           "",
			AuditDBPath:            "",
			TOTPRequired:           false,
		},

		UI: UIConfig{
			Theme:     "dark",
			PlainMode: false,
			ShowSizes: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the acshell configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".acshell"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// Config files should be 0600 (owner read/write only).
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last, then validation.
func Load() (*Config, error) {
	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			return LoadFromPath(tomlPath)
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			return LoadFromPath(jsonPath)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation. JSON is selected by file extension, TOML otherwise.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if err := ensureSecurePermissions(path); err != nil {
		// Permissions might not be fixable on all systems. Warn only.
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if strings.HasSuffix(path, ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read JSON config %s: %w", path, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode JSON config %s: %w", path, err)
		}
	} else {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode TOML config %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to the TOML config file atomically.
func Save(cfg *Config) error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}

	var buf strings.Builder
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return util.AtomicWriteFile(path, []byte(buf.String()), 0600)
}

// =============================================================================
// VALIDATION
// =============================================================================

// knownOperations are the operation names the policy matrix may grant.
var knownOperations = map[string]bool{
	"list":   true,
	"read":   true,
	"write":  true,
	"delete": true,
	"config": true,
}

const (
	minSessionTimeoutSecs = 900
	maxSessionTimeoutSecs = 1800
)

// Validate checks the configuration for correctness and clamps values
// that have a valid range.
func (c *Config) Validate() error {
	if c.Workspace.Root == "" {
		return fmt.Errorf("workspace.root must not be empty")
	}
	if c.Workspace.UsersFile == "" {
		return fmt.Errorf("workspace.users_file must not be empty")
	}
	if c.Workspace.SharedFolder == "" {
		c.Workspace.SharedFolder = "shared"
	}

	for role, policy := range c.Roles {
		if strings.TrimSpace(role) == "" {
			return fmt.Errorf("roles: empty role name")
		}
		for _, op := range policy.Permissions {
			if !knownOperations[strings.ToLower(op)] {
				return fmt.Errorf("roles.%s: unknown operation %q", role, op)
			}
		}
		for _, folder := range policy.Folders {
			if folder == "" || strings.ContainsAny(folder, `/\`) {
				return fmt.Errorf("roles.%s: invalid folder name %q", role, folder)
			}
		}
	}

	// Clamp values with a valid range instead of rejecting them.
	if c.Security.SessionTimeoutSecs < minSessionTimeoutSecs {
		c.Security.SessionTimeoutSecs = minSessionTimeoutSecs
	}
	if c.Security.SessionTimeoutSecs > maxSessionTimeoutSecs {
		c.Security.SessionTimeoutSecs = maxSessionTimeoutSecs
	}
	if c.Security.MaxLoginAttempts < 1 {
		c.Security.MaxLoginAttempts = 1
	}
	if c.Security.LockoutDurationMinutes < 1 {
		c.Security.LockoutDurationMinutes = 15
	}

	switch c.UI.Theme {
	case "dark", "light", "auto":
	case "":
		c.UI.Theme = "dark"
	default:
		return fmt.Errorf("ui.theme must be one of dark, light, auto")
	}

	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies ACSHELL_* environment variables over the
// loaded configuration.
//
// Supported variables:
//   - ACSHELL_WORKSPACE: workspace root directory
//   - ACSHELL_USERS_FILE: identity records file
//   - ACSHELL_AUDIT_LOG: audit log path
//   - ACSHELL_AUDIT_DB: sqlite audit store path
//   - ACSHELL_PLAIN: force plain (non-TUI) mode
//   - ACSHELL_SESSION_TIMEOUT: session timeout in seconds
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("ACSHELL_WORKSPACE"); v != "" {
		c.Workspace.Root = v
	}
	if v := os.Getenv("ACSHELL_USERS_FILE"); v != "" {
		c.Workspace.UsersFile = v
	}
	if v := os.Getenv("ACSHELL_AUDIT_LOG"); v != "" {
		c.Security.AuditLogPath = v
	}
	if v := os.Getenv("ACSHELL_AUDIT_DB"); v != "" {
		c.Security.AuditDBPath = v
	}
	if v := os.Getenv("ACSHELL_PLAIN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.UI.PlainMode = b
		}
	}
	if v := os.Getenv("ACSHELL_SESSION_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Security.SessionTimeoutSecs = n
		}
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// WorkspaceRoot returns the absolute workspace root path.
func (c *Config) WorkspaceRoot() (string, error) {
	root := c.Workspace.Root
	if !filepath.IsAbs(root) {
		abs, err := filepath.Abs(root)
		if err != nil {
			return "", fmt.Errorf("could not resolve workspace root: %w", err)
		}
		root = abs
	}
	return filepath.Clean(root), nil
}

// AllFolders returns the union of every folder named by any role policy,
// sorted. This is the finite set of top-level Named folders known to the
// system.
func (c *Config) AllFolders() []string {
	seen := make(map[string]bool)
	for _, policy := range c.Roles {
		for _, folder := range policy.Folders {
			seen[folder] = true
		}
	}
	folders := make([]string, 0, len(seen))
	for folder := range seen {
		folders = append(folders, folder)
	}
	sort.Strings(folders)
	return folders
}

// =============================================================================
// GLOBAL CONFIG SINGLETON
// =============================================================================

var (
	globalConfig *Config
	globalMu     sync.RWMutex
)

// Global returns the global configuration, loading it on first use.
func Global() *Config {
	globalMu.RLock()
	if globalConfig != nil {
		defer globalMu.RUnlock()
		return globalConfig
	}
	globalMu.RUnlock()

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			cfg = Default()
		}
		globalConfig = cfg
	}
	return globalConfig
}

// SetGlobal replaces the global configuration.
func SetGlobal(cfg *Config) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting clears the global configuration so tests can
// start from a known state.
func ResetGlobalForTesting() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = nil
}
