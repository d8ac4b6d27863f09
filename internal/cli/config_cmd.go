// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - configuration inspection and editing for acshell.
//
// Command: config [key [value]]
//
// With no arguments, prints the active configuration. With a key,
// prints that value. With a key and value, sets and persists it.
// Only a small allowlist of keys is settable from the command line;
// the role matrix is edited in the config file directly.
package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jeranaias/acshell/internal/config"
)

// HandleConfig runs the config subcommand. Returns a process exit code.
func HandleConfig(args Args) int {
	cfg := config.Global()

	if args.ConfigKey == "" {
		printConfig(cfg)
		return 0
	}
	if args.ConfigVal == "" {
		return printConfigKey(cfg, args.ConfigKey)
	}
	return setConfigKey(cfg, args.ConfigKey, args.ConfigVal)
}

func printConfig(cfg *config.Config) {
	fmt.Printf("workspace.root         = %s\n", cfg.Workspace.Root)
	fmt.Printf("workspace.users_file   = %s\n", cfg.Workspace.UsersFile)
	fmt.Printf("workspace.shared       = %s\n", cfg.Workspace.SharedFolder)
	fmt.Printf("workspace.seed_samples = %t\n", cfg.Workspace.SeedSampleFiles)
	fmt.Printf("security.max_attempts  = %d\n", cfg.Security.MaxLoginAttempts)
	fmt.Printf("security.lockout       = %t (%d min)\n", cfg.Security.LockoutEnabled, cfg.Security.LockoutDurationMinutes)
	fmt.Printf("security.session_secs  = %d\n", cfg.Security.SessionTimeoutSecs)
	fmt.Printf("security.audit         = %t\n", cfg.Security.AuditEnabled)
	fmt.Printf("ui.theme               = %s\n", cfg.UI.Theme)
	fmt.Printf("ui.plain               = %t\n", cfg.UI.PlainMode)

	var roles []string
	for name := range cfg.Roles {
		roles = append(roles, name)
	}
	fmt.Printf("roles                  = %s\n", strings.Join(roles, ", "))
}

func printConfigKey(cfg *config.Config, key string) int {
	switch key {
	case "workspace.root":
		fmt.Println(cfg.Workspace.Root)
	case "workspace.users_file":
		fmt.Println(cfg.Workspace.UsersFile)
	case "ui.theme":
		fmt.Println(cfg.UI.Theme)
	case "ui.plain":
		fmt.Println(cfg.UI.PlainMode)
	case "security.session_secs":
		fmt.Println(cfg.Security.SessionTimeoutSecs)
	default:
		fmt.Fprintf(os.Stderr, "unknown or unreadable key: %s\n", key)
		return 2
	}
	return 0
}

func setConfigKey(cfg *config.Config, key, value string) int {
	switch key {
	case "workspace.root":
		cfg.Workspace.Root = value
	case "ui.theme":
		cfg.UI.Theme = value
	case "ui.plain":
		b, err := strconv.ParseBool(value)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ui.plain expects true/false, got %q\n", value)
			return 2
		}
		cfg.UI.PlainMode = b
	case "security.session_secs":
		n, err := strconv.Atoi(value)
		if err != nil {
			fmt.Fprintf(os.Stderr, "security.session_secs expects a number, got %q\n", value)
			return 2
		}
		cfg.Security.SessionTimeoutSecs = n
	default:
		fmt.Fprintf(os.Stderr, "key %s is not settable from the command line\n", key)
		return 2
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		return 1
	}
	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to save configuration: %v\n", err)
		return 1
	}
	fmt.Printf("%s = %s\n", key, value)
	return 0
}
