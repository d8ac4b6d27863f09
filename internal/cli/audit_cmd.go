// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// audit_cmd.go - audit trail review for acshell.
//
// Command: audit [subcommand]
//
// Subcommands:
//   show (default)   Display recent audit log entries
//   verify           Recompute the HMAC chain over the log file
//
// Examples:
//   acshell audit                 Show the last 20 entries
//   acshell audit show --json     Entries as JSON lines
//   acshell audit verify          Detect tampering or truncation
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jeranaias/acshell/internal/audit"
	"github.com/jeranaias/acshell/internal/config"
)

const defaultShowLines = 20

// HandleAudit runs the audit subcommand. Returns a process exit code.
func HandleAudit(args Args) int {
	cfg := config.Global()
	path := cfg.Security.AuditLogPath
	if path == "" {
		path = audit.DefaultPath()
	}

	switch args.Subcommand {
	case "", "show":
		return auditShow(path, args.JSON)
	case "verify":
		return auditVerify(path)
	default:
		fmt.Fprintf(os.Stderr, "unknown audit subcommand: %s\n", args.Subcommand)
		return 2
	}
}

func auditShow(path string, jsonOut bool) int {
	events, err := audit.ReadEvents(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No audit log yet.")
			return 0
		}
		fmt.Fprintf(os.Stderr, "failed to read audit log: %v\n", err)
		return 1
	}
	if len(events) > defaultShowLines {
		events = events[len(events)-defaultShowLines:]
	}

	for _, e := range events {
		if jsonOut {
			line, err := e.ToJSON()
			if err != nil {
				continue
			}
			fmt.Println(line)
			continue
		}
		fmt.Println(e.ToLogLine())
	}
	return 0
}

func auditVerify(path string) int {
	key, err := audit.LoadOrCreateKey(filepath.Dir(path))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load audit key: %v\n", err)
		return 1
	}
	if err := audit.VerifyChain(path, key); err != nil {
		fmt.Fprintf(os.Stderr, "FAILED: %v\n", err)
		return 1
	}
	fmt.Println("OK: audit chain verified")
	return 0
}
