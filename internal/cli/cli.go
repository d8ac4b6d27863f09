// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - argument parsing and command dispatch for acshell.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time).
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	// CmdShell launches the interactive shell (TUI, or plain mode on
	// dumb terminals).
	CmdShell Command = iota
	CmdAudit
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	Command Command

	// Global flags
	Plain   bool // force plain (non-TUI) mode
	Quiet   bool
	JSON    bool // machine-readable output for subcommands

	// Command-specific
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Raw args remaining after flag parsing
	Raw []string
}

// Parse parses os.Args-style arguments (without the program name).
func Parse(argv []string) Args {
	args := Args{Command: CmdShell}

	var positional []string
	for _, a := range argv {
		switch a {
		case "--plain", "-p":
			args.Plain = true
		case "--quiet", "-q":
			args.Quiet = true
		case "--json":
			args.JSON = true
		case "--help", "-h":
			args.Command = CmdHelp
			return args
		case "--version", "-v":
			args.Command = CmdVersion
			return args
		default:
			if strings.HasPrefix(a, "-") {
				fmt.Fprintf(os.Stderr, "unknown flag: %s\n", a)
				args.Command = CmdHelp
				return args
			}
			positional = append(positional, a)
		}
	}

	if len(positional) == 0 {
		return args
	}

	switch positional[0] {
	case "shell":
		args.Command = CmdShell
	case "audit":
		args.Command = CmdAudit
		if len(positional) > 1 {
			args.Subcommand = positional[1]
			args.Raw = positional[2:]
		}
	case "config":
		args.Command = CmdConfig
		if len(positional) > 1 {
			args.ConfigKey = positional[1]
		}
		if len(positional) > 2 {
			args.ConfigVal = positional[2]
		}
	case "version":
		args.Command = CmdVersion
	case "help":
		args.Command = CmdHelp
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", positional[0])
		args.Command = CmdHelp
	}
	return args
}

// PrintHelp writes usage information to stdout.
func PrintHelp() {
	fmt.Print(`acshell - role-based access-control shell

Usage:
  acshell [flags]              Launch the interactive shell
  acshell audit [show|verify]  Review or verify the audit trail
  acshell config [key [value]] Show or change configuration
  acshell version              Print version information
  acshell help                 Show this help

Flags:
  -p, --plain    Force the plain line-mode shell (no TUI)
  -q, --quiet    Suppress the startup banner
      --json     Machine-readable output for subcommands
  -h, --help     Show help
  -v, --version  Show version

Audit subcommands:
  show     Display recent audit entries (default)
  verify   Recompute the integrity chain over the audit log

Examples:
  acshell                      Log in and browse the workspace
  acshell --plain              Same, over a line-oriented prompt
  acshell audit show           Last 20 audit entries
  acshell audit verify         Check the log for tampering
  acshell config ui.theme dark Set the TUI theme
`)
}

// HandleVersion prints version information.
func HandleVersion(jsonOut bool) int {
	if jsonOut {
		fmt.Printf("{\"version\":%q,\"commit\":%q,\"built\":%q,\"go\":%q}\n",
			Version, GitCommit, BuildDate, runtime.Version())
		return 0
	}
	fmt.Printf("acshell %s (%s, built %s, %s %s/%s)\n",
		Version, GitCommit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return 0
}
