// acshell - A role-based access-control shell over a local file workspace.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/acshell/internal/access"
	"github.com/jeranaias/acshell/internal/audit"
	"github.com/jeranaias/acshell/internal/cli"
	"github.com/jeranaias/acshell/internal/config"
	"github.com/jeranaias/acshell/internal/identity"
	"github.com/jeranaias/acshell/internal/session"
	"github.com/jeranaias/acshell/internal/ui"
	"github.com/jeranaias/acshell/internal/workspace"
)

// Version information (set at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	args := cli.Parse(os.Args[1:])

	switch args.Command {
	case cli.CmdVersion:
		os.Exit(cli.HandleVersion(args.JSON))
	case cli.CmdHelp:
		cli.PrintHelp()
		os.Exit(0)
	case cli.CmdAudit:
		os.Exit(cli.HandleAudit(args))
	case cli.CmdConfig:
		os.Exit(cli.HandleConfig(args))
	default:
		os.Exit(runShell(args))
	}
}

// runShell wires the stores, policy, and executor together and starts
// either the TUI or the plain line-oriented shell.
func runShell(args cli.Args) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		return 1
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		return 1
	}
	config.SetGlobal(cfg)

	root, err := cfg.WorkspaceRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Audit logger, with an optional sqlite sink for structured queries.
	var loggerOpts []audit.LoggerOption
	if cfg.Security.AuditDBPath != "" {
		sqliteStore, err := audit.OpenSQLiteStore(cfg.Security.AuditDBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: audit database unavailable: %v\n", err)
		} else {
			defer sqliteStore.Close()
			loggerOpts = append(loggerOpts, audit.WithSink(sqliteStore))
		}
	}
	logger, err := audit.NewLogger(cfg.Security.AuditLogPath, loggerOpts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not open audit log: %v\n", err)
		return 1
	}
	defer logger.Close()

	// Identity store with per-username lockout.
	storeOpts := []identity.StoreOption{identity.WithRecorder(logger)}
	if cfg.Security.LockoutEnabled {
		lockoutOpts := []identity.LockoutOption{
			identity.WithMaxAttempts(cfg.Security.MaxLoginAttempts),
			identity.WithLockoutDuration(time.Duration(cfg.Security.LockoutDurationMinutes) * time.Minute),
		}
		if dir, err := config.ConfigDir(); err == nil {
			lockoutOpts = append(lockoutOpts, identity.WithPersistPath(filepath.Join(dir, "lockout.json")))
		}
		storeOpts = append(storeOpts, identity.WithLockout(identity.NewLockout(lockoutOpts...)))
	}
	store, err := identity.Open(cfg.Workspace.UsersFile, storeOpts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not open identity store: %v\n", err)
		return 1
	}

	// Policy table and access controller over the workspace root.
	table, err := access.NewTable(cfg.Roles)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid role policy: %v\n", err)
		return 1
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not create workspace: %v\n", err)
		return 1
	}
	resolver, err := access.NewResolver(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	controller := access.NewController(table, resolver, access.WithRecorder(logger))

	executor := workspace.NewExecutor(controller,
		workspace.WithRecorder(logger),
		workspace.WithSharedFolder(cfg.Workspace.SharedFolder),
	)

	// First-run seeding: role folders, personal folders, sample files.
	seeder := workspace.NewSeeder(root, cfg.AllFolders(), cfg.Workspace.SeedSampleFiles)
	if err := seeder.Seed(store.Users()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not seed workspace: %v\n", err)
		return 1
	}

	sessions := session.NewManager(session.Config{
		Timeout: time.Duration(cfg.Security.SessionTimeoutSecs) * time.Second,
	})

	if args.Plain || cfg.UI.PlainMode || !cli.IsTTY() {
		return cli.NewPlainShell(store, executor, sessions, args.Quiet).Run()
	}
	return runTUI(root, store, executor, sessions)
}

// runTUI starts the Bubble Tea interface with a filesystem watcher
// feeding change notifications into the program.
func runTUI(root string, store *identity.Store, executor *workspace.Executor, sessions *session.Manager) int {
	m := ui.New(store, executor, sessions)
	p := tea.NewProgram(m, tea.WithAltScreen())

	watcher, err := workspace.NewWatcher(root, workspace.DefaultDebounce, func(changed []string) {
		p.Send(ui.WorkspaceChangedMsg{Paths: changed})
	})
	if err == nil {
		if err := watcher.Start(); err == nil {
			defer watcher.Close()
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running acshell: %v\n", err)
		return 1
	}
	return 0
}
