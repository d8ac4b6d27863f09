// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// plain.go - line-oriented shell for terminals the TUI cannot serve.
package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/acshell/internal/config"
	"github.com/jeranaias/acshell/internal/identity"
	"github.com/jeranaias/acshell/internal/session"
	"github.com/jeranaias/acshell/internal/util"
	"github.com/jeranaias/acshell/internal/workspace"
)

// =============================================================================
// PLAIN SHELL
// =============================================================================

// PlainShell is the line-mode interactive loop: a login prompt
// followed by a numbered menu, mirroring the TUI's capabilities.
type PlainShell struct {
	store    *identity.Store
	executor *workspace.Executor
	sessions *session.Manager
	line     *liner.State
	quiet    bool
}

// NewPlainShell creates the plain-mode shell.
func NewPlainShell(store *identity.Store, executor *workspace.Executor, sessions *session.Manager, quiet bool) *PlainShell {
	return &PlainShell{
		store:    store,
		executor: executor,
		sessions: sessions,
		quiet:    quiet,
	}
}

// Run drives login and menu loops until the user exits. Returns a
// process exit code.
func (s *PlainShell) Run() int {
	s.line = liner.NewLiner()
	s.line.SetCtrlCAborts(true)
	defer s.line.Close()

	if !s.quiet {
		fmt.Println(strings.Repeat("=", 60))
		fmt.Println("ACCESS CONTROL SHELL")
		fmt.Println(strings.Repeat("=", 60))
	}

	for {
		user, ok := s.login()
		if !ok {
			return 1
		}
		s.sessions.Begin(user)
		fmt.Printf("\nLogged in as %s (%s)\n", user.Username, user.Role)

		again := s.menuLoop(user)
		s.sessions.End()
		if !again {
			fmt.Println("Goodbye.")
			return 0
		}
	}
}

// login prompts until authentication succeeds or attempts run out.
func (s *PlainShell) login() (identity.User, bool) {
	const maxPrompts = 3
	for attempt := 1; attempt <= maxPrompts; attempt++ {
		username, err := s.line.Prompt("Username: ")
		if err != nil {
			return identity.User{}, false
		}
		password, err := ReadPassword("Password: ")
		if err != nil {
			return identity.User{}, false
		}

		user, err := s.store.Authenticate(identity.Credentials{
			Username: username,
			Password: password,
		})
		if errors.Is(err, identity.ErrTOTPRequired) {
			code, cerr := s.line.Prompt("One-time code: ")
			if cerr != nil {
				return identity.User{}, false
			}
			user, err = s.store.Authenticate(identity.Credentials{
				Username: username,
				Password: password,
				TOTPCode: code,
			})
		}
		switch {
		case err == nil:
			return user, true
		case errors.Is(err, identity.ErrLocked):
			fmt.Println("Account is temporarily locked. Try again later.")
		default:
			fmt.Printf("Invalid username or password (%d/%d)\n", attempt, maxPrompts)
		}
	}
	fmt.Println("Too many failed attempts.")
	return identity.User{}, false
}

// menuLoop runs the per-session menu. Returns true when the user
// logged out (re-show login) and false on exit.
func (s *PlainShell) menuLoop(user identity.User) bool {
	for {
		if s.sessions.Expired() {
			fmt.Println("\nSession expired due to inactivity.")
			return true
		}

		fmt.Println("\nMAIN MENU")
		fmt.Println("  1. List available files")
		fmt.Println("  2. Read a file")
		fmt.Println("  3. Create or edit a file")
		fmt.Println("  4. Delete a file")
		fmt.Println("  5. Show my permissions")
		fmt.Println("  6. Log out")
		fmt.Println("  7. Exit")

		choice, err := s.line.Prompt("Choice: ")
		if err != nil {
			return false
		}
		s.sessions.Touch()

		switch strings.TrimSpace(choice) {
		case "1":
			s.listFiles(user)
		case "2":
			s.readFile(user)
		case "3":
			s.writeFile(user)
		case "4":
			s.deleteFile(user)
		case "5":
			s.showPermissions(user)
		case "6":
			return true
		case "7":
			return false
		default:
			fmt.Println("Unknown choice.")
		}
	}
}

// =============================================================================
// MENU ACTIONS
// =============================================================================

func (s *PlainShell) listFiles(user identity.User) {
	folders, err := s.executor.Folders(user)
	if err != nil {
		fmt.Println("Access denied.")
		return
	}
	fmt.Println("\nAVAILABLE FILES:")
	for _, folder := range folders {
		entries, err := s.executor.List(user, folder)
		if err != nil {
			continue
		}
		fmt.Printf("  %s/\n", folder)
		for _, e := range entries {
			if e.IsDir {
				continue
			}
			if config.Global().UI.ShowSizes {
				fmt.Printf("    %-30s %8s\n", e.Name, util.HumanSize(e.Size))
			} else {
				fmt.Printf("    %s\n", e.Name)
			}
		}
	}
}

func (s *PlainShell) readFile(user identity.User) {
	path, ok := s.promptPath("File to read (folder/name): ")
	if !ok {
		return
	}
	data, err := s.executor.Read(user, path)
	if err != nil {
		s.printOpError(err)
		return
	}
	fmt.Printf("\n--- %s ---\n%s\n", path, data)
}

func (s *PlainShell) writeFile(user identity.User) {
	path, ok := s.promptPath("File to create or edit (folder/name): ")
	if !ok {
		return
	}

	fmt.Println("Enter content, finish with a single line END:")
	var lines []string
	for {
		line, err := s.line.Prompt("> ")
		if err != nil || line == "END" {
			break
		}
		lines = append(lines, line)
	}
	content := []byte(strings.Join(lines, "\n") + "\n")

	// Try editing first; fall back to creation for new files.
	err := s.executor.Edit(user, path, content)
	if errors.Is(err, workspace.ErrNotFound) {
		err = s.executor.Create(user, path, content)
	}
	if err != nil {
		s.printOpError(err)
		return
	}
	fmt.Println("File saved.")
}

func (s *PlainShell) deleteFile(user identity.User) {
	path, ok := s.promptPath("File to delete (folder/name): ")
	if !ok {
		return
	}
	confirm, err := s.line.Prompt(fmt.Sprintf("Delete %s? [y/N] ", path))
	if err != nil || !strings.EqualFold(strings.TrimSpace(confirm), "y") {
		fmt.Println("Cancelled.")
		return
	}
	if err := s.executor.Delete(user, path); err != nil {
		s.printOpError(err)
		return
	}
	fmt.Println("File deleted.")
}

func (s *PlainShell) showPermissions(user identity.User) {
	table := s.executor.Controller().Table()
	fmt.Printf("\nUser: %s\nRole: %s\n", user.Username, user.Role)

	perms := table.PermissionsFor(user.Role)
	names := make([]string, 0, len(perms))
	for _, p := range perms {
		names = append(names, string(p))
	}
	sort.Strings(names)
	fmt.Printf("Operations: %s\n", strings.Join(names, ", "))
	fmt.Printf("Folders: %s\n", strings.Join(table.FoldersFor(user.Role), ", "))
	fmt.Printf("Personal folder: %s\n", user.PersonalFolder())
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *PlainShell) promptPath(prompt string) (string, bool) {
	path, err := s.line.Prompt(prompt)
	if err != nil {
		return "", false
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return "", false
	}
	return path, true
}

func (s *PlainShell) printOpError(err error) {
	switch {
	case errors.Is(err, workspace.ErrDenied):
		fmt.Println("Access denied.")
	case errors.Is(err, workspace.ErrNotFound):
		fmt.Println("File not found.")
	case errors.Is(err, workspace.ErrAlreadyExists):
		fmt.Println("File already exists.")
	case errors.Is(err, workspace.ErrNameInvalid):
		fmt.Println("Invalid file name.")
	default:
		fmt.Printf("Operation failed: %v\n", err)
	}
}
