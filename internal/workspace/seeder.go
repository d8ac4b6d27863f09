// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jeranaias/acshell/internal/identity"
)

// =============================================================================
// WORKSPACE SEEDING
// =============================================================================

// sampleFiles is the starter content placed in freshly created role
// folders. Existing files are never overwritten.
var sampleFiles = map[string][]struct{ name, content string }{
	"reports": {
		{"monthly_report.txt", "Monthly report\nProfit: 1,500,000\n"},
		{"sales.csv", "date,item,quantity,total\n2024-01-15,Item A,100,500000\n"},
	},
	"design": {
		{"prototype.fig", "Company site prototype\n"},
		{"styles.css", "/* base styles */\nbody { font-family: Arial; }\n"},
	},
	"code": {
		{"main.go", "package main\n\nfunc main() {\n\tprintln(\"hello\")\n}\n"},
		{"config.json", "{\"version\": \"1.0\", \"debug\": true}\n"},
	},
	"shared": {
		{"welcome.txt", "Welcome to the shared folder!\n"},
		{"contacts.txt", "IT support: 1111\nAccounting: 2222\n"},
	},
}

// Seeder lays out the initial workspace: one directory per named
// folder, one personal folder per user, and sample files on first run.
type Seeder struct {
	root    string
	folders []string
	samples bool
}

// NewSeeder creates a seeder for root. folders is the union of every
// role's named folders; samples controls starter file creation.
func NewSeeder(root string, folders []string, samples bool) *Seeder {
	return &Seeder{root: root, folders: folders, samples: samples}
}

// Seed creates the directory layout and, when enabled, the sample
// files. It is idempotent: nothing existing is touched.
func (s *Seeder) Seed(users []identity.User) error {
	if err := os.MkdirAll(s.root, 0755); err != nil {
		return fmt.Errorf("failed to create workspace root: %w", err)
	}

	for _, folder := range s.folders {
		if err := os.MkdirAll(filepath.Join(s.root, folder), 0755); err != nil {
			return fmt.Errorf("failed to create folder %s: %w", folder, err)
		}
	}
	for _, u := range users {
		if err := os.MkdirAll(filepath.Join(s.root, u.PersonalFolder()), 0755); err != nil {
			return fmt.Errorf("failed to create personal folder for %s: %w", u.Username, err)
		}
	}

	if !s.samples {
		return nil
	}
	for folder, files := range sampleFiles {
		dir := filepath.Join(s.root, folder)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		for _, f := range files {
			if err := writeIfAbsent(filepath.Join(dir, f.name), f.content); err != nil {
				return err
			}
		}
	}
	for _, u := range users {
		readme := filepath.Join(s.root, u.PersonalFolder(), "readme.txt")
		content := fmt.Sprintf("Personal folder of %s\nRole: %s\nYour own files live here.\n",
			u.Username, u.Role)
		if err := writeIfAbsent(readme, content); err != nil {
			return err
		}
	}
	return nil
}

func writeIfAbsent(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to seed %s: %w", path, err)
	}
	return nil
}
