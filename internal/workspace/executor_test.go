// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jeranaias/acshell/internal/access"
	"github.com/jeranaias/acshell/internal/config"
	"github.com/jeranaias/acshell/internal/identity"
)

func testExecutor(t *testing.T) *Executor {
	t.Helper()

	root := t.TempDir()
	for _, dir := range []string{"reports", "code", "shared", "user_alice", "user_bob"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	table, err := access.NewTable(config.Default().Roles)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	resolver, err := access.NewResolver(root)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}
	return NewExecutor(access.NewController(table, resolver))
}

func manager(name string) identity.User {
	return identity.User{Username: name, Role: access.RoleManager}
}

func sysadmin() identity.User {
	return identity.User{Username: "root", Role: access.RoleSysadmin}
}

// =============================================================================
// ROUND-TRIP
// =============================================================================

func TestCreateThenRead_RoundTrip(t *testing.T) {
	e := testExecutor(t)
	alice := manager("alice")
	content := []byte("quarterly numbers\nrevenue up 12%\n")

	if err := e.Create(alice, "reports/q1.txt", content); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	got, err := e.Read(alice, "reports/q1.txt")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("read back %q, want %q", got, content)
	}
}

func TestCreate_ExistingFileRefused(t *testing.T) {
	e := testExecutor(t)
	alice := manager("alice")

	if err := e.Create(alice, "reports/a.txt", []byte("one")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := e.Create(alice, "reports/a.txt", []byte("two")); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("second Create = %v, want ErrAlreadyExists", err)
	}
}

func TestExists_AccessibleAndDenied(t *testing.T) {
	e := testExecutor(t)
	alice := manager("alice")

	if err := e.Create(alice, "reports/a.txt", []byte("x")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	ok, err := e.Exists(alice, "reports/a.txt")
	if err != nil || !ok {
		t.Errorf("Exists = %v, %v, want true, nil", ok, err)
	}
	ok, err = e.Exists(alice, "reports/missing.txt")
	if err != nil || ok {
		t.Errorf("Exists missing = %v, %v, want false, nil", ok, err)
	}

	// Inaccessible folders cannot be probed for existence.
	if _, err := e.Exists(alice, "code/main.go"); !errors.Is(err, ErrDenied) {
		t.Errorf("Exists denied = %v, want ErrDenied", err)
	}
}

func TestEdit_RequiresExistingFile(t *testing.T) {
	e := testExecutor(t)
	alice := manager("alice")

	if err := e.Edit(alice, "reports/missing.txt", []byte("x")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Edit missing = %v, want ErrNotFound", err)
	}

	if err := e.Create(alice, "reports/a.txt", []byte("old")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := e.Edit(alice, "reports/a.txt", []byte("new")); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	got, _ := e.Read(alice, "reports/a.txt")
	if string(got) != "new" {
		t.Errorf("after edit: %q", got)
	}
}

// =============================================================================
// SHARED FOLDER ASYMMETRY
// =============================================================================

func TestSharedFolder_EditableButNotCreatable(t *testing.T) {
	e := testExecutor(t)
	alice := manager("alice")

	// Seed a file directly; creation through the executor is refused.
	pre := filepath.Join(e.Root(), "shared", "notes.txt")
	if err := os.WriteFile(pre, []byte("existing"), 0644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := e.Create(alice, "shared/new.txt", []byte("x")); !errors.Is(err, ErrDenied) {
		t.Errorf("Create in shared = %v, want ErrDenied", err)
	}
	if err := e.Edit(alice, "shared/notes.txt", []byte("updated")); err != nil {
		t.Errorf("Edit in shared = %v, want nil", err)
	}
}

func TestCreationFolders_ExcludesShared(t *testing.T) {
	e := testExecutor(t)
	alice := manager("alice")

	browse, err := e.Folders(alice)
	if err != nil {
		t.Fatalf("Folders failed: %v", err)
	}
	if !contains(browse, "shared") || !contains(browse, "reports") || !contains(browse, "user_alice") {
		t.Errorf("Folders = %v", browse)
	}
	if contains(browse, "code") {
		t.Errorf("manager should not see code folder: %v", browse)
	}

	create, err := e.CreationFolders(alice)
	if err != nil {
		t.Fatalf("CreationFolders failed: %v", err)
	}
	if contains(create, "shared") {
		t.Errorf("CreationFolders = %v, shared must be excluded", create)
	}
	if !contains(create, "reports") || !contains(create, "user_alice") {
		t.Errorf("CreationFolders = %v", create)
	}
}

// =============================================================================
// DELETE ASYMMETRY
// =============================================================================

func TestDelete_NamedRestrictedToSysadmin(t *testing.T) {
	e := testExecutor(t)
	admin := identity.User{Username: "carol", Role: access.RoleAdmin}

	// Admin holds the delete capability and reports access, but named
	// files still require sysadmin.
	if err := e.Create(admin, "reports/doomed.txt", []byte("x")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := e.Delete(admin, "reports/doomed.txt"); !errors.Is(err, ErrDenied) {
		t.Errorf("admin delete of named file = %v, want ErrDenied", err)
	}
	if err := e.Delete(sysadmin(), "reports/doomed.txt"); err != nil {
		t.Errorf("sysadmin delete = %v", err)
	}
}

func TestDelete_PersonalByOwner(t *testing.T) {
	e := testExecutor(t)
	admin := identity.User{Username: "alice", Role: access.RoleAdmin}

	if err := e.Create(admin, "user_alice/mine.txt", []byte("x")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := e.Delete(admin, "user_alice/mine.txt"); err != nil {
		t.Errorf("owner delete of personal file = %v", err)
	}
}

func TestDelete_WithoutCapability(t *testing.T) {
	e := testExecutor(t)
	alice := manager("alice")

	if err := e.Create(alice, "user_alice/mine.txt", []byte("x")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	// Manager has no delete capability at all.
	if err := e.Delete(alice, "user_alice/mine.txt"); !errors.Is(err, ErrDenied) {
		t.Errorf("delete without capability = %v, want ErrDenied", err)
	}
}

// =============================================================================
// DENIAL BEFORE EXISTENCE
// =============================================================================

func TestDeny_DoesNotRevealExistence(t *testing.T) {
	e := testExecutor(t)
	guest := identity.User{Username: "eve", Role: access.RoleGuest}

	if err := os.WriteFile(filepath.Join(e.Root(), "reports", "real.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, errReal := e.Read(guest, "reports/real.txt")
	_, errFake := e.Read(guest, "reports/nope.txt")
	if !errors.Is(errReal, ErrDenied) || !errors.Is(errFake, ErrDenied) {
		t.Errorf("refusals = %v, %v; both must be ErrDenied", errReal, errFake)
	}
}

func TestTraversal_Denied(t *testing.T) {
	e := testExecutor(t)

	_, err := e.Read(sysadmin(), "../outside.txt")
	if !errors.Is(err, ErrDenied) {
		t.Errorf("traversal read = %v, want ErrDenied", err)
	}
	if err := e.Create(sysadmin(), "reports/../../escape.txt", []byte("x")); !errors.Is(err, ErrDenied) {
		t.Errorf("traversal create = %v, want ErrDenied", err)
	}
}

func TestForeignPersonalFolder_Denied(t *testing.T) {
	e := testExecutor(t)
	alice := manager("alice")

	_, err := e.Read(alice, "user_bob/readme.txt")
	if !errors.Is(err, ErrDenied) {
		t.Errorf("foreign personal read = %v, want ErrDenied", err)
	}
}

// =============================================================================
// FILE NAMES
// =============================================================================

func TestValidateFileName(t *testing.T) {
	valid := []string{"report.txt", "q1-2024.csv", "readme", "a.b.c"}
	for _, name := range valid {
		if err := ValidateFileName(name); err != nil {
			t.Errorf("ValidateFileName(%q) = %v", name, err)
		}
	}

	invalid := []string{"", ".", "..", "a<b.txt", "a>b", "a:b", `a"b`, "a|b", "a?b", "a*b", `a\b`, "a/b", "x\x00y"}
	for _, name := range invalid {
		if err := ValidateFileName(name); err == nil {
			t.Errorf("ValidateFileName(%q) should fail", name)
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
