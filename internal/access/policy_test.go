// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package access

import (
	"testing"

	"github.com/jeranaias/acshell/internal/config"
)

func testMatrix() map[string]config.RolePolicy {
	return map[string]config.RolePolicy{
		"sysadmin": {
			Permissions: []string{"read", "write", "delete", "list", "config"},
			Folders:     []string{"system", "reports", "code", "shared"},
		},
		"manager": {
			Permissions: []string{"read", "write", "list"},
			Folders:     []string{"reports", "shared"},
		},
		"guest": {
			Permissions: []string{"read"},
			Folders:     []string{"shared"},
		},
	}
}

// =============================================================================
// TABLE CONSTRUCTION TESTS
// =============================================================================

func TestNewTable(t *testing.T) {
	table, err := NewTable(testMatrix())
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}

	if !table.Permits(RoleManager, OpWrite) {
		t.Error("manager should have write")
	}
	if table.Permits(RoleManager, OpDelete) {
		t.Error("manager should not have delete")
	}
	if !table.HasFolder(RoleManager, "reports") {
		t.Error("manager should see reports")
	}
	if table.HasFolder(RoleManager, "code") {
		t.Error("manager should not see code")
	}
}

func TestNewTable_RejectsUnknownOperation(t *testing.T) {
	matrix := testMatrix()
	matrix["manager"] = config.RolePolicy{Permissions: []string{"fly"}}
	if _, err := NewTable(matrix); err == nil {
		t.Error("NewTable should reject unknown operations")
	}
}

func TestNewTable_NormalizesRoleCase(t *testing.T) {
	matrix := map[string]config.RolePolicy{
		"MANAGER": {Permissions: []string{"READ"}, Folders: []string{"reports"}},
	}
	table, err := NewTable(matrix)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	if !table.Permits(RoleManager, OpRead) {
		t.Error("role and operation names should be case-insensitive on load")
	}
}

// =============================================================================
// FAIL-CLOSED TESTS
// =============================================================================

func TestUnknownRole_FailClosed(t *testing.T) {
	table, _ := NewTable(testMatrix())

	if perms := table.PermissionsFor(Role("intern")); len(perms) != 0 {
		t.Errorf("unknown role permissions = %v, want empty", perms)
	}
	if folders := table.FoldersFor(Role("intern")); len(folders) != 0 {
		t.Errorf("unknown role folders = %v, want empty", folders)
	}
	for _, op := range []Operation{OpList, OpRead, OpWrite, OpDelete, OpConfig} {
		if table.Permits(Role("intern"), op) {
			t.Errorf("unknown role should never hold %s", op)
		}
	}
}

// =============================================================================
// LOOKUP TESTS
// =============================================================================

func TestFoldersFor_PreservesConfigOrder(t *testing.T) {
	table, _ := NewTable(testMatrix())
	folders := table.FoldersFor(RoleSysadmin)
	want := []string{"system", "reports", "code", "shared"}
	if len(folders) != len(want) {
		t.Fatalf("folders = %v, want %v", folders, want)
	}
	for i := range want {
		if folders[i] != want[i] {
			t.Errorf("folders[%d] = %q, want %q", i, folders[i], want[i])
		}
	}
}

func TestFoldersFor_ReturnsCopy(t *testing.T) {
	table, _ := NewTable(testMatrix())
	folders := table.FoldersFor(RoleManager)
	folders[0] = "mutated"
	if table.FoldersFor(RoleManager)[0] != "reports" {
		t.Error("FoldersFor must return a copy, not internal state")
	}
}

func TestParseOperation(t *testing.T) {
	tests := []struct {
		in      string
		want    Operation
		wantErr bool
	}{
		{"read", OpRead, false},
		{"WRITE", OpWrite, false},
		{" list ", OpList, false},
		{"config", OpConfig, false},
		{"execute", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOperation(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOperation(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseOperation(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
