// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package access

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jeranaias/acshell/internal/config"
)

// =============================================================================
// ROLES AND OPERATIONS
// =============================================================================

// Role is a named capability tier assigned to exactly one user each.
type Role string

const (
	RoleSysadmin  Role = "sysadmin"
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
	RoleDesigner  Role = "designer"
	RoleDeveloper Role = "developer"
	RoleAnalyst   Role = "analyst"
	RoleGuest     Role = "guest"
)

// Operation is an action class subject to permission.
type Operation string

const (
	OpList   Operation = "list"
	OpRead   Operation = "read"
	OpWrite  Operation = "write"
	OpDelete Operation = "delete"
	OpConfig Operation = "config"
)

// ParseOperation converts an operation name to an Operation.
func ParseOperation(name string) (Operation, error) {
	switch op := Operation(strings.ToLower(strings.TrimSpace(name))); op {
	case OpList, OpRead, OpWrite, OpDelete, OpConfig:
		return op, nil
	default:
		return "", fmt.Errorf("unknown operation %q", name)
	}
}

// =============================================================================
// POLICY TABLE
// =============================================================================

// rolePolicy is the resolved policy for a single role.
type rolePolicy struct {
	permissions map[Operation]bool
	folders     map[string]bool
	folderOrder []string
}

// Table is the static role policy matrix. It is immutable after
// construction, which makes it safe for concurrent reads without locks.
type Table struct {
	roles map[Role]rolePolicy
}

// NewTable builds a policy table from the configuration matrix.
// Operation names are validated; an invalid matrix returns an error
// rather than a partially built table.
func NewTable(matrix map[string]config.RolePolicy) (*Table, error) {
	roles := make(map[Role]rolePolicy, len(matrix))
	for name, policy := range matrix {
		role := Role(strings.ToLower(strings.TrimSpace(name)))
		if role == "" {
			return nil, fmt.Errorf("policy table: empty role name")
		}

		perms := make(map[Operation]bool, len(policy.Permissions))
		for _, opName := range policy.Permissions {
			op, err := ParseOperation(opName)
			if err != nil {
				return nil, fmt.Errorf("policy table: role %q: %w", role, err)
			}
			perms[op] = true
		}

		folders := make(map[string]bool, len(policy.Folders))
		order := make([]string, 0, len(policy.Folders))
		for _, folder := range policy.Folders {
			if folders[folder] {
				continue
			}
			folders[folder] = true
			order = append(order, folder)
		}

		roles[role] = rolePolicy{
			permissions: perms,
			folders:     folders,
			folderOrder: order,
		}
	}
	return &Table{roles: roles}, nil
}

// PermissionsFor returns the operations permitted to a role, sorted.
// An unknown role yields an empty set (fail-closed).
func (t *Table) PermissionsFor(role Role) []Operation {
	policy, ok := t.roles[role]
	if !ok {
		return nil
	}
	ops := make([]Operation, 0, len(policy.permissions))
	for op := range policy.permissions {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}

// FoldersFor returns the folders accessible to a role in configuration
// order. An unknown role yields an empty set (fail-closed).
func (t *Table) FoldersFor(role Role) []string {
	policy, ok := t.roles[role]
	if !ok {
		return nil
	}
	out := make([]string, len(policy.folderOrder))
	copy(out, policy.folderOrder)
	return out
}

// Permits reports whether a role holds an operation capability.
func (t *Table) Permits(role Role, op Operation) bool {
	policy, ok := t.roles[role]
	if !ok {
		return false
	}
	return policy.permissions[op]
}

// HasFolder reports whether a folder is accessible to a role.
func (t *Table) HasFolder(role Role, folder string) bool {
	policy, ok := t.roles[role]
	if !ok {
		return false
	}
	return policy.folders[folder]
}
