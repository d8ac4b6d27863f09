// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package access

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordedDecision captures one audit hook invocation.
type recordedDecision struct {
	actor   string
	role    Role
	op      Operation
	target  string
	allowed bool
	reason  string
}

// fakeRecorder collects decisions for assertions.
type fakeRecorder struct {
	mu        sync.Mutex
	decisions []recordedDecision
}

func (f *fakeRecorder) RecordDecision(actor string, role Role, op Operation, target string, allowed bool, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decisions = append(f.decisions, recordedDecision{actor, role, op, target, allowed, reason})
}

func (f *fakeRecorder) last() recordedDecision {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.decisions[len(f.decisions)-1]
}

func newTestController(t *testing.T) (*Controller, *fakeRecorder) {
	t.Helper()
	table, err := NewTable(testMatrix())
	require.NoError(t, err)
	resolver, err := NewResolver(t.TempDir())
	require.NoError(t, err)
	rec := &fakeRecorder{}
	return NewController(table, resolver, WithRecorder(rec)), rec
}

// =============================================================================
// DECISION ORDER TESTS
// =============================================================================

func TestCheck_CapabilityPrecedesFolderCheck(t *testing.T) {
	// A role without the operation is denied before the folder check,
	// even when the folder itself would be accessible. The audit record
	// must carry operation_not_permitted, not folder_not_accessible.
	ctrl, rec := newTestController(t)

	allowed := ctrl.Check("carol", RoleGuest, OpWrite, "shared/notes.txt")
	assert.False(t, allowed)
	assert.Equal(t, ReasonOperationNotPermitted.String(), rec.last().reason)
}

func TestCheck_EmptyRoleIsDeniedBeforeFolderLookup(t *testing.T) {
	ctrl, rec := newTestController(t)

	// Unknown role, folder nominally in nobody's policy: reason must be
	// the capability denial.
	allowed := ctrl.Check("carol", Role("intern"), OpList, "reports/q1.txt")
	assert.False(t, allowed)
	assert.Equal(t, ReasonOperationNotPermitted.String(), rec.last().reason)
}

func TestCheck_PureCapability(t *testing.T) {
	ctrl, _ := newTestController(t)

	assert.True(t, ctrl.Check("mallory", RoleManager, OpWrite, ""))
	assert.False(t, ctrl.Check("mallory", RoleManager, OpDelete, ""))
	assert.False(t, ctrl.Check("mallory", RoleGuest, OpWrite, ""))
}

// =============================================================================
// SCENARIO TESTS
// =============================================================================

func TestCheck_ManagerScenario(t *testing.T) {
	// MANAGER has {read, write, list} over {reports, shared}.
	ctrl, rec := newTestController(t)

	assert.True(t, ctrl.Check("mallory", RoleManager, OpWrite, "reports/q1.txt"),
		"manager may write into reports")

	assert.False(t, ctrl.Check("mallory", RoleManager, OpDelete, "reports/q1.txt"),
		"manager lacks delete entirely")
	assert.Equal(t, ReasonOperationNotPermitted.String(), rec.last().reason)

	assert.False(t, ctrl.Check("mallory", RoleManager, OpWrite, "code/main.go"),
		"code is not in manager's folders")
	assert.Equal(t, ReasonFolderNotAccessible.String(), rec.last().reason)
}

func TestCheck_PersonalFolder(t *testing.T) {
	ctrl, rec := newTestController(t)

	assert.True(t, ctrl.Check("mallory", RoleManager, OpWrite, "user_mallory/todo.txt"),
		"own personal folder is writable under the write capability")

	assert.False(t, ctrl.Check("mallory", RoleManager, OpRead, "user_alice/todo.txt"),
		"another user's personal folder is never accessible")
	assert.Equal(t, ReasonPathOutsideWorkspace.String(), rec.last().reason)
}

func TestCheck_GuestReadsSharedOnly(t *testing.T) {
	ctrl, _ := newTestController(t)

	assert.True(t, ctrl.Check("gus", RoleGuest, OpRead, "shared/welcome.txt"))
	assert.False(t, ctrl.Check("gus", RoleGuest, OpRead, "reports/q1.txt"))
	assert.False(t, ctrl.Check("gus", RoleGuest, OpList, "shared/welcome.txt"))
}

// =============================================================================
// CONTAINMENT TESTS
// =============================================================================

func TestCheck_TraversalDeniedForEveryRole(t *testing.T) {
	ctrl, rec := newTestController(t)

	roles := []Role{RoleSysadmin, RoleManager, RoleGuest, Role("unknown")}
	for _, role := range roles {
		allowed := ctrl.Check("root", role, OpRead, "../../../etc/passwd")
		assert.False(t, allowed, "role %s must not escape the workspace", role)
	}
	// The sysadmin denial is a containment denial, not a capability one.
	assert.Equal(t, ReasonPathOutsideWorkspace.String(), rec.decisions[0].reason)
}

// =============================================================================
// FAIL-CLOSED TESTS
// =============================================================================

func TestController_DenyAllWithoutTable(t *testing.T) {
	resolver, err := NewResolver(t.TempDir())
	require.NoError(t, err)

	ctrl := NewController(nil, resolver)
	d := ctrl.Evaluate("root", RoleSysadmin, OpRead, "shared/x.txt")
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonPolicyUnavailable, d.Reason)
}

func TestController_UnknownRoleDeniedEverything(t *testing.T) {
	ctrl, _ := newTestController(t)

	for _, op := range []Operation{OpList, OpRead, OpWrite, OpDelete, OpConfig} {
		assert.False(t, ctrl.Check("x", Role("nobody"), op, "shared/f.txt"),
			"unknown role must be denied %s", op)
		assert.False(t, ctrl.Check("x", Role("nobody"), op, ""),
			"unknown role must be denied %s capability", op)
	}
}

// =============================================================================
// AUDIT HOOK TESTS
// =============================================================================

func TestEvaluate_RecordsEveryDecision(t *testing.T) {
	ctrl, rec := newTestController(t)

	ctrl.Check("mallory", RoleManager, OpRead, "reports/q1.txt")
	ctrl.Check("mallory", RoleManager, OpDelete, "reports/q1.txt")

	require.Len(t, rec.decisions, 2)
	assert.True(t, rec.decisions[0].allowed)
	assert.Empty(t, rec.decisions[0].reason)
	assert.False(t, rec.decisions[1].allowed)
	assert.Equal(t, "mallory", rec.decisions[1].actor)
	assert.Equal(t, OpDelete, rec.decisions[1].op)
}
