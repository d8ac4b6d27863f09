// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package access

import (
	"sync"

	"golang.org/x/time/rate"
)

// =============================================================================
// DENY REASONS
// =============================================================================

// DenyReason explains a denial for the audit trail. Reasons are never
// surfaced to the requesting caller: the operation-facing result is a
// plain boolean, so folder layout cannot be probed through error text.
type DenyReason int

const (
	ReasonNone DenyReason = iota
	ReasonOperationNotPermitted
	ReasonPathOutsideWorkspace
	ReasonPersonalFolderMismatch
	ReasonFolderNotAccessible
	ReasonPolicyUnavailable
	ReasonRateLimited
)

// String returns the reason tag used in audit records.
func (r DenyReason) String() string {
	switch r {
	case ReasonNone:
		return ""
	case ReasonOperationNotPermitted:
		return "operation_not_permitted"
	case ReasonPathOutsideWorkspace:
		return "path_outside_workspace"
	case ReasonPersonalFolderMismatch:
		return "personal_folder_mismatch"
	case ReasonFolderNotAccessible:
		return "folder_not_accessible"
	case ReasonPolicyUnavailable:
		return "policy_unavailable"
	case ReasonRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// Decision is the outcome of an access check. Reason is meaningful only
// when Allowed is false and is consumed by the audit trail.
type Decision struct {
	Allowed bool
	Reason  DenyReason
	Path    WorkspacePath
}

// =============================================================================
// AUDIT HOOK
// =============================================================================

// Recorder receives every access decision for the audit trail. It is
// write-only from the controller's perspective and never influences the
// decision.
type Recorder interface {
	RecordDecision(actor string, role Role, op Operation, target string, allowed bool, reason string)
}

// =============================================================================
// CONTROLLER
// =============================================================================

const (
	// checkRatePerSec bounds permission checks to prevent decision-oracle
	// flooding. Interactive use never approaches this.
	checkRatePerSec = 100
	checkBurst      = 200
)

// Controller answers "may role R perform operation O on path P?".
// It is read-only after construction apart from the rate limiter.
type Controller struct {
	table    *Table
	resolver *Resolver
	recorder Recorder
	limiter  *rate.Limiter

	// denyAll is set when construction input was unusable: every check
	// fails rather than running with a partial policy.
	denyAll bool

	mu sync.Mutex
}

// ControllerOption is a functional option for configuring the Controller.
type ControllerOption func(*Controller)

// WithRecorder sets the audit recorder for access decisions.
func WithRecorder(r Recorder) ControllerOption {
	return func(c *Controller) {
		c.recorder = r
	}
}

// NewController creates an access controller over a policy table and a
// path resolver. A nil table or resolver yields a deny-all controller.
func NewController(table *Table, resolver *Resolver, opts ...ControllerOption) *Controller {
	c := &Controller{
		table:    table,
		resolver: resolver,
		limiter:  rate.NewLimiter(rate.Limit(checkRatePerSec), checkBurst),
		denyAll:  table == nil || resolver == nil,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check reports whether the user's role may perform op on rawPath.
// rawPath may be empty for a pure capability check ("can this role ever
// write?"). The decision is recorded to the audit trail with its typed
// reason; the caller only sees the boolean.
func (c *Controller) Check(username string, role Role, op Operation, rawPath string) bool {
	return c.Evaluate(username, role, op, rawPath).Allowed
}

// Evaluate runs the full decision algorithm and returns the typed
// outcome. Callers outside the audit trail should prefer Check.
//
// The ordering is load-bearing: operation capability is always checked
// before path-level folder accessibility, so a role lacking an operation
// entirely is rejected before any folder-name distinction is recorded.
func (c *Controller) Evaluate(username string, role Role, op Operation, rawPath string) Decision {
	d := c.evaluate(username, role, op, rawPath)
	if c.recorder != nil {
		c.recorder.RecordDecision(username, role, op, rawPath, d.Allowed, d.Reason.String())
	}
	return d
}

func (c *Controller) evaluate(username string, role Role, op Operation, rawPath string) Decision {
	if c.denyAll {
		return Decision{Allowed: false, Reason: ReasonPolicyUnavailable}
	}

	c.mu.Lock()
	allowed := c.limiter.Allow()
	c.mu.Unlock()
	if !allowed {
		return Decision{Allowed: false, Reason: ReasonRateLimited}
	}

	// 1. Operation capability. Sufficient on its own when no path is
	// supplied.
	if !c.table.Permits(role, op) {
		return Decision{Allowed: false, Reason: ReasonOperationNotPermitted}
	}
	if rawPath == "" {
		return Decision{Allowed: true}
	}

	// 2. Containment and classification.
	resolved := c.resolver.Resolve(rawPath, username)
	if resolved.Invalid() {
		return Decision{Allowed: false, Reason: ReasonPathOutsideWorkspace, Path: resolved}
	}

	switch resolved.Kind {
	case KindPersonal:
		// 3. The resolver only classifies the caller's own folder as
		// personal; re-assert it here anyway.
		if resolved.Owner != username {
			return Decision{Allowed: false, Reason: ReasonPersonalFolderMismatch, Path: resolved}
		}
		return Decision{Allowed: true, Path: resolved}

	case KindNamed:
		// 4. Folder accessibility under the role's policy.
		if !c.table.HasFolder(role, resolved.Folder) {
			return Decision{Allowed: false, Reason: ReasonFolderNotAccessible, Path: resolved}
		}
		return Decision{Allowed: true, Path: resolved}

	default:
		return Decision{Allowed: false, Reason: ReasonPathOutsideWorkspace, Path: resolved}
	}
}

// Resolver exposes the controller's path resolver for collaborators that
// need classification without a policy decision (listing, UI display).
func (c *Controller) Resolver() *Resolver {
	return c.resolver
}

// Table exposes the read-only policy table.
func (c *Controller) Table() *Table {
	return c.table
}
