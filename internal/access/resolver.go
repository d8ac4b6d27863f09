// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package access

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// =============================================================================
// WORKSPACE PATHS
// =============================================================================

// PersonalPrefix is the reserved naming convention for per-user personal
// folders: the top-level folder "user_<username>" belongs to <username>
// and nobody else. Usernames must not themselves begin with this prefix;
// the identity store rejects such records at load time.
const PersonalPrefix = "user_"

// PathKind classifies a resolved workspace path.
type PathKind int

const (
	// KindInvalid marks paths that escape the workspace root, name
	// another user's personal folder, or cannot be classified.
	KindInvalid PathKind = iota

	// KindPersonal marks paths inside the requesting user's own
	// personal folder.
	KindPersonal

	// KindNamed marks paths inside a shared top-level folder. Whether
	// the folder is accessible is the Controller's decision, not the
	// resolver's.
	KindNamed
)

// String returns the kind name for audit records.
func (k PathKind) String() string {
	switch k {
	case KindPersonal:
		return "personal"
	case KindNamed:
		return "named"
	default:
		return "invalid"
	}
}

// WorkspacePath is a resolved, root-relative path.
type WorkspacePath struct {
	// Kind is the classification result.
	Kind PathKind

	// Owner is the owning username for personal paths.
	Owner string

	// Folder is the top-level folder name for named paths.
	Folder string

	// Rel is the cleaned workspace-relative path.
	Rel string

	// Abs is the absolute path under the workspace root.
	Abs string
}

// Invalid reports whether the path failed classification.
func (p WorkspacePath) Invalid() bool {
	return p.Kind == KindInvalid
}

// =============================================================================
// RESOLVER
// =============================================================================

// Resolver normalizes requested paths against a fixed workspace root and
// classifies them. It holds no per-request state and is safe for
// concurrent use.
type Resolver struct {
	root string
}

// NewResolver creates a resolver for the given workspace root. The root
// is made absolute and symlink-resolved once, so later containment
// checks compare like with like.
func NewResolver(root string) (*Resolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("workspace root: %w", err)
	}
	abs = filepath.Clean(abs)
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return &Resolver{root: abs}, nil
}

// Root returns the absolute workspace root.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve normalizes raw against the workspace root and classifies it
// for the requesting user.
//
// Classification rules, in order:
//   - paths that resolve outside the root (upward traversal, absolute
//     paths elsewhere, symlink escape) are invalid;
//   - a first segment matching the requesting user's personal folder is
//     personal;
//   - a first segment matching any other personal folder is invalid -
//     access to another user's folder is never granted by guessing its
//     name, and misattribution is worse than refusal;
//   - any other first segment is named, regardless of whether policy
//     currently grants it anywhere.
func (r *Resolver) Resolve(raw, requestingUser string) WorkspacePath {
	invalid := WorkspacePath{Kind: KindInvalid, Rel: raw}

	if strings.TrimSpace(raw) == "" {
		return invalid
	}

	abs := raw
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(r.root, abs)
	}
	abs = filepath.Clean(abs)

	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		return invalid
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return invalid
	}

	// Symlink defense: resolve the deepest existing ancestor and verify
	// it still lies inside the root. A symlink planted inside the
	// workspace must not let a path escape it.
	if escaped, err := r.escapesViaSymlink(abs); err != nil || escaped {
		return invalid
	}

	segments := strings.Split(rel, string(filepath.Separator))
	first := segments[0]

	if strings.HasPrefix(first, PersonalPrefix) {
		owner := strings.TrimPrefix(first, PersonalPrefix)
		if owner == "" || owner != requestingUser {
			return invalid
		}
		return WorkspacePath{
			Kind:  KindPersonal,
			Owner: owner,
			Rel:   rel,
			Abs:   abs,
		}
	}

	return WorkspacePath{
		Kind:   KindNamed,
		Folder: first,
		Rel:    rel,
		Abs:    abs,
	}
}

// escapesViaSymlink walks up from path to the deepest existing ancestor,
// resolves its symlinks, and reports whether the resolved location falls
// outside the workspace root.
func (r *Resolver) escapesViaSymlink(abs string) (bool, error) {
	existing := abs
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		} else if !os.IsNotExist(err) {
			return false, err
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			break
		}
		existing = parent
	}

	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		// The ancestor exists but cannot be resolved; refuse rather
		// than guess.
		return true, err
	}

	if resolved == r.root {
		return false, nil
	}
	return !strings.HasPrefix(resolved, r.root+string(filepath.Separator)), nil
}
