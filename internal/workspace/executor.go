// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jeranaias/acshell/internal/access"
	"github.com/jeranaias/acshell/internal/identity"
	"github.com/jeranaias/acshell/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrDenied is the single refusal callers see for any access
	// failure. It carries no detail about why.
	ErrDenied = errors.New("access denied")

	// ErrNotFound is returned when the target does not exist. Only
	// reachable after the access decision allowed the operation.
	ErrNotFound = errors.New("file not found")

	// ErrAlreadyExists is returned when creating over an existing file.
	ErrAlreadyExists = errors.New("file already exists")

	// ErrNameInvalid is returned for malformed file names.
	ErrNameInvalid = errors.New("invalid file name")
)

// Internal refusal causes, recorded to the audit trail only.
const (
	causeSharedCreate = "shared_folder_create"
	causeNamedDelete  = "named_delete_restricted"
	causeInvalidName  = "invalid_file_name"
	causeAccessDenied = "access_denied"
)

// =============================================================================
// EXECUTOR
// =============================================================================

// Recorder receives the outcome of every executed file operation.
type Recorder interface {
	RecordFileOp(actor string, role access.Role, op access.Operation, target string, ok bool, reason string)
}

// Entry is one row in a folder listing.
type Entry struct {
	Name    string
	Rel     string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// Executor performs list/read/write/delete inside the workspace. It
// never touches the filesystem before the access controller has
// allowed the operation for the acting user.
type Executor struct {
	controller *access.Controller
	recorder   Recorder

	// sharedFolder accepts edits to existing files but no new files.
	sharedFolder string
}

// ExecutorOption is a functional option for configuring the Executor.
type ExecutorOption func(*Executor)

// WithRecorder sets the audit recorder for file operations.
func WithRecorder(r Recorder) ExecutorOption {
	return func(e *Executor) { e.recorder = r }
}

// WithSharedFolder names the folder excluded from file creation.
func WithSharedFolder(name string) ExecutorOption {
	return func(e *Executor) { e.sharedFolder = name }
}

// NewExecutor creates an executor over an access controller.
func NewExecutor(controller *access.Controller, opts ...ExecutorOption) *Executor {
	e := &Executor{
		controller:   controller,
		sharedFolder: "shared",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Root returns the workspace root directory.
func (e *Executor) Root() string {
	return e.controller.Resolver().Root()
}

// Controller exposes the underlying access controller for read-only
// policy display.
func (e *Executor) Controller() *access.Controller {
	return e.controller
}

func (e *Executor) record(user identity.User, op access.Operation, target string, ok bool, reason string) {
	if e.recorder != nil {
		e.recorder.RecordFileOp(user.Username, user.Role, op, target, ok, reason)
	}
}

// allow runs the access check for one operation. The typed decision
// stays between the controller and the audit trail.
func (e *Executor) allow(user identity.User, op access.Operation, relPath string) (access.WorkspacePath, bool) {
	d := e.controller.Evaluate(user.Username, user.Role, op, relPath)
	return d.Path, d.Allowed
}

// =============================================================================
// LIST
// =============================================================================

// Folders returns the folders the user may browse: the role's named
// folders that exist on disk plus the user's personal folder. Requires
// the list capability.
func (e *Executor) Folders(user identity.User) ([]string, error) {
	if !e.controller.Check(user.Username, user.Role, access.OpList, "") {
		return nil, ErrDenied
	}

	var folders []string
	for _, f := range e.controller.Table().FoldersFor(user.Role) {
		if e.dirExists(filepath.Join(e.Root(), f)) {
			folders = append(folders, f)
		}
	}
	personal := user.PersonalFolder()
	if e.dirExists(filepath.Join(e.Root(), personal)) {
		folders = append(folders, personal)
	}
	sort.Strings(folders)
	return folders, nil
}

// CreationFolders returns the folders offered as targets for new
// files: browsable folders minus the shared folder. The shared folder
// stays editable in place; it just never takes new files.
func (e *Executor) CreationFolders(user identity.User) ([]string, error) {
	folders, err := e.Folders(user)
	if err != nil {
		return nil, err
	}
	out := folders[:0]
	for _, f := range folders {
		if f != e.sharedFolder {
			out = append(out, f)
		}
	}
	return out, nil
}

// List returns the entries in one folder, files sorted by name.
func (e *Executor) List(user identity.User, folder string) ([]Entry, error) {
	resolved, ok := e.allow(user, access.OpList, folder)
	if !ok {
		e.record(user, access.OpList, folder, false, causeAccessDenied)
		return nil, ErrDenied
	}

	dirents, err := os.ReadDir(resolved.Abs)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", resolved.Rel, err)
	}

	entries := make([]Entry, 0, len(dirents))
	for _, d := range dirents {
		info, err := d.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Name:    d.Name(),
			Rel:     filepath.Join(resolved.Rel, d.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			IsDir:   d.IsDir(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	e.record(user, access.OpList, folder, true, "")
	return entries, nil
}

// =============================================================================
// READ
// =============================================================================

// Read returns the contents of a file.
func (e *Executor) Read(user identity.User, relPath string) ([]byte, error) {
	resolved, ok := e.allow(user, access.OpRead, relPath)
	if !ok {
		e.record(user, access.OpRead, relPath, false, causeAccessDenied)
		return nil, ErrDenied
	}

	data, err := os.ReadFile(resolved.Abs)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", resolved.Rel, err)
	}
	e.record(user, access.OpRead, relPath, true, "")
	return data, nil
}

// Exists reports whether a file exists, subject to the same access
// decision as Read. Denied paths return ErrDenied rather than false so
// callers cannot probe inaccessible locations.
func (e *Executor) Exists(user identity.User, relPath string) (bool, error) {
	resolved, ok := e.allow(user, access.OpRead, relPath)
	if !ok {
		e.record(user, access.OpRead, relPath, false, causeAccessDenied)
		return false, ErrDenied
	}
	return e.fileExists(resolved.Abs), nil
}

// =============================================================================
// WRITE
// =============================================================================

// Create writes a new file. The target must not exist, its parent
// folder must, and the shared folder never takes new files.
func (e *Executor) Create(user identity.User, relPath string, content []byte) error {
	if err := ValidateFileName(filepath.Base(relPath)); err != nil {
		e.record(user, access.OpWrite, relPath, false, causeInvalidName)
		return ErrNameInvalid
	}

	resolved, ok := e.allow(user, access.OpWrite, relPath)
	if !ok {
		e.record(user, access.OpWrite, relPath, false, causeAccessDenied)
		return ErrDenied
	}
	if resolved.Kind == access.KindNamed && resolved.Folder == e.sharedFolder {
		e.record(user, access.OpWrite, relPath, false, causeSharedCreate)
		return ErrDenied
	}

	if !e.dirExists(filepath.Dir(resolved.Abs)) {
		return ErrNotFound
	}
	if e.fileExists(resolved.Abs) {
		return ErrAlreadyExists
	}

	if err := util.AtomicWriteFile(resolved.Abs, content, 0644); err != nil {
		return fmt.Errorf("failed to create %s: %w", resolved.Rel, err)
	}
	e.record(user, access.OpWrite, relPath, true, "")
	return nil
}

// Edit overwrites an existing file, including files in the shared
// folder.
func (e *Executor) Edit(user identity.User, relPath string, content []byte) error {
	resolved, ok := e.allow(user, access.OpWrite, relPath)
	if !ok {
		e.record(user, access.OpWrite, relPath, false, causeAccessDenied)
		return ErrDenied
	}

	if !e.fileExists(resolved.Abs) {
		return ErrNotFound
	}
	if err := util.AtomicWriteFile(resolved.Abs, content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", resolved.Rel, err)
	}
	e.record(user, access.OpWrite, relPath, true, "")
	return nil
}

// =============================================================================
// DELETE
// =============================================================================

// Delete removes a file. Files in named folders are deletable only by
// sysadmin; personal files fall under the standard delete capability.
func (e *Executor) Delete(user identity.User, relPath string) error {
	resolved, ok := e.allow(user, access.OpDelete, relPath)
	if !ok {
		e.record(user, access.OpDelete, relPath, false, causeAccessDenied)
		return ErrDenied
	}
	if resolved.Kind == access.KindNamed && user.Role != access.RoleSysadmin {
		e.record(user, access.OpDelete, relPath, false, causeNamedDelete)
		return ErrDenied
	}

	if !e.fileExists(resolved.Abs) {
		return ErrNotFound
	}
	if err := os.Remove(resolved.Abs); err != nil {
		return fmt.Errorf("failed to delete %s: %w", resolved.Rel, err)
	}
	e.record(user, access.OpDelete, relPath, true, "")
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (e *Executor) dirExists(abs string) bool {
	info, err := os.Stat(abs)
	return err == nil && info.IsDir()
}

func (e *Executor) fileExists(abs string) bool {
	info, err := os.Stat(abs)
	return err == nil && !info.IsDir()
}

// invalidNameChars are rejected in file names on every platform so a
// workspace stays portable between unix and Windows hosts.
const invalidNameChars = `<>:"|?*\/`

// ValidateFileName checks a bare file name (no directory part).
func ValidateFileName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("%w: empty or reserved name", ErrNameInvalid)
	}
	if len(name) > 255 {
		return fmt.Errorf("%w: name too long", ErrNameInvalid)
	}
	if strings.ContainsAny(name, invalidNameChars) {
		return fmt.Errorf("%w: name contains a reserved character", ErrNameInvalid)
	}
	for _, r := range name {
		if r < 0x20 {
			return fmt.Errorf("%w: name contains a control character", ErrNameInvalid)
		}
	}
	return nil
}
