// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package audit

import (
	"bufio"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/jeranaias/acshell/internal/access"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// DefaultMaxFileSize is the max log size before rotation (10MB).
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// ErrChainBroken is returned by VerifyChain when a record's MAC does not
// match the recomputed chain value.
var ErrChainBroken = errors.New("audit chain verification failed")

// =============================================================================
// REDACTION
// =============================================================================

// Redactor replaces sensitive data before persistence.
type Redactor interface {
	Redact(input string) string
	Name() string
}

// PatternRedactor redacts text matching a regex pattern.
type PatternRedactor struct {
	name    string
	pattern *regexp.Regexp
	replace string
}

// NewPatternRedactor creates a redactor for a regex pattern.
func NewPatternRedactor(name, pattern, replace string) (*PatternRedactor, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid redaction pattern %q: %w", name, err)
	}
	return &PatternRedactor{name: name, pattern: re, replace: replace}, nil
}

// Redact replaces matches of the pattern.
func (r *PatternRedactor) Redact(input string) string {
	return r.pattern.ReplaceAllString(input, r.replace)
}

// Name returns the redactor name.
func (r *PatternRedactor) Name() string {
	return r.name
}

// defaultRedactors covers the credential shapes this system handles.
// Raw passwords never reach the logger by contract; these are defense
// against a caller stuffing one into metadata or an error string.
func defaultRedactors() []Redactor {
	specs := []struct{ name, pattern, replace string }{
		{"password_field", `(?i)(password|passwd|pwd)\s*[=:]\s*\S+`, `$1=[REDACTED]`},
		{"verifier_hex", `\b[0-9a-f]{32}\b`, `[REDACTED-DIGEST]`},
		{"totp_code", `(?i)(totp|otp|code)\s*[=:]\s*\d{6,8}\b`, `$1=[REDACTED]`},
	}
	redactors := make([]Redactor, 0, len(specs))
	for _, s := range specs {
		r, err := NewPatternRedactor(s.name, s.pattern, s.replace)
		if err != nil {
			continue
		}
		redactors = append(redactors, r)
	}
	return redactors
}

// =============================================================================
// LOGGER
// =============================================================================

// Logger appends audit events to a JSONL file. Each record carries an
// HMAC chained to its predecessor, so truncation or in-place edits are
// detectable with VerifyChain.
type Logger struct {
	mu        sync.Mutex
	path      string
	file      *os.File
	size      int64
	maxSize   int64
	key       []byte
	lastMac   []byte
	redactors []Redactor
	enabled   bool

	// extra is an optional secondary sink (the sqlite store).
	extra Sink
}

// Sink receives a copy of every event the logger accepts.
type Sink interface {
	Store(Event) error
}

// LoggerOption is a functional option for configuring the Logger.
type LoggerOption func(*Logger)

// WithMaxFileSize overrides the rotation threshold.
func WithMaxFileSize(n int64) LoggerOption {
	return func(l *Logger) {
		if n > 0 {
			l.maxSize = n
		}
	}
}

// WithSink attaches a secondary event sink.
func WithSink(s Sink) LoggerOption {
	return func(l *Logger) {
		l.extra = s
	}
}

// DefaultPath returns the default audit log path (~/.acshell/audit.log).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "audit.log"
	}
	return filepath.Join(home, ".acshell", "audit.log")
}

// NewLogger creates an audit logger at path (empty = DefaultPath). The
// HMAC key is loaded or created beside the log file.
func NewLogger(path string, opts ...LoggerOption) (*Logger, error) {
	if path == "" {
		path = DefaultPath()
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	key, err := LoadOrCreateKey(dir)
	if err != nil {
		return nil, fmt.Errorf("audit key: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat audit log file: %w", err)
	}

	l := &Logger{
		path:      path,
		file:      file,
		size:      info.Size(),
		maxSize:   DefaultMaxFileSize,
		key:       key,
		redactors: defaultRedactors(),
		enabled:   true,
	}
	for _, opt := range opts {
		opt(l)
	}

	// Resume the chain from the last persisted record so restarts do
	// not break verification.
	if mac, err := lastMacInFile(path); err == nil {
		l.lastMac = mac
	}

	return l, nil
}

// Log appends an event. The event is redacted, chained, written, and
// synced before Log returns; a write failure is reported to the caller
// but must never block the shell's control flow.
func (l *Logger) Log(event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled || l.file == nil {
		return nil
	}

	event.Target = l.redactLocked(event.Target)
	event.Reason = l.redactLocked(event.Reason)
	for k, v := range event.Metadata {
		event.Metadata[k] = l.redactLocked(v)
	}

	if err := l.rotateIfNeededLocked(); err != nil {
		return fmt.Errorf("audit rotation failed: %w", err)
	}

	// Chain: mac_n = HMAC(key, mac_{n-1} || payload_n) where payload is
	// the record serialized without its mac field.
	event.Mac = ""
	payload, err := json.Marshal(&event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}
	mac := chainMac(l.key, l.lastMac, payload)
	event.Mac = hex.EncodeToString(mac)

	line, err := json.Marshal(&event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	n, err := fmt.Fprintln(l.file, string(line))
	if err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync audit log: %w", err)
	}

	l.size += int64(n)
	l.lastMac = mac

	if l.extra != nil {
		// Secondary sink failures are deliberately swallowed: the file
		// is the authoritative trail.
		_ = l.extra.Store(event)
	}
	return nil
}

// Close closes the underlying file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = false
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Path returns the audit log file path.
func (l *Logger) Path() string {
	return l.path
}

func (l *Logger) redactLocked(s string) string {
	for _, r := range l.redactors {
		s = r.Redact(s)
	}
	return s
}

// rotateIfNeededLocked renames the current log aside once it exceeds the
// size threshold. The chain restarts in the new file.
func (l *Logger) rotateIfNeededLocked() error {
	if l.size < l.maxSize {
		return nil
	}
	if err := l.file.Close(); err != nil {
		return err
	}
	rotated := fmt.Sprintf("%s.%s", l.path, time.Now().UTC().Format("20060102T150405Z"))
	if err := os.Rename(l.path, rotated); err != nil {
		return err
	}
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	l.file = file
	l.size = 0
	l.lastMac = nil
	return nil
}

// =============================================================================
// CONVENIENCE RECORDERS
// =============================================================================

// RecordDecision implements access.Recorder.
func (l *Logger) RecordDecision(actor string, role access.Role, op access.Operation, target string, allowed bool, reason string) {
	event := NewEvent(EventAccess, actor)
	event.Role = string(role)
	event.Operation = string(op)
	event.Target = target
	event.Decision = "deny"
	if allowed {
		event.Decision = "allow"
	}
	event.Reason = reason
	_ = l.Log(event)
}

// RecordAuth records an authentication attempt. The raw password is
// never passed here by contract.
func (l *Logger) RecordAuth(username string, success bool, reason string) {
	event := NewEvent(EventAuth, username)
	event.Decision = "failure"
	if success {
		event.Decision = "success"
	}
	event.Reason = reason
	_ = l.Log(event)
}

// RecordFileOp records an executed (or refused) file operation.
func (l *Logger) RecordFileOp(actor string, role access.Role, op access.Operation, target string, ok bool, reason string) {
	event := NewEvent(EventFileOp, actor)
	event.Role = string(role)
	event.Operation = string(op)
	event.Target = target
	event.Decision = "deny"
	if ok {
		event.Decision = "allow"
	}
	event.Reason = reason
	_ = l.Log(event)
}

// =============================================================================
// REVIEW AND VERIFICATION
// =============================================================================

// ReadEvents reads every event in an audit log file in order.
func ReadEvents(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Event
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("malformed audit record: %w", err)
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Recent returns the last n events from the log file.
func (l *Logger) Recent(n int) ([]Event, error) {
	events, err := ReadEvents(l.path)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(events) > n {
		events = events[len(events)-n:]
	}
	return events, nil
}

// VerifyChain recomputes the HMAC chain over a log file and reports the
// first record that fails, if any.
func VerifyChain(path string, key []byte) error {
	events, err := ReadEvents(path)
	if err != nil {
		return err
	}

	var prev []byte
	for i := range events {
		e := events[i]
		wantHex := e.Mac
		e.Mac = ""
		payload, err := json.Marshal(&e)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		mac := chainMac(key, prev, payload)
		want, err := hex.DecodeString(wantHex)
		if err != nil || !hmac.Equal(mac, want) {
			return fmt.Errorf("%w: record %d (%s)", ErrChainBroken, i, events[i].ID)
		}
		prev = mac
	}
	return nil
}

// chainMac computes HMAC(key, prev || payload).
func chainMac(key, prev, payload []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(prev)
	h.Write(payload)
	return h.Sum(nil)
}

// lastMacInFile returns the MAC of the final record in an existing log.
func lastMacInFile(path string) ([]byte, error) {
	events, err := ReadEvents(path)
	if err != nil || len(events) == 0 {
		return nil, err
	}
	return hex.DecodeString(events[len(events)-1].Mac)
}
