// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package audit

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// SQLITE STORE
// =============================================================================

const schemaSQL = `
CREATE TABLE IF NOT EXISTS audit_events (
	id         TEXT PRIMARY KEY,
	timestamp  TEXT NOT NULL,
	type       TEXT NOT NULL,
	actor      TEXT NOT NULL,
	role       TEXT,
	operation  TEXT,
	target     TEXT,
	decision   TEXT NOT NULL,
	reason     TEXT,
	metadata   TEXT,
	mac        TEXT
);
CREATE INDEX IF NOT EXISTS idx_audit_actor ON audit_events(actor);
CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_events(timestamp);
`

// SQLiteStore mirrors audit events into a sqlite database so the review
// command can filter by actor without scanning the JSONL trail.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if needed) the sqlite audit store.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create audit db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit db: %w", err)
	}
	// A single writer keeps sqlite happy without WAL tuning.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize audit db schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Store implements Sink.
func (s *SQLiteStore) Store(e Event) error {
	var meta []byte
	if len(e.Metadata) > 0 {
		meta, _ = json.Marshal(e.Metadata)
	}
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO audit_events
		 (id, timestamp, type, actor, role, operation, target, decision, reason, metadata, mac)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Timestamp.Format(time.RFC3339Nano), string(e.Type), e.Actor,
		e.Role, e.Operation, e.Target, e.Decision, e.Reason, string(meta), e.Mac,
	)
	if err != nil {
		return fmt.Errorf("failed to store audit event: %w", err)
	}
	return nil
}

// Recent returns the most recent n events, newest last.
func (s *SQLiteStore) Recent(n int) ([]Event, error) {
	rows, err := s.db.Query(
		`SELECT id, timestamp, type, actor, role, operation, target, decision, reason, metadata, mac
		 FROM audit_events ORDER BY timestamp DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}
	// Reverse to chronological order.
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events, nil
}

// ByActor returns the most recent n events for one actor, newest last.
func (s *SQLiteStore) ByActor(actor string, n int) ([]Event, error) {
	rows, err := s.db.Query(
		`SELECT id, timestamp, type, actor, role, operation, target, decision, reason, metadata, mac
		 FROM audit_events WHERE actor = ? ORDER BY timestamp DESC LIMIT ?`, actor, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var e Event
		var ts, typ, meta string
		if err := rows.Scan(&e.ID, &ts, &typ, &e.Actor, &e.Role, &e.Operation,
			&e.Target, &e.Decision, &e.Reason, &meta, &e.Mac); err != nil {
			return nil, err
		}
		e.Type = EventType(typ)
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			e.Timestamp = t
		}
		if meta != "" {
			_ = json.Unmarshal([]byte(meta), &e.Metadata)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
