// Package state persists aggregation run history.
//
// The store records statistics only (counts, durations, warnings); document
// content is never versioned or diffed here.
package state

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// RunRecord is one row of run history.
type RunRecord struct {
	ID             string
	StartedAt      time.Time
	Duration       time.Duration
	Repositories   int
	Documents      int
	Conflicts      int
	LinksRewritten int
	Fingerprint    string
	Warnings       []string
	Success        bool
}

// Store records aggregation runs in SQLite.
// Use ":memory:" for an in-memory database, or a file path for persistence.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// NewStore opens (and initializes) the run-history database.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		repositories INTEGER NOT NULL,
		documents INTEGER NOT NULL,
		conflicts INTEGER NOT NULL,
		links_rewritten INTEGER NOT NULL,
		fingerprint TEXT NOT NULL,
		warnings TEXT NOT NULL,
		success INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}
	return nil
}

// RecordRun inserts one run record.
func (s *Store) RecordRun(ctx context.Context, record RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, duration_ms, repositories, documents, conflicts, links_rewritten, fingerprint, warnings, success)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.StartedAt.UnixMilli(),
		record.Duration.Milliseconds(),
		record.Repositories,
		record.Documents,
		record.Conflicts,
		record.LinksRewritten,
		record.Fingerprint,
		strings.Join(record.Warnings, "\n"),
		boolToInt(record.Success),
	)
	if err != nil {
		return fmt.Errorf("insert run record: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit records, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, duration_ms, repositories, documents, conflicts, links_rewritten, fingerprint, warnings, success
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []RunRecord
	for rows.Next() {
		var (
			record     RunRecord
			startedAt  int64
			durationMS int64
			warnings   string
			success    int
		)
		if err := rows.Scan(&record.ID, &startedAt, &durationMS, &record.Repositories,
			&record.Documents, &record.Conflicts, &record.LinksRewritten,
			&record.Fingerprint, &warnings, &success); err != nil {
			return nil, fmt.Errorf("scan run record: %w", err)
		}
		record.StartedAt = time.UnixMilli(startedAt)
		record.Duration = time.Duration(durationMS) * time.Millisecond
		if warnings != "" {
			record.Warnings = strings.Split(warnings, "\n")
		}
		record.Success = success != 0
		records = append(records, record)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
