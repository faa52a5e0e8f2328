// Package history keeps a local record of past sync cycles in a sqlite
// database inside the state directory. One row per non-dry-run cycle.
package history

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/salaamdev/task-sync/internal/engine"
)

// FileName is the history database's name inside the state directory.
const FileName = "history.db"

const schema = `
CREATE TABLE IF NOT EXISTS cycles (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at  TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	mode        TEXT NOT NULL,
	providers   TEXT NOT NULL,
	cold_start  INTEGER NOT NULL DEFAULT 0,
	created     INTEGER NOT NULL DEFAULT 0,
	updated     INTEGER NOT NULL DEFAULT 0,
	deleted     INTEGER NOT NULL DEFAULT 0,
	recreated   INTEGER NOT NULL DEFAULT 0,
	noops       INTEGER NOT NULL DEFAULT 0,
	conflicts   INTEGER NOT NULL DEFAULT 0,
	errors      INTEGER NOT NULL DEFAULT 0
);
`

// Entry is one recorded cycle.
type Entry struct {
	ID        int64         `json:"id"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
	Mode      string        `json:"mode"`
	Providers []string      `json:"providers"`
	ColdStart bool          `json:"coldStart"`
	Created   int           `json:"created"`
	Updated   int           `json:"updated"`
	Deleted   int           `json:"deleted"`
	Recreated int           `json:"recreated"`
	Noops     int           `json:"noops"`
	Conflicts int           `json:"conflicts"`
	Errors    int           `json:"errors"`
}

// Store is a handle on the cycle-history database.
type Store struct {
	db   *sql.DB
	keep int
}

// Open opens (creating if needed) the history database in the state
// directory. keep bounds the number of retained rows; 0 keeps everything.
func Open(stateDir string, keep int) (*Store, error) {
	path := filepath.Join(stateDir, FileName)
	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return &Store{db: db, keep: keep}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one cycle report and trims rows beyond the retention cap.
func (s *Store) Record(report *engine.SyncReport) error {
	_, err := s.db.Exec(`
		INSERT INTO cycles (started_at, duration_ms, mode, providers, cold_start,
			created, updated, deleted, recreated, noops, conflicts, errors)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.StartedAt.UTC().Format(time.RFC3339),
		report.Duration.Milliseconds(),
		string(report.Mode),
		strings.Join(report.Providers, ","),
		boolToInt(report.ColdStart),
		report.Counts.Created,
		report.Counts.Updated,
		report.Counts.Deleted,
		report.Counts.Recreated,
		report.Counts.Noops,
		len(report.Conflicts),
		len(report.Errors),
	)
	if err != nil {
		return fmt.Errorf("recording cycle: %w", err)
	}
	if s.keep > 0 {
		if _, err := s.db.Exec(`
			DELETE FROM cycles WHERE id NOT IN (
				SELECT id FROM cycles ORDER BY id DESC LIMIT ?
			)`, s.keep); err != nil {
			return fmt.Errorf("trimming history: %w", err)
		}
	}
	return nil
}

// Recent returns the latest n cycles, newest first.
func (s *Store) Recent(n int) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, started_at, duration_ms, mode, providers, cold_start,
			created, updated, deleted, recreated, noops, conflicts, errors
		FROM cycles ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var e Entry
		var startedAt, providers string
		var durationMs int64
		var coldStart int
		if err := rows.Scan(&e.ID, &startedAt, &durationMs, &e.Mode, &providers, &coldStart,
			&e.Created, &e.Updated, &e.Deleted, &e.Recreated, &e.Noops, &e.Conflicts, &e.Errors); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339, startedAt); err == nil {
			e.StartedAt = ts
		}
		e.Duration = time.Duration(durationMs) * time.Millisecond
		if providers != "" {
			e.Providers = strings.Split(providers, ",")
		}
		e.ColdStart = coldStart != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
