// Package store persists one row per pipeline run to a local sqlite
// database: database/sql over modernc.org/sqlite, a schema created with
// CREATE TABLE IF NOT EXISTS, and plain parameterized CRUD methods.
package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one persisted record of a pipeline invocation.
type Run struct {
	ID               string
	InputHash        string
	StartedAt        time.Time
	EndedAt          time.Time
	InstanceCount    int
	MissionCount     int
	TerminalErrorKind string // empty when the run succeeded
}

// StageTiming is one named stage's duration within a run.
type StageTiming struct {
	RunID    string
	Stage    string
	Millis   int64
}

// Store is a sqlite-backed run-history database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite database at path and
// ensures its schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("store: create dir %q: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %q: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		input_hash TEXT NOT NULL,
		started_at TEXT NOT NULL,
		ended_at TEXT NOT NULL,
		instance_count INTEGER NOT NULL DEFAULT 0,
		mission_count INTEGER NOT NULL DEFAULT 0,
		terminal_error_kind TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS stage_timings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		stage TEXT NOT NULL,
		millis INTEGER NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_stage_timings_run ON stage_timings(run_id);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// HashInputs returns the content hash of a run's four input artifacts
// (domain, goal model, knowledge base, config), used as Run.InputHash so
// repeated runs over unchanged inputs are identifiable without storing the
// artifacts themselves.
func HashInputs(domain, goalModel, kb, config []byte) string {
	h := sha256.New()
	for _, b := range [][]byte{domain, goalModel, kb, config} {
		h.Write(b)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// SaveRun inserts run and its stage timings in one transaction.
func (s *Store) SaveRun(run Run, stages []StageTiming) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, input_hash, started_at, ended_at, instance_count, mission_count, terminal_error_kind)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.InputHash, run.StartedAt.Format(time.RFC3339Nano), run.EndedAt.Format(time.RFC3339Nano),
		run.InstanceCount, run.MissionCount, run.TerminalErrorKind)
	if err != nil {
		return fmt.Errorf("store: insert run: %w", err)
	}

	for _, st := range stages {
		if _, err := tx.Exec(`
			INSERT INTO stage_timings (run_id, stage, millis) VALUES (?, ?, ?)
		`, run.ID, st.Stage, st.Millis); err != nil {
			return fmt.Errorf("store: insert stage timing %q: %w", st.Stage, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns at most limit runs, most recently started first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT id, input_hash, started_at, ended_at, instance_count, mission_count, terminal_error_kind
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started, ended string
		if err := rows.Scan(&r.ID, &r.InputHash, &started, &ended, &r.InstanceCount, &r.MissionCount, &r.TerminalErrorKind); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		r.EndedAt, _ = time.Parse(time.RFC3339Nano, ended)
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRun looks up one run by id, along with its stage timings.
func (s *Store) GetRun(id string) (*Run, []StageTiming, error) {
	var r Run
	var started, ended string
	err := s.db.QueryRow(`
		SELECT id, input_hash, started_at, ended_at, instance_count, mission_count, terminal_error_kind
		FROM runs WHERE id = ?
	`, id).Scan(&r.ID, &r.InputHash, &started, &ended, &r.InstanceCount, &r.MissionCount, &r.TerminalErrorKind)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("store: run %q not found", id)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("store: get run: %w", err)
	}
	r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
	r.EndedAt, _ = time.Parse(time.RFC3339Nano, ended)

	rows, err := s.db.Query(`SELECT run_id, stage, millis FROM stage_timings WHERE run_id = ? ORDER BY id ASC`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("store: list stage timings: %w", err)
	}
	defer rows.Close()

	var stages []StageTiming
	for rows.Next() {
		var st StageTiming
		if err := rows.Scan(&st.RunID, &st.Stage, &st.Millis); err != nil {
			return nil, nil, fmt.Errorf("store: scan stage timing: %w", err)
		}
		stages = append(stages, st)
	}
	return &r, stages, rows.Err()
}
