// Package indexdb is a read-model index of completed runs. It never
// feeds back into the simulation; losing it costs queryability, not
// correctness.
package indexdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteIndex struct {
	db *sql.DB
}

// RunRow summarizes one completed simulation run.
type RunRow struct {
	RunID          string
	Seed           int64
	GridW          int
	GridH          int
	Agents         int
	Targets        int
	ByzantineIndex int
	Ticks          uint64
	Located        int
	Ratio          float64
	RatioValid     bool
	CreatedAt      time.Time
}

// TargetFindRow records when and where one target was first located.
type TargetFindRow struct {
	RunID    string
	TargetID int
	Tick     uint64
	X        int
	Y        int
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteIndex{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	run_id          TEXT PRIMARY KEY,
	seed            INTEGER NOT NULL,
	grid_w          INTEGER NOT NULL,
	grid_h          INTEGER NOT NULL,
	agents          INTEGER NOT NULL,
	targets         INTEGER NOT NULL,
	byzantine_index INTEGER NOT NULL,
	ticks           INTEGER NOT NULL,
	located         INTEGER NOT NULL,
	ratio           REAL,
	created_at      TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS target_finds (
	run_id    TEXT NOT NULL REFERENCES runs(run_id),
	target_id INTEGER NOT NULL,
	tick      INTEGER NOT NULL,
	x         INTEGER NOT NULL,
	y         INTEGER NOT NULL,
	PRIMARY KEY (run_id, target_id)
);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (s *SQLiteIndex) Close() error { return s.db.Close() }

// RecordRun stores one run summary plus its per-target find rows in a
// single transaction.
func (s *SQLiteIndex) RecordRun(run RunRow, finds []TargetFindRow) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var ratio any
	if run.RatioValid {
		ratio = run.Ratio
	}
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = tx.Exec(`INSERT INTO runs
		(run_id, seed, grid_w, grid_h, agents, targets, byzantine_index, ticks, located, ratio, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Seed, run.GridW, run.GridH, run.Agents, run.Targets,
		run.ByzantineIndex, run.Ticks, run.Located, ratio, createdAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for _, f := range finds {
		if _, err := tx.Exec(`INSERT INTO target_finds (run_id, target_id, tick, x, y) VALUES (?, ?, ?, ?, ?)`,
			run.RunID, f.TargetID, f.Tick, f.X, f.Y); err != nil {
			return fmt.Errorf("insert find: %w", err)
		}
	}
	return tx.Commit()
}

// GetRun loads one run summary by id.
func (s *SQLiteIndex) GetRun(runID string) (RunRow, error) {
	var run RunRow
	var ratio sql.NullFloat64
	var createdAt string
	err := s.db.QueryRow(`SELECT run_id, seed, grid_w, grid_h, agents, targets, byzantine_index, ticks, located, ratio, created_at
		FROM runs WHERE run_id = ?`, runID).
		Scan(&run.RunID, &run.Seed, &run.GridW, &run.GridH, &run.Agents, &run.Targets,
			&run.ByzantineIndex, &run.Ticks, &run.Located, &ratio, &createdAt)
	if err != nil {
		return RunRow{}, err
	}
	if ratio.Valid {
		run.Ratio = ratio.Float64
		run.RatioValid = true
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		run.CreatedAt = t
	}
	return run, nil
}

// ListFinds returns the find rows of a run ordered by target id.
func (s *SQLiteIndex) ListFinds(runID string) ([]TargetFindRow, error) {
	rows, err := s.db.Query(`SELECT run_id, target_id, tick, x, y FROM target_finds
		WHERE run_id = ? ORDER BY target_id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TargetFindRow
	for rows.Next() {
		var f TargetFindRow
		if err := rows.Scan(&f.RunID, &f.TargetID, &f.Tick, &f.X, &f.Y); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
