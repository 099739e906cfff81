// Package history keeps a SQLite record of finished runs.
package history

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/pthm-cable/missions/telemetry"
)

// Store wraps a SQLite connection holding one row per finished run.
// A nil *Store is valid and records nothing.
type Store struct {
	conn *sqlx.DB
}

// Open opens or creates a run history database at the given path.
// Returns nil if path is empty (history disabled).
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, nil
	}

	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		steps INTEGER NOT NULL,
		max_steps INTEGER NOT NULL,
		reason TEXT NOT NULL,
		winner TEXT NOT NULL,
		outcome TEXT NOT NULL,
		initial_guarani INTEGER NOT NULL,
		initial_jesuit INTEGER NOT NULL,
		final_guarani INTEGER NOT NULL,
		final_jesuit INTEGER NOT NULL,
		guarani_births INTEGER NOT NULL,
		jesuit_births INTEGER NOT NULL,
		guarani_deaths INTEGER NOT NULL,
		jesuit_deaths INTEGER NOT NULL,
		top_killer TEXT NOT NULL,
		top_kills INTEGER NOT NULL,
		top_gatherer TEXT NOT NULL,
		top_collections INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_finished ON runs(finished_at);
	CREATE INDEX IF NOT EXISTS idx_runs_winner ON runs(winner);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// SaveRun records a finished run. Saving the same run id twice replaces the row.
func (s *Store) SaveRun(run telemetry.RunSummary) error {
	if s == nil {
		return nil
	}

	_, err := s.conn.NamedExec(`INSERT OR REPLACE INTO runs
		(run_id, seed, steps, max_steps, reason, winner, outcome,
		 initial_guarani, initial_jesuit, final_guarani, final_jesuit,
		 guarani_births, jesuit_births, guarani_deaths, jesuit_deaths,
		 top_killer, top_kills, top_gatherer, top_collections,
		 started_at, finished_at)
		VALUES
		(:run_id, :seed, :steps, :max_steps, :reason, :winner, :outcome,
		 :initial_guarani, :initial_jesuit, :final_guarani, :final_jesuit,
		 :guarani_births, :jesuit_births, :guarani_deaths, :jesuit_deaths,
		 :top_killer, :top_kills, :top_gatherer, :top_collections,
		 :started_at, :finished_at)`, run)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.RunID, err)
	}

	slog.Debug("run saved", "run_id", run.RunID, "outcome", run.Outcome)
	return nil
}

// Recent returns the most recent runs, newest first.
func (s *Store) Recent(limit int) ([]telemetry.RunSummary, error) {
	if s == nil {
		return nil, nil
	}

	var runs []telemetry.RunSummary
	err := s.conn.Select(&runs,
		"SELECT * FROM runs ORDER BY finished_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent runs: %w", err)
	}
	return runs, nil
}

// Tally counts finished runs by winner ("Guarani", "Jesuit" or "draw").
type Tally struct {
	Runs    int `db:"runs" json:"runs"`
	Guarani int `db:"guarani" json:"guarani"`
	Jesuit  int `db:"jesuit" json:"jesuit"`
	Draws   int `db:"draws" json:"draws"`
}

// Tally aggregates wins over every recorded run.
func (s *Store) Tally() (Tally, error) {
	var t Tally
	if s == nil {
		return t, nil
	}

	err := s.conn.Get(&t, `SELECT
		COUNT(*) AS runs,
		COALESCE(SUM(winner = 'Guarani'), 0) AS guarani,
		COALESCE(SUM(winner = 'Jesuit'), 0) AS jesuit,
		COALESCE(SUM(winner = 'draw'), 0) AS draws
		FROM runs`)
	if err != nil {
		return t, fmt.Errorf("tally runs: %w", err)
	}
	return t, nil
}
