package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the SQLite schema for run history and the solution cache. The
// dataset itself stays in the JSON seed file in this mode.
func InitSQLiteSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init sqlite schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init sqlite schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRunsQuery := `
	CREATE TABLE IF NOT EXISTS optimization_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		scenario_name TEXT NOT NULL,
		facility TEXT NOT NULL,
		facility_forced INTEGER NOT NULL,
		selected_ports TEXT NOT NULL,
		target_tons REAL NOT NULL,
		total_cost REAL NOT NULL,
		cost_per_ton REAL NOT NULL,
		costs TEXT NOT NULL,
		solve_time_ms INTEGER NOT NULL,
		host TEXT NOT NULL,
		created_at_ms INTEGER NOT NULL
	);
	`

	createRunsIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_optimization_runs_created_at
	ON optimization_runs(created_at_ms DESC);
	`

	createSolutionCacheQuery := `
	CREATE TABLE IF NOT EXISTS solution_cache (
		cache_key TEXT PRIMARY KEY,
		facility TEXT NOT NULL,
		result TEXT NOT NULL,
		stored_at INTEGER NOT NULL
	);
	`

	statements := []string{
		createRunsQuery,
		createRunsIndexQuery,
		createSolutionCacheQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init sqlite schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init sqlite schema: commit tx: %w", err)
	}

	return nil
}
