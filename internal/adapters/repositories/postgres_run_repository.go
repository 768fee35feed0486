package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"supply-chain-optimizer/internal/domain"
	"supply-chain-optimizer/internal/platform/obs"
	"time"
)

const defaultRunLimit = 50

// Postgres-backed implementation of the RunRepository port.
type PostgresRunRepository struct{ DB *sql.DB }

func NewPostgresRunRepository(db *sql.DB) *PostgresRunRepository {
	return &PostgresRunRepository{DB: db}
}

// Persist a run summary and return its id.
func (r *PostgresRunRepository) SaveRun(ctx context.Context, rec domain.RunRecord) (_ int64, err error) {
	defer obs.Time(ctx, "runs.SaveRun")(&err)

	if r.DB == nil {
		return 0, errors.New("postgres run repository: DB is nil")
	}

	cols, err := encodeRunColumns(rec)
	if err != nil {
		return 0, fmt.Errorf("save run: %w", err)
	}

	query := `
	INSERT INTO optimization_runs (
		kind,
		scenario_name,
		facility,
		facility_forced,
		selected_ports,
		target_tons,
		total_cost,
		cost_per_ton,
		costs,
		solve_time_ms,
		host
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING id;
	`
	var id int64
	err = r.DB.QueryRowContext(ctx, query,
		string(rec.Kind),
		rec.ScenarioName,
		rec.Facility,
		rec.FacilityForced,
		cols.ports,
		rec.TargetTons,
		rec.Costs.Total,
		rec.CostPerTon,
		cols.costs,
		rec.SolveTime.Milliseconds(),
		cols.host,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("save run: insert %s %q: %w", rec.Kind, rec.ScenarioName, err)
	}

	return id, nil
}

// Return the most recent runs, newest first.
func (r *PostgresRunRepository) ListRuns(ctx context.Context, limit int) (_ []domain.RunRecord, err error) {
	defer obs.Time(ctx, "runs.ListRuns")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres run repository: DB is nil")
	}
	if limit <= 0 {
		limit = defaultRunLimit
	}

	query := `
	SELECT
		id,
		kind,
		scenario_name,
		facility,
		facility_forced,
		selected_ports,
		target_tons,
		cost_per_ton,
		costs,
		solve_time_ms,
		host,
		created_at
	FROM optimization_runs
	ORDER BY created_at DESC, id DESC
	LIMIT $1;
	`
	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: query optimization_runs: %w", err)
	}
	defer rows.Close()

	runs := make([]domain.RunRecord, 0, limit)
	for rows.Next() {
		var rec domain.RunRecord
		var kind string
		var ports, costs, host []byte
		var solveMS int64
		err := rows.Scan(
			&rec.ID,
			&kind,
			&rec.ScenarioName,
			&rec.Facility,
			&rec.FacilityForced,
			&ports,
			&rec.TargetTons,
			&rec.CostPerTon,
			&costs,
			&solveMS,
			&host,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("list runs: scan row: %w", err)
		}

		rec.Kind = domain.RunKind(kind)
		rec.SolveTime = time.Duration(solveMS) * time.Millisecond
		if err := decodeRunColumns(&rec, ports, costs, host); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: row iteration: %w", err)
	}

	return runs, nil
}
