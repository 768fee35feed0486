package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"supply-chain-optimizer/internal/domain"
)

// Initialize the Postgres schema for the dataset tables and run history.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createCollectionPointsQuery := `
	CREATE TABLE IF NOT EXISTS collection_points (
		site_id TEXT PRIMARY KEY,
		company TEXT NOT NULL,
		plant TEXT NOT NULL,
		position INTEGER NOT NULL
	);
	`

	createMaterialSupplyQuery := `
	CREATE TABLE IF NOT EXISTS material_supply (
		site_id TEXT NOT NULL REFERENCES collection_points(site_id) ON DELETE CASCADE,
		material TEXT NOT NULL,
		volume_tons DOUBLE PRECISION NOT NULL CHECK (volume_tons >= 0),
		price_per_ton DOUBLE PRECISION NOT NULL CHECK (price_per_ton >= 0),
		PRIMARY KEY (site_id, material)
	);
	`

	createInboundFreightQuery := `
	CREATE TABLE IF NOT EXISTS inbound_freight (
		origin TEXT NOT NULL REFERENCES collection_points(site_id) ON DELETE CASCADE,
		destination TEXT NOT NULL REFERENCES collection_points(site_id) ON DELETE CASCADE,
		cost_per_ton DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (origin, destination)
	);
	`

	createPortsQuery := `
	CREATE TABLE IF NOT EXISTS ports (
		name TEXT PRIMARY KEY,
		operational_cost DOUBLE PRECISION NOT NULL CHECK (operational_cost > 0),
		sea_freight_cost DOUBLE PRECISION NOT NULL CHECK (sea_freight_cost > 0),
		position INTEGER NOT NULL
	);
	`

	createOutboundFreightQuery := `
	CREATE TABLE IF NOT EXISTS outbound_freight (
		site_id TEXT NOT NULL REFERENCES collection_points(site_id) ON DELETE CASCADE,
		port TEXT NOT NULL REFERENCES ports(name) ON DELETE CASCADE,
		cost_per_ton DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (site_id, port)
	);
	`

	createProductionQuery := `
	CREATE TABLE IF NOT EXISTS production_parameters (
		material TEXT PRIMARY KEY,
		yield_factor DOUBLE PRECISION NOT NULL,
		max_consumption DOUBLE PRECISION NOT NULL
	);
	`

	createSettingsQuery := `
	CREATE TABLE IF NOT EXISTS dataset_settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		target_tons DOUBLE PRECISION NOT NULL,
		special_material TEXT NOT NULL,
		special_freight DOUBLE PRECISION NOT NULL
	);
	`

	createRunsQuery := `
	CREATE TABLE IF NOT EXISTS optimization_runs (
		id BIGSERIAL PRIMARY KEY,
		kind TEXT NOT NULL,
		scenario_name TEXT NOT NULL,
		facility TEXT NOT NULL,
		facility_forced BOOLEAN NOT NULL,
		selected_ports JSONB NOT NULL,
		target_tons DOUBLE PRECISION NOT NULL,
		total_cost DOUBLE PRECISION NOT NULL,
		cost_per_ton DOUBLE PRECISION NOT NULL,
		costs JSONB NOT NULL,
		solve_time_ms BIGINT NOT NULL,
		host JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createRunsIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_optimization_runs_created_at
	ON optimization_runs(created_at DESC);
	`

	createSolutionCacheQuery := `
	CREATE TABLE IF NOT EXISTS solution_cache (
		cache_key TEXT PRIMARY KEY,
		facility TEXT NOT NULL,
		result JSONB NOT NULL,
		stored_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	statements := []string{
		createCollectionPointsQuery,
		createMaterialSupplyQuery,
		createInboundFreightQuery,
		createPortsQuery,
		createOutboundFreightQuery,
		createProductionQuery,
		createSettingsQuery,
		createRunsQuery,
		createRunsIndexQuery,
		createSolutionCacheQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Replace the stored dataset with the document at jsonPath.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	data, err := ReadDatasetFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed dataset: %w", err)
	}
	return SaveDataset(context.Background(), db, data)
}

// SaveDataset replaces every dataset table in one transaction.
func SaveDataset(ctx context.Context, db *sql.DB, data *domain.Dataset) error {
	if db == nil {
		return errors.New("save dataset: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save dataset: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"outbound_freight", "inbound_freight", "material_supply", "ports", "collection_points", "production_parameters", "dataset_settings"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("save dataset: clear %s: %w", table, err)
		}
	}

	for i, cp := range data.CollectionPoints {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO collection_points (site_id, company, plant, position) VALUES ($1, $2, $3, $4)`,
			cp.SiteID, cp.Company, cp.Plant, i,
		); err != nil {
			return fmt.Errorf("save dataset: insert site %q: %w", cp.SiteID, err)
		}
		for _, m := range domain.Materials {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO material_supply (site_id, material, volume_tons, price_per_ton) VALUES ($1, $2, $3, $4)`,
				cp.SiteID, string(m), cp.Volumes[m], cp.Prices[m],
			); err != nil {
				return fmt.Errorf("save dataset: insert supply %s/%s: %w", cp.SiteID, m, err)
			}
		}
	}

	for pair, cost := range data.InboundFreight {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO inbound_freight (origin, destination, cost_per_ton) VALUES ($1, $2, $3)`,
			pair.Origin, pair.Destination, cost,
		); err != nil {
			return fmt.Errorf("save dataset: insert inbound %s->%s: %w", pair.Origin, pair.Destination, err)
		}
	}

	for i, p := range data.Ports {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO ports (name, operational_cost, sea_freight_cost, position) VALUES ($1, $2, $3, $4)`,
			p.Name, p.OperationalCost, p.SeaFreightCost, i,
		); err != nil {
			return fmt.Errorf("save dataset: insert port %q: %w", p.Name, err)
		}
	}

	for sp, cost := range data.OutboundFreight {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO outbound_freight (site_id, port, cost_per_ton) VALUES ($1, $2, $3)`,
			sp.Site, sp.Port, cost,
		); err != nil {
			return fmt.Errorf("save dataset: insert outbound %s->%s: %w", sp.Site, sp.Port, err)
		}
	}

	for _, m := range domain.Materials {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO production_parameters (material, yield_factor, max_consumption) VALUES ($1, $2, $3)`,
			string(m), data.Production.YieldFactors[m], data.Production.MaxConsumption[m],
		); err != nil {
			return fmt.Errorf("save dataset: insert production %s: %w", m, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO dataset_settings (id, target_tons, special_material, special_freight) VALUES (1, $1, $2, $3)`,
		data.Production.TargetTons, string(data.Special()), data.SpecialFreight,
	); err != nil {
		return fmt.Errorf("save dataset: insert settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save dataset: commit tx: %w", err)
	}

	return nil
}
