package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"supply-chain-optimizer/internal/domain"
	"supply-chain-optimizer/internal/platform/obs"
)

// Postgres-backed implementation of the DatasetRepository port.
type PostgresDatasetRepository struct{ DB *sql.DB }

func NewPostgresDatasetRepository(db *sql.DB) *PostgresDatasetRepository {
	return &PostgresDatasetRepository{DB: db}
}

// Assemble and validate the dataset stored in the dataset tables.
func (r *PostgresDatasetRepository) LoadDataset(ctx context.Context) (_ *domain.Dataset, err error) {
	defer obs.Time(ctx, "dataset.LoadDataset")(&err)

	if r.DB == nil {
		return nil, errors.New("postgres dataset repository: DB is nil")
	}

	data := &domain.Dataset{
		InboundFreight:  map[domain.SitePair]float64{},
		OutboundFreight: map[domain.SitePort]float64{},
		Production: domain.ProductionParameters{
			YieldFactors:   map[domain.Material]float64{},
			MaxConsumption: map[domain.Material]float64{},
		},
	}

	if err := r.loadSettings(ctx, data); err != nil {
		return nil, err
	}
	if err := r.loadCollectionPoints(ctx, data); err != nil {
		return nil, err
	}
	if err := r.loadPorts(ctx, data); err != nil {
		return nil, err
	}
	if err := r.loadFreight(ctx, data); err != nil {
		return nil, err
	}
	if err := r.loadProduction(ctx, data); err != nil {
		return nil, err
	}

	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return data, nil
}

func (r *PostgresDatasetRepository) loadSettings(ctx context.Context, data *domain.Dataset) error {
	var special string
	err := r.DB.QueryRowContext(ctx, `
	SELECT target_tons, special_material, special_freight
	FROM dataset_settings
	WHERE id = 1;
	`).Scan(&data.Production.TargetTons, &special, &data.SpecialFreight)
	if errors.Is(err, sql.ErrNoRows) {
		return errors.New("load dataset: no dataset seeded")
	}
	if err != nil {
		return fmt.Errorf("load dataset: query settings: %w", err)
	}

	m, err := domain.ParseMaterial(special)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	data.SpecialMaterial = m
	return nil
}

func (r *PostgresDatasetRepository) loadCollectionPoints(ctx context.Context, data *domain.Dataset) error {
	query := `
	SELECT
		cp.site_id,
		cp.company,
		cp.plant,
		ms.material,
		ms.volume_tons,
		ms.price_per_ton
	FROM collection_points cp
	JOIN material_supply ms ON ms.site_id = cp.site_id
	ORDER BY cp.position, ms.material;
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("load dataset: query collection points: %w", err)
	}
	defer rows.Close()

	index := map[string]int{}
	for rows.Next() {
		var site, company, plant, material string
		var volume, price float64
		if err := rows.Scan(&site, &company, &plant, &material, &volume, &price); err != nil {
			return fmt.Errorf("load dataset: scan collection point: %w", err)
		}
		m, err := domain.ParseMaterial(material)
		if err != nil {
			return fmt.Errorf("load dataset: site %q: %w", site, err)
		}

		i, ok := index[site]
		if !ok {
			i = len(data.CollectionPoints)
			index[site] = i
			data.CollectionPoints = append(data.CollectionPoints, domain.CollectionPoint{
				SiteID:  site,
				Company: company,
				Plant:   plant,
				Volumes: map[domain.Material]float64{},
				Prices:  map[domain.Material]float64{},
			})
		}
		data.CollectionPoints[i].Volumes[m] = volume
		data.CollectionPoints[i].Prices[m] = price
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("load dataset: collection point iteration: %w", err)
	}
	return nil
}

func (r *PostgresDatasetRepository) loadPorts(ctx context.Context, data *domain.Dataset) error {
	rows, err := r.DB.QueryContext(ctx, `
	SELECT name, operational_cost, sea_freight_cost
	FROM ports
	ORDER BY position;
	`)
	if err != nil {
		return fmt.Errorf("load dataset: query ports: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Port
		if err := rows.Scan(&p.Name, &p.OperationalCost, &p.SeaFreightCost); err != nil {
			return fmt.Errorf("load dataset: scan port: %w", err)
		}
		data.Ports = append(data.Ports, p)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("load dataset: port iteration: %w", err)
	}
	return nil
}

func (r *PostgresDatasetRepository) loadFreight(ctx context.Context, data *domain.Dataset) error {
	inbound, err := r.DB.QueryContext(ctx, `SELECT origin, destination, cost_per_ton FROM inbound_freight;`)
	if err != nil {
		return fmt.Errorf("load dataset: query inbound freight: %w", err)
	}
	defer inbound.Close()

	for inbound.Next() {
		var pair domain.SitePair
		var cost float64
		if err := inbound.Scan(&pair.Origin, &pair.Destination, &cost); err != nil {
			return fmt.Errorf("load dataset: scan inbound freight: %w", err)
		}
		data.InboundFreight[pair] = cost
	}
	if err := inbound.Err(); err != nil {
		return fmt.Errorf("load dataset: inbound freight iteration: %w", err)
	}

	outbound, err := r.DB.QueryContext(ctx, `SELECT site_id, port, cost_per_ton FROM outbound_freight;`)
	if err != nil {
		return fmt.Errorf("load dataset: query outbound freight: %w", err)
	}
	defer outbound.Close()

	for outbound.Next() {
		var sp domain.SitePort
		var cost float64
		if err := outbound.Scan(&sp.Site, &sp.Port, &cost); err != nil {
			return fmt.Errorf("load dataset: scan outbound freight: %w", err)
		}
		data.OutboundFreight[sp] = cost
	}
	if err := outbound.Err(); err != nil {
		return fmt.Errorf("load dataset: outbound freight iteration: %w", err)
	}
	return nil
}

func (r *PostgresDatasetRepository) loadProduction(ctx context.Context, data *domain.Dataset) error {
	rows, err := r.DB.QueryContext(ctx, `SELECT material, yield_factor, max_consumption FROM production_parameters;`)
	if err != nil {
		return fmt.Errorf("load dataset: query production parameters: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var material string
		var yield, share float64
		if err := rows.Scan(&material, &yield, &share); err != nil {
			return fmt.Errorf("load dataset: scan production parameters: %w", err)
		}
		m, err := domain.ParseMaterial(material)
		if err != nil {
			return fmt.Errorf("load dataset: production parameters: %w", err)
		}
		data.Production.YieldFactors[m] = yield
		data.Production.MaxConsumption[m] = share
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("load dataset: production parameter iteration: %w", err)
	}
	return nil
}
