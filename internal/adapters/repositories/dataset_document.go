package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"supply-chain-optimizer/internal/domain"
)

// DatasetDocument is the JSON interchange form of a dataset, used for
// seeding Postgres and for running without a database.
type DatasetDocument struct {
	SpecialMaterial  string              `json:"special_material,omitempty"`
	SpecialFreight   float64             `json:"special_freight"`
	CollectionPoints []CollectionPointDoc `json:"collection_points"`
	InboundFreight   []InboundFreightDoc  `json:"inbound_freight"`
	OutboundFreight  []OutboundFreightDoc `json:"outbound_freight"`
	Ports            []PortDoc            `json:"ports"`
	Production       ProductionDoc        `json:"production"`
}

type CollectionPointDoc struct {
	SiteID  string             `json:"site_id"`
	Company string             `json:"company"`
	Plant   string             `json:"plant"`
	Volumes map[string]float64 `json:"volumes"`
	Prices  map[string]float64 `json:"prices"`
}

type InboundFreightDoc struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Cost        float64 `json:"cost"`
}

type OutboundFreightDoc struct {
	Site string  `json:"site"`
	Port string  `json:"port"`
	Cost float64 `json:"cost"`
}

type PortDoc struct {
	Name            string  `json:"name"`
	OperationalCost float64 `json:"operational_cost"`
	SeaFreightCost  float64 `json:"sea_freight_cost"`
}

type ProductionDoc struct {
	TargetTons     float64            `json:"target_tons"`
	YieldFactors   map[string]float64 `json:"yield_factors"`
	MaxConsumption map[string]float64 `json:"max_consumption"`
}

// DecodeDataset parses and validates a dataset document.
func DecodeDataset(r io.Reader) (*domain.Dataset, error) {
	var doc DatasetDocument
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode dataset: parse json: %w", err)
	}

	data, err := doc.Dataset()
	if err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return data, nil
}

// ReadDatasetFile decodes the dataset document at path.
func ReadDatasetFile(path string) (*domain.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %q: %w", path, err)
	}
	defer f.Close()

	data, err := DecodeDataset(f)
	if err != nil {
		return nil, fmt.Errorf("read dataset %q: %w", path, err)
	}
	return data, nil
}

// Dataset converts the document to the domain form. Site ids default to
// "<company>_<plant>" when omitted.
func (doc DatasetDocument) Dataset() (*domain.Dataset, error) {
	data := &domain.Dataset{
		SpecialFreight:  doc.SpecialFreight,
		InboundFreight:  make(map[domain.SitePair]float64, len(doc.InboundFreight)),
		OutboundFreight: make(map[domain.SitePort]float64, len(doc.OutboundFreight)),
	}

	if doc.SpecialMaterial != "" {
		m, err := domain.ParseMaterial(doc.SpecialMaterial)
		if err != nil {
			return nil, fmt.Errorf("special material: %w", err)
		}
		data.SpecialMaterial = m
	}

	for i, cp := range doc.CollectionPoints {
		id := strings.TrimSpace(cp.SiteID)
		if id == "" {
			id = cp.Company + "_" + cp.Plant
		}
		if id == "_" {
			return nil, fmt.Errorf("collection point #%d: site id, company and plant are empty", i+1)
		}
		volumes, err := materialMap(cp.Volumes)
		if err != nil {
			return nil, fmt.Errorf("collection point %q volumes: %w", id, err)
		}
		prices, err := materialMap(cp.Prices)
		if err != nil {
			return nil, fmt.Errorf("collection point %q prices: %w", id, err)
		}
		data.CollectionPoints = append(data.CollectionPoints, domain.CollectionPoint{
			SiteID:  id,
			Company: cp.Company,
			Plant:   cp.Plant,
			Volumes: volumes,
			Prices:  prices,
		})
	}

	for _, f := range doc.InboundFreight {
		data.InboundFreight[domain.SitePair{Origin: f.Origin, Destination: f.Destination}] = f.Cost
	}
	for _, f := range doc.OutboundFreight {
		data.OutboundFreight[domain.SitePort{Site: f.Site, Port: f.Port}] = f.Cost
	}
	for _, p := range doc.Ports {
		data.Ports = append(data.Ports, domain.Port{
			Name:            strings.TrimSpace(p.Name),
			OperationalCost: p.OperationalCost,
			SeaFreightCost:  p.SeaFreightCost,
		})
	}

	yields, err := materialMap(doc.Production.YieldFactors)
	if err != nil {
		return nil, fmt.Errorf("yield factors: %w", err)
	}
	shares, err := materialMap(doc.Production.MaxConsumption)
	if err != nil {
		return nil, fmt.Errorf("max consumption: %w", err)
	}
	data.Production = domain.ProductionParameters{
		TargetTons:     doc.Production.TargetTons,
		YieldFactors:   yields,
		MaxConsumption: shares,
	}

	return data, nil
}

func materialMap(in map[string]float64) (map[domain.Material]float64, error) {
	if in == nil {
		return nil, errors.New("missing")
	}
	out := make(map[domain.Material]float64, len(in))
	for k, v := range in {
		m, err := domain.ParseMaterial(k)
		if err != nil {
			return nil, err
		}
		out[m] = v
	}
	return out, nil
}

// JSONDatasetRepository serves the dataset straight from a document on disk.
type JSONDatasetRepository struct {
	Path string
}

func NewJSONDatasetRepository(path string) *JSONDatasetRepository {
	return &JSONDatasetRepository{Path: path}
}

func (r *JSONDatasetRepository) LoadDataset(ctx context.Context) (*domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadDatasetFile(r.Path)
}
