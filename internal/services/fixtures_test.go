package services

import (
	"supply-chain-optimizer/internal/adapters/solver"
	"supply-chain-optimizer/internal/domain"
	"supply-chain-optimizer/internal/milp"
)

func materials(v float64) map[domain.Material]float64 {
	out := make(map[domain.Material]float64, len(domain.Materials))
	for _, m := range domain.Materials {
		out[m] = v
	}
	return out
}

// singleMaterialDataset has one site holding only material A.
func singleMaterialDataset(volume, yield, share, target float64) *domain.Dataset {
	vol := materials(0)
	vol[domain.MaterialA] = volume
	shares := materials(1)
	shares[domain.MaterialA] = share
	yields := materials(0.5)
	yields[domain.MaterialA] = yield

	return &domain.Dataset{
		CollectionPoints: []domain.CollectionPoint{{SiteID: "S1", Volumes: vol, Prices: materials(1)}},
		InboundFreight:   map[domain.SitePair]float64{},
		OutboundFreight:  map[domain.SitePort]float64{{Site: "S1", Port: "P1"}: 1},
		Ports:            []domain.Port{{Name: "P1", OperationalCost: 1, SeaFreightCost: 1}},
		Production: domain.ProductionParameters{
			TargetTons:     target,
			YieldFactors:   yields,
			MaxConsumption: shares,
		},
	}
}

// twoSiteDataset: S1 holds 100 t of A, S2 holds 50 t of A and 80 t of the
// special material E. Two ports, target 50 t, every yield 0.5.
func twoSiteDataset() *domain.Dataset {
	s1 := materials(0)
	s1[domain.MaterialA] = 100
	s2 := materials(0)
	s2[domain.MaterialA] = 50
	s2[domain.MaterialE] = 80

	prices1 := materials(1)
	prices1[domain.MaterialA] = 10
	prices2 := materials(1)
	prices2[domain.MaterialA] = 12
	prices2[domain.MaterialE] = 5

	return &domain.Dataset{
		CollectionPoints: []domain.CollectionPoint{
			{SiteID: "S1", Company: "Acme", Plant: "One", Volumes: s1, Prices: prices1},
			{SiteID: "S2", Company: "Acme", Plant: "Two", Volumes: s2, Prices: prices2},
		},
		InboundFreight: map[domain.SitePair]float64{
			{Origin: "S1", Destination: "S2"}: 4,
			{Origin: "S2", Destination: "S1"}: 3,
		},
		SpecialFreight: 2,
		OutboundFreight: map[domain.SitePort]float64{
			{Site: "S1", Port: "P1"}: 6,
			{Site: "S1", Port: "P2"}: 7,
			{Site: "S2", Port: "P1"}: 5,
			{Site: "S2", Port: "P2"}: 8,
		},
		Ports: []domain.Port{
			{Name: "P1", OperationalCost: 1, SeaFreightCost: 20},
			{Name: "P2", OperationalCost: 2, SeaFreightCost: 15},
		},
		Production: domain.ProductionParameters{
			TargetTons:     50,
			YieldFactors:   materials(0.5),
			MaxConsumption: materials(1),
		},
	}
}

// Phase 1 on twoSiteDataset: facility S1 fed by its own A, shipped via P1.
func locateStep() solver.Step {
	return solver.Step{
		Status: milp.StatusOptimal,
		Values: map[string]float64{
			"y[S1]":            1,
			"procure[S1,S1,A]": 100,
			"ship[S1,P1]":      50,
		},
	}
}

// Phase 2 on twoSiteDataset with S1 fixed: cheap E from S2 replaces part of A,
// shipped via P2.
func commitStep() solver.Step {
	return solver.Step{
		Status: milp.StatusOptimal,
		Values: map[string]float64{
			"y[S1]":            1,
			"procure[S1,S1,A]": 60,
			"procure[S2,S1,E]": 40,
			"ship[S1,P2]":      50,
		},
	}
}

func varByName(m *milp.Model, name string) milp.Var {
	for _, v := range m.Vars {
		if v.Name == name {
			return v
		}
	}
	return milp.Var{Name: "missing:" + name}
}
