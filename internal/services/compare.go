package services

import (
	"sort"
	"supply-chain-optimizer/internal/domain"
)

type CostDelta struct {
	Component string
	Baseline  float64
	Scenario  float64
	Delta     float64
	Percent   float64
}

// Comparison of a what-if solution against the baseline.
type Comparison struct {
	BaselineFacility string
	ScenarioFacility string
	FacilityChanged  bool
	PortsAdded       []string
	PortsRemoved     []string
	TotalDelta       CostDelta
	CostPerTonDelta  float64
	ProductionDelta  float64
	// Components ordered by absolute change, largest first.
	Components []CostDelta
}

// CompareSolutions summarizes how a scenario moved facility, ports and costs.
func CompareSolutions(baseline, scenario *domain.Solution) Comparison {
	c := Comparison{
		BaselineFacility: baseline.Facility,
		ScenarioFacility: scenario.Facility,
		FacilityChanged:  baseline.Facility != scenario.Facility,
		TotalDelta:       costDelta("total", baseline.Costs.Total, scenario.Costs.Total),
		CostPerTonDelta:  scenario.CostPerTon() - baseline.CostPerTon(),
		ProductionDelta:  scenario.TotalFinishedProduct - baseline.TotalFinishedProduct,
		PortsAdded:       []string{},
		PortsRemoved:     []string{},
	}

	before := make(map[string]bool, len(baseline.SelectedPorts))
	for _, p := range baseline.SelectedPorts {
		before[p] = true
	}
	after := make(map[string]bool, len(scenario.SelectedPorts))
	for _, p := range scenario.SelectedPorts {
		after[p] = true
		if !before[p] {
			c.PortsAdded = append(c.PortsAdded, p)
		}
	}
	for _, p := range baseline.SelectedPorts {
		if !after[p] {
			c.PortsRemoved = append(c.PortsRemoved, p)
		}
	}

	b, s := baseline.Costs, scenario.Costs
	c.Components = []CostDelta{
		costDelta("raw_material", b.RawMaterial, s.RawMaterial),
		costDelta("inbound_freight", b.InboundFreight, s.InboundFreight),
		costDelta("outbound_freight", b.OutboundFreight, s.OutboundFreight),
		costDelta("port_operational", b.PortOperational, s.PortOperational),
		costDelta("sea_freight", b.SeaFreight, s.SeaFreight),
	}
	sort.SliceStable(c.Components, func(i, j int) bool {
		return abs(c.Components[i].Delta) > abs(c.Components[j].Delta)
	})

	return c
}

func costDelta(name string, baseline, scenario float64) CostDelta {
	d := CostDelta{Component: name, Baseline: baseline, Scenario: scenario, Delta: scenario - baseline}
	if baseline > 0 {
		d.Percent = d.Delta / baseline * 100
	}
	return d
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
