package services

import (
	"supply-chain-optimizer/internal/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func comparedSolution(facility string, ports []string, costs domain.Costs) *domain.Solution {
	costs.Total = costs.RawMaterial + costs.InboundFreight + costs.OutboundFreight + costs.PortOperational + costs.SeaFreight
	return &domain.Solution{
		Facility:             facility,
		SelectedPorts:        ports,
		TotalFinishedProduct: 100,
		Costs:                costs,
	}
}

func TestCompareSolutions(t *testing.T) {
	base := comparedSolution("S1", []string{"P1", "P2"}, domain.Costs{
		RawMaterial: 1000, InboundFreight: 200, OutboundFreight: 100, PortOperational: 50, SeaFreight: 650,
	})
	scen := comparedSolution("S2", []string{"P2", "P3"}, domain.Costs{
		RawMaterial: 1000, InboundFreight: 100, OutboundFreight: 150, PortOperational: 50, SeaFreight: 1000,
	})

	c := CompareSolutions(base, scen)

	require.True(t, c.FacilityChanged)
	require.Equal(t, "S1", c.BaselineFacility)
	require.Equal(t, "S2", c.ScenarioFacility)
	require.Equal(t, []string{"P3"}, c.PortsAdded)
	require.Equal(t, []string{"P1"}, c.PortsRemoved)

	require.Equal(t, 2000.0, c.TotalDelta.Baseline)
	require.Equal(t, 2300.0, c.TotalDelta.Scenario)
	require.InDelta(t, 300, c.TotalDelta.Delta, 1e-9)
	require.InDelta(t, 15, c.TotalDelta.Percent, 1e-9)
	require.InDelta(t, 3, c.CostPerTonDelta, 1e-9)
	require.Equal(t, 0.0, c.ProductionDelta)

	names := make([]string, 0, len(c.Components))
	for _, d := range c.Components {
		names = append(names, d.Component)
	}
	require.Equal(t, []string{"sea_freight", "inbound_freight", "outbound_freight", "raw_material", "port_operational"}, names)
	require.InDelta(t, -50, c.Components[1].Percent, 1e-9)
}

func TestCompareSolutions_Unchanged(t *testing.T) {
	sol := comparedSolution("S1", []string{"P1"}, domain.Costs{RawMaterial: 10})

	c := CompareSolutions(sol, sol)

	require.False(t, c.FacilityChanged)
	require.Empty(t, c.PortsAdded)
	require.Empty(t, c.PortsRemoved)
	require.Equal(t, 0.0, c.TotalDelta.Delta)
	for _, d := range c.Components {
		require.Equal(t, 0.0, d.Delta)
	}
}

func TestCompareSolutions_ZeroBaselineComponent(t *testing.T) {
	base := comparedSolution("S1", []string{"P1"}, domain.Costs{RawMaterial: 10})
	scen := comparedSolution("S1", []string{"P1"}, domain.Costs{RawMaterial: 10, InboundFreight: 5})

	c := CompareSolutions(base, scen)

	require.Equal(t, "inbound_freight", c.Components[0].Component)
	require.Equal(t, 5.0, c.Components[0].Delta)
	require.Equal(t, 0.0, c.Components[0].Percent)
}
