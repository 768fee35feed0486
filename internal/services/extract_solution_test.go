package services

import (
	"context"
	"supply-chain-optimizer/internal/adapters/solver"
	"supply-chain-optimizer/internal/domain"
	"supply-chain-optimizer/internal/milp"
	"supply-chain-optimizer/internal/ports"
	"testing"

	"github.com/stretchr/testify/require"
)

func solvedCommitModel(t *testing.T) (*milp.FacilityModel, *milp.Result) {
	t.Helper()
	fm, err := milp.BuildFacilityModel(twoSiteDataset(), milp.BuildOptions{Facility: "S1"})
	require.NoError(t, err)

	res, err := solver.NewScriptedSolver(commitStep()).Solve(context.Background(), fm.Model, ports.SolveOptions{})
	require.NoError(t, err)
	require.NoError(t, fm.Check(res.Values, 1e-6))
	return fm, res
}

func TestExtractSolution_Costs(t *testing.T) {
	fm, res := solvedCommitModel(t)

	sol, err := ExtractSolution(fm, res, domain.PhaseCommit, 0.01)
	require.NoError(t, err)

	require.Equal(t, "S1", sol.Facility)
	require.Equal(t, []string{"P2"}, sol.SelectedPorts)
	require.Equal(t, 50.0, sol.TotalFinishedProduct)
	require.Equal(t, 100.0, sol.TotalRawMaterial)

	require.InDelta(t, 800, sol.Costs.RawMaterial, 1e-9)
	require.InDelta(t, 80, sol.Costs.InboundFreight, 1e-9)
	require.InDelta(t, 350, sol.Costs.OutboundFreight, 1e-9)
	require.InDelta(t, 100, sol.Costs.PortOperational, 1e-9)
	require.InDelta(t, 750, sol.Costs.SeaFreight, 1e-9)
	require.InDelta(t, 2080, sol.Costs.Total, 1e-9)
	require.InDelta(t, sol.ObjectiveValue, sol.Costs.Total, 1e-6)
	require.InDelta(t, 41.6, sol.CostPerTon(), 1e-9)

	require.InDelta(t, 8, sol.Costs.RawMaterialPerTon, 1e-9)
	require.InDelta(t, 0.8, sol.Costs.InboundFreightPerTon, 1e-9)
	require.InDelta(t, 7, sol.Costs.OutboundFreightPerTon, 1e-9)
	require.InDelta(t, 2, sol.Costs.PortOperationalPerTon, 1e-9)
	require.InDelta(t, 15, sol.Costs.SeaFreightPerTon, 1e-9)
	require.InDelta(t, 0.5, sol.AverageYield, 1e-9)
}

func TestExtractSolution_Breakdowns(t *testing.T) {
	fm, res := solvedCommitModel(t)

	sol, err := ExtractSolution(fm, res, domain.PhaseCommit, 0.01)
	require.NoError(t, err)

	require.Equal(t, map[domain.ProcurementKey]float64{
		{Origin: "S1", Destination: "S1", Material: domain.MaterialA}: 60,
		{Origin: "S2", Destination: "S1", Material: domain.MaterialE}: 40,
	}, sol.ProcurementDetails)
	require.Equal(t, map[string]float64{"S1": 60, "S2": 40}, sol.RawMaterialBySource)
	require.Equal(t, 60.0, sol.RawMaterialByType[domain.MaterialA])
	require.Equal(t, 40.0, sol.RawMaterialByType[domain.MaterialE])
	require.Equal(t, 0.0, sol.RawMaterialByType[domain.MaterialB])
	require.Equal(t, map[domain.SitePort]float64{{Site: "S1", Port: "P2"}: 50}, sol.PortShipments)
}

func TestExtractSolution_Idempotent(t *testing.T) {
	fm, res := solvedCommitModel(t)

	first, err := ExtractSolution(fm, res, domain.PhaseCommit, 0.01)
	require.NoError(t, err)
	second, err := ExtractSolution(fm, res, domain.PhaseCommit, 0.01)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestExtractSolution_IgnoresNoise(t *testing.T) {
	fm, res := solvedCommitModel(t)
	res.Values[fm.Ship[domain.SitePort{Site: "S1", Port: "P1"}]] = 0.005

	sol, err := ExtractSolution(fm, res, domain.PhaseCommit, 0.01)
	require.NoError(t, err)

	require.Equal(t, []string{"P2"}, sol.SelectedPorts)
	require.NotContains(t, sol.PortShipments, domain.SitePort{Site: "S1", Port: "P1"})
}

func TestExtractSolution_RejectsMismatchedResult(t *testing.T) {
	fm, res := solvedCommitModel(t)

	_, err := ExtractSolution(fm, &milp.Result{Status: milp.StatusOptimal, Values: res.Values[:3]}, domain.PhaseCommit, 0)
	require.Error(t, err)

	none := make([]float64, len(fm.Vars))
	_, err = ExtractSolution(fm, &milp.Result{Status: milp.StatusOptimal, Values: none}, domain.PhaseCommit, 0)
	require.ErrorContains(t, err, "no facility")
}

func TestExtractSolution_AgreesWithSelectFacilityOnTies(t *testing.T) {
	data := twoSiteDataset()
	data.CollectionPoints[0], data.CollectionPoints[1] = data.CollectionPoints[1], data.CollectionPoints[0]

	fm, err := milp.BuildFacilityModel(data, milp.BuildOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"S2", "S1"}, fm.Sites)

	values := make([]float64, len(fm.Vars))
	values[fm.Y["S1"]] = 1
	values[fm.Y["S2"]] = 1
	res := &milp.Result{Status: milp.StatusOptimal, Values: values}

	selected, err := SelectFacility(fm, res)
	require.NoError(t, err)
	require.Equal(t, "S1", selected)

	sol, err := ExtractSolution(fm, res, domain.PhaseLocate, 0)
	require.NoError(t, err)
	require.Equal(t, selected, sol.Facility)
}
