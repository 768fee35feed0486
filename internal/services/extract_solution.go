package services

import (
	"errors"
	"fmt"
	"supply-chain-optimizer/internal/domain"
	"supply-chain-optimizer/internal/milp"
)

// Flows and shipments at or below this are not reported as selected.
const reportTolerance = 0.01

// ExtractSolution reads a solved facility model back into economic terms.
//
// It is a pure function of the model and result: extracting twice yields the
// same Solution. Cost components re-evaluate the objective's own coefficients,
// so their sum reproduces the objective value.
func ExtractSolution(fm *milp.FacilityModel, res *milp.Result, phase domain.Phase, mipGap float64) (*domain.Solution, error) {
	if fm == nil || res == nil {
		return nil, errors.New("extract solution: model and result are required")
	}
	if len(res.Values) != len(fm.Vars) {
		return nil, fmt.Errorf("extract solution: got %d values for %d variables", len(res.Values), len(fm.Vars))
	}

	sol := &domain.Solution{
		Phase:                phase,
		SelectedPorts:        []string{},
		TotalFinishedProduct: res.Value(fm.Produce),
		RawMaterialByType:    make(map[domain.Material]float64, len(domain.Materials)),
		RawMaterialBySource:  make(map[string]float64),
		ProcurementDetails:   make(map[domain.ProcurementKey]float64),
		PortShipments:        make(map[domain.SitePort]float64),
		ObjectiveValue:       res.Objective,
		SolveTime:            res.RunTime,
		MIPGap:               mipGap,
	}

	facility, err := SelectFacility(fm, res)
	if err != nil {
		return nil, fmt.Errorf("extract solution: %w", err)
	}
	sol.Facility = facility

	var costs domain.Costs
	bySource := make(map[string]float64, len(fm.Sites))
	for _, k := range fm.ProcurementKeys() {
		qty := res.Value(fm.Procure[k])

		sol.RawMaterialByType[k.Material] += qty
		bySource[k.Origin] += qty
		costs.RawMaterial += fm.Price[k.Origin][k.Material] * qty
		costs.InboundFreight += fm.InboundRate(k) * qty

		if qty > reportTolerance {
			sol.ProcurementDetails[k] = qty
			sol.TotalRawMaterial += qty
		}
	}
	for _, s := range fm.Sites {
		if bySource[s] > reportTolerance {
			sol.RawMaterialBySource[s] = bySource[s]
		}
	}

	seenPort := make(map[string]bool, len(fm.Ports))
	for _, s := range fm.Sites {
		for _, p := range fm.Ports {
			sp := domain.SitePort{Site: s, Port: p}
			qty := res.Value(fm.Ship[sp])

			costs.OutboundFreight += fm.OutboundRate[sp] * qty
			costs.PortOperational += fm.PortOp[p] * qty
			costs.SeaFreight += fm.SeaFreight[p] * qty

			if qty > reportTolerance {
				sol.PortShipments[sp] = qty
				if !seenPort[p] {
					seenPort[p] = true
					sol.SelectedPorts = append(sol.SelectedPorts, p)
				}
			}
		}
	}
	costs.Total = costs.RawMaterial + costs.InboundFreight + costs.OutboundFreight + costs.PortOperational + costs.SeaFreight

	raw := sol.TotalRawMaterial
	finished := sol.TotalFinishedProduct
	costs.RawMaterialPerTon = perTon(costs.RawMaterial, raw)
	costs.InboundFreightPerTon = perTon(costs.InboundFreight, raw)
	costs.OutboundFreightPerTon = perTon(costs.OutboundFreight, finished)
	costs.PortOperationalPerTon = perTon(costs.PortOperational, finished)
	costs.SeaFreightPerTon = perTon(costs.SeaFreight, finished)
	sol.Costs = costs

	weighted := 0.0
	for _, m := range domain.Materials {
		weighted += fm.Yield[m] * sol.RawMaterialByType[m]
	}
	sol.AverageYield = perTon(weighted, raw)

	return sol, nil
}

func perTon(amount, base float64) float64 {
	if base <= 0 {
		return 0
	}
	return amount / base
}
