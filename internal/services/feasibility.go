package services

import (
	"math"
	"sort"
	"supply-chain-optimizer/internal/domain"
)

const (
	feasibilityMaxRounds    = 1000
	feasibilityGapTolerance = 0.001
	feasibilityMinAlloc     = 0.01
	feasibilityDeficitTol   = 0.01
)

type materialSupply struct {
	material  domain.Material
	yield     float64
	available float64
	maxShare  float64
}

// CheckFeasibility estimates whether the production target is reachable with
// the available raw material before an expensive solve.
//
// The estimate is a greedy, conservative lower bound: materials are allocated
// in order of descending yield, round by round, each bounded by its
// consumption share, its availability and the remaining gap. Because the
// allocation order is fixed it can reject a target the MILP would still meet.
// A rejection is advisory, not a proof of infeasibility.
//
// Achievable is the greedy maximum (not capped at the target); Allocation is
// the mix that closes the target gap.
func CheckFeasibility(data *domain.Dataset, excludeSpecial bool) (*domain.Feasibility, error) {
	target := data.Production.TargetTons
	availability := data.MaterialAvailability(excludeSpecial)
	special := data.Special()

	supplies := make([]materialSupply, 0, len(domain.Materials))
	totalAvailable := 0.0
	for _, m := range domain.Materials {
		if excludeSpecial && m == special {
			continue
		}
		supplies = append(supplies, materialSupply{
			material:  m,
			yield:     data.Production.YieldFactors[m],
			available: availability[m],
			maxShare:  data.Production.MaxConsumption[m],
		})
		totalAvailable += availability[m]
	}

	// Highest yield first; the stable sort keeps material order on ties.
	sort.SliceStable(supplies, func(i, j int) bool {
		return supplies[i].yield > supplies[j].yield
	})

	maxAlloc, rounds := greedyAllocate(supplies, math.Inf(1))
	achievable := production(supplies, maxAlloc)
	deficit := target - achievable

	if totalAvailable == 0 || deficit > feasibilityDeficitTol {
		if totalAvailable == 0 {
			achievable, deficit = 0, target
		}
		diag := make([]domain.MaterialDiagnostic, 0, len(supplies))
		for _, m := range domain.Materials {
			if excludeSpecial && m == special {
				continue
			}
			diag = append(diag, domain.MaterialDiagnostic{
				Material:       m,
				Available:      availability[m],
				YieldFactor:    data.Production.YieldFactors[m],
				MaxConsumption: data.Production.MaxConsumption[m],
				Allocated:      maxAlloc[m],
			})
		}
		return nil, &domain.InsufficientMaterialError{
			Target:         target,
			Achievable:     achievable,
			Deficit:        deficit,
			TotalAvailable: totalAvailable,
			ExcludeSpecial: excludeSpecial,
			Materials:      diag,
		}
	}

	plan, _ := greedyAllocate(supplies, target)

	return &domain.Feasibility{
		Target:         target,
		Achievable:     achievable,
		Margin:         achievable - target,
		TotalAvailable: totalAvailable,
		Allocation:     plan,
		Rounds:         rounds,
		ExcludeSpecial: excludeSpecial,
	}, nil
}

// greedyAllocate runs the round-based allocation against a production goal.
// An infinite goal yields the greedy maximum.
func greedyAllocate(supplies []materialSupply, goal float64) (map[domain.Material]float64, int) {
	allocated := make(map[domain.Material]float64, len(supplies))
	for _, s := range supplies {
		allocated[s.material] = 0
	}

	remaining := goal
	rounds := 0
	for remaining > feasibilityGapTolerance && rounds < feasibilityMaxRounds {
		rounds++
		progress := false

		for _, s := range supplies {
			currentTotal := 0.0
			for _, o := range supplies {
				currentTotal += allocated[o.material]
			}

			byShare := s.maxShare*(currentTotal+s.available) - allocated[s.material]
			byAvailability := s.available - allocated[s.material]
			byGap := 0.0
			if s.yield > 0 {
				byGap = remaining / s.yield
			}

			amount := math.Min(byShare, math.Min(byAvailability, byGap))
			if amount > feasibilityMinAlloc {
				allocated[s.material] += amount
				remaining -= amount * s.yield
				progress = true
			}
		}

		if !progress {
			break
		}
	}

	return allocated, rounds
}

func production(supplies []materialSupply, allocated map[domain.Material]float64) float64 {
	total := 0.0
	for _, s := range supplies {
		total += allocated[s.material] * s.yield
	}
	return total
}
