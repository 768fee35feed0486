package dto

import (
	"supply-chain-optimizer/internal/domain"
	"time"
)

type HostResponse struct {
	Platform string `json:"platform"`
	CPUModel string `json:"cpu_model"`
	MemoryGB uint64 `json:"memory_gb"`
}

type RunResponse struct {
	ID               int64         `json:"id"`
	Kind             string        `json:"kind"`
	ScenarioName     string        `json:"scenario_name"`
	Facility         string        `json:"facility"`
	FacilityForced   bool          `json:"facility_forced"`
	SelectedPorts    []string      `json:"selected_ports"`
	TargetTons       float64       `json:"target_tons"`
	TotalCost        float64       `json:"total_cost"`
	CostPerTon       float64       `json:"cost_per_ton"`
	Costs            CostsResponse `json:"costs"`
	SolveTimeSeconds float64       `json:"solve_time_seconds"`
	Host             HostResponse  `json:"host"`
	CreatedAt        time.Time     `json:"created_at"`
}

type ListRunsResponse struct {
	Runs []RunResponse `json:"runs"`
}

func NewListRunsResponse(runs []domain.RunRecord) ListRunsResponse {
	res := ListRunsResponse{Runs: make([]RunResponse, 0, len(runs))}
	for _, r := range runs {
		res.Runs = append(res.Runs, RunResponse{
			ID:               r.ID,
			Kind:             string(r.Kind),
			ScenarioName:     r.ScenarioName,
			Facility:         r.Facility,
			FacilityForced:   r.FacilityForced,
			SelectedPorts:    append([]string{}, r.SelectedPorts...),
			TargetTons:       r.TargetTons,
			TotalCost:        r.Costs.Total,
			CostPerTon:       r.CostPerTon,
			Costs:            CostsResponse(r.Costs),
			SolveTimeSeconds: r.SolveTime.Seconds(),
			Host:             HostResponse(r.Host),
			CreatedAt:        r.CreatedAt,
		})
	}
	return res
}
