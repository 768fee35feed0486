package dto

import (
	"supply-chain-optimizer/internal/domain"
	"supply-chain-optimizer/internal/services"
)

type ScenarioRequest struct {
	Name             string                `json:"name"`
	Question         string                `json:"question"`
	Modifications    []domain.Modification `json:"modifications"`
	TimeLimitSeconds float64               `json:"time_limit_seconds"`
	MIPGap           float64               `json:"mip_gap"`
}

type CostDeltaResponse struct {
	Component string  `json:"component"`
	Baseline  float64 `json:"baseline"`
	Scenario  float64 `json:"scenario"`
	Delta     float64 `json:"delta"`
	Percent   float64 `json:"percent"`
}

type ComparisonResponse struct {
	BaselineFacility string              `json:"baseline_facility"`
	ScenarioFacility string              `json:"scenario_facility"`
	FacilityChanged  bool                `json:"facility_changed"`
	PortsAdded       []string            `json:"ports_added"`
	PortsRemoved     []string            `json:"ports_removed"`
	Total            CostDeltaResponse   `json:"total"`
	CostPerTonDelta  float64             `json:"cost_per_ton_delta"`
	ProductionDelta  float64             `json:"production_delta"`
	Components       []CostDeltaResponse `json:"components"`
}

type ScenarioResponse struct {
	RunID         int64                 `json:"run_id,omitempty"`
	Name          string                `json:"name"`
	Explanation   string                `json:"explanation,omitempty"`
	Modifications []domain.Modification `json:"modifications"`
	Phase1Check   FeasibilityResponse   `json:"phase1_feasibility"`
	FullCheck     FeasibilityResponse   `json:"full_feasibility"`
	Result        ResultResponse        `json:"result"`
	Comparison    ComparisonResponse    `json:"comparison"`
}

func NewScenarioResponse(res *services.ScenarioResult, runID int64) ScenarioResponse {
	c := res.Comparison
	out := ScenarioResponse{
		RunID:         runID,
		Name:          res.Name,
		Explanation:   res.Explanation,
		Modifications: res.Modifications,
		Phase1Check:   NewFeasibilityResponse(res.Phase1Check),
		FullCheck:     NewFeasibilityResponse(res.FullCheck),
		Result:        NewResultResponse(res.Result),
		Comparison: ComparisonResponse{
			BaselineFacility: c.BaselineFacility,
			ScenarioFacility: c.ScenarioFacility,
			FacilityChanged:  c.FacilityChanged,
			PortsAdded:       c.PortsAdded,
			PortsRemoved:     c.PortsRemoved,
			Total:            CostDeltaResponse(c.TotalDelta),
			CostPerTonDelta:  c.CostPerTonDelta,
			ProductionDelta:  c.ProductionDelta,
			Components:       make([]CostDeltaResponse, 0, len(c.Components)),
		},
	}
	for _, d := range c.Components {
		out.Comparison.Components = append(out.Comparison.Components, CostDeltaResponse(d))
	}
	return out
}
