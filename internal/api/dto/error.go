package dto

import "supply-chain-optimizer/internal/domain"

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

type MaterialDiagnosticResponse struct {
	Material       string  `json:"material"`
	Available      float64 `json:"available_tons"`
	YieldFactor    float64 `json:"yield_factor"`
	MaxConsumption float64 `json:"max_consumption"`
	Allocated      float64 `json:"allocated_tons"`
}

type InsufficientMaterialDetails struct {
	Target         float64                      `json:"target_tons"`
	Achievable     float64                      `json:"achievable_tons"`
	Deficit        float64                      `json:"deficit_tons"`
	TotalAvailable float64                      `json:"total_available_tons"`
	ExcludeSpecial bool                         `json:"exclude_special"`
	Materials      []MaterialDiagnosticResponse `json:"materials"`
}

func NewInsufficientMaterialDetails(e *domain.InsufficientMaterialError) InsufficientMaterialDetails {
	d := InsufficientMaterialDetails{
		Target:         e.Target,
		Achievable:     e.Achievable,
		Deficit:        e.Deficit,
		TotalAvailable: e.TotalAvailable,
		ExcludeSpecial: e.ExcludeSpecial,
		Materials:      make([]MaterialDiagnosticResponse, 0, len(e.Materials)),
	}
	for _, m := range e.Materials {
		d.Materials = append(d.Materials, MaterialDiagnosticResponse{
			Material:       string(m.Material),
			Available:      m.Available,
			YieldFactor:    m.YieldFactor,
			MaxConsumption: m.MaxConsumption,
			Allocated:      m.Allocated,
		})
	}
	return d
}
