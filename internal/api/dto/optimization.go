package dto

import (
	"sort"
	"supply-chain-optimizer/internal/domain"
)

type FeasibilityRequest struct {
	ExcludeSpecial bool `json:"exclude_special"`
}

type FeasibilityResponse struct {
	Feasible       bool               `json:"feasible"`
	ExcludeSpecial bool               `json:"exclude_special"`
	Target         float64            `json:"target_tons"`
	Achievable     float64            `json:"achievable_tons"`
	Margin         float64            `json:"margin_tons"`
	TotalAvailable float64            `json:"total_available_tons"`
	Allocation     map[string]float64 `json:"allocation"`
	Rounds         int                `json:"rounds"`
}

type OptimizeRequest struct {
	TimeLimitSeconds float64 `json:"time_limit_seconds"`
	MIPGap           float64 `json:"mip_gap"`
}

type ProcurementLine struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Material    string  `json:"material"`
	Tons        float64 `json:"tons"`
}

type ShipmentLine struct {
	Site string  `json:"site"`
	Port string  `json:"port"`
	Tons float64 `json:"tons"`
}

type CostsResponse struct {
	RawMaterial     float64 `json:"raw_material"`
	InboundFreight  float64 `json:"inbound_freight"`
	OutboundFreight float64 `json:"outbound_freight"`
	PortOperational float64 `json:"port_operational"`
	SeaFreight      float64 `json:"sea_freight"`
	Total           float64 `json:"total"`

	RawMaterialPerTon     float64 `json:"raw_material_per_ton"`
	InboundFreightPerTon  float64 `json:"inbound_freight_per_ton"`
	OutboundFreightPerTon float64 `json:"outbound_freight_per_ton"`
	PortOperationalPerTon float64 `json:"port_operational_per_ton"`
	SeaFreightPerTon      float64 `json:"sea_freight_per_ton"`
}

type SolutionResponse struct {
	Phase                string             `json:"phase"`
	Facility             string             `json:"facility"`
	SelectedPorts        []string           `json:"selected_ports"`
	TotalFinishedProduct float64            `json:"total_finished_product"`
	TotalRawMaterial     float64            `json:"total_raw_material"`
	RawMaterialByType    map[string]float64 `json:"raw_material_by_type"`
	RawMaterialBySource  map[string]float64 `json:"raw_material_by_source"`
	Procurement          []ProcurementLine  `json:"procurement"`
	PortShipments        []ShipmentLine     `json:"port_shipments"`
	Costs                CostsResponse      `json:"costs"`
	CostPerTon           float64            `json:"cost_per_ton"`
	AverageYield         float64            `json:"average_yield"`
	ObjectiveValue       float64            `json:"objective_value"`
	SolveTimeSeconds     float64            `json:"solve_time_seconds"`
	MIPGap               float64            `json:"mip_gap"`
}

type ResultResponse struct {
	Facility       string            `json:"facility"`
	FacilityForced bool              `json:"facility_forced"`
	Phase1         *SolutionResponse `json:"phase1,omitempty"`
	Final          *SolutionResponse `json:"final"`
}

type OptimizeResponse struct {
	RunID       int64               `json:"run_id,omitempty"`
	Cached      bool                `json:"cached"`
	Phase1Check FeasibilityResponse `json:"phase1_feasibility"`
	FullCheck   FeasibilityResponse `json:"full_feasibility"`
	Result      ResultResponse      `json:"result"`
}

func NewFeasibilityResponse(f *domain.Feasibility) FeasibilityResponse {
	res := FeasibilityResponse{
		Feasible:       true,
		ExcludeSpecial: f.ExcludeSpecial,
		Target:         f.Target,
		Achievable:     f.Achievable,
		Margin:         f.Margin,
		TotalAvailable: f.TotalAvailable,
		Allocation:     make(map[string]float64, len(f.Allocation)),
		Rounds:         f.Rounds,
	}
	for m, v := range f.Allocation {
		res.Allocation[string(m)] = v
	}
	return res
}

func NewSolutionResponse(s *domain.Solution) *SolutionResponse {
	if s == nil {
		return nil
	}
	res := &SolutionResponse{
		Phase:                string(s.Phase),
		Facility:             s.Facility,
		SelectedPorts:        append([]string{}, s.SelectedPorts...),
		TotalFinishedProduct: s.TotalFinishedProduct,
		TotalRawMaterial:     s.TotalRawMaterial,
		RawMaterialByType:    make(map[string]float64, len(s.RawMaterialByType)),
		RawMaterialBySource:  make(map[string]float64, len(s.RawMaterialBySource)),
		Procurement:          make([]ProcurementLine, 0, len(s.ProcurementDetails)),
		PortShipments:        make([]ShipmentLine, 0, len(s.PortShipments)),
		Costs:                CostsResponse(s.Costs),
		CostPerTon:           s.CostPerTon(),
		AverageYield:         s.AverageYield,
		ObjectiveValue:       s.ObjectiveValue,
		SolveTimeSeconds:     s.SolveTime.Seconds(),
		MIPGap:               s.MIPGap,
	}
	for m, v := range s.RawMaterialByType {
		res.RawMaterialByType[m.Label()] = v
	}
	for site, v := range s.RawMaterialBySource {
		res.RawMaterialBySource[site] = v
	}
	for k, v := range s.ProcurementDetails {
		res.Procurement = append(res.Procurement, ProcurementLine{
			Origin:      k.Origin,
			Destination: k.Destination,
			Material:    string(k.Material),
			Tons:        v,
		})
	}
	sort.Slice(res.Procurement, func(i, j int) bool {
		a, b := res.Procurement[i], res.Procurement[j]
		if a.Origin != b.Origin {
			return a.Origin < b.Origin
		}
		if a.Destination != b.Destination {
			return a.Destination < b.Destination
		}
		return a.Material < b.Material
	})
	for k, v := range s.PortShipments {
		res.PortShipments = append(res.PortShipments, ShipmentLine{Site: k.Site, Port: k.Port, Tons: v})
	}
	sort.Slice(res.PortShipments, func(i, j int) bool {
		a, b := res.PortShipments[i], res.PortShipments[j]
		if a.Site != b.Site {
			return a.Site < b.Site
		}
		return a.Port < b.Port
	})
	return res
}

func NewResultResponse(r *domain.OptimizationResult) ResultResponse {
	return ResultResponse{
		Facility:       r.Facility,
		FacilityForced: r.FacilityForced,
		Phase1:         NewSolutionResponse(r.Phase1),
		Final:          NewSolutionResponse(r.Final),
	}
}
