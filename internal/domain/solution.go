package domain

import (
	"fmt"
	"strings"
	"time"
)

// Phase of the two-phase strategy that produced a solution.
type Phase string

const (
	PhaseLocate Phase = "locate"
	PhaseCommit Phase = "commit"
)

// (origin, destination, material) key of a procurement flow.
type ProcurementKey struct {
	Origin      string
	Destination string
	Material    Material
}

// Five-way cost decomposition in absolute ($) and per-ton ($/t) terms.
//
// Raw material and inbound freight are per ton of raw material consumed; the
// port-side components are per ton of finished product.
type Costs struct {
	RawMaterial     float64
	InboundFreight  float64
	OutboundFreight float64
	PortOperational float64
	SeaFreight      float64
	Total           float64

	RawMaterialPerTon     float64
	InboundFreightPerTon  float64
	OutboundFreightPerTon float64
	PortOperationalPerTon float64
	SeaFreightPerTon      float64
}

// Solution is the immutable result of one solve.
// Field semantics are the same for both phases.
type Solution struct {
	Phase                Phase
	Facility             string
	SelectedPorts        []string
	TotalFinishedProduct float64
	TotalRawMaterial     float64
	RawMaterialByType    map[Material]float64
	RawMaterialBySource  map[string]float64
	ProcurementDetails   map[ProcurementKey]float64
	PortShipments        map[SitePort]float64
	Costs                Costs
	AverageYield         float64
	ObjectiveValue       float64
	SolveTime            time.Duration
	MIPGap               float64
}

// CostPerTon is total cost divided by finished product.
func (s *Solution) CostPerTon() float64 {
	if s.TotalFinishedProduct <= 0 {
		return 0
	}
	return s.Costs.Total / s.TotalFinishedProduct
}

// MarshalText encodes the key as "origin|destination|material" so solutions
// can be serialized as JSON maps.
func (k ProcurementKey) MarshalText() ([]byte, error) {
	return []byte(k.Origin + "|" + k.Destination + "|" + string(k.Material)), nil
}

func (k *ProcurementKey) UnmarshalText(b []byte) error {
	parts := strings.Split(string(b), "|")
	if len(parts) != 3 {
		return fmt.Errorf("procurement key %q: want origin|destination|material", string(b))
	}
	m, err := ParseMaterial(parts[2])
	if err != nil {
		return fmt.Errorf("procurement key %q: %w", string(b), err)
	}
	*k = ProcurementKey{Origin: parts[0], Destination: parts[1], Material: m}
	return nil
}

// MarshalText encodes the pair as "site|port".
func (sp SitePort) MarshalText() ([]byte, error) {
	return []byte(sp.Site + "|" + sp.Port), nil
}

func (sp *SitePort) UnmarshalText(b []byte) error {
	site, port, ok := strings.Cut(string(b), "|")
	if !ok {
		return fmt.Errorf("site/port key %q: want site|port", string(b))
	}
	*sp = SitePort{Site: site, Port: port}
	return nil
}

// Outcome of the two-phase strategy.
// Phase1 is nil when the facility was forced and the locate phase skipped.
type OptimizationResult struct {
	Facility       string
	FacilityForced bool
	Phase1         *Solution
	Final          *Solution
}
