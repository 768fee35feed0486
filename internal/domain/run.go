package domain

import "time"

// Host the run was solved on. Solve times are only comparable on the same host.
type HostInfo struct {
	Platform string
	CPUModel string
	MemoryGB uint64
}

type RunKind string

const (
	RunBaseline RunKind = "baseline"
	RunScenario RunKind = "scenario"
)

// Persisted summary of one optimization request.
type RunRecord struct {
	ID             int64
	Kind           RunKind
	ScenarioName   string
	Facility       string
	FacilityForced bool
	SelectedPorts  []string
	TargetTons     float64
	Costs          Costs
	CostPerTon     float64
	SolveTime      time.Duration
	Host           HostInfo
	CreatedAt      time.Time
}

// NewRunRecord summarizes a two-phase result.
func NewRunRecord(kind RunKind, name string, res *OptimizationResult, host HostInfo) RunRecord {
	rec := RunRecord{
		Kind:           kind,
		ScenarioName:   name,
		Facility:       res.Facility,
		FacilityForced: res.FacilityForced,
		Host:           host,
	}
	if s := res.Final; s != nil {
		rec.SelectedPorts = append([]string(nil), s.SelectedPorts...)
		rec.TargetTons = s.TotalFinishedProduct
		rec.Costs = s.Costs
		rec.CostPerTon = s.CostPerTon()
		rec.SolveTime = s.SolveTime
	}
	if res.Phase1 != nil {
		rec.SolveTime += res.Phase1.SolveTime
	}
	return rec
}
