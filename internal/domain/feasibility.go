package domain

// Result of the greedy feasibility pre-check.
//
// Achievable is a conservative lower bound on production, not the LP optimum:
// a rejection does not prove the MILP infeasible.
type Feasibility struct {
	Target         float64
	Achievable     float64
	Margin         float64
	TotalAvailable float64
	Allocation     map[Material]float64
	Rounds         int
	ExcludeSpecial bool
}

// Per-material diagnostic attached to an insufficient-material failure.
type MaterialDiagnostic struct {
	Material       Material
	Available      float64
	YieldFactor    float64
	MaxConsumption float64
	Allocated      float64
}
