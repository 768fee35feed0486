package ports

import (
	"context"
	"supply-chain-optimizer/internal/milp"
	"time"
)

// Solver tuning knobs. They belong to the call, not to the engine.
type SolveOptions struct {
	TimeLimit time.Duration
	MIPGap    float64
}

// Contract for an external MILP solver.
type Solver interface {
	// Solve the model and report the termination status. A non-nil error
	// means the solver could not run at all.
	Solve(ctx context.Context, model *milp.Model, opts SolveOptions) (*milp.Result, error)
}
