package solver

import (
	"context"
	"errors"
	"fmt"
	"supply-chain-optimizer/internal/milp"
	"supply-chain-optimizer/internal/ports"
	"time"

	"github.com/nextmv-io/sdk/mip"
)

const DefaultProvider = "highs"

// NextmvSolver solves milp models through the nextmv mip SDK.
type NextmvSolver struct {
	provider mip.SolverProvider
}

func NewNextmvSolver(provider string) (*NextmvSolver, error) {
	if provider == "" {
		provider = DefaultProvider
	}
	return &NextmvSolver{provider: mip.SolverProvider(provider)}, nil
}

// Solve translates the arena, runs the provider and maps the termination
// state back onto milp statuses. The provider call itself is not
// cancellable, so ctx only bounds the time limit and gates the start.
func (s *NextmvSolver) Solve(ctx context.Context, model *milp.Model, opts ports.SolveOptions) (*milp.Result, error) {
	if model == nil {
		return nil, errors.New("nextmv solve: nil model")
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("nextmv solve %s: %w", model.Name, err)
	}
	limit, err := timeLimit(ctx, opts.TimeLimit)
	if err != nil {
		return nil, fmt.Errorf("nextmv solve %s: %w", model.Name, err)
	}

	m, vars := translate(model)

	solver, err := mip.NewSolver(s.provider, m)
	if err != nil {
		return nil, fmt.Errorf("nextmv solve %s: create %s solver: %w", model.Name, s.provider, err)
	}

	solveOpts, err := solveOptions(limit, opts.MIPGap)
	if err != nil {
		return nil, fmt.Errorf("nextmv solve %s: %w", model.Name, err)
	}

	start := time.Now()
	solution, err := solver.Solve(solveOpts)
	if err != nil {
		return nil, fmt.Errorf("nextmv solve %s: %w", model.Name, err)
	}

	res := &milp.Result{Status: status(solution), RunTime: time.Since(start)}
	if solution == nil {
		return res, nil
	}
	if rt := solution.RunTime(); rt > 0 {
		res.RunTime = rt
	}
	if solution.HasValues() {
		res.Objective = solution.ObjectiveValue()
		res.Values = make([]float64, len(vars))
		for i, v := range vars {
			res.Values[i] = solution.Value(v)
		}
	}
	return res, nil
}

// translate builds the nextmv model. Fixed binaries become equality rows since
// mip.Bool carries no bounds; >= rows are negated into <= rows.
func translate(model *milp.Model) (mip.Model, []mip.Var) {
	m := mip.NewModel()
	vars := make([]mip.Var, len(model.Vars))

	for i, v := range model.Vars {
		if v.Kind == milp.Binary {
			b := m.NewBool()
			vars[i] = b
			if v.Fixed() {
				m.NewConstraint(mip.Equal, v.Lower).NewTerm(1, b)
			}
			continue
		}
		vars[i] = m.NewFloat(v.Lower, v.Upper)
	}

	for _, c := range model.Constraints {
		sense, sign := mip.LessThanOrEqual, 1.0
		switch c.Sense {
		case milp.Equal:
			sense = mip.Equal
		case milp.GreaterOrEqual:
			sign = -1
		}
		row := m.NewConstraint(sense, sign*c.RHS)
		for _, t := range c.Terms {
			row.NewTerm(sign*t.Coef, vars[t.Var])
		}
	}

	m.Objective().SetMinimize()
	for _, t := range model.Objective {
		m.Objective().NewTerm(t.Coef, vars[t.Var])
	}

	return m, vars
}

// timeLimit caps the configured limit by the ctx deadline. Zero means no
// limit. A deadline that has already passed is reported instead of being
// turned into a non-positive limit.
func timeLimit(ctx context.Context, configured time.Duration) (time.Duration, error) {
	limit := configured
	if deadline, ok := ctx.Deadline(); ok {
		left := time.Until(deadline)
		if left <= 0 {
			return 0, fmt.Errorf("time limit: %w", context.DeadlineExceeded)
		}
		if limit <= 0 || left < limit {
			limit = left
		}
	}
	if limit < 0 {
		limit = 0
	}
	return limit, nil
}

func solveOptions(limit time.Duration, gap float64) (mip.SolveOptions, error) {
	o := mip.NewSolveOptions()

	if limit > 0 {
		if err := o.SetMaximumDuration(limit); err != nil {
			return nil, fmt.Errorf("set time limit %s: %w", limit, err)
		}
	}
	if err := o.SetMIPGapRelative(gap); err != nil {
		return nil, fmt.Errorf("set mip gap %g: %w", gap, err)
	}
	o.SetVerbosity(mip.Off)

	return o, nil
}

func status(solution mip.Solution) milp.Status {
	switch {
	case solution == nil:
		return milp.StatusUnknown
	case solution.IsOptimal():
		return milp.StatusOptimal
	case solution.IsInfeasible():
		return milp.StatusInfeasible
	case solution.IsUnbounded():
		return milp.StatusUnbounded
	case solution.IsTimeOut():
		return milp.StatusTimeLimit
	case solution.HasValues():
		return milp.StatusSuboptimal
	}
	return milp.StatusUnknown
}
