package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"supply-chain-optimizer/internal/domain"
	"supply-chain-optimizer/internal/milp"
	"supply-chain-optimizer/internal/platform/obs"
	"supply-chain-optimizer/internal/ports"
	"time"
)

const (
	DefaultTimeLimit = 300 * time.Second
	DefaultMIPGap    = 0.01
)

// DefaultSolveOptions returns the 300s / 1% gap defaults.
func DefaultSolveOptions() ports.SolveOptions {
	return ports.SolveOptions{TimeLimit: DefaultTimeLimit, MIPGap: DefaultMIPGap}
}

// SolveModel hands a built model to the solver and interprets the termination.
//
// Infeasible models fail with *domain.ModelInfeasibleError, every other
// non-optimal status with *domain.SolverError. Nothing is retried and no
// partial solution is returned.
func SolveModel(
	ctx context.Context,
	solver ports.Solver,
	fm *milp.FacilityModel,
	phase domain.Phase,
	opts ports.SolveOptions,
) (*domain.Solution, *milp.Result, error) {
	res, err := runSolver(ctx, solver, fm, phase, opts)
	if err != nil {
		return nil, nil, err
	}

	sol, err := ExtractSolution(fm, res, phase, opts.MIPGap)
	if err != nil {
		return nil, nil, fmt.Errorf("solve model: %w", err)
	}
	return sol, res, nil
}

func runSolver(
	ctx context.Context,
	solver ports.Solver,
	fm *milp.FacilityModel,
	phase domain.Phase,
	opts ports.SolveOptions,
) (_ *milp.Result, err error) {
	defer obs.Time(ctx, "solver."+string(phase))(&err)

	if solver == nil {
		return nil, errors.New("solve model: solver is nil")
	}

	start := time.Now()
	res, err := solver.Solve(ctx, fm.Model, opts)
	if err != nil {
		return nil, &domain.SolverError{Phase: phase, Status: string(milp.StatusUnknown), Err: err}
	}
	if res == nil {
		return nil, &domain.SolverError{Phase: phase, Status: string(milp.StatusUnknown), Err: errors.New("solver returned no result")}
	}
	if res.RunTime == 0 {
		res.RunTime = time.Since(start)
	}

	switch res.Status {
	case milp.StatusOptimal:
		return res, nil
	case milp.StatusInfeasible:
		return nil, &domain.ModelInfeasibleError{Phase: phase}
	default:
		return nil, &domain.SolverError{Phase: phase, Status: string(res.Status)}
	}
}

// Optimizer runs the two-phase strategy.
//
// Phase 1 (locate) solves without the special material to choose the
// facility on distance-driven costs; Phase 2 (commit) builds a fresh model
// with the full material set and the facility fixed. Each phase builds its
// own model from the same dataset; nothing is mutated between them.
type Optimizer struct {
	Solver  ports.Solver
	Options ports.SolveOptions
}

func NewOptimizer(solver ports.Solver, opts ports.SolveOptions) *Optimizer {
	if opts.TimeLimit <= 0 {
		opts.TimeLimit = DefaultTimeLimit
	}
	if opts.MIPGap < 0 {
		opts.MIPGap = DefaultMIPGap
	}
	return &Optimizer{Solver: solver, Options: opts}
}

// Optimize runs both phases. A forced facility on the dataset skips Phase 1;
// forced ports restrict Phase 2 shipments.
func (o *Optimizer) Optimize(ctx context.Context, data *domain.Dataset) (_ *domain.OptimizationResult, err error) {
	defer obs.Time(ctx, "optimizer.Optimize")(&err)

	out := &domain.OptimizationResult{}

	if data.ForcedFacility != "" {
		if _, ok := data.Site(data.ForcedFacility); !ok {
			return nil, fmt.Errorf("optimize: forced facility %q is not a collection point", data.ForcedFacility)
		}
		out.Facility = data.ForcedFacility
		out.FacilityForced = true
		log.Printf("phase=%s skipped forced_facility=%s", domain.PhaseLocate, out.Facility)
	} else {
		facility, phase1, err := o.Locate(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("optimize: %w", err)
		}
		out.Facility = facility
		out.Phase1 = phase1
	}

	final, err := o.Commit(ctx, data, out.Facility)
	if err != nil {
		return nil, fmt.Errorf("optimize: %w", err)
	}
	out.Final = final

	return out, nil
}

// Locate solves the model without the special material and returns the
// chosen facility along with the Phase 1 solution.
func (o *Optimizer) Locate(ctx context.Context, data *domain.Dataset) (string, *domain.Solution, error) {
	fm, err := milp.BuildFacilityModel(data, milp.BuildOptions{ExcludeSpecial: true})
	if err != nil {
		return "", nil, fmt.Errorf("locate: %w", err)
	}
	log.Printf("phase=%s vars=%d constraints=%d", domain.PhaseLocate, len(fm.Vars), len(fm.Constraints))

	sol, res, err := SolveModel(ctx, o.Solver, fm, domain.PhaseLocate, o.Options)
	if err != nil {
		return "", nil, fmt.Errorf("locate: %w", err)
	}

	facility, err := SelectFacility(fm, res)
	if err != nil {
		return "", nil, fmt.Errorf("locate: %w", err)
	}
	log.Printf("phase=%s facility=%s cost=%.2f dur=%dms", domain.PhaseLocate, facility, sol.Costs.Total, sol.SolveTime.Milliseconds())

	return facility, sol, nil
}

// Commit solves the full model with the facility fixed.
func (o *Optimizer) Commit(ctx context.Context, data *domain.Dataset, facility string) (*domain.Solution, error) {
	fm, err := milp.BuildFacilityModel(data, milp.BuildOptions{
		Facility:     facility,
		AllowedPorts: data.ForcedPorts,
	})
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	log.Printf("phase=%s facility=%s forced_ports=%v vars=%d constraints=%d",
		domain.PhaseCommit, facility, data.ForcedPorts, len(fm.Vars), len(fm.Constraints))

	sol, _, err := SolveModel(ctx, o.Solver, fm, domain.PhaseCommit, o.Options)
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	log.Printf("phase=%s facility=%s ports=%v cost=%.2f dur=%dms",
		domain.PhaseCommit, sol.Facility, sol.SelectedPorts, sol.Costs.Total, sol.SolveTime.Milliseconds())

	return sol, nil
}

// SelectFacility returns the site whose indicator is set. Should the solver
// report more than one, the lowest site id wins so the choice is deterministic.
func SelectFacility(fm *milp.FacilityModel, res *milp.Result) (string, error) {
	var chosen []string
	for _, s := range fm.Sites {
		if res.Value(fm.Y[s]) >= 0.5 {
			chosen = append(chosen, s)
		}
	}
	if len(chosen) == 0 {
		return "", errors.New("select facility: no facility indicator is set")
	}
	if len(chosen) > 1 {
		sort.Strings(chosen)
		log.Printf("select facility: %d sites selected %v, using %s", len(chosen), chosen, chosen[0])
	}
	return chosen[0], nil
}
