package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"supply-chain-optimizer/internal/domain"
	"supply-chain-optimizer/internal/ports"
)

// OptimizationService is the application entry point used by the HTTP layer.
// Cache and Runs are optional.
type OptimizationService struct {
	Datasets ports.DatasetRepository
	Solver   ports.Solver
	Parser   ports.ScenarioParser
	Cache    ports.SolutionCache
	Runs     ports.RunRepository
	Host     domain.HostInfo
	Defaults ports.SolveOptions
}

type BaselineResult struct {
	Phase1Check *domain.Feasibility
	FullCheck   *domain.Feasibility
	Result      *domain.OptimizationResult
	RunID       int64
	Cached      bool
}

// Feasibility runs the greedy pre-check on the stored dataset.
func (s *OptimizationService) Feasibility(ctx context.Context, excludeSpecial bool) (*domain.Feasibility, error) {
	data, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return CheckFeasibility(data, excludeSpecial)
}

// OptimizeBaseline pre-checks the stored dataset and runs the two-phase
// optimization, reusing a cached result for an identical dataset.
func (s *OptimizationService) OptimizeBaseline(ctx context.Context, opts ports.SolveOptions) (*BaselineResult, error) {
	data, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	opts = s.withDefaults(opts)

	out := &BaselineResult{}
	if out.Phase1Check, err = CheckFeasibility(data, true); err != nil {
		return nil, fmt.Errorf("optimize baseline: feasibility without %s: %w", data.Special(), err)
	}
	if out.FullCheck, err = CheckFeasibility(data, false); err != nil {
		return nil, fmt.Errorf("optimize baseline: feasibility: %w", err)
	}

	out.Result, out.Cached, err = s.optimize(ctx, data, opts)
	if err != nil {
		return nil, fmt.Errorf("optimize baseline: %w", err)
	}

	if !out.Cached {
		out.RunID = s.saveRun(ctx, domain.NewRunRecord(domain.RunBaseline, "Baseline", out.Result, s.Host))
	}
	return out, nil
}

// RunScenario evaluates a what-if scenario against the (possibly cached) baseline.
func (s *OptimizationService) RunScenario(ctx context.Context, req ScenarioRequest, opts ports.SolveOptions) (*ScenarioResult, int64, error) {
	data, err := s.load(ctx)
	if err != nil {
		return nil, 0, err
	}
	opts = s.withDefaults(opts)

	baseline, _, err := s.optimize(ctx, data, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("run scenario: baseline: %w", err)
	}

	runner := &ScenarioRunner{Optimizer: NewOptimizer(s.Solver, opts), Parser: s.Parser}
	res, err := runner.Run(ctx, data, baseline.Final, req)
	if err != nil {
		return nil, 0, err
	}

	id := s.saveRun(ctx, domain.NewRunRecord(domain.RunScenario, res.Name, res.Result, s.Host))
	return res, id, nil
}

// ListRuns returns the most recent persisted runs.
func (s *OptimizationService) ListRuns(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if s.Runs == nil {
		return []domain.RunRecord{}, nil
	}
	runs, err := s.Runs.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

func (s *OptimizationService) load(ctx context.Context) (*domain.Dataset, error) {
	if s.Datasets == nil {
		return nil, errors.New("load dataset: no dataset repository configured")
	}
	data, err := s.Datasets.LoadDataset(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return data, nil
}

func (s *OptimizationService) withDefaults(opts ports.SolveOptions) ports.SolveOptions {
	if opts.TimeLimit <= 0 {
		opts.TimeLimit = s.Defaults.TimeLimit
	}
	if opts.MIPGap <= 0 {
		opts.MIPGap = s.Defaults.MIPGap
	}
	return opts
}

func (s *OptimizationService) optimize(ctx context.Context, data *domain.Dataset, opts ports.SolveOptions) (*domain.OptimizationResult, bool, error) {
	key := Fingerprint(data, opts)

	if s.Cache != nil {
		res, ok, err := s.Cache.Get(ctx, key)
		if err != nil {
			log.Printf("solution cache read failed: %v", err)
		} else if ok {
			log.Printf("solution cache hit key=%s facility=%s", key[:12], res.Facility)
			return res, true, nil
		}
	}

	res, err := NewOptimizer(s.Solver, opts).Optimize(ctx, data)
	if err != nil {
		return nil, false, err
	}

	if s.Cache != nil {
		if err := s.Cache.Put(ctx, key, res); err != nil {
			log.Printf("solution cache write failed: %v", err)
		}
	}
	return res, false, nil
}

// saveRun persists a run summary. Persistence failures are logged, not returned.
func (s *OptimizationService) saveRun(ctx context.Context, rec domain.RunRecord) int64 {
	if s.Runs == nil {
		return 0
	}
	id, err := s.Runs.SaveRun(ctx, rec)
	if err != nil {
		log.Printf("save run failed: kind=%s name=%q err=%v", rec.Kind, rec.ScenarioName, err)
		return 0
	}
	return id
}
