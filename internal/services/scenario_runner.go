package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"supply-chain-optimizer/internal/domain"
	"supply-chain-optimizer/internal/platform/obs"
	"supply-chain-optimizer/internal/ports"
)

// ErrScenarioRequest marks scenario requests that cannot be evaluated as given.
var ErrScenarioRequest = errors.New("invalid scenario request")

// ScenarioRequest carries either structured modifications or a free-text
// question for the language service. Modifications take precedence.
type ScenarioRequest struct {
	Name          string
	Question      string
	Modifications []domain.Modification
}

type ScenarioResult struct {
	Name          string
	Explanation   string
	Modifications []domain.Modification
	Phase1Check   *domain.Feasibility
	FullCheck     *domain.Feasibility
	Result        *domain.OptimizationResult
	Comparison    Comparison
}

// ScenarioRunner evaluates what-if scenarios against a fixed baseline.
// Scenarios run one at a time; each works on its own copy of the dataset.
type ScenarioRunner struct {
	Optimizer *Optimizer
	Parser    ports.ScenarioParser
}

// Run applies the scenario, re-checks feasibility for both material sets and
// re-runs the two-phase optimization.
func (r *ScenarioRunner) Run(
	ctx context.Context,
	baseline *domain.Dataset,
	baselineSolution *domain.Solution,
	req ScenarioRequest,
) (*ScenarioResult, error) {
	if baseline == nil || baselineSolution == nil {
		return nil, errors.New("run scenario: baseline dataset and solution are required")
	}

	out := &ScenarioResult{Name: req.Name, Modifications: req.Modifications}

	if len(out.Modifications) == 0 {
		q := strings.TrimSpace(req.Question)
		if q == "" {
			return nil, fmt.Errorf("run scenario: %w: either modifications or a question is required", ErrScenarioRequest)
		}
		if r.Parser == nil {
			return nil, fmt.Errorf("run scenario: %w: no language service configured for questions", ErrScenarioRequest)
		}
		parsed, err := r.Parser.Parse(ctx, q, domain.NewScenarioContext(baseline, baselineSolution))
		if err != nil {
			return nil, fmt.Errorf("run scenario: parse question: %w", err)
		}
		if len(parsed.Modifications) == 0 {
			return nil, fmt.Errorf("run scenario: %w: no modifications identified, rephrase the question", ErrScenarioRequest)
		}
		out.Modifications = parsed.Modifications
		out.Explanation = parsed.Explanation
		if out.Name == "" {
			out.Name = parsed.ScenarioName
		}
	}
	if out.Name == "" {
		out.Name = "What-If Scenario"
	}

	ctx = obs.WithScenario(ctx, out.Name)

	data, err := ApplyModifications(baseline, out.Modifications)
	if err != nil {
		return nil, fmt.Errorf("run scenario: %w", err)
	}

	out.Phase1Check, err = CheckFeasibility(data, true)
	if err != nil {
		return nil, fmt.Errorf("run scenario: feasibility without %s: %w", data.Special(), err)
	}
	out.FullCheck, err = CheckFeasibility(data, false)
	if err != nil {
		return nil, fmt.Errorf("run scenario: feasibility: %w", err)
	}

	out.Result, err = r.Optimizer.Optimize(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("run scenario: %w", err)
	}
	out.Comparison = CompareSolutions(baselineSolution, out.Result.Final)

	log.Printf("scenario=%q facility=%s cost_delta=%.2f (%.1f%%)",
		out.Name, out.Result.Facility, out.Comparison.TotalDelta.Delta, out.Comparison.TotalDelta.Percent)

	return out, nil
}
