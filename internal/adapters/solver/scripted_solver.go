package solver

import (
	"context"
	"fmt"
	"supply-chain-optimizer/internal/milp"
	"supply-chain-optimizer/internal/ports"
	"sync"
	"time"
)

// Step is one canned answer of a ScriptedSolver. Values are keyed by
// variable name; variables not listed solve to their lower bound.
type Step struct {
	Status  milp.Status
	Values  map[string]float64
	RunTime time.Duration
	Err     error
}

// ScriptedSolver replays configured answers in order, one per Solve call,
// and records the models it was handed.
type ScriptedSolver struct {
	mu     sync.Mutex
	steps  []Step
	Models []*milp.Model
	Opts   []ports.SolveOptions
}

func NewScriptedSolver(steps ...Step) *ScriptedSolver {
	return &ScriptedSolver{steps: steps}
}

func (s *ScriptedSolver) Solve(ctx context.Context, model *milp.Model, opts ports.SolveOptions) (*milp.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	call := len(s.Models)
	s.Models = append(s.Models, model)
	s.Opts = append(s.Opts, opts)

	if call >= len(s.steps) {
		return nil, fmt.Errorf("scripted solve %s: no step for call %d", model.Name, call+1)
	}
	step := s.steps[call]
	if step.Err != nil {
		return nil, step.Err
	}

	res := &milp.Result{Status: step.Status, RunTime: step.RunTime}
	if step.Values == nil {
		return res, nil
	}

	byName := make(map[string]milp.VarID, len(model.Vars))
	for i, v := range model.Vars {
		byName[v.Name] = milp.VarID(i)
	}

	res.Values = make([]float64, len(model.Vars))
	for i, v := range model.Vars {
		res.Values[i] = v.Lower
	}
	for name, x := range step.Values {
		id, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("scripted solve %s: unknown variable %q", model.Name, name)
		}
		res.Values[id] = x
	}
	res.Objective = milp.Evaluate(model.Objective, res.Values)

	return res, nil
}

// Calls reports how many times Solve was invoked.
func (s *ScriptedSolver) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Models)
}
