package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInsufficientMaterial = errors.New("insufficient raw material")
	ErrModelInfeasible      = errors.New("model infeasible")
	ErrSolver               = errors.New("solver error")
	ErrInvalidModification  = errors.New("invalid modification")
)

// Feasibility pre-check failure. Recoverable by adjusting inputs.
type InsufficientMaterialError struct {
	Target         float64
	Achievable     float64
	Deficit        float64
	TotalAvailable float64
	ExcludeSpecial bool
	Materials      []MaterialDiagnostic
}

func (e *InsufficientMaterialError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "insufficient raw material: target=%.2f achievable=%.2f deficit=%.2f",
		e.Target, e.Achievable, e.Deficit)
	if e.Target > 0 {
		fmt.Fprintf(&b, " (%.1f%% short)", e.Deficit/e.Target*100)
	}
	for _, d := range e.Materials {
		fmt.Fprintf(&b, "; %s available=%.2f yield=%.1f%% max_share=%.1f%%",
			d.Material, d.Available, d.YieldFactor*100, d.MaxConsumption*100)
	}
	return b.String()
}

func (e *InsufficientMaterialError) Unwrap() error { return ErrInsufficientMaterial }

// The MILP has no feasible point.
type ModelInfeasibleError struct {
	Phase Phase
}

func (e *ModelInfeasibleError) Error() string {
	return fmt.Sprintf("model infeasible (phase=%s): check material volumes against the target, yield and consumption limits", e.Phase)
}

func (e *ModelInfeasibleError) Unwrap() error { return ErrModelInfeasible }

// Non-optimal solver termination, carrying the raw status.
type SolverError struct {
	Phase  Phase
	Status string
	Err    error
}

func (e *SolverError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("solver error (phase=%s status=%s): %v", e.Phase, e.Status, e.Err)
	}
	return fmt.Sprintf("solver terminated with status %s (phase=%s)", e.Status, e.Phase)
}

func (e *SolverError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrSolver, e.Err}
	}
	return []error{ErrSolver}
}

// A what-if edit that cannot be applied.
type InvalidModificationError struct {
	Index        int
	Modification Modification
	Reason       string
}

func (e *InvalidModificationError) Error() string {
	name := e.Modification.Description
	if name == "" {
		name = fmt.Sprintf("%s/%s", e.Modification.ParameterType, e.Modification.Action)
	}
	return fmt.Sprintf("invalid modification #%d (%s): %s", e.Index+1, name, e.Reason)
}

func (e *InvalidModificationError) Unwrap() error { return ErrInvalidModification }
