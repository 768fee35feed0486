// Package milp holds a solver-agnostic mixed-integer linear model.
//
// A Model is a materialized arena: variables and constraints are appended in
// order and addressed by index, so a built model can be inspected
// structurally (counts, coefficients, bounds) without a solver attached.
// Solver adapters translate it into their own representation.
package milp

import (
	"fmt"
	"math"
	"time"
)

// VarKind distinguishes continuous from binary variables.
type VarKind int

const (
	Continuous VarKind = iota
	Binary
)

func (k VarKind) String() string {
	if k == Binary {
		return "binary"
	}
	return "continuous"
}

// Sense of a linear constraint.
type Sense int

const (
	LessOrEqual Sense = iota
	Equal
	GreaterOrEqual
)

func (s Sense) String() string {
	switch s {
	case LessOrEqual:
		return "<="
	case Equal:
		return "=="
	case GreaterOrEqual:
		return ">="
	}
	return "?"
}

// VarID indexes Model.Vars.
type VarID int

type Var struct {
	Name  string
	Kind  VarKind
	Lower float64
	Upper float64
}

// Fixed reports whether both bounds coincide.
func (v Var) Fixed() bool { return v.Lower == v.Upper }

type Term struct {
	Var  VarID
	Coef float64
}

// Constraint is sum(Terms) <Sense> RHS. Family groups rows generated by the
// same rule (e.g. "volume_availability").
type Constraint struct {
	Name   string
	Family string
	Terms  []Term
	Sense  Sense
	RHS    float64
}

type Model struct {
	Name        string
	Vars        []Var
	Constraints []Constraint
	Objective   []Term
}

func NewModel(name string) *Model {
	return &Model{Name: name}
}

// AddVar appends a variable. Binary variables are clamped to [0, 1].
func (m *Model) AddVar(name string, kind VarKind, lower, upper float64) VarID {
	if kind == Binary {
		lower = math.Max(lower, 0)
		upper = math.Min(upper, 1)
	}
	m.Vars = append(m.Vars, Var{Name: name, Kind: kind, Lower: lower, Upper: upper})
	return VarID(len(m.Vars) - 1)
}

// AddConstraint appends a row. Zero coefficients are kept so that big-M rows
// with M=0 remain visible.
func (m *Model) AddConstraint(family, name string, sense Sense, rhs float64, terms ...Term) int {
	m.Constraints = append(m.Constraints, Constraint{
		Name:   name,
		Family: family,
		Terms:  terms,
		Sense:  sense,
		RHS:    rhs,
	})
	return len(m.Constraints) - 1
}

// AddObjectiveTerm adds coef*v to the minimized objective. Zero terms are skipped.
func (m *Model) AddObjectiveTerm(v VarID, coef float64) {
	if coef == 0 {
		return
	}
	m.Objective = append(m.Objective, Term{Var: v, Coef: coef})
}

// Family returns the constraints generated by one rule, in insertion order.
func (m *Model) Family(family string) []Constraint {
	var out []Constraint
	for _, c := range m.Constraints {
		if c.Family == family {
			out = append(out, c)
		}
	}
	return out
}

// Evaluate computes sum(coef*value) for terms against a value vector.
func Evaluate(terms []Term, values []float64) float64 {
	total := 0.0
	for _, t := range terms {
		total += t.Coef * values[t.Var]
	}
	return total
}

// Check verifies that values satisfy bounds and constraints within tol and
// returns the first violation found.
func (m *Model) Check(values []float64, tol float64) error {
	if len(values) != len(m.Vars) {
		return fmt.Errorf("check model: got %d values for %d variables", len(values), len(m.Vars))
	}
	for i, v := range m.Vars {
		x := values[i]
		if x < v.Lower-tol || x > v.Upper+tol {
			return fmt.Errorf("check model: %s=%v outside [%v, %v]", v.Name, x, v.Lower, v.Upper)
		}
		if v.Kind == Binary && math.Abs(x-math.Round(x)) > tol {
			return fmt.Errorf("check model: binary %s=%v is fractional", v.Name, x)
		}
	}
	for _, c := range m.Constraints {
		lhs := Evaluate(c.Terms, values)
		ok := true
		switch c.Sense {
		case LessOrEqual:
			ok = lhs <= c.RHS+tol
		case Equal:
			ok = math.Abs(lhs-c.RHS) <= tol
		case GreaterOrEqual:
			ok = lhs >= c.RHS-tol
		}
		if !ok {
			return fmt.Errorf("check model: %s violated: %v %s %v", c.Name, lhs, c.Sense, c.RHS)
		}
	}
	return nil
}

// Termination status reported by a solver.
type Status string

const (
	StatusOptimal          Status = "optimal"
	StatusInfeasible       Status = "infeasible"
	StatusUnbounded        Status = "unbounded"
	StatusTimeLimit        Status = "time_limit"
	StatusSuboptimal       Status = "suboptimal"
	StatusNumericalFailure Status = "numerical_failure"
	StatusUnknown          Status = "unknown"
)

// Result is the raw output of a solve. Values is indexed by VarID and is
// only meaningful when the status carries a solution.
type Result struct {
	Status    Status
	Objective float64
	Values    []float64
	RunTime   time.Duration
}

// Value returns the value of v, or 0 when out of range.
func (r *Result) Value(v VarID) float64 {
	if int(v) < 0 || int(v) >= len(r.Values) {
		return 0
	}
	return r.Values[v]
}
