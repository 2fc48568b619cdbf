// Package nlp is the boundary to a nonlinear programming solver. A Problem
// collects bounded decision variables, equality and inequality constraints
// over those variables, and a scalar objective; a Solver returns either a
// value for every variable or an infeasibility signal. Callers never depend
// on a concrete numerical library, only on this package, so the backend can
// be swapped without touching the physics that declares the problem.
package nlp

import (
	"errors"
	"fmt"
	"math"
)

// ErrInfeasible is returned by a Solver which could not drive all
// constraints below its tolerance. Callers are expected to branch on it:
// "no solution exists within these bounds" is a reportable outcome.
var ErrInfeasible = errors.New("nlp: no feasible solution found")

// Point is a full assignment of the problem variables.
type Point []float64

// Func is a scalar function of a candidate point.
type Func func(x Point) float64

// Var is a handle on a scalar decision variable.
type Var struct {
	idx int
}

// Val returns the value of this variable at x.
func (v Var) Val(x Point) float64 { return x[v.idx] }

// Vec is a handle on a contiguous vector of decision variables.
type Vec struct {
	idx, n int
}

// Len returns the number of components of the vector.
func (v Vec) Len() int { return v.n }

// Val returns the i-th component of the vector at x.
func (v Vec) Val(x Point, i int) float64 {
	if i < 0 || i >= v.n {
		panic(fmt.Sprintf("nlp: component %d out of range [0,%d)", i, v.n))
	}
	return x[v.idx+i]
}

// ConstraintKind discriminates equality from inequality constraints.
type ConstraintKind uint8

const (
	// Equal constrains F(x) == 0.
	Equal ConstraintKind = iota
	// AtMost constrains F(x) <= 0.
	AtMost
)

// Constraint is a single algebraic constraint over the problem variables.
// Scale is the characteristic magnitude of F; the solver works on F/Scale so
// that constraints expressed in different physical units (kilograms, joules)
// converge under a single tolerance. A zero Scale means 1.
type Constraint struct {
	Name  string
	Kind  ConstraintKind
	F     Func
	Scale float64
}

// Problem is a set of bounded variables, constraints and one objective.
// It is purely declarative: building a Problem performs no numerics.
type Problem struct {
	names []string
	init  []float64
	lower []float64
	upper []float64
	cons  []Constraint
	obj   Func
}

// NewProblem returns an empty problem.
func NewProblem() *Problem {
	return &Problem{}
}

// Variable declares a scalar variable with an initial guess and bounds.
// It panics if the bounds are inverted or the guess lies outside them, as
// that is a programming error in the formulation.
func (p *Problem) Variable(name string, init, lower, upper float64) Var {
	p.addVar(name, init, lower, upper)
	return Var{idx: len(p.init) - 1}
}

// VariableVec declares a vector of n variables sharing one guess and bounds.
func (p *Problem) VariableVec(name string, n int, init, lower, upper float64) Vec {
	if n <= 0 {
		panic(fmt.Sprintf("nlp: vector %q must have at least one component", name))
	}
	start := len(p.init)
	for i := 0; i < n; i++ {
		p.addVar(fmt.Sprintf("%s[%d]", name, i), init, lower, upper)
	}
	return Vec{idx: start, n: n}
}

func (p *Problem) addVar(name string, init, lower, upper float64) {
	if lower > upper {
		panic(fmt.Sprintf("nlp: variable %q has inverted bounds [%g,%g]", name, lower, upper))
	}
	if init < lower || init > upper {
		panic(fmt.Sprintf("nlp: variable %q guess %g outside [%g,%g]", name, init, lower, upper))
	}
	p.names = append(p.names, name)
	p.init = append(p.init, init)
	p.lower = append(p.lower, lower)
	p.upper = append(p.upper, upper)
}

// SubjectTo adds a constraint.
func (p *Problem) SubjectTo(c Constraint) {
	if c.F == nil {
		panic(fmt.Sprintf("nlp: constraint %q has no function", c.Name))
	}
	if c.Scale == 0 {
		c.Scale = 1
	}
	p.cons = append(p.cons, c)
}

// Minimize sets the objective.
func (p *Problem) Minimize(f Func) {
	p.obj = f
}

// NumVars returns the number of scalar decision variables declared so far.
func (p *Problem) NumVars() int { return len(p.init) }

// NumConstraints returns the number of constraints declared so far.
func (p *Problem) NumConstraints() int { return len(p.cons) }

// Solution assigns a concrete value to every variable of a solved problem.
type Solution struct {
	X Point
	// Objective is the objective value at X.
	Objective float64
	// MaxViolation is the worst scaled constraint residual at X.
	MaxViolation float64
	// Iterations counts outer solver iterations.
	Iterations int
}

// Value extracts a scalar variable from the solution.
func (s *Solution) Value(v Var) float64 { return v.Val(s.X) }

// Vector extracts a copy of a vector variable from the solution.
func (s *Solution) Vector(v Vec) []float64 {
	out := make([]float64, v.n)
	copy(out, s.X[v.idx:v.idx+v.n])
	return out
}

// Solver solves a Problem or reports that it cannot.
type Solver interface {
	Solve(p *Problem) (*Solution, error)
}

// checkFinite guards against formulations that evaluate to NaN or Inf at
// the initial guess, which no solver recovers from.
func (p *Problem) checkFinite() error {
	x := Point(p.init)
	if v := p.obj(x); math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("nlp: objective is %g at the initial guess", v)
	}
	for _, c := range p.cons {
		if v := c.F(x); math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("nlp: constraint %q is %g at the initial guess", c.Name, v)
		}
	}
	return nil
}
