package solarphantom

import (
	"fmt"

	"github.com/sidthebuilder/Solar-Phantom/nlp"
)

// SecondsPerDay is the span of the simulated day.
const SecondsPerDay = 86400.0

// DayTimes returns n uniformly spaced time samples covering one day,
// sample 0 at midnight and sample n-1 at the following midnight.
func DayTimes(n int) []float64 {
	return linspace(0, SecondsPerDay, n)
}

// EnergyStep advances the battery state by one explicit Euler step. It is
// the single recurrence shared by the optimizer's equality constraints and
// the simulator's time loop.
func EnergyStep(energy, powerIn, powerOut, dt float64) float64 {
	return energy + (powerIn-powerOut)*dt
}

// Formulator emits the discretized day-long energy balance as solver
// constraints. It is purely declarative and never solves anything.
type Formulator struct {
	Cst Constants
}

// Apply declares, onto p, the Euler recurrence between consecutive energy
// samples, the capacity bounds on every sample and the cyclic steady-state
// closure energy[0] == energy[N-1].
//
// powerIn yields the collected solar power in W at sample i, powerOut the
// constant total draw in W and capacity the battery capacity in J; all
// three may depend on the decision variables. The sample lower bound is the
// configured reserve fraction of capacity (zero reserve reproduces the bare
// non-depletion bound). scale is the characteristic energy in J used to
// normalize residuals.
func (f Formulator) Apply(p *nlp.Problem, energy nlp.Vec, powerIn func(x nlp.Point, i int) float64, powerOut, capacity nlp.Func, scale float64) {
	n := energy.Len()
	if n < 2 {
		panic("energy balance needs at least two samples")
	}
	dt := SecondsPerDay / float64(n-1)
	for i := 0; i < n-1; i++ {
		i := i
		p.SubjectTo(nlp.Constraint{
			Name: fmt.Sprintf("energy step %d", i),
			Kind: nlp.Equal,
			F: func(x nlp.Point) float64 {
				return energy.Val(x, i+1) - EnergyStep(energy.Val(x, i), powerIn(x, i), powerOut(x), dt)
			},
			Scale: scale,
		})
	}
	reserve := f.Cst.ReserveFraction
	for i := 0; i < n; i++ {
		i := i
		p.SubjectTo(nlp.Constraint{
			Name: fmt.Sprintf("energy floor %d", i),
			Kind: nlp.AtMost,
			F: func(x nlp.Point) float64 {
				return reserve*capacity(x) - energy.Val(x, i)
			},
			Scale: scale,
		})
		p.SubjectTo(nlp.Constraint{
			Name: fmt.Sprintf("energy cap %d", i),
			Kind: nlp.AtMost,
			F: func(x nlp.Point) float64 {
				return energy.Val(x, i) - capacity(x)
			},
			Scale: scale,
		})
	}
	p.SubjectTo(nlp.Constraint{
		Name: "cyclic energy closure",
		Kind: nlp.Equal,
		F: func(x nlp.Point) float64 {
			return energy.Val(x, 0) - energy.Val(x, n-1)
		},
		Scale: scale,
	})
}
