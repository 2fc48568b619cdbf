package nlp

import (
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"
)

// AugLag solves a Problem with an augmented Lagrangian outer loop around
// gonum's L-BFGS, with central finite-difference gradients. Variables are
// rescaled to their bound ranges and constraint residuals to their declared
// Scale, so the inner minimization always works on quantities of order one.
//
// The zero value uses sensible defaults.
type AugLag struct {
	// Tol is the scaled constraint tolerance to declare feasibility.
	Tol float64
	// MaxOuter bounds the number of multiplier updates.
	MaxOuter int
	// InnerIterations bounds each L-BFGS run.
	InnerIterations int
	// Penalty, PenaltyGrowth and PenaltyMax drive the quadratic penalty.
	Penalty, PenaltyGrowth, PenaltyMax float64
	// GradStep is the finite-difference step in scaled space.
	GradStep float64
}

const (
	defaultTol           = 1e-6
	defaultMaxOuter      = 25
	defaultInnerIters    = 600
	defaultPenalty       = 10
	defaultPenaltyGrowth = 10
	defaultPenaltyMax    = 1e7
	defaultGradStep      = 1e-6
)

func (s AugLag) withDefaults() AugLag {
	if s.Tol == 0 {
		s.Tol = defaultTol
	}
	if s.MaxOuter == 0 {
		s.MaxOuter = defaultMaxOuter
	}
	if s.InnerIterations == 0 {
		s.InnerIterations = defaultInnerIters
	}
	if s.Penalty == 0 {
		s.Penalty = defaultPenalty
	}
	if s.PenaltyGrowth == 0 {
		s.PenaltyGrowth = defaultPenaltyGrowth
	}
	if s.PenaltyMax == 0 {
		s.PenaltyMax = defaultPenaltyMax
	}
	if s.GradStep == 0 {
		s.GradStep = defaultGradStep
	}
	return s
}

// Solve implements Solver.
func (s AugLag) Solve(p *Problem) (*Solution, error) {
	s = s.withDefaults()
	if p.obj == nil {
		panic("nlp: problem has no objective")
	}
	if err := p.checkFinite(); err != nil {
		return nil, err
	}

	n := len(p.init)
	// Scaled space: z[i] in [0,1] maps to lower[i]..upper[i].
	span := make([]float64, n)
	for i := range span {
		span[i] = p.upper[i] - p.lower[i]
		if span[i] <= 0 {
			span[i] = math.Max(1, math.Abs(p.init[i]))
		}
	}
	unscale := func(z []float64) Point {
		x := make(Point, n)
		for i := range x {
			// Clamp so that user functions only ever see in-bounds
			// points; the bound penalties below still push z back.
			zi := math.Min(1, math.Max(0, z[i]))
			x[i] = p.lower[i] + zi*span[i]
		}
		return x
	}
	z := make([]float64, n)
	for i := range z {
		z[i] = (p.init[i] - p.lower[i]) / span[i]
	}

	objScale := math.Max(1, math.Abs(p.obj(Point(p.init))))

	var nEq, nIn int
	for _, c := range p.cons {
		if c.Kind == Equal {
			nEq++
		} else {
			nIn++
		}
	}
	// Bounds are handled as 2n extra inequalities in scaled space.
	lamEq := make([]float64, nEq)
	lamIn := make([]float64, nIn+2*n)

	// residuals evaluates all scaled constraints at z: equalities first,
	// then declared inequalities, then the bound inequalities.
	residuals := func(z []float64, eq, in []float64) {
		x := unscale(z)
		iEq, iIn := 0, 0
		for _, c := range p.cons {
			v := c.F(x) / c.Scale
			if c.Kind == Equal {
				eq[iEq] = v
				iEq++
			} else {
				in[iIn] = v
				iIn++
			}
		}
		for i := 0; i < n; i++ {
			in[iIn] = -z[i]
			in[iIn+1] = z[i] - 1
			iIn += 2
		}
	}

	mu := s.Penalty
	eq := make([]float64, nEq)
	in := make([]float64, len(lamIn))

	lagrangian := func(z []float64) float64 {
		x := unscale(z)
		v := p.obj(x) / objScale
		iEq, iIn := 0, 0
		term := func(g, lam float64) float64 {
			if t := lam + mu*g; t > 0 {
				return (t*t - lam*lam) / (2 * mu)
			}
			return -lam * lam / (2 * mu)
		}
		for _, c := range p.cons {
			cv := c.F(x) / c.Scale
			if c.Kind == Equal {
				v += lamEq[iEq]*cv + 0.5*mu*cv*cv
				iEq++
			} else {
				v += term(cv, lamIn[iIn])
				iIn++
			}
		}
		for i := 0; i < n; i++ {
			v += term(-z[i], lamIn[iIn])
			v += term(z[i]-1, lamIn[iIn+1])
			iIn += 2
		}
		return v
	}

	fdSettings := &fd.Settings{Formula: fd.Central, Step: s.GradStep}
	inner := optimize.Problem{
		Func: lagrangian,
		Grad: func(grad, z []float64) {
			fd.Gradient(grad, lagrangian, z, fdSettings)
		},
	}
	settings := &optimize.Settings{
		MajorIterations:   s.InnerIterations,
		GradientThreshold: 1e-9,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-13,
			Iterations: 40,
		},
	}

	best := math.Inf(1)
	viol := math.Inf(1)
	prevViol := math.Inf(1)
	outer := 0
	for ; outer < s.MaxOuter; outer++ {
		// The inner method may stop on a line-search failure near a
		// stationary point; its best iterate is still usable, so only
		// a nil result is fatal.
		res, err := optimize.Minimize(inner, z, settings, &optimize.LBFGS{})
		if res == nil {
			return nil, err
		}
		copy(z, res.X)

		residuals(z, eq, in)
		viol = 0
		for _, v := range eq {
			viol = math.Max(viol, math.Abs(v))
		}
		for _, v := range in {
			viol = math.Max(viol, v)
		}
		best = math.Min(best, viol)
		if viol <= s.Tol {
			break
		}
		for i, v := range eq {
			lamEq[i] += mu * v
		}
		for i, v := range in {
			lamIn[i] = math.Max(0, lamIn[i]+mu*v)
		}
		// Tighten the penalty only when the violation stalls.
		if viol > 0.25*prevViol {
			mu = math.Min(mu*s.PenaltyGrowth, s.PenaltyMax)
		}
		prevViol = viol
	}

	if viol > s.Tol {
		return nil, ErrInfeasible
	}
	x := unscale(z)
	return &Solution{
		X:            x,
		Objective:    p.obj(x),
		MaxViolation: viol,
		Iterations:   outer + 1,
	}, nil
}
