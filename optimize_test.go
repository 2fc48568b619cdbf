package solarphantom

import (
	"errors"
	"testing"

	kitlog "github.com/go-kit/kit/log"

	"github.com/sidthebuilder/Solar-Phantom/nlp"
)

func quietOptimizer() *Optimizer {
	o := NewOptimizer(DefaultConstants())
	o.Logger = kitlog.NewNopLogger()
	return o
}

// The full loop: optimize a design, then hand it to the independent forward
// simulator, which must agree that it survives the design day.
func TestMinimizeMassEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping optimizer run in short mode")
	}
	const (
		payload = 5.0
		lat     = 20.0
		tech    = 350.0
	)
	o := quietOptimizer()
	res, err := o.MinimizeMass(payload, lat, tech)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Feasible {
		t.Fatalf("expected a feasible design, got: %s", res.Reason)
	}
	d := res.Design

	if err := o.Phys.ValidateDesign(d); err != nil {
		t.Fatalf("returned design violates mass closure: %v", err)
	}
	if d.EnergyDensity != tech || d.PayloadMass != payload {
		t.Fatalf("fixed inputs changed: %+v", d)
	}
	if d.Wingspan < 10 || d.Wingspan > 80 || d.Velocity < 10 || d.Velocity > 50 {
		t.Fatalf("design outside its declared bounds: %+v", d)
	}

	// Cyclic steady state and capacity bounds on the returned trajectory.
	tol := 1e-3 * res.MaxCapacity
	if !res.Trajectory.Cyclic(tol) {
		t.Fatalf("trajectory is not cyclic: %f vs %f", res.Trajectory[0], res.Trajectory[len(res.Trajectory)-1])
	}
	if !res.Trajectory.Within(0, res.MaxCapacity, tol) {
		t.Fatal("trajectory leaves its capacity bounds")
	}

	s := NewSimulator(o.Phys.Cst)
	s.Logger = kitlog.NewNopLogger()
	day, err := s.SimulateDay(d, lat, SolsticeDay)
	if err != nil {
		t.Fatal(err)
	}
	if day.Margin < 0 {
		t.Fatalf("simulator disagrees with the optimizer: margin %f J", day.Margin)
	}
}

// The inverse mode: the equator on the solstice faces a 12 h night, while a
// high southern latitude is in midwinter, so the required battery technology
// can only be worse (or outright impossible) there.
func TestMinimizeTechnologyLatitude(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping optimizer run in short mode")
	}
	o := quietOptimizer()
	o.Samples = 40
	o.Solver = nlp.AugLag{MaxOuter: 15}

	eq, err := o.MinimizeTechnology(2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !eq.Feasible {
		t.Fatalf("equator should be feasible within 1000 Wh/kg: %s", eq.Reason)
	}
	if eq.Design.EnergyDensity < 100 || eq.Design.EnergyDensity > 1000 {
		t.Fatalf("required density %f outside its bounds", eq.Design.EnergyDensity)
	}

	south, err := o.MinimizeTechnology(2, -60)
	if err != nil {
		t.Fatal(err)
	}
	if south.Feasible && south.Design.EnergyDensity+1 < eq.Design.EnergyDensity {
		t.Fatalf("midwinter latitude needs %f Wh/kg, less than the equator's %f",
			south.Design.EnergyDensity, eq.Design.EnergyDensity)
	}
}

func TestOptimizeDomainErrors(t *testing.T) {
	o := quietOptimizer()
	var derr DomainError
	if _, err := o.MinimizeMass(-1, 20, 350); !errors.As(err, &derr) {
		t.Fatalf("negative payload: %v", err)
	}
	if _, err := o.MinimizeMass(5, 91, 350); !errors.As(err, &derr) {
		t.Fatalf("latitude 91: %v", err)
	}
	if _, err := o.MinimizeMass(5, 20, 0); !errors.As(err, &derr) {
		t.Fatalf("zero density: %v", err)
	}
	if _, err := o.MinimizeTechnology(-1, 20); !errors.As(err, &derr) {
		t.Fatalf("negative payload (tech mode): %v", err)
	}
}

type stubSolver struct {
	err   error
	panic bool
}

func (s stubSolver) Solve(p *nlp.Problem) (*nlp.Solution, error) {
	if s.panic {
		panic("synthetic convergence blowup")
	}
	return nil, s.err
}

// Solver failures of any kind degrade to a structured no-solution result.
func TestSolverFailureIsNotAnError(t *testing.T) {
	o := quietOptimizer()
	o.Solver = stubSolver{err: nlp.ErrInfeasible}
	res, err := o.MinimizeMass(5, 20, 350)
	if err != nil {
		t.Fatalf("infeasibility must not surface as an error: %v", err)
	}
	if res.Feasible || res.Reason == "" {
		t.Fatalf("expected an explained infeasible result, got %+v", res)
	}

	o.Solver = stubSolver{panic: true}
	res, err = o.MinimizeMass(5, 20, 350)
	if err != nil {
		t.Fatalf("solver panic must not surface as an error: %v", err)
	}
	if res.Feasible {
		t.Fatal("panicking solver produced a feasible result")
	}
}
