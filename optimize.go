package solarphantom

import (
	"fmt"
	"os"

	kitlog "github.com/go-kit/kit/log"

	"github.com/sidthebuilder/Solar-Phantom/nlp"
)

// SolsticeDay is the northern summer solstice, the most favorable solar day
// and the design point of both optimization modes.
const SolsticeDay = 172

// defaultSamples is the time discretization of the energy balance.
const defaultSamples = 50

// Optimizer assembles the perpetual-flight design problem and hands it to
// the external nonlinear solver. One Optimizer may be reused; every run
// builds and discards its own variable and constraint set.
type Optimizer struct {
	Phys    Physics
	Solver  nlp.Solver
	Samples int
	Logger  kitlog.Logger
}

// NewOptimizer returns an Optimizer on the given constants with the default
// solver backend, discretization and a logfmt logger on stdout.
func NewOptimizer(c Constants) *Optimizer {
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	return &Optimizer{
		Phys:    NewPhysics(c),
		Solver:  nlp.AugLag{},
		Samples: defaultSamples,
		Logger:  kitlog.With(klog, "component", "optimizer"),
	}
}

// OptimizeResult is the outcome of one optimization run. Feasible=false
// with a Reason is an expected, reportable outcome ("no perpetual-flight
// design exists for these inputs"), not a failure of the caller.
type OptimizeResult struct {
	Feasible bool
	Reason   string

	Design      AircraftDesign
	Trajectory  EnergyTrajectory
	Times       []float64
	MaxCapacity float64
	// Objective is the minimized quantity: total weight in kg in
	// mass-minimization mode, energy density in Wh/kg in
	// technology-boundary mode.
	Objective float64
}

// MinimizeMass finds the lightest aircraft able to fly perpetually at the
// given latitude on the summer solstice, for a fixed payload and an assumed
// battery technology level in Wh/kg.
func (o *Optimizer) MinimizeMass(payloadMass, latitude, energyDensity float64) (OptimizeResult, error) {
	if energyDensity <= 0 {
		return OptimizeResult{}, DomainError{Op: "optimize", Quantity: "energy density", Value: energyDensity}
	}
	return o.run(payloadMass, latitude, energyDensity, false)
}

// MinimizeTechnology finds the least-capable battery chemistry, in Wh/kg,
// that still permits a perpetual-flight design at the given latitude on the
// summer solstice, with every airframe variable free.
func (o *Optimizer) MinimizeTechnology(payloadMass, latitude float64) (OptimizeResult, error) {
	return o.run(payloadMass, latitude, 0, true)
}

func (o *Optimizer) run(payloadMass, latitude, fixedDensity float64, techMode bool) (res OptimizeResult, err error) {
	if payloadMass < 0 {
		return res, DomainError{Op: "optimize", Quantity: "payload mass", Value: payloadMass}
	}
	if latitude < -90 || latitude > 90 {
		return res, DomainError{Op: "optimize", Quantity: "latitude", Value: latitude}
	}
	n := o.Samples
	if n == 0 {
		n = defaultSamples
	}

	mode := "mass"
	if techMode {
		mode = "technology"
	}
	o.Logger.Log("level", "info", "mode", mode, "lat", latitude, "payload(kg)", payloadMass, "samples", n, "status", "solving")

	// The external solver call is the one operation allowed to throw; a
	// convergence panic degrades to an infeasible result, never upward.
	defer func() {
		if r := recover(); r != nil {
			o.Logger.Log("level", "warning", "mode", mode, "status", "solver panic", "err", fmt.Sprint(r))
			res = OptimizeResult{Feasible: false, Reason: fmt.Sprintf("solver panic: %v", r)}
			err = nil
		}
	}()

	p := nlp.NewProblem()
	var span, ar, weight, battery, vel, density nlp.Var
	var energy nlp.Vec
	var energyScale float64
	if techMode {
		span = p.Variable("wingspan", 30, 10, 60)
		ar = p.Variable("aspect ratio", 25, 15, 40)
		weight = p.Variable("total weight", 100, 5, 300)
		battery = p.Variable("battery mass", 30, 1, 150)
		vel = p.Variable("velocity", 18, 10, 40)
		density = p.Variable("energy density", 350, 100, 1000)
		energyScale = 30 * 350 * 3600
		energy = p.VariableVec("energy", n, 1e7, 0, 150*1000*3600)
	} else {
		span = p.Variable("wingspan", 35, 10, 80)
		ar = p.Variable("aspect ratio", 20, 10, 40)
		weight = p.Variable("total weight", 100, 10, 600)
		battery = p.Variable("battery mass", 30, 5, 300)
		vel = p.Variable("velocity", 20, 10, 50)
		energyScale = 30 * fixedDensity * 3600
		energy = p.VariableVec("energy", n, 50*fixedDensity*3600/2, 0, 300*fixedDensity*3600)
	}

	phys := o.Phys
	area := func(x nlp.Point) float64 {
		a, gerr := phys.Geometry(span.Val(x), ar.Val(x))
		if gerr != nil {
			panic(gerr) // unreachable: solver evaluates within bounds
		}
		return a
	}
	powerOut := func(x nlp.Point) float64 {
		aero, aerr := phys.Aerodynamics(weight.Val(x), vel.Val(x), area(x), ar.Val(x))
		if aerr != nil {
			panic(aerr) // unreachable: solver evaluates within bounds
		}
		return phys.PowerOut(aero)
	}
	capacity := func(x nlp.Point) float64 {
		rho := fixedDensity
		if techMode {
			rho = density.Val(x)
		}
		return battery.Val(x) * rho * 3600
	}

	// Structural mass closure: declared weight covers every component.
	p.SubjectTo(nlp.Constraint{
		Name: "structural mass closure",
		Kind: nlp.AtMost,
		F: func(x nlp.Point) float64 {
			mb := phys.MassBreakdown(span.Val(x), area(x), weight.Val(x), battery.Val(x), payloadMass)
			return mb.Sum - weight.Val(x)
		},
		Scale: 100,
	})

	times := DayTimes(n)
	fluxPerArea := phys.SolarPowerIn(latitude, SolsticeDay, times, 1)
	powerIn := func(x nlp.Point, i int) float64 {
		return fluxPerArea[i] * area(x)
	}
	Formulator{Cst: phys.Cst}.Apply(p, energy, powerIn, powerOut, capacity, energyScale)

	if techMode {
		p.Minimize(func(x nlp.Point) float64 { return density.Val(x) })
	} else {
		p.Minimize(func(x nlp.Point) float64 { return weight.Val(x) })
	}

	sol, serr := o.Solver.Solve(p)
	if serr != nil {
		o.Logger.Log("level", "notice", "mode", mode, "lat", latitude, "status", "infeasible", "err", serr)
		return OptimizeResult{Feasible: false, Reason: serr.Error()}, nil
	}

	rho := fixedDensity
	if techMode {
		rho = sol.Value(density)
	}
	res = OptimizeResult{
		Feasible: true,
		Design: AircraftDesign{
			Wingspan:      sol.Value(span),
			AspectRatio:   sol.Value(ar),
			TotalWeight:   sol.Value(weight),
			BatteryMass:   sol.Value(battery),
			Velocity:      sol.Value(vel),
			PayloadMass:   payloadMass,
			EnergyDensity: rho,
		},
		Trajectory:  EnergyTrajectory(sol.Vector(energy)),
		Times:       times,
		MaxCapacity: sol.Value(battery) * rho * 3600,
		Objective:   sol.Objective,
	}

	// The solver satisfies constraints to a tolerance; anything beyond the
	// consistency epsilon must not be reported as a solution.
	if verr := phys.ValidateDesign(res.Design); verr != nil {
		o.Logger.Log("level", "warning", "mode", mode, "status", "solution rejected", "err", verr)
		return OptimizeResult{Feasible: false, Reason: verr.Error()}, nil
	}
	tol := 1e-3 * res.MaxCapacity
	if !res.Trajectory.Cyclic(tol) || !res.Trajectory.Within(0, res.MaxCapacity, tol) {
		o.Logger.Log("level", "warning", "mode", mode, "status", "solution rejected", "err", "energy trajectory out of bounds")
		return OptimizeResult{Feasible: false, Reason: "energy trajectory violates its bounds"}, nil
	}

	o.Logger.Log("level", "notice", "mode", mode, "lat", latitude, "status", "solved",
		"objective", res.Objective, "wingspan(m)", res.Design.Wingspan, "weight(kg)", res.Design.TotalWeight)
	return res, nil
}
