package solarphantom

import "math"

/* The shared physics model. Every function here is pure and stateless: the
optimizer evaluates them inside the solver's constraint functions and the
simulator inside its time loop, so they are the single source of truth for
the airframe physics. */

// Physics maps design parameters to geometry, masses, forces and power.
type Physics struct {
	Cst Constants
	// Flux is the solar flux function consumed by SolarPowerIn. It is
	// treated as an external deterministic black box returning W/m².
	Flux FluxFunc
}

// NewPhysics returns a Physics on the given constants with the meeus-based
// clear-sky flux function.
func NewPhysics(c Constants) Physics {
	return Physics{Cst: c, Flux: MeeusFlux}
}

// MassBreakdown itemizes the computed mass of a candidate airframe in kg.
// Sum is always the exact total of the seven components.
type MassBreakdown struct {
	Structure  float64
	Propulsion float64
	Solar      float64
	MPPT       float64
	Avionics   float64
	Battery    float64
	Payload    float64
	Sum        float64
}

// AerodynamicState holds the steady level-flight aerodynamic solution.
type AerodynamicState struct {
	CL            float64
	CD            float64
	DragForce     float64 // N
	PowerRequired float64 // W, at the airframe (before propulsive losses)
}

// Geometry returns the wing area in m² of a span/aspect-ratio pair.
func (p Physics) Geometry(wingspan, aspectRatio float64) (float64, error) {
	if aspectRatio <= 0 {
		return 0, DomainError{Op: "geometry", Quantity: "aspect ratio", Value: aspectRatio}
	}
	return wingspan * wingspan / aspectRatio, nil
}

// MassBreakdown computes every mass component of the airframe. totalWeight,
// batteryMass and payloadMass are in kg; structural mass scales with
// wingspan, propulsion mass with total weight and solar mass with wing area.
func (p Physics) MassBreakdown(wingspan, wingArea, totalWeight, batteryMass, payloadMass float64) MassBreakdown {
	c := p.Cst
	b := MassBreakdown{
		Structure:  c.StructMassCoeff * math.Pow(wingspan, c.StructMassExp),
		Propulsion: 0.15 * totalWeight,
		Solar:      c.MassSolarDensity * wingArea,
		MPPT:       c.MassMPPT,
		Avionics:   c.MassAvionics,
		Battery:    batteryMass,
		Payload:    payloadMass,
	}
	b.Sum = b.Structure + b.Propulsion + b.Solar + b.MPPT + b.Avionics + b.Battery + b.Payload
	return b
}

// Aerodynamics solves steady level flight at the given point. totalWeight is
// a mass in kg; lift balances totalWeight·g. Power required is drag times
// velocity, before propulsive losses.
func (p Physics) Aerodynamics(totalWeight, velocity, wingArea, aspectRatio float64) (AerodynamicState, error) {
	if velocity <= 0 {
		return AerodynamicState{}, DomainError{Op: "aerodynamics", Quantity: "velocity", Value: velocity}
	}
	if wingArea <= 0 {
		return AerodynamicState{}, DomainError{Op: "aerodynamics", Quantity: "wing area", Value: wingArea}
	}
	if aspectRatio <= 0 {
		return AerodynamicState{}, DomainError{Op: "aerodynamics", Quantity: "aspect ratio", Value: aspectRatio}
	}
	c := p.Cst
	q := 0.5 * c.AirDensity * velocity * velocity
	liftForce := totalWeight * c.Gravity
	cl := liftForce / (q * wingArea)
	k := 1 / (math.Pi * c.OswaldEff * aspectRatio)
	cd := c.CD0 + k*cl*cl
	drag := cd * q * wingArea
	return AerodynamicState{
		CL:            cl,
		CD:            cd,
		DragForce:     drag,
		PowerRequired: drag * velocity,
	}, nil
}

// PowerOut is the constant total electrical draw of the design in W:
// aerodynamic power through the propulsive chain plus the avionics draw.
func (p Physics) PowerOut(aero AerodynamicState) float64 {
	return aero.PowerRequired/p.Cst.PropulsiveEff + p.Cst.PowerAvionics
}

// SolarPowerIn evaluates the collected solar power in W at each time sample
// for a flat (zero tilt) wing of the given area, compounding the cell,
// coverage and MPPT efficiencies onto the external flux function.
func (p Physics) SolarPowerIn(latitude float64, dayOfYear int, times []float64, wingArea float64) []float64 {
	flux := p.Flux(latitude, dayOfYear, times, 0)
	eff := p.Cst.NetSolarEff() * wingArea
	out := make([]float64, len(flux))
	for i, f := range flux {
		out[i] = f * eff
	}
	return out
}
