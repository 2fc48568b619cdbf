package solarphantom

import (
	"encoding/json"
	"fmt"
	"os"
)

// AircraftDesign is the flat design record exchanged between the optimizer,
// the simulator and external tooling. The JSON field names are the on-disk
// format of the design record file.
type AircraftDesign struct {
	Wingspan      float64 `json:"wingspan"`       // m
	AspectRatio   float64 `json:"aspect_ratio"`   // -
	TotalWeight   float64 `json:"total_weight"`   // kg
	BatteryMass   float64 `json:"battery_mass"`   // kg
	Velocity      float64 `json:"velocity"`       // m/s
	PayloadMass   float64 `json:"payload_mass"`   // kg
	EnergyDensity float64 `json:"energy_density"` // Wh/kg
}

// MaxCapacity is the usable battery energy in J.
func (d AircraftDesign) MaxCapacity() float64 {
	return d.BatteryMass * d.EnergyDensity * 3600
}

// LoadDesign reads a design record file.
func LoadDesign(path string) (AircraftDesign, error) {
	var d AircraftDesign
	data, err := os.ReadFile(path)
	if err != nil {
		return d, err
	}
	if err := json.Unmarshal(data, &d); err != nil {
		return d, fmt.Errorf("design record %s: %w", path, err)
	}
	return d, nil
}

// Save writes the design record file.
func (d AircraftDesign) Save(path string) error {
	data, err := json.MarshalIndent(d, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// ValidateDesign checks that a design record is physically evaluable and
// satisfies the structural mass closure: the declared total weight must
// cover every computed mass component. Violations within the configured
// tolerance are accepted; beyond it they are a ConsistencyError. A design
// failing this must never be flown or reported as a solution.
func (p Physics) ValidateDesign(d AircraftDesign) error {
	for _, ch := range []struct {
		name string
		v    float64
	}{
		{"wingspan", d.Wingspan},
		{"total weight", d.TotalWeight},
		{"battery mass", d.BatteryMass},
		{"energy density", d.EnergyDensity},
	} {
		if ch.v <= 0 {
			return DomainError{Op: "design", Quantity: ch.name, Value: ch.v}
		}
	}
	if d.PayloadMass < 0 {
		return DomainError{Op: "design", Quantity: "payload mass", Value: d.PayloadMass}
	}
	area, err := p.Geometry(d.Wingspan, d.AspectRatio)
	if err != nil {
		return err
	}
	if _, err := p.Aerodynamics(d.TotalWeight, d.Velocity, area, d.AspectRatio); err != nil {
		return err
	}
	mb := p.MassBreakdown(d.Wingspan, area, d.TotalWeight, d.BatteryMass, d.PayloadMass)
	tol := p.Cst.MassClosureTol * max(1, d.TotalWeight)
	if resid := mb.Sum - d.TotalWeight; resid > tol {
		return ConsistencyError{Invariant: "structural mass closure", Residual: resid, Tol: tol}
	}
	return nil
}

// EnergyTrajectory is the battery state in J at equally spaced times over
// one simulated day.
type EnergyTrajectory []float64

// Min returns the lowest energy sample.
func (e EnergyTrajectory) Min() float64 {
	return minOf(e)
}

// Cyclic reports whether the first and last samples agree within tol.
func (e EnergyTrajectory) Cyclic(tol float64) bool {
	if len(e) < 2 {
		return true
	}
	d := e[0] - e[len(e)-1]
	if d < 0 {
		d = -d
	}
	return d <= tol
}

// Within reports whether every sample lies in [lo-tol, hi+tol].
func (e EnergyTrajectory) Within(lo, hi, tol float64) bool {
	for _, v := range e {
		if v < lo-tol || v > hi+tol {
			return false
		}
	}
	return true
}
