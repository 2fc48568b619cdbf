package solarphantom

import (
	"fmt"

	"github.com/spf13/viper"
)

// Constants is the process-wide physical configuration. It is built once,
// passed by value and never mutated afterwards, so the optimizer's
// constraint graph and the simulator's time loop are guaranteed to run on
// identical coefficients.
type Constants struct {
	// Gravity is the gravitational acceleration in m/s².
	Gravity float64
	// AirDensity is the sea-level air density in kg/m³.
	AirDensity float64

	// CD0 is the parasitic drag coefficient of the clean airframe.
	CD0 float64
	// OswaldEff is the Oswald span efficiency of the drag polar.
	OswaldEff float64

	// StructMassCoeff and StructMassExp scale structural mass with
	// wingspan: mass = coeff · span^exp.
	StructMassCoeff float64
	StructMassExp   float64

	// SolarCellEff, SolarCellCoverage and MPPTEff compound into the net
	// collection efficiency of the wing-mounted array.
	SolarCellEff      float64
	SolarCellCoverage float64
	MPPTEff           float64
	// PropulsiveEff covers propeller, motor and ESC losses.
	PropulsiveEff float64

	// MassMPPT and MassAvionics are fixed equipment allowances in kg.
	MassMPPT     float64
	MassAvionics float64
	// MassSolarDensity is the areal density of panel plus encapsulation
	// in kg/m².
	MassSolarDensity float64

	// PowerAvionics is the constant avionics and radio draw in W. The
	// upstream studies disagreed between 30 W and 50 W; it is a single
	// explicit constant here.
	PowerAvionics float64

	// ReserveFraction is the fraction of battery capacity kept as an
	// operational floor by the optimizer. Zero disables the reserve.
	ReserveFraction float64

	// MassClosureTol is the relative tolerance on the structural mass
	// closure invariant before a design is rejected.
	MassClosureTol float64
}

// DefaultConstants returns the reference coefficient set.
func DefaultConstants() Constants {
	return Constants{
		Gravity:           9.81,
		AirDensity:        1.225,
		CD0:               0.018,
		OswaldEff:         0.92,
		StructMassCoeff:   0.06,
		StructMassExp:     2.45,
		SolarCellEff:      0.22,
		SolarCellCoverage: 0.90,
		MPPTEff:           0.96,
		PropulsiveEff:     0.72,
		MassMPPT:          2.0,
		MassAvionics:      1.0,
		MassSolarDensity:  0.35,
		PowerAvionics:     50.0,
		ReserveFraction:   0.10,
		MassClosureTol:    1e-3,
	}
}

// NetSolarEff is the compounded cell × coverage × MPPT efficiency chain.
func (c Constants) NetSolarEff() float64 {
	return c.SolarCellEff * c.SolarCellCoverage * c.MPPTEff
}

// Validate rejects coefficient sets that would divide by zero or flip
// signs somewhere in the physics.
func (c Constants) Validate() error {
	checks := []struct {
		name string
		v    float64
	}{
		{"gravity", c.Gravity},
		{"air_density", c.AirDensity},
		{"oswald_eff", c.OswaldEff},
		{"propulsive_eff", c.PropulsiveEff},
	}
	for _, ch := range checks {
		if ch.v <= 0 {
			return DomainError{Op: "constants", Quantity: ch.name, Value: ch.v}
		}
	}
	if c.ReserveFraction < 0 || c.ReserveFraction >= 1 {
		return DomainError{Op: "constants", Quantity: "reserve_fraction", Value: c.ReserveFraction}
	}
	return nil
}

// LoadConstants reads a TOML coefficient file and overlays it on the
// defaults, so a file only needs to name the constants it changes.
func LoadConstants(path string) (Constants, error) {
	def := DefaultConstants()
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("physics.gravity", def.Gravity)
	v.SetDefault("physics.air_density", def.AirDensity)
	v.SetDefault("aero.cd0", def.CD0)
	v.SetDefault("aero.oswald_eff", def.OswaldEff)
	v.SetDefault("structure.mass_coeff", def.StructMassCoeff)
	v.SetDefault("structure.mass_exp", def.StructMassExp)
	v.SetDefault("solar.cell_eff", def.SolarCellEff)
	v.SetDefault("solar.cell_coverage", def.SolarCellCoverage)
	v.SetDefault("solar.mppt_eff", def.MPPTEff)
	v.SetDefault("propulsion.eff", def.PropulsiveEff)
	v.SetDefault("mass.mppt", def.MassMPPT)
	v.SetDefault("mass.avionics", def.MassAvionics)
	v.SetDefault("mass.solar_density", def.MassSolarDensity)
	v.SetDefault("power.avionics", def.PowerAvionics)
	v.SetDefault("energy.reserve_fraction", def.ReserveFraction)
	v.SetDefault("energy.mass_closure_tol", def.MassClosureTol)
	if err := v.ReadInConfig(); err != nil {
		return Constants{}, fmt.Errorf("constants file %s: %w", path, err)
	}
	c := Constants{
		Gravity:           v.GetFloat64("physics.gravity"),
		AirDensity:        v.GetFloat64("physics.air_density"),
		CD0:               v.GetFloat64("aero.cd0"),
		OswaldEff:         v.GetFloat64("aero.oswald_eff"),
		StructMassCoeff:   v.GetFloat64("structure.mass_coeff"),
		StructMassExp:     v.GetFloat64("structure.mass_exp"),
		SolarCellEff:      v.GetFloat64("solar.cell_eff"),
		SolarCellCoverage: v.GetFloat64("solar.cell_coverage"),
		MPPTEff:           v.GetFloat64("solar.mppt_eff"),
		PropulsiveEff:     v.GetFloat64("propulsion.eff"),
		MassMPPT:          v.GetFloat64("mass.mppt"),
		MassAvionics:      v.GetFloat64("mass.avionics"),
		MassSolarDensity:  v.GetFloat64("mass.solar_density"),
		PowerAvionics:     v.GetFloat64("power.avionics"),
		ReserveFraction:   v.GetFloat64("energy.reserve_fraction"),
		MassClosureTol:    v.GetFloat64("energy.mass_closure_tol"),
	}
	if err := c.Validate(); err != nil {
		return Constants{}, err
	}
	return c, nil
}
