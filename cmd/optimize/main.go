package main

import (
	"flag"
	"log"
	"os"

	solarphantom "github.com/sidthebuilder/Solar-Phantom"
)

// This tool runs one optimization and writes the design record, the
// markdown report and optionally the solstice battery trajectory.

var (
	payload    float64
	latitude   float64
	density    float64
	techMode   bool
	constants  string
	designOut  string
	reportOut  string
	trajectOut string
)

func init() {
	flag.Float64Var(&payload, "payload", 5, "payload mass in kg")
	flag.Float64Var(&latitude, "lat", 20, "design latitude in degrees")
	flag.Float64Var(&density, "density", 350, "battery energy density in Wh/kg (mass mode)")
	flag.BoolVar(&techMode, "tech", false, "minimize required energy density instead of total weight")
	flag.StringVar(&constants, "constants", "", "optional TOML coefficient file")
	flag.StringVar(&designOut, "design", "design_specs.json", "design record output path")
	flag.StringVar(&reportOut, "report", "simulation_report.md", "markdown report output path")
	flag.StringVar(&trajectOut, "trajectory", "", "optional CSV trajectory output path")
}

func main() {
	flag.Parse()
	cst := solarphantom.DefaultConstants()
	if constants != "" {
		var err error
		cst, err = solarphantom.LoadConstants(constants)
		if err != nil {
			log.Fatalf("could not load constants: %s", err)
		}
	}

	opt := solarphantom.NewOptimizer(cst)
	var res solarphantom.OptimizeResult
	var err error
	if techMode {
		res, err = opt.MinimizeTechnology(payload, latitude)
	} else {
		res, err = opt.MinimizeMass(payload, latitude, density)
	}
	if err != nil {
		log.Fatalf("optimization rejected: %s", err)
	}

	rf, err := os.Create(reportOut)
	if err != nil {
		log.Fatal(err)
	}
	if err := solarphantom.WriteReport(rf, res, latitude); err != nil {
		log.Fatal(err)
	}
	rf.Close()
	log.Printf("[info] report written to %s", reportOut)

	if !res.Feasible {
		log.Printf("[warning] no perpetual-flight design: %s", res.Reason)
		os.Exit(1)
	}

	if err := res.Design.Save(designOut); err != nil {
		log.Fatal(err)
	}
	log.Printf("[info] design written to %s", designOut)
	log.Printf("[info] wingspan %.2f m, total weight %.2f kg, battery %.2f kg at %.0f Wh/kg",
		res.Design.Wingspan, res.Design.TotalWeight, res.Design.BatteryMass, res.Design.EnergyDensity)

	if trajectOut != "" {
		tf, err := os.Create(trajectOut)
		if err != nil {
			log.Fatal(err)
		}
		if err := solarphantom.ExportTrajectory(tf, res.Times, res.Trajectory, res.MaxCapacity); err != nil {
			log.Fatal(err)
		}
		tf.Close()
		log.Printf("[info] trajectory written to %s", trajectOut)
	}
}
