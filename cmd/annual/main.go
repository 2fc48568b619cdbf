package main

import (
	"flag"
	"log"
	"os"

	solarphantom "github.com/sidthebuilder/Solar-Phantom"
)

// This tool sweeps a saved design through all 365 days at a fixed latitude
// and reports the contiguous window over which it survives the night.

var (
	designPath string
	latitude   float64
	constants  string
	marginsOut string
)

func init() {
	flag.StringVar(&designPath, "design", "design_specs.json", "design record to analyze")
	flag.Float64Var(&latitude, "lat", 20, "operating latitude in degrees")
	flag.StringVar(&constants, "constants", "", "optional TOML coefficient file")
	flag.StringVar(&marginsOut, "margins", "annual_margins.csv", "per-day margin CSV output path")
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

	design, err := solarphantom.LoadDesign(designPath)
	if err != nil {
		log.Fatalf("could not load design: %s", err)
	}
	log.Printf("[info] design: wingspan %.2f m, weight %.2f kg, battery %.2f kg at %.0f Wh/kg",
		design.Wingspan, design.TotalWeight, design.BatteryMass, design.EnergyDensity)

	sim := solarphantom.NewSimulator(cst)
	margins, err := sim.YearSweep(design, latitude)
	if err != nil {
		log.Fatalf("sweep rejected: %s", err)
	}

	window := solarphantom.OperationalWindow(margins)
	log.Printf("[info] operational window at %.1f deg: %s", latitude, window)

	worst := margins[0]
	for _, m := range margins[1:] {
		if m.Margin < worst.Margin {
			worst = m
		}
	}
	log.Printf("[info] worst day: %s, margin %.2f kWh", solarphantom.DayDate(worst.Day), worst.Margin/3.6e6)

	mf, err := os.Create(marginsOut)
	if err != nil {
		log.Fatal(err)
	}
	if err := solarphantom.ExportMargins(mf, latitude, margins); err != nil {
		log.Fatal(err)
	}
	mf.Close()
	log.Printf("[info] margins written to %s", marginsOut)

	if window.Length == 0 {
		os.Exit(1)
	}
}
