package main

import (
	"flag"
	"fmt"
	"log"
	"runtime"
	"sort"
	"sync"

	solarphantom "github.com/sidthebuilder/Solar-Phantom"
)

// This tool maps the technology boundary: for each latitude in a sweep it
// finds the least battery energy density that still closes a
// perpetual-flight design, then prints the resulting feasibility table.

var (
	payload   float64
	latFrom   float64
	latTo     float64
	latStep   float64
	constants string
	numCPUs   int
)

type boundary struct {
	latitude float64
	res      solarphantom.OptimizeResult
	err      error
}

func init() {
	flag.Float64Var(&payload, "payload", 2, "payload mass in kg")
	flag.Float64Var(&latFrom, "from", 0, "first latitude in degrees")
	flag.Float64Var(&latTo, "to", 70, "last latitude in degrees")
	flag.Float64Var(&latStep, "step", 10, "latitude step in degrees")
	flag.StringVar(&constants, "constants", "", "optional TOML coefficient file")
	flag.IntVar(&numCPUs, "cpus", 0, "number of CPUs to use (0 for all)")
}

func main() {
	flag.Parse()
	if latStep <= 0 {
		log.Fatal("latitude step must be positive")
	}
	cst := solarphantom.DefaultConstants()
	if constants != "" {
		var err error
		cst, err = solarphantom.LoadConstants(constants)
		if err != nil {
			log.Fatalf("could not load constants: %s", err)
		}
	}
	if numCPUs <= 0 || numCPUs > runtime.NumCPU() {
		numCPUs = runtime.NumCPU()
	}
	log.Printf("[info] sweeping latitudes %.0f..%.0f by %.0f on %d CPUs", latFrom, latTo, latStep, numCPUs)

	var lats []float64
	for lat := latFrom; lat <= latTo+1e-9; lat += latStep {
		lats = append(lats, lat)
	}

	cpuChan := make(chan bool, numCPUs)
	rsltChan := make(chan boundary, len(lats))
	var wg sync.WaitGroup
	for _, lat := range lats {
		wg.Add(1)
		cpuChan <- true
		go func(lat float64) {
			defer wg.Done()
			opt := solarphantom.NewOptimizer(cst)
			res, err := opt.MinimizeTechnology(payload, lat)
			rsltChan <- boundary{latitude: lat, res: res, err: err}
			<-cpuChan
		}(lat)
	}
	wg.Wait()
	close(rsltChan)

	results := make([]boundary, 0, len(lats))
	for b := range rsltChan {
		results = append(results, b)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].latitude < results[j].latitude })

	fmt.Printf("\n%-10s %-14s %-12s %-12s %s\n", "latitude", "density Wh/kg", "wingspan m", "weight kg", "verdict")
	for _, b := range results {
		switch {
		case b.err != nil:
			fmt.Printf("%-10.1f %-14s %-12s %-12s rejected: %s\n", b.latitude, "-", "-", "-", b.err)
		case !b.res.Feasible:
			fmt.Printf("%-10.1f %-14s %-12s %-12s infeasible\n", b.latitude, "-", "-", "-")
		default:
			d := b.res.Design
			fmt.Printf("%-10.1f %-14.1f %-12.2f %-12.2f perpetual flight\n",
				b.latitude, d.EnergyDensity, d.Wingspan, d.TotalWeight)
		}
	}
}
