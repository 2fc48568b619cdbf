package solarphantom

import (
	"os"
	"runtime"
	"sync"
	"time"

	kitlog "github.com/go-kit/kit/log"
)

/* The feasibility simulator. It shares PhysicsModel with the optimizer but
never calls the solver: a fixed design is integrated forward through the day
explicitly, so it is an independent cross-check of the optimizer's notion of
feasibility rather than a restatement of its constraints. */

// Simulator certifies the survival margin of a fixed design.
type Simulator struct {
	Phys    Physics
	Samples int
	Logger  kitlog.Logger
}

// NewSimulator returns a Simulator on the given constants with the default
// discretization and a logfmt logger on stdout.
func NewSimulator(c Constants) *Simulator {
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	return &Simulator{
		Phys:    NewPhysics(c),
		Samples: defaultSamples,
		Logger:  kitlog.With(klog, "component", "simulator"),
	}
}

// DayResult is the outcome of one simulated day.
type DayResult struct {
	// Margin is the minimum battery energy observed across the day, in J.
	// Non-negative means the design survives the night; negative means it
	// depletes (and by how much) before resupply.
	Margin float64
	// Trajectory is the integrated battery state, starting at half charge.
	Trajectory EnergyTrajectory
	Times      []float64
	// MaxCapacity is the battery capacity in J.
	MaxCapacity float64
	// PowerOut is the constant total draw in W.
	PowerOut float64
	// ClampedSteps counts Euler steps capped at full charge; clamping is
	// reported, never silent.
	ClampedSteps int
	// Cyclic reports whether the day closed on its starting energy within
	// a small tolerance, i.e. whether the steady-state condition the
	// optimizer enforces would hold for this design and day.
	Cyclic bool
}

// cyclicTol is the relative tolerance on the steady-state check.
const cyclicTol = 1e-3

// SimulateDay integrates the energy balance of a fixed design across one
// calendar day at the given latitude, starting from an assumed half charge.
// The design only needs to be physically evaluable; it does not need to
// come from the optimizer.
func (s *Simulator) SimulateDay(d AircraftDesign, latitude float64, dayOfYear int) (DayResult, error) {
	if dayOfYear < 1 || dayOfYear > 365 {
		return DayResult{}, DomainError{Op: "simulate", Quantity: "day of year", Value: float64(dayOfYear)}
	}
	if latitude < -90 || latitude > 90 {
		return DayResult{}, DomainError{Op: "simulate", Quantity: "latitude", Value: latitude}
	}
	area, err := s.Phys.Geometry(d.Wingspan, d.AspectRatio)
	if err != nil {
		return DayResult{}, err
	}
	aero, err := s.Phys.Aerodynamics(d.TotalWeight, d.Velocity, area, d.AspectRatio)
	if err != nil {
		return DayResult{}, err
	}
	if d.BatteryMass <= 0 || d.EnergyDensity <= 0 {
		return DayResult{}, DomainError{Op: "simulate", Quantity: "battery capacity", Value: d.MaxCapacity()}
	}

	n := s.Samples
	if n == 0 {
		n = defaultSamples
	}
	times := DayTimes(n)
	powerOut := s.Phys.PowerOut(aero)
	powerIn := s.Phys.SolarPowerIn(latitude, dayOfYear, times, area)
	capacity := d.MaxCapacity()
	dt := SecondsPerDay / float64(n-1)

	traj := make(EnergyTrajectory, n)
	traj[0] = capacity / 2
	clamped := 0
	for i := 0; i < n-1; i++ {
		e := EnergyStep(traj[i], powerIn[i], powerOut, dt)
		e, hit := clampMax(e, capacity)
		if hit {
			clamped++
		}
		traj[i+1] = e
	}

	return DayResult{
		Margin:       traj.Min(),
		Trajectory:   traj,
		Times:        times,
		MaxCapacity:  capacity,
		PowerOut:     powerOut,
		ClampedSteps: clamped,
		Cyclic:       traj.Cyclic(cyclicTol * capacity),
	}, nil
}

// DayMargin pairs a calendar day with its simulated energy margin.
type DayMargin struct {
	Day    int
	Margin float64
}

// YearSweep simulates every day of the year at a fixed latitude. Days are
// independent, so they are fanned out over the available CPUs; results come
// back ordered by day.
func (s *Simulator) YearSweep(d AircraftDesign, latitude float64) ([]DayMargin, error) {
	// Surface design errors once, before spawning workers.
	if _, err := s.SimulateDay(d, latitude, 1); err != nil {
		return nil, err
	}
	start := time.Now()
	margins := make([]DayMargin, 365)
	days := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < runtime.GOMAXPROCS(0); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for day := range days {
				res, err := s.SimulateDay(d, latitude, day)
				if err != nil {
					// Unreachable: inputs were validated above.
					panic(err)
				}
				margins[day-1] = DayMargin{Day: day, Margin: res.Margin}
			}
		}()
	}
	for day := 1; day <= 365; day++ {
		days <- day
	}
	close(days)
	wg.Wait()
	s.Logger.Log("level", "info", "lat", latitude, "status", "year sweep done", "duration", time.Since(start))
	return margins, nil
}

// Window is a contiguous span of calendar days with non-negative margin.
// Start and End are inclusive days of year; End < Start means the window
// wraps across new year. A zero Length means no day survives.
type Window struct {
	Start, End int
	Length     int
}

// Full reports whether the window covers the whole year.
func (w Window) Full() bool { return w.Length == 365 }

// OperationalWindow finds the longest contiguous run of days whose margin
// is non-negative, treating day 365 as adjacent to day 1 so that southern
// hemisphere windows spanning new year are reported as one span.
func OperationalWindow(margins []DayMargin) Window {
	n := len(margins)
	if n == 0 {
		return Window{}
	}
	ok := func(i int) bool { return margins[i%n].Margin >= 0 }
	allOK := true
	for i := 0; i < n; i++ {
		if !ok(i) {
			allOK = false
			break
		}
	}
	if allOK {
		return Window{Start: margins[0].Day, End: margins[n-1].Day, Length: n}
	}
	best := Window{}
	run := 0
	// Scanning two laps catches runs that wrap across the year boundary.
	for i := 0; i < 2*n; i++ {
		if !ok(i) {
			run = 0
			continue
		}
		run++
		if run > n {
			run = n
		}
		if run > best.Length {
			best = Window{
				Start:  margins[(i-run+1)%n].Day,
				End:    margins[i%n].Day,
				Length: run,
			}
		}
	}
	return best
}
