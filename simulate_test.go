package solarphantom

import (
	"testing"

	kitlog "github.com/go-kit/kit/log"
	"gonum.org/v1/gonum/floats/scalar"
)

func quietSimulator() *Simulator {
	s := NewSimulator(DefaultConstants())
	s.Logger = kitlog.NewNopLogger()
	return s
}

// With the flux stubbed to zero the trajectory is a straight discharge line,
// so every sample is predictable in closed form.
func TestSimulateDayPureDischarge(t *testing.T) {
	s := quietSimulator()
	s.Phys.Flux = func(lat float64, day int, times []float64, tilt float64) []float64 {
		return make([]float64, len(times))
	}
	res, err := s.SimulateDay(testDesign, 20, 172)
	if err != nil {
		t.Fatal(err)
	}
	capacity := testDesign.MaxCapacity()
	n := len(res.Trajectory)
	dt := SecondsPerDay / float64(n-1)
	for i, e := range res.Trajectory {
		want := capacity/2 - float64(i)*res.PowerOut*dt
		if !scalar.EqualWithinAbs(e, want, 1e-6*capacity) {
			t.Fatalf("sample %d = %f, expected %f", i, e, want)
		}
	}
	wantMargin := capacity/2 - float64(n-1)*res.PowerOut*dt
	if !scalar.EqualWithinAbs(res.Margin, wantMargin, 1e-6*capacity) {
		t.Fatalf("margin = %f, expected %f", res.Margin, wantMargin)
	}
	if res.ClampedSteps != 0 {
		t.Fatalf("discharge day clamped %d steps", res.ClampedSteps)
	}
	if res.Cyclic {
		t.Fatal("a pure discharge day cannot be cyclic")
	}
}

// With a huge constant flux the battery pegs at capacity and the clamp is
// reported rather than hidden.
func TestSimulateDayOverchargeClamped(t *testing.T) {
	s := quietSimulator()
	s.Phys.Flux = func(lat float64, day int, times []float64, tilt float64) []float64 {
		flux := make([]float64, len(times))
		for i := range flux {
			flux[i] = 5000
		}
		return flux
	}
	res, err := s.SimulateDay(testDesign, 20, 172)
	if err != nil {
		t.Fatal(err)
	}
	capacity := testDesign.MaxCapacity()
	if res.ClampedSteps == 0 {
		t.Fatal("expected clamped steps on a surplus day")
	}
	for i, e := range res.Trajectory {
		if e > capacity {
			t.Fatalf("sample %d = %f exceeds capacity %f", i, e, capacity)
		}
	}
	// The minimum is the half-charge start on a monotone charge day.
	if !scalar.EqualWithinAbs(res.Margin, capacity/2, 1e-9*capacity) {
		t.Fatalf("margin = %f, expected the starting charge", res.Margin)
	}
}

// More stored capacity never hurts survival when everything else is fixed.
func TestMarginMonotoneInBatteryMass(t *testing.T) {
	s := quietSimulator()
	prev := -1e18
	for _, batt := range []float64{20, 30, 40, 60, 80} {
		d := testDesign
		d.BatteryMass = batt
		res, err := s.SimulateDay(d, 20, 355)
		if err != nil {
			t.Fatal(err)
		}
		if res.Margin < prev {
			t.Fatalf("margin dropped from %f to %f when battery grew to %g kg", prev, res.Margin, batt)
		}
		prev = res.Margin
	}
}

func TestSimulateDayDomain(t *testing.T) {
	s := quietSimulator()
	if _, err := s.SimulateDay(testDesign, 20, 0); err == nil {
		t.Fatal("day 0 accepted")
	}
	if _, err := s.SimulateDay(testDesign, 20, 366); err == nil {
		t.Fatal("day 366 accepted")
	}
	if _, err := s.SimulateDay(testDesign, 120, 172); err == nil {
		t.Fatal("latitude 120 accepted")
	}
	bad := testDesign
	bad.Velocity = 0
	if _, err := s.SimulateDay(bad, 20, 172); err == nil {
		t.Fatal("zero velocity accepted")
	}
	bad = testDesign
	bad.BatteryMass = 0
	if _, err := s.SimulateDay(bad, 20, 172); err == nil {
		t.Fatal("zero battery accepted")
	}
}

func TestYearSweepOrderedAndConsistent(t *testing.T) {
	s := quietSimulator()
	margins, err := s.YearSweep(testDesign, 45)
	if err != nil {
		t.Fatal(err)
	}
	if len(margins) != 365 {
		t.Fatalf("%d days in sweep", len(margins))
	}
	for i, m := range margins {
		if m.Day != i+1 {
			t.Fatalf("sweep out of order at index %d: day %d", i, m.Day)
		}
	}
	// The sweep must agree with individual day runs.
	for _, day := range []int{1, 172, 300} {
		res, err := s.SimulateDay(testDesign, 45, day)
		if err != nil {
			t.Fatal(err)
		}
		if !scalar.EqualWithinAbs(res.Margin, margins[day-1].Margin, 1e-9) {
			t.Fatalf("day %d margin mismatch: %f vs %f", day, res.Margin, margins[day-1].Margin)
		}
	}
	// The window only contains surviving days.
	w := OperationalWindow(margins)
	for i := 0; i < w.Length; i++ {
		day := (w.Start - 1 + i) % 365
		if margins[day].Margin < 0 {
			t.Fatalf("window includes crashing day %d", day+1)
		}
	}
}

func TestOperationalWindow(t *testing.T) {
	mk := func(days ...int) []DayMargin {
		ms := make([]DayMargin, 365)
		for i := range ms {
			ms[i] = DayMargin{Day: i + 1, Margin: -1}
		}
		for _, d := range days {
			ms[d-1].Margin = 1
		}
		return ms
	}
	if w := OperationalWindow(mk()); w.Length != 0 {
		t.Fatalf("empty sweep gave window %+v", w)
	}
	all := make([]DayMargin, 365)
	for i := range all {
		all[i] = DayMargin{Day: i + 1, Margin: 1}
	}
	if w := OperationalWindow(all); !w.Full() {
		t.Fatalf("full year not detected: %+v", w)
	}

	var mid []int
	for d := 100; d <= 250; d++ {
		mid = append(mid, d)
	}
	w := OperationalWindow(mk(mid...))
	if w.Start != 100 || w.End != 250 || w.Length != 151 {
		t.Fatalf("mid-year window %+v", w)
	}

	// Southern-hemisphere style window across new year.
	var wrap []int
	for d := 300; d <= 365; d++ {
		wrap = append(wrap, d)
	}
	for d := 1; d <= 50; d++ {
		wrap = append(wrap, d)
	}
	w = OperationalWindow(mk(wrap...))
	if w.Start != 300 || w.End != 50 || w.Length != 116 {
		t.Fatalf("wrapping window %+v", w)
	}
}
