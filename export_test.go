package solarphantom

import (
	"bytes"
	"strings"
	"testing"
)

func TestDayDate(t *testing.T) {
	cases := map[int]string{1: "Jan 01", 32: "Feb 01", 172: "Jun 21", 365: "Dec 31"}
	for day, want := range cases {
		if got := DayDate(day); got != want {
			t.Errorf("DayDate(%d) = %q, want %q", day, got, want)
		}
	}
}

func TestWindowString(t *testing.T) {
	if got := (Window{}).String(); got != "none (infeasible year-round)" {
		t.Errorf("empty window: %q", got)
	}
	if got := (Window{Start: 1, End: 365, Length: 365}).String(); got != "year-round" {
		t.Errorf("full window: %q", got)
	}
	got := Window{Start: 100, End: 250, Length: 151}.String()
	if got != "Apr 10 to Sep 07 (151 days)" {
		t.Errorf("mid-year window: %q", got)
	}
}

func TestExportMargins(t *testing.T) {
	margins := []DayMargin{
		{Day: 1, Margin: -3.6e6},
		{Day: 172, Margin: 7.2e6},
	}
	var buf bytes.Buffer
	if err := ExportMargins(&buf, 20, margins); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "day,date,latitude,margin_J,margin_kWh,survives" {
		t.Errorf("header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "1,Jan 01,20.00,") || !strings.HasSuffix(lines[1], ",false") {
		t.Errorf("deficit row: %q", lines[1])
	}
	if !strings.Contains(lines[1], "-1.000") {
		t.Errorf("deficit row kWh: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "172,Jun 21,") || !strings.HasSuffix(lines[2], ",true") {
		t.Errorf("surplus row: %q", lines[2])
	}
}

func TestExportTrajectory(t *testing.T) {
	times := []float64{0, 43200, 86400}
	traj := EnergyTrajectory{1.8e6, 3.6e6, 1.8e6}
	var buf bytes.Buffer
	if err := ExportTrajectory(&buf, times, traj, 7.2e6); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines", len(lines))
	}
	if lines[0] != "hour,energy_J,energy_kWh,capacity_J" {
		t.Errorf("header: %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "12.000,") || !strings.Contains(lines[2], ",1.000,") {
		t.Errorf("noon row: %q", lines[2])
	}

	if err := ExportTrajectory(&buf, times, traj[:2], 7.2e6); err == nil {
		t.Fatal("expected a length mismatch error")
	}
}

func TestWriteReport(t *testing.T) {
	res := OptimizeResult{
		Feasible: true,
		Design: AircraftDesign{
			Wingspan: 22.5, AspectRatio: 18.2, TotalWeight: 61.3,
			BatteryMass: 14.8, Velocity: 12.1, PayloadMass: 5, EnergyDensity: 350,
		},
		Trajectory:  EnergyTrajectory{2e6, 8e6, 2e6},
		MaxCapacity: 14.8 * 350 * 3600,
	}
	var buf bytes.Buffer
	if err := WriteReport(&buf, res, 20); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"# Solar Phantom Simulation Report",
		"**Target Latitude**: 20.0 deg",
		"**Wingspan**: 22.50 m",
		"**VERDICT**: PERPETUAL FLIGHT POSSIBLE",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}

	buf.Reset()
	bad := OptimizeResult{Feasible: false, Reason: "no feasible solution found"}
	if err := WriteReport(&buf, bad, 55); err != nil {
		t.Fatal(err)
	}
	out = buf.String()
	if !strings.Contains(out, "**VERDICT**: PERPETUAL FLIGHT INFEASIBLE") {
		t.Error("infeasible report missing its verdict")
	}
	if !strings.Contains(out, "no feasible solution found") {
		t.Error("infeasible report missing its reason")
	}
	if strings.Contains(out, "Optimized Aircraft Design") {
		t.Error("infeasible report must not print a design")
	}
}
