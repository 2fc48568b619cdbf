package solarphantom

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

/* Exporters for the records produced by the core. They consume plain data
and perform no physics. */

const joulePerkWh = 3.6e6

// DayDate formats a day of year as its calendar date in the reference year.
func DayDate(day int) string {
	return time.Date(fluxRefYear, 1, 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, day-1).Format("Jan 02")
}

// String formats the window as a calendar span.
func (w Window) String() string {
	switch {
	case w.Length == 0:
		return "none (infeasible year-round)"
	case w.Full():
		return "year-round"
	}
	return fmt.Sprintf("%s to %s (%d days)", DayDate(w.Start), DayDate(w.End), w.Length)
}

// ExportMargins streams a year sweep as CSV: day, date, margin in J and
// kWh, and whether the design survives that day.
func ExportMargins(w io.Writer, latitude float64, margins []DayMargin) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"day", "date", "latitude", "margin_J", "margin_kWh", "survives"}); err != nil {
		return err
	}
	for _, m := range margins {
		rec := []string{
			strconv.Itoa(m.Day),
			DayDate(m.Day),
			strconv.FormatFloat(latitude, 'f', 2, 64),
			strconv.FormatFloat(m.Margin, 'g', -1, 64),
			strconv.FormatFloat(m.Margin/joulePerkWh, 'f', 3, 64),
			strconv.FormatBool(m.Margin >= 0),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportTrajectory streams a battery trajectory as CSV: time of day in
// hours, stored energy in J and kWh, and the capacity ceiling.
func ExportTrajectory(w io.Writer, times []float64, traj EnergyTrajectory, capacity float64) error {
	if len(times) != len(traj) {
		return fmt.Errorf("trajectory has %d samples for %d times", len(traj), len(times))
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"hour", "energy_J", "energy_kWh", "capacity_J"}); err != nil {
		return err
	}
	for i, t := range times {
		rec := []string{
			strconv.FormatFloat(t/3600, 'f', 3, 64),
			strconv.FormatFloat(traj[i], 'g', -1, 64),
			strconv.FormatFloat(traj[i]/joulePerkWh, 'f', 3, 64),
			strconv.FormatFloat(capacity, 'g', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteReport renders an optimization outcome as a markdown report.
func WriteReport(w io.Writer, res OptimizeResult, latitude float64) error {
	var err error
	pr := func(format string, args ...interface{}) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}
	pr("# Solar Phantom Simulation Report\n\n")
	pr("**Date**: %s\n\n", time.Now().Format("2006-01-02 15:04"))
	pr("## 1. Mission Parameters\n")
	pr("- **Target Latitude**: %.1f deg\n", latitude)
	pr("- **Payload To Carry**: %.2f kg\n\n", res.Design.PayloadMass)
	if !res.Feasible {
		pr("## 2. Feasibility\n")
		pr("**VERDICT**: PERPETUAL FLIGHT INFEASIBLE\n")
		pr("%s\n", res.Reason)
		return err
	}
	pr("## 2. Optimized Aircraft Design\n")
	pr("- **Wingspan**: %.2f m\n", res.Design.Wingspan)
	pr("- **Aspect Ratio**: %.2f\n", res.Design.AspectRatio)
	pr("- **Total Weight**: %.2f kg\n", res.Design.TotalWeight)
	pr("- **Battery Mass**: %.2f kg\n", res.Design.BatteryMass)
	pr("- **Battery Energy Density**: %.1f Wh/kg\n", res.Design.EnergyDensity)
	pr("- **Cruise Speed**: %.2f m/s\n\n", res.Design.Velocity)
	pr("## 3. Feasibility\n")
	pr("**VERDICT**: PERPETUAL FLIGHT POSSIBLE\n")
	pr("The design balances solar collection against consumption for 24-hour survival ")
	pr("(battery capacity %.1f kWh, minimum state %.1f kWh).\n",
		res.MaxCapacity/joulePerkWh, res.Trajectory.Min()/joulePerkWh)
	return err
}
