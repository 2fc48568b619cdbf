package solarphantom

import (
	"math"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/solar"
)

// FluxFunc returns the irradiance-derived power per unit area (W/m²) on a
// panel at the given latitude for each time sample of a day. Samples are
// seconds of local solar time since midnight. Implementations must be
// deterministic and side-effect free.
type FluxFunc func(latitude float64, dayOfYear int, times []float64, panelTilt float64) []float64

const (
	// solarConstant is the mean top-of-atmosphere irradiance in W/m².
	solarConstant = 1361.0
	// fluxRefYear anchors day-of-year to a calendar for the ephemeris.
	fluxRefYear = 2025
)

// MeeusFlux is the default clear-sky flux model: apparent solar declination
// from the meeus ephemeris, Kasten-Young air mass and a fixed-turbidity
// direct beam plus a diffuse term. Only horizontal panels are modeled; the
// tilt argument exists for interface compatibility and is ignored.
func MeeusFlux(latitude float64, dayOfYear int, times []float64, panelTilt float64) []float64 {
	_ = panelTilt
	out := make([]float64, len(times))
	latRad := latitude * math.Pi / 180
	sinLat, cosLat := math.Sincos(latRad)
	// Eccentricity correction of the Earth-Sun distance.
	ecc := 1 + 0.033*math.Cos(2*math.Pi*float64(dayOfYear-3)/365)
	g0 := solarConstant * ecc
	for i, t := range times {
		jde := julian.CalendarGregorianToJD(fluxRefYear, 1, float64(dayOfYear)+t/86400)
		_, decl := solar.ApparentEquatorial(jde)
		sinDec, cosDec := math.Sincos(decl.Rad())
		// Local solar time: noon at 43200 s puts the hour angle at zero.
		hour := 2*math.Pi*t/86400 - math.Pi
		cosZ := sinLat*sinDec + cosLat*cosDec*math.Cos(hour)
		if cosZ <= 0 {
			continue // sun below the horizon
		}
		zDeg := math.Acos(cosZ) * 180 / math.Pi
		// Kasten-Young relative air mass.
		am := 1 / (cosZ + 0.50572*math.Pow(96.07995-zDeg, -1.6364))
		// Clear-sky direct beam attenuation (Meinel-Laue).
		dni := g0 * math.Pow(0.7, math.Pow(am, 0.678))
		// Seasonal diffuse fraction on the horizontal.
		fh := 0.1 + 0.05*math.Sin(math.Pi*float64(dayOfYear-100)/365)
		out[i] = (dni + fh*g0) * cosZ
	}
	return out
}
