package solarphantom

// Small numeric helpers shared by the formulator and the simulator.

// linspace returns n evenly spaced values from start to stop inclusive.
func linspace(start, stop float64, n int) []float64 {
	if n < 2 {
		panic("linspace needs at least two samples")
	}
	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

// clampMax caps v at hi and reports whether it did.
func clampMax(v, hi float64) (float64, bool) {
	if v > hi {
		return hi, true
	}
	return v, false
}

// minOf returns the smallest element of a non-empty slice.
func minOf(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
