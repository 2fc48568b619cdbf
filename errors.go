package solarphantom

import "fmt"

// DomainError reports a physically invalid input, such as a non-positive
// velocity or wing area. It aborts the evaluation that raised it and is
// never downgraded to a warning.
type DomainError struct {
	// Op names the operation that rejected the input.
	Op string
	// Quantity names the offending quantity.
	Quantity string
	// Value is the rejected value.
	Value float64
}

func (e DomainError) Error() string {
	return fmt.Sprintf("%s: %s = %g is out of the physical domain", e.Op, e.Quantity, e.Value)
}

// ConsistencyError reports an invariant violated beyond the configured
// tolerance, typically the structural mass closure of a solved design.
type ConsistencyError struct {
	Invariant string
	Residual  float64
	Tol       float64
}

func (e ConsistencyError) Error() string {
	return fmt.Sprintf("%s violated: residual %g exceeds tolerance %g", e.Invariant, e.Residual, e.Tol)
}
