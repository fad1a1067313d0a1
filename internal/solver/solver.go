package solver

import "fmt"

// Status tags one evaluation as usable or not. A Failure is ordinary data to
// the sweep loop, never a fault.
type Status int

const (
	Success Status = iota
	Failure
)

func (s Status) String() string {
	if s == Success {
		return "success"
	}
	return "failure"
}

// Options carries the per-call numerical settings.
type Options struct {
	// TruncationOrder is the number of positive and negative Fourier orders
	// retained; efficiencies are reported for orders -N..N.
	TruncationOrder int
	// Debug enables intermediate diagnostic output on the side channel. It
	// has no effect on the returned result.
	Debug bool
}

// Result is the outcome of one evaluation. When Status is Success,
// Efficiencies holds one value per order in ascending order index, aligned
// with Orders. When Status is Failure, Reason says why and the slices are nil.
type Result struct {
	Status       Status
	Reason       string
	Orders       []int
	Efficiencies []float64
}

// Failuref builds a Failure result.
func Failuref(format string, v ...interface{}) Result {
	return Result{Status: Failure, Reason: fmt.Sprintf(format, v...)}
}

// Solver computes the diffraction efficiency of a grating at one incidence
// angle and wavelength. Implementations must not panic across this boundary:
// any internal numerical failure surfaces as a Failure result.
type Solver interface {
	Evaluate(incidenceDeg, wavelengthUM float64, opts Options, g Grating) Result
}
