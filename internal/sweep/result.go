package sweep

// StepResult is the immutable outcome of one sweep step. Results are appended
// to the controller's sequence in step order and never removed or reordered.
type StepResult struct {
	Index      int
	Coordinate float64
	Input      PhysicalInput

	// OK is true when the solver produced efficiencies for this step. When
	// false, FailureReason says why (angle resolution or solver failure).
	OK            bool
	FailureReason string

	// Orders and Efficiencies are populated only when OK, one efficiency per
	// order in ascending order index.
	Orders       []int
	Efficiencies []float64
}

// RunStatus classifies the whole run. The string values are what the
// # Progress section carries.
type RunStatus string

const (
	InProgress RunStatus = "inProgress"
	Succeeded  RunStatus = "succeeded"
	SomeFailed RunStatus = "someFailed"
	AllFailed  RunStatus = "allFailed"
)

// Progress is the condensed view written to the # Progress section and the
// optional progress artifact after every step.
type Progress struct {
	Status         RunStatus
	CompletedSteps int
	TotalSteps     int
}

// DeriveStatus computes the run status from the completed-step count and the
// monotonic success/failure flags. It is a pure function; the controller
// recomputes it after every step rather than storing it.
func DeriveStatus(completed, total int, anySuccess, anyFailure bool) RunStatus {
	switch {
	case completed < total:
		return InProgress
	case anySuccess && anyFailure:
		return SomeFailed
	case anyFailure:
		return AllFailed
	default:
		return Succeeded
	}
}
