package sweep

import (
	"fmt"

	"github.com/beamline-tools/greff/internal/monitoring"
	"github.com/beamline-tools/greff/internal/solver"
)

// SnapshotWriter persists the current run state. Snapshot is called once
// before the first step and once after every completed step, always with the
// full result sequence to date; each call must leave the artifact a complete,
// parseable snapshot.
type SnapshotWriter interface {
	Snapshot(p Progress, results []StepResult) error
}

// StepObserver receives each completed step, after it has been persisted by
// the SnapshotWriter. Observer errors are logged and do not stop the sweep.
type StepObserver interface {
	StepCompleted(r StepResult, p Progress) error
}

// Controller runs one sweep: strictly sequential, ascending step order, one
// solver call per step, a snapshot write after every step. It exclusively
// owns the result sequence and the aggregate flags for the run's lifetime.
type Controller struct {
	cfg       *Config
	solver    solver.Solver
	writer    SnapshotWriter
	observers []StepObserver

	results    []StepResult
	anySuccess bool
	anyFailure bool
}

// NewController validates the configuration and prepares a run.
func NewController(cfg *Config, s solver.Solver, w SnapshotWriter, observers ...StepObserver) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sweep configuration: %w", err)
	}
	if s == nil {
		return nil, fmt.Errorf("no solver provided")
	}
	if w == nil {
		return nil, fmt.Errorf("no snapshot writer provided")
	}
	return &Controller{cfg: cfg, solver: s, writer: w, observers: observers}, nil
}

// Results returns the result sequence accumulated so far. The returned slice
// must not be mutated.
func (c *Controller) Results() []StepResult { return c.results }

// Status returns the run status derived from the current state.
func (c *Controller) Status() RunStatus {
	return DeriveStatus(len(c.results), c.cfg.TotalSteps(), c.anySuccess, c.anyFailure)
}

// Run executes every step in order. Per-step failures (angle resolution,
// solver) are recorded as failed results and never abort the run; only a
// failure to persist the primary snapshot does.
func (c *Controller) Run() error {
	total := c.cfg.TotalSteps()

	// Initial snapshot: a reader polling the artifacts sees a valid
	// in-progress state before the first step completes.
	if err := c.snapshot(); err != nil {
		return err
	}

	for i := 0; i < total; i++ {
		r := c.evaluateStep(i)
		c.results = append(c.results, r)
		if r.OK {
			c.anySuccess = true
		} else {
			c.anyFailure = true
		}

		if err := c.snapshot(); err != nil {
			return err
		}
		p := c.progress()
		for _, obs := range c.observers {
			if err := obs.StepCompleted(r, p); err != nil {
				monitoring.Logf("sweep: step observer failed at step %d: %v", i, err)
			}
		}
	}
	return nil
}

// evaluateStep resolves the physical input for step i and invokes the solver.
// Every failure path yields a failed StepResult.
func (c *Controller) evaluateStep(i int) StepResult {
	coord := c.cfg.Coordinate(i)
	r := StepResult{Index: i, Coordinate: coord}

	in, err := c.cfg.ResolveStep(coord)
	if err != nil {
		r.FailureReason = err.Error()
		monitoring.Debugf("sweep: step %d (%g): %v", i, coord, err)
		return r
	}
	r.Input = in

	res := c.solver.Evaluate(in.IncidenceDeg, in.WavelengthUM,
		solver.Options{TruncationOrder: c.cfg.TruncationOrder, Debug: c.cfg.DebugOutput}, c.cfg.Grating)
	if res.Status != solver.Success {
		r.FailureReason = res.Reason
		monitoring.Debugf("sweep: step %d (%g): solver failure: %s", i, coord, res.Reason)
		return r
	}
	r.OK = true
	r.Orders = res.Orders
	r.Efficiencies = res.Efficiencies
	return r
}

func (c *Controller) progress() Progress {
	return Progress{
		Status:         c.Status(),
		CompletedSteps: len(c.results),
		TotalSteps:     c.cfg.TotalSteps(),
	}
}

func (c *Controller) snapshot() error {
	if err := c.writer.Snapshot(c.progress(), c.results); err != nil {
		return fmt.Errorf("writing sweep snapshot after %d steps: %w", len(c.results), err)
	}
	return nil
}
