package sim

import (
	"errors"
	"fmt"

	"github.com/san-kum/threebody/internal/dynamo"
)

// ErrInvalidConfig wraps every configuration rejection so callers can
// distinguish bad input from runtime failures with errors.Is.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config fixes the integration parameters for one run. It is validated
// once before any stepping begins and never consulted for retries: a run
// that diverges will diverge again with the same Config.
type Config struct {
	// Dt is the fixed step size.
	Dt float64
	// Steps is the number of steps to take. If zero, Duration is used.
	Steps int
	// Duration is the total simulated time, used when Steps is zero.
	Duration float64
}

func (c Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidConfig, c.Dt)
	}
	if c.Steps < 0 {
		return fmt.Errorf("%w: steps must not be negative, got %d", ErrInvalidConfig, c.Steps)
	}
	if c.Steps == 0 && c.Duration <= 0 {
		return fmt.Errorf("%w: either steps or a positive duration is required", ErrInvalidConfig)
	}
	return nil
}

// StepCount resolves Steps/Duration into a concrete step count.
func (c Config) StepCount() int {
	if c.Steps > 0 {
		return c.Steps
	}
	return int(c.Duration / c.Dt)
}

// Sample is one recorded instant: the step index, its timestamp, the full
// state, and the total energy at that state.
type Sample struct {
	Step   int
	Time   float64
	State  dynamo.State
	Energy float64
}

// Trajectory is the ordered history of one run, starting with the initial
// state at step 0. Append-only while the driver runs; consumers treat it
// as read-only.
type Trajectory struct {
	samples []Sample
}

// NewTrajectory rebuilds a trajectory from previously recorded samples,
// e.g. when loading a stored run.
func NewTrajectory(samples []Sample) *Trajectory {
	return &Trajectory{samples: samples}
}

func (tr *Trajectory) Len() int        { return len(tr.samples) }
func (tr *Trajectory) At(i int) Sample { return tr.samples[i] }

// Samples returns the samples in chronological order. The returned slice
// is shared with the trajectory and must not be modified.
func (tr *Trajectory) Samples() []Sample { return tr.samples }

func (tr *Trajectory) Final() Sample { return tr.samples[len(tr.samples)-1] }

func (tr *Trajectory) Times() []float64 {
	out := make([]float64, len(tr.samples))
	for i, s := range tr.samples {
		out[i] = s.Time
	}
	return out
}

func (tr *Trajectory) Energies() []float64 {
	out := make([]float64, len(tr.samples))
	for i, s := range tr.samples {
		out[i] = s.Energy
	}
	return out
}

func (tr *Trajectory) append(s Sample) {
	tr.samples = append(tr.samples, s)
}

// Outcome distinguishes a run that finished its configured steps from one
// halted early by numerical divergence.
type Outcome int

const (
	Completed Outcome = iota
	Diverged
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Diverged:
		return "diverged"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the full product of one run. On divergence the trajectory is
// the valid partial history up to the last finite state and Failure
// carries the failing step.
type Result struct {
	Trajectory  *Trajectory
	Outcome     Outcome
	Failure     *dynamo.DivergenceError
	EnergyDrift float64
	Metrics     map[string]float64
}
