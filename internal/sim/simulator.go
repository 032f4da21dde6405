package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/threebody/internal/dynamo"
)

// Simulator drives one system/integrator pair through fixed-step runs.
// It owns no mutable state between runs; a Simulator may be reused, but
// not concurrently (the integrator keeps scratch buffers).
type Simulator struct {
	dyn       dynamo.System
	integ     dynamo.Integrator
	metrics   []dynamo.Metric
	observers []dynamo.Observer
}

func New(dyn dynamo.System, integ dynamo.Integrator) *Simulator {
	return &Simulator{dyn: dyn, integ: integ}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

// Run integrates x0 under cfg and returns the trajectory with one sample
// per step, including the initial state at step 0. A step that produces a
// non-finite state or energy halts the run: the partial trajectory up to
// the previous step is returned with Outcome Diverged. Divergence is
// deterministic, so there are no retries; the remedy (smaller dt, added
// softening) belongs to the caller.
func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(x0) != s.dyn.StateDim() {
		return nil, fmt.Errorf("%w: state has %d components, system wants %d",
			ErrInvalidConfig, len(x0), s.dyn.StateDim())
	}
	if !x0.IsFinite() {
		return nil, fmt.Errorf("%w: initial state is not finite", ErrInvalidConfig)
	}

	steps := cfg.StepCount()
	result := &Result{
		Trajectory: &Trajectory{samples: make([]Sample, 0, steps+1)},
		Outcome:    Completed,
		Metrics:    make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	initialEnergy := s.energy(x)
	s.record(result, Sample{Step: 0, Time: 0, State: x, Energy: initialEnergy})

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		// Timestamps come from the step index, not accumulation, so two
		// runs of the same Config agree bit for bit.
		t := cfg.Dt * float64(i+1)
		next := s.integ.Step(s.dyn, x, cfg.Dt*float64(i), cfg.Dt)
		energy := s.energy(next)

		if !next.IsFinite() || math.IsNaN(energy) || math.IsInf(energy, 0) {
			result.Outcome = Diverged
			result.Failure = &dynamo.DivergenceError{Step: i + 1, Time: t}
			break
		}

		x = next
		s.record(result, Sample{Step: i + 1, Time: t, State: x, Energy: energy})
	}

	finalEnergy := result.Trajectory.Final().Energy
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) record(result *Result, sample Sample) {
	result.Trajectory.append(sample)
	for _, m := range s.metrics {
		m.Observe(sample.State, sample.Time)
	}
	for _, obs := range s.observers {
		obs.OnStep(sample.State, sample.Time)
	}
}

func (s *Simulator) energy(x dynamo.State) float64 {
	if h, ok := s.dyn.(dynamo.Hamiltonian); ok {
		return h.Energy(x)
	}
	return 0
}
