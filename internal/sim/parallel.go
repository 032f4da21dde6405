package sim

import (
	"context"
	"sync"

	"github.com/san-kum/threebody/internal/dynamo"
)

// Ensemble runs independent trajectories in parallel, one goroutine per
// initial state. Runs share nothing: the factory builds a fresh Simulator
// (and therefore fresh integrator scratch buffers) per run. Used for
// perturbation and divergence studies, where each run is an independent
// serial recurrence.
type Ensemble struct {
	newSim func() *Simulator
}

func NewEnsemble(newSim func() *Simulator) *Ensemble {
	return &Ensemble{newSim: newSim}
}

// Run integrates every initial state under the same Config and returns
// the results in input order. Cancellation is coarse: a cancelled context
// stops each run at its next step boundary. The first error (if any) is
// returned alongside whatever results completed.
func (e *Ensemble) Run(ctx context.Context, states []dynamo.State, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(states))
	errs := make([]error, len(states))

	var wg sync.WaitGroup
	for i, x0 := range states {
		wg.Add(1)
		go func(idx int, x0 dynamo.State) {
			defer wg.Done()
			results[idx], errs[idx] = e.newSim().Run(ctx, x0, cfg)
		}(i, x0)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
