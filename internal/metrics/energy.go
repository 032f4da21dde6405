package metrics

import (
	"math"

	"github.com/san-kum/threebody/internal/dynamo"
)

// EnergyDrift tracks the worst relative deviation of total energy from
// the first observed sample. A well-behaved fixed-step run keeps this
// small; growth signals a step size too large for the configuration.
type EnergyDrift struct {
	dyn     dynamo.Hamiltonian
	initial float64
	max     float64
	samples int
}

func NewEnergyDrift(dyn dynamo.Hamiltonian) *EnergyDrift {
	return &EnergyDrift{dyn: dyn}
}

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(x dynamo.State, t float64) {
	energy := e.dyn.Energy(x)

	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
		e.max = math.Max(e.max, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.max }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.max = 0
	e.samples = 0
}
