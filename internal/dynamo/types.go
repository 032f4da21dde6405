package dynamo

import (
	"fmt"
	"math"
)

// State is a flat ODE state vector. For the three-body system the layout
// is [x, y, vx, vy] per body, bodies in order.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// IsFinite reports whether every component is a real number.
func (s State) IsFinite() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

// System is the right-hand side of an autonomous ODE: Derive returns
// dy/dt for state x at time t. Implementations must be pure; the
// integrator calls Derive several times per step with trial states.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

// Hamiltonian is implemented by systems that can report total energy,
// used for conservation diagnostics.
type Hamiltonian interface {
	Energy(x State) float64
}

// Integrator advances a state by one fixed time step.
type Integrator interface {
	Step(dyn System, x State, t float64, dt float64) State
}

// Metric accumulates a scalar diagnostic over the course of a run.
type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

// Observer is notified after every accepted step.
type Observer interface {
	OnStep(x State, t float64)
}

// DivergenceError reports the step at which integration produced a
// non-finite state or energy. Step is 1-based: the trajectory holds
// samples 0 through Step-1.
type DivergenceError struct {
	Step int
	Time float64
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("diverged at step %d (t=%.4f): non-finite state", e.Step, e.Time)
}
