package integrators

import "github.com/san-kum/threebody/internal/dynamo"

// Euler is the explicit first-order scheme. It drifts badly on orbital
// problems and exists as the accuracy baseline RK4 is compared against.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	dx := dyn.Derive(x, t)
	result := make(dynamo.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
