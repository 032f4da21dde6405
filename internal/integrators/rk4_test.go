package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/threebody/internal/dynamo"
)

// Harmonic oscillator x'' = -x with analytic solution (cos t, -sin t)
// from x0 = (1, 0).
type harmonicOscillator struct{}

func (h *harmonicOscillator) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (h *harmonicOscillator) StateDim() int { return 2 }

func integrate(integ dynamo.Integrator, x0 dynamo.State, dt float64, steps int) dynamo.State {
	dyn := &harmonicOscillator{}
	x := x0.Clone()
	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, float64(i)*dt, dt)
	}
	return x
}

func TestRK4_Accuracy(t *testing.T) {
	dt := 0.01
	steps := 100
	x := integrate(NewRK4(), dynamo.State{1, 0}, dt, steps)

	tEnd := float64(steps) * dt
	expectedX := math.Cos(tEnd)
	expectedV := -math.Sin(tEnd)

	if math.Abs(x[0]-expectedX) > 1e-8 {
		t.Errorf("position error too large: got %.10f, expected %.10f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-8 {
		t.Errorf("velocity error too large: got %.10f, expected %.10f", x[1], expectedV)
	}
}

// Halving the step should shrink the global error by about 2^4 = 16.
func TestRK4_FourthOrderConvergence(t *testing.T) {
	tEnd := 1.0
	analytic := dynamo.State{math.Cos(tEnd), -math.Sin(tEnd)}

	errAt := func(dt float64) float64 {
		steps := int(math.Round(tEnd / dt))
		x := integrate(NewRK4(), dynamo.State{1, 0}, dt, steps)
		return x.Sub(analytic).Norm()
	}

	coarse := errAt(0.1)
	fine := errAt(0.05)

	if fine == 0 {
		t.Fatal("fine error unexpectedly zero")
	}
	ratio := coarse / fine
	if ratio < 10 || ratio > 22 {
		t.Errorf("error ratio %.2f outside 4th-order range [10, 22] (coarse %.3e, fine %.3e)",
			ratio, coarse, fine)
	}
}

func TestRK4_Deterministic(t *testing.T) {
	a := integrate(NewRK4(), dynamo.State{1, 0}, 0.01, 500)
	b := integrate(NewRK4(), dynamo.State{1, 0}, 0.01, 500)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("component %d differs between identical runs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestRK4_ResultDoesNotAliasScratch(t *testing.T) {
	integ := NewRK4()
	dyn := &harmonicOscillator{}

	x1 := integ.Step(dyn, dynamo.State{1, 0}, 0, 0.01)
	saved := x1.Clone()
	integ.Step(dyn, x1, 0.01, 0.01)

	for i := range x1 {
		if x1[i] != saved[i] {
			t.Fatal("a later Step mutated a previously returned state")
		}
	}
}

func TestEuler_FirstOrderBaseline(t *testing.T) {
	dt := 0.01
	steps := 100
	tEnd := float64(steps) * dt

	euler := integrate(NewEuler(), dynamo.State{1, 0}, dt, steps)
	rk4 := integrate(NewRK4(), dynamo.State{1, 0}, dt, steps)
	analytic := dynamo.State{math.Cos(tEnd), -math.Sin(tEnd)}

	eulerErr := euler.Sub(analytic).Norm()
	rk4Err := rk4.Sub(analytic).Norm()

	if eulerErr < 1e-4 {
		t.Errorf("euler error implausibly small: %.3e", eulerErr)
	}
	if rk4Err*100 > eulerErr {
		t.Errorf("rk4 (%.3e) should beat euler (%.3e) by orders of magnitude", rk4Err, eulerErr)
	}
}
