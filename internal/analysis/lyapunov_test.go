package analysis

import (
	"testing"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/integrators"
	"github.com/san-kum/threebody/internal/physics"
)

func newRK4() dynamo.Integrator { return integrators.NewRK4() }

// Free-fall collapse of three equal masses from a scalene triangle: the
// close encounters make nearby initial conditions separate much faster
// than linear error growth would.
func freeFallTriple(t *testing.T) (*physics.ThreeBody, dynamo.State) {
	t.Helper()
	tb, err := physics.NewThreeBody([3]float64{1, 1, 1}, 1.0, 0.05)
	if err != nil {
		t.Fatal(err)
	}
	x0 := dynamo.State{
		0, 0, 0, 0,
		1.5, 0, 0, 0,
		0.75, 1.3, 0, 0,
	}
	return tb, x0
}

func TestPerturb(t *testing.T) {
	x0 := dynamo.State{1, 2, 3}
	xp := Perturb(x0, 1, 1e-8)

	if xp[1] != 2+1e-8 {
		t.Errorf("perturbed component = %v, want %v", xp[1], 2+1e-8)
	}
	if x0[1] != 2 {
		t.Error("Perturb must not modify the original state")
	}
}

func TestDivergence_SeriesShape(t *testing.T) {
	tb, x0 := freeFallTriple(t)

	seps := Divergence(tb, newRK4, x0, 0.005, 200, 1e-8)

	if len(seps) != 201 {
		t.Fatalf("expected 201 separations, got %d", len(seps))
	}
	if seps[0] != 1e-8 {
		t.Errorf("series must start at the initial perturbation, got %v", seps[0])
	}
	for i, s := range seps {
		if s < 0 {
			t.Fatalf("negative separation at index %d", i)
		}
	}
}

func TestDivergence_SuperLinearGrowth(t *testing.T) {
	tb, x0 := freeFallTriple(t)

	delta := 1e-8
	seps := Divergence(tb, newRK4, x0, 0.005, 1600, delta)
	if len(seps) < 1601 {
		t.Fatalf("divergence run ended early after %d samples", len(seps))
	}

	final := seps[len(seps)-1]
	mid := seps[len(seps)/2]

	// Linear error propagation at most doubles between the midpoint and
	// the end; chaotic growth multiplies many times over.
	if final < 10*delta {
		t.Errorf("perturbation barely grew: %v after 1600 steps", final)
	}
	if mid > 0 && final/mid < 3 {
		t.Errorf("growth looks linear: mid %v, final %v", mid, final)
	}
}

func TestLyapunovExponent_PositiveForChaoticConfig(t *testing.T) {
	tb, x0 := freeFallTriple(t)

	lambda := LyapunovExponent(tb, newRK4, x0, 0.005, 8.0, 1e-8)

	if lambda <= 0 {
		t.Errorf("free-fall triple should have a positive Lyapunov exponent, got %v", lambda)
	}
}

func TestLyapunovExponent_DegenerateInputs(t *testing.T) {
	tb, x0 := freeFallTriple(t)

	if got := LyapunovExponent(tb, newRK4, nil, 0.01, 1.0, 1e-8); got != 0 {
		t.Errorf("empty state should give 0, got %v", got)
	}
	if got := LyapunovExponent(tb, newRK4, x0, 0.01, 1.0, 0); got != 0 {
		t.Errorf("zero perturbation should give 0, got %v", got)
	}
}
