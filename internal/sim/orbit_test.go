package sim

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/integrators"
	"github.com/san-kum/threebody/internal/physics"
)

// Chenciner-Montgomery figure-eight choreography: three unit masses chase
// each other along a shared figure-eight with period ~6.3259.
const figureEightPeriod = 6.32591398

func figureEight() (*physics.ThreeBody, dynamo.State) {
	tb, err := physics.NewThreeBody([3]float64{1, 1, 1}, 1.0, 0)
	if err != nil {
		panic(err)
	}
	x := dynamo.State{
		0.97000436, -0.24308753, 0.46620368, 0.43236573,
		-0.97000436, 0.24308753, 0.46620368, 0.43236573,
		0, 0, -0.93240737, -0.86473146,
	}
	return tb, x
}

// Circular equal-mass binary with a third body of negligible mass parked
// far away: the pair reduces to a Kepler two-body problem with period
// 2*pi*r/v = 4*pi.
func circularBinary() (*physics.ThreeBody, dynamo.State) {
	tb, err := physics.NewThreeBody([3]float64{1, 1, 1e-9}, 1.0, 0)
	if err != nil {
		panic(err)
	}
	x := dynamo.State{
		-1, 0, 0, -0.5,
		1, 0, 0, 0.5,
		50, 50, 0, 0,
	}
	return tb, x
}

func TestEnergyConservation_FigureEight(t *testing.T) {
	tb, x0 := figureEight()
	s := New(tb, integrators.NewRK4())

	cfg := Config{Dt: 1e-3, Steps: int(math.Round(figureEightPeriod / 1e-3))}
	result, err := s.Run(context.Background(), x0, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Outcome != Completed {
		t.Fatalf("outcome = %v, want completed", result.Outcome)
	}

	if result.EnergyDrift > 1e-7 {
		t.Errorf("relative energy drift %.3e over one period exceeds 1e-7", result.EnergyDrift)
	}
}

func TestEnergyDrift_ShrinksWithStepSize(t *testing.T) {
	driftAt := func(dt float64) float64 {
		tb, x0 := figureEight()
		s := New(tb, integrators.NewRK4())
		result, err := s.Run(context.Background(), x0, Config{Dt: dt, Duration: figureEightPeriod})
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		return result.EnergyDrift
	}

	coarse := driftAt(0.05)
	fine := driftAt(0.025)

	if fine >= coarse {
		t.Errorf("halving dt should reduce energy drift: dt=0.05 -> %.3e, dt=0.025 -> %.3e",
			coarse, fine)
	}
}

func TestDeterminism_BitIdenticalRuns(t *testing.T) {
	run := func() *Result {
		tb, x0 := figureEight()
		s := New(tb, integrators.NewRK4())
		result, err := s.Run(context.Background(), x0, Config{Dt: 0.01, Steps: 200})
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		return result
	}

	a := run()
	b := run()

	if a.Trajectory.Len() != b.Trajectory.Len() {
		t.Fatalf("trajectory lengths differ: %d vs %d", a.Trajectory.Len(), b.Trajectory.Len())
	}
	for i := 0; i < a.Trajectory.Len(); i++ {
		sa, sb := a.Trajectory.At(i), b.Trajectory.At(i)
		if sa.Time != sb.Time || sa.Energy != sb.Energy {
			t.Fatalf("sample %d metadata differs between identical runs", i)
		}
		for j := range sa.State {
			if sa.State[j] != sb.State[j] {
				t.Fatalf("sample %d component %d differs: %v vs %v", i, j, sa.State[j], sb.State[j])
			}
		}
	}
}

func TestTwoBodyReduction_OrbitCloses(t *testing.T) {
	tb, x0 := circularBinary()
	s := New(tb, integrators.NewRK4())

	period := 4 * math.Pi
	dt := 1e-3
	cfg := Config{Dt: dt, Steps: int(math.Round(period / dt))}

	result, err := s.Run(context.Background(), x0, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Outcome != Completed {
		t.Fatalf("outcome = %v, want completed", result.Outcome)
	}

	final := result.Trajectory.Final().State
	for _, body := range []int{0, 1} {
		dx := final[body*4] - x0[body*4]
		dy := final[body*4+1] - x0[body*4+1]
		if miss := math.Hypot(dx, dy); miss > 0.01 {
			t.Errorf("body %d missed its starting point by %.4f after one Kepler period", body+1, miss)
		}
	}
}

// Halving dt should shrink the final-state error of the binary orbit by
// roughly 2^4, the global order of RK4.
func TestStepHalving_FourthOrderOnOrbit(t *testing.T) {
	period := 4 * math.Pi

	missAt := func(dt float64) float64 {
		tb, x0 := circularBinary()
		s := New(tb, integrators.NewRK4())
		result, err := s.Run(context.Background(), x0, Config{Dt: dt, Steps: int(math.Round(period / dt))})
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		final := result.Trajectory.Final().State
		// Compare only the binary pair against its analytic return point.
		err2 := 0.0
		for _, i := range []int{0, 1, 4, 5} {
			d := final[i] - x0[i]
			err2 += d * d
		}
		return math.Sqrt(err2)
	}

	coarse := missAt(period / 128)
	fine := missAt(period / 256)

	if fine == 0 {
		t.Fatal("fine error unexpectedly zero")
	}
	ratio := coarse / fine
	if ratio < 8 || ratio > 32 {
		t.Errorf("error ratio %.2f outside 4th-order range [8, 32] (coarse %.3e, fine %.3e)",
			ratio, coarse, fine)
	}
}

func TestFigureEight_ReturnsToStart(t *testing.T) {
	tb, x0 := figureEight()
	s := New(tb, integrators.NewRK4())

	dt := 1e-3
	cfg := Config{Dt: dt, Steps: int(math.Round(figureEightPeriod / dt))}
	result, err := s.Run(context.Background(), x0, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	final := result.Trajectory.Final().State
	for body := 0; body < 3; body++ {
		dx := final[body*4] - x0[body*4]
		dy := final[body*4+1] - x0[body*4+1]
		if miss := math.Hypot(dx, dy); miss > 0.01 {
			t.Errorf("body %d ended %.4f from its initial position after one period", body+1, miss)
		}
	}
}

func TestNearCollision_DivergesReproducibly(t *testing.T) {
	// Two bodies 1e-160 apart with no softening: the first force
	// evaluation overflows and the first step is rejected.
	run := func() *Result {
		tb, err := physics.NewThreeBody([3]float64{1, 1, 1}, 1.0, 0)
		if err != nil {
			t.Fatal(err)
		}
		x0 := dynamo.State{
			0, 0, 0, 0,
			1e-160, 0, 0, 0,
			1, 1, 0, 0,
		}
		s := New(tb, integrators.NewRK4())
		result, err := s.Run(context.Background(), x0, Config{Dt: 1e-3, Steps: 100})
		if err != nil {
			t.Fatalf("run failed: %v", err)
		}
		return result
	}

	first := run()
	second := run()

	if first.Outcome != Diverged || first.Failure == nil {
		t.Fatalf("expected divergence, got outcome %v", first.Outcome)
	}
	if second.Failure == nil || first.Failure.Step != second.Failure.Step {
		t.Error("divergence step must be reproducible across runs")
	}

	// The partial trajectory stays internally consistent.
	prev := math.Inf(-1)
	for _, sample := range first.Trajectory.Samples() {
		if sample.Time <= prev && sample.Step != 0 {
			t.Errorf("timestamps not strictly increasing at step %d", sample.Step)
		}
		prev = sample.Time
		if !sample.State.IsFinite() {
			t.Errorf("non-finite state recorded at step %d", sample.Step)
		}
		if math.IsNaN(sample.Energy) || math.IsInf(sample.Energy, 0) {
			t.Errorf("non-finite energy recorded at step %d", sample.Step)
		}
	}
}
