package analysis

import (
	"math"

	"github.com/san-kum/threebody/internal/dynamo"
)

// Perturb returns a copy of x0 with component i displaced by delta.
func Perturb(x0 dynamo.State, i int, delta float64) dynamo.State {
	xp := x0.Clone()
	xp[i] += delta
	return xp
}

// Divergence integrates x0 and a copy perturbed by delta in its first
// position component, recording the separation after every step. The
// returned series starts at the initial separation delta. For a chaotic
// configuration the series grows super-linearly; for a regular one it
// grows at most polynomially.
//
// Both trajectories use their own integrator from newInteg, since
// steppers keep scratch state.
func Divergence(
	dyn dynamo.System,
	newInteg func() dynamo.Integrator,
	x0 dynamo.State,
	dt float64,
	steps int,
	delta float64,
) []float64 {
	x := x0.Clone()
	xp := Perturb(x0, 0, delta)

	ia := newInteg()
	ib := newInteg()

	seps := make([]float64, 0, steps+1)
	seps = append(seps, delta)

	for i := 0; i < steps; i++ {
		t := dt * float64(i)
		x = ia.Step(dyn, x, t, dt)
		xp = ib.Step(dyn, xp, t, dt)

		if !x.IsFinite() || !xp.IsFinite() {
			break
		}
		seps = append(seps, xp.Sub(x).Norm())
	}

	return seps
}

// LyapunovExponent estimates the largest Lyapunov exponent by running a
// reference and a perturbed trajectory side by side, accumulating the
// log of their separation growth, and renormalizing the perturbed state
// back to the initial offset whenever the separation exceeds one. The
// estimate is the mean log growth rate per unit time; positive means
// chaos.
func LyapunovExponent(
	dyn dynamo.System,
	newInteg func() dynamo.Integrator,
	x0 dynamo.State,
	dt, duration float64,
	delta float64,
) float64 {
	if len(x0) == 0 || delta <= 0 {
		return 0
	}

	x := x0.Clone()
	xp := Perturb(x0, 0, delta)

	ia := newInteg()
	ib := newInteg()

	steps := int(duration / dt)
	sumLog := 0.0
	count := 0

	for i := 0; i < steps; i++ {
		t := dt * float64(i)
		x = ia.Step(dyn, x, t, dt)
		xp = ib.Step(dyn, xp, t, dt)

		if !x.IsFinite() || !xp.IsFinite() {
			break
		}

		sep := xp.Sub(x).Norm()
		if sep > 0 {
			sumLog += math.Log(sep / delta)
			count++
		}

		// Renormalize to keep the perturbation in the linear regime.
		if sep > 1.0 {
			scale := delta / sep
			for j := range xp {
				xp[j] = x[j] + (xp[j]-x[j])*scale
			}
		}
	}

	if count == 0 {
		return 0
	}
	return sumLog / (float64(count) * dt)
}
