package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/threebody/internal/dynamo"
)

// ThreeBody is the gravitational three-body system. It holds the run
// parameters (masses, G, softening length) and implements the pure
// right-hand side over the flat state layout [x, y, vx, vy] per body.
type ThreeBody struct {
	masses    [NumBodies]float64
	g         float64
	softening float64
}

// NewThreeBody validates the physical parameters. Masses and G must be
// strictly positive; a zero softening length is allowed and selects the
// bare Newtonian force.
func NewThreeBody(masses [NumBodies]float64, g, softening float64) (*ThreeBody, error) {
	for i, m := range masses {
		if m <= 0 || math.IsNaN(m) || math.IsInf(m, 0) {
			return nil, fmt.Errorf("mass of body %d must be positive, got %v", i+1, m)
		}
	}
	if g <= 0 || math.IsNaN(g) || math.IsInf(g, 0) {
		return nil, fmt.Errorf("gravitational constant must be positive, got %v", g)
	}
	if softening < 0 || math.IsNaN(softening) {
		return nil, fmt.Errorf("softening length must be non-negative, got %v", softening)
	}
	return &ThreeBody{masses: masses, g: g, softening: softening}, nil
}

func (tb *ThreeBody) StateDim() int              { return StateDim }
func (tb *ThreeBody) Masses() [NumBodies]float64 { return tb.masses }
func (tb *ThreeBody) G() float64                 { return tb.g }
func (tb *ThreeBody) Softening() float64         { return tb.softening }

// Accelerations computes the net gravitational acceleration on each body
// from the positions in x. The pair force on i from j has magnitude
// G*mi*mj / (r^2 + eps^2) directed toward j (Plummer softening); the
// acceleration is that force divided by mi.
func (tb *ThreeBody) Accelerations(x dynamo.State) [NumBodies]mgl64.Vec2 {
	var acc [NumBodies]mgl64.Vec2
	eps2 := tb.softening * tb.softening

	for i := 0; i < NumBodies; i++ {
		pi := mgl64.Vec2{x[i*4], x[i*4+1]}
		for j := i + 1; j < NumBodies; j++ {
			pj := mgl64.Vec2{x[j*4], x[j*4+1]}
			r := pj.Sub(pi)
			r2 := r.Dot(r) + eps2
			inv := 1 / math.Sqrt(r2)
			inv3 := inv * inv * inv

			f := r.Mul(tb.g * tb.masses[i] * tb.masses[j] * inv3)
			acc[i] = acc[i].Add(f.Mul(1 / tb.masses[i]))
			acc[j] = acc[j].Sub(f.Mul(1 / tb.masses[j]))
		}
	}
	return acc
}

// Derive is the ODE right-hand side: position derivatives are the stored
// velocities, velocity derivatives the gravitational accelerations. Pure
// function of x; the system is autonomous so t is unused.
func (tb *ThreeBody) Derive(x dynamo.State, _ float64) dynamo.State {
	acc := tb.Accelerations(x)
	dx := make(dynamo.State, StateDim)
	for i := 0; i < NumBodies; i++ {
		dx[i*4] = x[i*4+2]
		dx[i*4+1] = x[i*4+3]
		dx[i*4+2] = acc[i].X()
		dx[i*4+3] = acc[i].Y()
	}
	return dx
}

// Energy returns total kinetic plus potential energy. The potential uses
// the softened separation so that it is the conserved quantity of the
// softened force law.
func (tb *ThreeBody) Energy(x dynamo.State) float64 {
	ke := 0.0
	pe := 0.0
	eps2 := tb.softening * tb.softening

	for i := 0; i < NumBodies; i++ {
		v := mgl64.Vec2{x[i*4+2], x[i*4+3]}
		ke += 0.5 * tb.masses[i] * v.Dot(v)

		pi := mgl64.Vec2{x[i*4], x[i*4+1]}
		for j := i + 1; j < NumBodies; j++ {
			pj := mgl64.Vec2{x[j*4], x[j*4+1]}
			r := pj.Sub(pi)
			pe -= tb.g * tb.masses[i] * tb.masses[j] / math.Sqrt(r.Dot(r)+eps2)
		}
	}
	return ke + pe
}

// Momentum returns the total linear momentum.
func (tb *ThreeBody) Momentum(x dynamo.State) mgl64.Vec2 {
	var p mgl64.Vec2
	for i := 0; i < NumBodies; i++ {
		p = p.Add(mgl64.Vec2{x[i*4+2], x[i*4+3]}.Mul(tb.masses[i]))
	}
	return p
}

// AngularMomentum returns the scalar angular momentum about the origin.
func (tb *ThreeBody) AngularMomentum(x dynamo.State) float64 {
	l := 0.0
	for i := 0; i < NumBodies; i++ {
		px, py := x[i*4], x[i*4+1]
		vx, vy := x[i*4+2], x[i*4+3]
		l += tb.masses[i] * (px*vy - py*vx)
	}
	return l
}
