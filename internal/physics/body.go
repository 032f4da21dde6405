package physics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/threebody/internal/dynamo"
)

// NumBodies is fixed: this package models exactly three point masses.
const NumBodies = 3

// StateDim is the flat state size: position and velocity, 2D, per body.
const StateDim = NumBodies * 4

// Body is one point mass at an instant.
type Body struct {
	Mass float64
	Pos  mgl64.Vec2
	Vel  mgl64.Vec2
}

// SystemState is the complete configuration of all three bodies at one
// instant. It is a value type; copies are independent.
type SystemState [NumBodies]Body

// Masses returns the three masses in body order.
func (s SystemState) Masses() [NumBodies]float64 {
	return [NumBodies]float64{s[0].Mass, s[1].Mass, s[2].Mass}
}

// Pack flattens a SystemState into the integrator's state layout
// [x, y, vx, vy] per body. Masses are carried by the ThreeBody system,
// not the state vector.
func Pack(s SystemState) dynamo.State {
	x := make(dynamo.State, StateDim)
	for i, b := range s {
		x[i*4] = b.Pos.X()
		x[i*4+1] = b.Pos.Y()
		x[i*4+2] = b.Vel.X()
		x[i*4+3] = b.Vel.Y()
	}
	return x
}

// Unpack rebuilds a SystemState from a flat state vector and the run's
// masses. It is the accessor visualization and reporting code use to
// read trajectory samples.
func Unpack(x dynamo.State, masses [NumBodies]float64) SystemState {
	var s SystemState
	for i := range s {
		s[i] = Body{
			Mass: masses[i],
			Pos:  mgl64.Vec2{x[i*4], x[i*4+1]},
			Vel:  mgl64.Vec2{x[i*4+2], x[i*4+3]},
		}
	}
	return s
}

// CenterOfMass returns the mass-weighted mean position and velocity.
func CenterOfMass(x dynamo.State, masses [NumBodies]float64) (pos, vel mgl64.Vec2) {
	total := 0.0
	for i := 0; i < NumBodies; i++ {
		m := masses[i]
		total += m
		pos = pos.Add(mgl64.Vec2{x[i*4], x[i*4+1]}.Mul(m))
		vel = vel.Add(mgl64.Vec2{x[i*4+2], x[i*4+3]}.Mul(m))
	}
	return pos.Mul(1 / total), vel.Mul(1 / total)
}

// Recenter returns a copy of x shifted so the center of mass sits at the
// origin with zero net momentum. Keeps long runs from drifting out of
// frame.
func Recenter(x dynamo.State, masses [NumBodies]float64) dynamo.State {
	pos, vel := CenterOfMass(x, masses)
	out := x.Clone()
	for i := 0; i < NumBodies; i++ {
		out[i*4] -= pos.X()
		out[i*4+1] -= pos.Y()
		out[i*4+2] -= vel.X()
		out[i*4+3] -= vel.Y()
	}
	return out
}

// MinSeparation returns the smallest pairwise distance between bodies.
func MinSeparation(x dynamo.State) float64 {
	min := -1.0
	for i := 0; i < NumBodies; i++ {
		pi := mgl64.Vec2{x[i*4], x[i*4+1]}
		for j := i + 1; j < NumBodies; j++ {
			pj := mgl64.Vec2{x[j*4], x[j*4+1]}
			d := pj.Sub(pi).Len()
			if min < 0 || d < min {
				min = d
			}
		}
	}
	return min
}
