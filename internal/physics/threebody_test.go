package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/threebody/internal/dynamo"
)

func TestNewThreeBody_Validation(t *testing.T) {
	tests := []struct {
		name      string
		masses    [NumBodies]float64
		g         float64
		softening float64
		wantErr   bool
	}{
		{"valid", [NumBodies]float64{1, 1, 1}, 1.0, 0.1, false},
		{"zero softening ok", [NumBodies]float64{1, 0.5, 2}, 1.0, 0, false},
		{"zero mass", [NumBodies]float64{1, 0, 1}, 1.0, 0.1, true},
		{"negative mass", [NumBodies]float64{1, -2, 1}, 1.0, 0.1, true},
		{"NaN mass", [NumBodies]float64{1, math.NaN(), 1}, 1.0, 0.1, true},
		{"zero G", [NumBodies]float64{1, 1, 1}, 0, 0.1, true},
		{"negative G", [NumBodies]float64{1, 1, 1}, -1, 0.1, true},
		{"negative softening", [NumBodies]float64{1, 1, 1}, 1.0, -0.1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewThreeBody(tt.masses, tt.g, tt.softening)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewThreeBody() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDerive_VelocityPassthrough(t *testing.T) {
	tb, err := NewThreeBody([NumBodies]float64{1, 1, 1}, 1.0, 0.1)
	if err != nil {
		t.Fatal(err)
	}

	x := dynamo.State{
		0, 0, 0.5, -0.25,
		1.5, 0, 0.1, 0.2,
		0.75, 1.3, -0.3, 0.4,
	}
	dx := tb.Derive(x, 0)

	for i := 0; i < NumBodies; i++ {
		if dx[i*4] != x[i*4+2] || dx[i*4+1] != x[i*4+3] {
			t.Errorf("body %d: position derivative %v,%v != velocity %v,%v",
				i, dx[i*4], dx[i*4+1], x[i*4+2], x[i*4+3])
		}
	}
}

// Newton's third law: internal forces sum to zero, so the mass-weighted
// accelerations must cancel exactly (same products, opposite signs).
func TestAccelerations_MomentumConserved(t *testing.T) {
	tb, err := NewThreeBody([NumBodies]float64{2.5, 0.7, 1.1}, 1.0, 0.05)
	if err != nil {
		t.Fatal(err)
	}

	x := dynamo.State{
		-0.3, 0.9, 0, 0,
		1.2, -0.4, 0, 0,
		0.1, 2.3, 0, 0,
	}
	acc := tb.Accelerations(x)
	masses := tb.Masses()

	var net mgl64.Vec2
	for i := 0; i < NumBodies; i++ {
		net = net.Add(acc[i].Mul(masses[i]))
	}

	if net.Len() > 1e-12 {
		t.Errorf("net force on system should vanish, got %v", net)
	}
}

func TestAccelerations_PairMagnitude(t *testing.T) {
	// Bodies 1 and 2 sit 2 apart; body 3 is parked far enough away that
	// its pull is below the tolerance. Expect |a1| = G*m2/r^2 = 0.25.
	tb, err := NewThreeBody([NumBodies]float64{1, 1, 1}, 1.0, 0)
	if err != nil {
		t.Fatal(err)
	}

	x := dynamo.State{
		-1, 0, 0, 0,
		1, 0, 0, 0,
		0, 1e6, 0, 0,
	}
	acc := tb.Accelerations(x)

	if math.Abs(acc[0].X()-0.25) > 1e-9 {
		t.Errorf("ax on body 1 = %v, want 0.25", acc[0].X())
	}
	if math.Abs(acc[0].Y()) > 1e-9 {
		t.Errorf("ay on body 1 = %v, want ~0", acc[0].Y())
	}
	if math.Abs(acc[1].X()+0.25) > 1e-9 {
		t.Errorf("ax on body 2 = %v, want -0.25", acc[1].X())
	}
}

func TestAccelerations_SofteningBoundsForce(t *testing.T) {
	tb, err := NewThreeBody([NumBodies]float64{1, 1, 1}, 1.0, 0.1)
	if err != nil {
		t.Fatal(err)
	}

	// Two coincident bodies: without softening this is singular.
	x := dynamo.State{
		0, 0, 0, 0,
		0, 0, 0, 0,
		3, 4, 0, 0,
	}
	acc := tb.Accelerations(x)

	for i, a := range acc {
		if math.IsNaN(a.X()) || math.IsInf(a.X(), 0) || math.IsNaN(a.Y()) || math.IsInf(a.Y(), 0) {
			t.Errorf("body %d: softened acceleration not finite: %v", i+1, a)
		}
	}
}

func TestEnergy_HandComputed(t *testing.T) {
	tb, err := NewThreeBody([NumBodies]float64{1, 1, 1}, 1.0, 0)
	if err != nil {
		t.Fatal(err)
	}

	// At rest: E = -G*(1/r12 + 1/r13 + 1/r23) = -(1/2 + 1/2 + 1/(2*sqrt2)).
	x := dynamo.State{
		0, 0, 0, 0,
		2, 0, 0, 0,
		0, 2, 0, 0,
	}
	want := -(0.5 + 0.5 + 1/(2*math.Sqrt2))
	if got := tb.Energy(x); math.Abs(got-want) > 1e-12 {
		t.Errorf("Energy = %v, want %v", got, want)
	}

	// Kinetic term: one body moving at speed 2 adds 0.5*1*4.
	x[2] = 2
	if got := tb.Energy(x); math.Abs(got-(want+2)) > 1e-12 {
		t.Errorf("Energy with motion = %v, want %v", got, want+2)
	}
}

func TestPackUnpack_Roundtrip(t *testing.T) {
	s := SystemState{
		{Mass: 1.0, Pos: mgl64.Vec2{0, 0}, Vel: mgl64.Vec2{0, 1}},
		{Mass: 0.1, Pos: mgl64.Vec2{1.5, 0}, Vel: mgl64.Vec2{0, -3}},
		{Mass: 0.05, Pos: mgl64.Vec2{0.75, 1.3}, Vel: mgl64.Vec2{-2.5, 1.5}},
	}

	got := Unpack(Pack(s), s.Masses())
	if got != s {
		t.Errorf("roundtrip mismatch:\ngot  %+v\nwant %+v", got, s)
	}
}

func TestRecenter(t *testing.T) {
	masses := [NumBodies]float64{1.0, 0.1, 0.05}
	x := dynamo.State{
		0, 0, 0, 1,
		1.5, 0, 0, -3,
		0.75, 1.3, -2.5, 1.5,
	}

	rc := Recenter(x, masses)
	pos, vel := CenterOfMass(rc, masses)

	if pos.Len() > 1e-12 {
		t.Errorf("center of mass not at origin after recenter: %v", pos)
	}
	if vel.Len() > 1e-12 {
		t.Errorf("net momentum not zero after recenter: %v", vel)
	}

	// Relative geometry is preserved.
	d0 := mgl64.Vec2{x[4] - x[0], x[5] - x[1]}.Len()
	d1 := mgl64.Vec2{rc[4] - rc[0], rc[5] - rc[1]}.Len()
	if math.Abs(d0-d1) > 1e-12 {
		t.Errorf("recenter changed pairwise distance: %v vs %v", d0, d1)
	}
}

func TestMinSeparation(t *testing.T) {
	x := dynamo.State{
		0, 0, 0, 0,
		3, 4, 0, 0,
		0, 1, 0, 0,
	}
	if got := MinSeparation(x); math.Abs(got-1.0) > 1e-12 {
		t.Errorf("MinSeparation = %v, want 1", got)
	}
}
