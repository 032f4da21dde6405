// Package physics implements the gravitational three-body model.
//
// [ThreeBody] is the ODE right-hand side fed to the integrator: it maps a
// flat 12-component state (position and velocity per body) to its time
// derivative (velocity and gravitational acceleration per body). The pair
// force uses Plummer softening: a softening length epsilon is added in
// quadrature to each pairwise separation, bounding the force as bodies
// approach each other. With epsilon = 0 the bare Newtonian force is used
// and close encounters are expected to blow up; the simulation driver
// detects the resulting non-finite states and halts.
//
// [ThreeBody] also implements [dynamo.Hamiltonian]; the potential term
// uses the same softened separation as the force law so the reported
// energy is the conserved quantity of the softened dynamics.
package physics
