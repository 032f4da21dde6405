package metrics

import (
	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/physics"
)

// MinSeparation records the closest any two bodies came during a run.
// Callers compare it against a warning threshold to flag physically
// suspicious near-singular approaches without aborting the run.
type MinSeparation struct {
	min     float64
	samples int
}

func NewMinSeparation() *MinSeparation {
	return &MinSeparation{}
}

func (m *MinSeparation) Name() string { return "min_separation" }

func (m *MinSeparation) Observe(x dynamo.State, t float64) {
	sep := physics.MinSeparation(x)
	if m.samples == 0 || sep < m.min {
		m.min = sep
	}
	m.samples++
}

func (m *MinSeparation) Value() float64 { return m.min }

func (m *MinSeparation) Reset() {
	m.min = 0
	m.samples = 0
}
