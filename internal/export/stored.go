package export

import (
	"io"
	"os"

	"github.com/san-kum/threebody/internal/sim"
	"github.com/san-kum/threebody/internal/storage"
)

// WriteStoredJSON exports a previously stored run from its metadata and
// reloaded samples.
func WriteStoredJSON(w io.Writer, meta *storage.RunMetadata, samples []sim.Sample) error {
	tr := sim.NewTrajectory(samples)
	data := RunData{
		Masses:      meta.Masses,
		G:           meta.G,
		Softening:   meta.Softening,
		Integrator:  meta.Integrator,
		Dt:          meta.Dt,
		Steps:       meta.Steps,
		Outcome:     meta.Outcome,
		DivergedAt:  meta.DivergedAt,
		EnergyDrift: meta.EnergyDrift,
		Times:       tr.Times(),
		Energies:    tr.Energies(),
		States:      make([][]float64, tr.Len()),
		Metrics:     meta.Metrics,
	}
	for i, sample := range tr.Samples() {
		data.States[i] = sample.State
	}
	return encodeJSON(w, data)
}

// ExportStoredJSON writes a stored run to a file.
func ExportStoredJSON(path string, meta *storage.RunMetadata, samples []sim.Sample) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteStoredJSON(file, meta, samples)
}
