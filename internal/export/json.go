package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/threebody/internal/config"
	"github.com/san-kum/threebody/internal/physics"
	"github.com/san-kum/threebody/internal/sim"
)

// RunData is the JSON export shape: run parameters, per-step times,
// energies and states, plus the final metrics. States stay in the flat
// [x, y, vx, vy] per-body layout.
type RunData struct {
	Masses      [physics.NumBodies]float64 `json:"masses"`
	G           float64                    `json:"g"`
	Softening   float64                    `json:"softening"`
	Integrator  string                     `json:"integrator"`
	Dt          float64                    `json:"dt"`
	Steps       int                        `json:"steps"`
	Outcome     string                     `json:"outcome"`
	DivergedAt  int                        `json:"diverged_at,omitempty"`
	EnergyDrift float64                    `json:"energy_drift"`
	Times       []float64                  `json:"times"`
	Energies    []float64                  `json:"energies"`
	States      [][]float64                `json:"states"`
	Metrics     map[string]float64         `json:"metrics,omitempty"`
}

func buildRunData(cfg *config.Config, result *sim.Result) RunData {
	data := RunData{
		Masses:      cfg.Masses(),
		G:           cfg.G,
		Softening:   cfg.Softening,
		Integrator:  cfg.IntegratorName(),
		Dt:          cfg.Dt,
		Steps:       result.Trajectory.Len() - 1,
		Outcome:     result.Outcome.String(),
		EnergyDrift: result.EnergyDrift,
		Times:       result.Trajectory.Times(),
		Energies:    result.Trajectory.Energies(),
		States:      make([][]float64, result.Trajectory.Len()),
		Metrics:     result.Metrics,
	}
	if result.Failure != nil {
		data.DivergedAt = result.Failure.Step
	}
	for i, sample := range result.Trajectory.Samples() {
		data.States[i] = sample.State
	}
	return data
}

func encodeJSON(w io.Writer, data RunData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteJSON encodes one run to w with indentation.
func WriteJSON(w io.Writer, cfg *config.Config, result *sim.Result) error {
	return encodeJSON(w, buildRunData(cfg, result))
}

// ExportJSON writes one run to a file.
func ExportJSON(path string, cfg *config.Config, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, cfg, result)
}
