package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/threebody/internal/config"
	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/physics"
	"github.com/san-kum/threebody/internal/sim"
)

// Store persists completed runs under a base directory, one subdirectory
// per run holding metadata.json and samples.csv. It is a consumer of
// finished trajectories; it never feeds anything back into a run.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Timestamp   time.Time          `json:"timestamp"`
	Masses      [3]float64         `json:"masses"`
	G           float64            `json:"g"`
	Softening   float64            `json:"softening"`
	Dt          float64            `json:"dt"`
	Steps       int                `json:"steps"`
	Integrator  string             `json:"integrator"`
	Outcome     string             `json:"outcome"`
	DivergedAt  int                `json:"diverged_at,omitempty"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
}

// Save writes one run to disk and returns its generated ID.
func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("run_%d", time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Timestamp:   time.Now(),
		Masses:      cfg.Masses(),
		G:           cfg.G,
		Softening:   cfg.Softening,
		Dt:          cfg.Dt,
		Steps:       result.Trajectory.Len() - 1,
		Integrator:  cfg.IntegratorName(),
		Outcome:     result.Outcome.String(),
		EnergyDrift: result.EnergyDrift,
		Metrics:     result.Metrics,
	}
	if result.Failure != nil {
		meta.DivergedAt = result.Failure.Step
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeSamples(filepath.Join(runDir, "samples.csv"), result.Trajectory); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSamples(path string, tr *sim.Trajectory) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	header := []string{"time"}
	for i := 1; i <= physics.NumBodies; i++ {
		header = append(header,
			fmt.Sprintf("x%d", i), fmt.Sprintf("y%d", i),
			fmt.Sprintf("vx%d", i), fmt.Sprintf("vy%d", i))
	}
	header = append(header, "energy")
	if err := w.Write(header); err != nil {
		return err
	}

	for _, sample := range tr.Samples() {
		row := make([]string, 0, len(header))
		row = append(row, formatFloat(sample.Time))
		for _, v := range sample.State {
			row = append(row, formatFloat(v))
		}
		row = append(row, formatFloat(sample.Energy))
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return w.Error()
}

// formatFloat keeps full precision so a reloaded trajectory matches the
// original bit for bit.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns metadata for every stored run.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

// Load reads one run's metadata.
func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadSamples reads one run's trajectory samples back in order.
func (s *Store) LoadSamples(runID string) ([]sim.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "samples.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("samples.csv for %s is empty", runID)
	}

	samples := make([]sim.Sample, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) != physics.StateDim+2 {
			return nil, fmt.Errorf("row %d has %d fields, want %d", i+1, len(rec), physics.StateDim+2)
		}
		vals := make([]float64, len(rec))
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d field %d: %w", i+1, j, err)
			}
			vals[j] = v
		}
		samples = append(samples, sim.Sample{
			Step:   i,
			Time:   vals[0],
			State:  dynamo.State(vals[1 : 1+physics.StateDim]),
			Energy: vals[len(vals)-1],
		})
	}
	return samples, nil
}
