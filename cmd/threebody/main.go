package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/threebody/internal/analysis"
	"github.com/san-kum/threebody/internal/config"
	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/export"
	"github.com/san-kum/threebody/internal/integrators"
	"github.com/san-kum/threebody/internal/metrics"
	"github.com/san-kum/threebody/internal/physics"
	"github.com/san-kum/threebody/internal/sim"
	"github.com/san-kum/threebody/internal/storage"
	"github.com/san-kum/threebody/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	dt         float64
	duration   float64
	steps      int
	integrator string
	gravity    float64
	softening  float64
	recenter   bool
	dbPath     string
	// Divergence/ensemble parameters
	delta float64
	runs  int
	// Output options
	outFile   string
	svgWidth  int
	svgHeight int
	dtList    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "threebody",
		Short: "three-body gravitational simulation lab",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".threebody", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store the trajectory",
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().StringVar(&dbPath, "db", "", "also append the run to this sqlite database")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy and separation for a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	replayCmd := &cobra.Command{
		Use:   "replay [run_id]",
		Short: "replay a stored trajectory in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  replayRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&outFile, "out", "", "output file (default stdout)")

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "render a stored run's orbits to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  svgRun,
	}
	svgCmd.Flags().StringVar(&outFile, "out", "orbits.svg", "output file")
	svgCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	svgCmd.Flags().IntVar(&svgHeight, "height", 600, "image height")

	divergenceCmd := &cobra.Command{
		Use:   "divergence",
		Short: "track perturbation growth and estimate the Lyapunov exponent",
		RunE:  runDivergence,
	}
	addConfigFlags(divergenceCmd)
	divergenceCmd.Flags().Float64Var(&delta, "delta", 1e-8, "initial perturbation")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run perturbed copies of a configuration in parallel",
		RunE:  runEnsemble,
	}
	addConfigFlags(ensembleCmd)
	ensembleCmd.Flags().Float64Var(&delta, "delta", 1e-8, "perturbation per copy")
	ensembleCmd.Flags().IntVar(&runs, "runs", 8, "number of perturbed copies")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "sweep step sizes on one configuration",
		RunE:  compareSteps,
	}
	addConfigFlags(compareCmd)
	compareCmd.Flags().StringVar(&dtList, "dts", "0.01,0.005,0.001", "comma-separated step sizes")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMASSES\tDT\tDURATION\tSOFTENING")
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				m := cfg.Masses()
				fmt.Fprintf(w, "%s\t%g/%g/%g\t%g\t%g\t%g\n",
					name, m[0], m[1], m[2], cfg.Dt, cfg.Duration, cfg.Softening)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, replayCmd, exportCmd, svgCmd,
		divergenceCmd, ensembleCmd, compareCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "use a named preset configuration")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep (overrides config)")
	cmd.Flags().Float64Var(&duration, "time", 0, "duration (overrides config)")
	cmd.Flags().IntVar(&steps, "steps", 0, "step count (overrides duration)")
	cmd.Flags().StringVar(&integrator, "integrator", "", "integrator: rk4 or euler")
	cmd.Flags().Float64Var(&gravity, "g", 0, "gravitational constant (overrides config)")
	cmd.Flags().Float64Var(&softening, "softening", -1, "softening length (overrides config)")
	cmd.Flags().BoolVar(&recenter, "recenter", false, "recenter on the center of mass")
}

// loadConfig resolves preset, config file, and flag overrides in that
// order: flags win, then the file, then the preset, then the default.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("integrator") {
		cfg.Integrator = integrator
	}
	if cmd.Flags().Changed("g") {
		cfg.G = gravity
	}
	if cmd.Flags().Changed("softening") {
		cfg.Softening = softening
	}
	if cmd.Flags().Changed("recenter") {
		cfg.Recenter = recenter
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newIntegrator(name string) dynamo.Integrator {
	if name == "euler" {
		return integrators.NewEuler()
	}
	return integrators.NewRK4()
}

func buildSimulator(cfg *config.Config) (*sim.Simulator, error) {
	system, err := cfg.System()
	if err != nil {
		return nil, err
	}
	s := sim.New(system, newIntegrator(cfg.IntegratorName()))
	s.AddMetric(metrics.NewEnergyDrift(system))
	s.AddMetric(metrics.NewMinSeparation())
	return s, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	simulator, err := buildSimulator(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("running %d steps at dt=%g...\n", cfg.SimConfig().StepCount(), cfg.Dt)
	start := time.Now()

	result, err := simulator.Run(context.Background(), cfg.InitialState(), cfg.SimConfig())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	if dbPath != "" {
		db, err := storage.OpenDB(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.SaveRun(runID, cfg, result); err != nil {
			return err
		}
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("outcome: %s\n", result.Outcome)
	if result.Failure != nil {
		fmt.Printf("  %v\n", result.Failure)
		fmt.Println("  try a smaller --dt or a positive --softening")
	}
	fmt.Printf("energy drift: %.3e\n", result.EnergyDrift)
	fmt.Println("metrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6g\n", name, val)
	}

	if cfg.WarnSeparation > 0 {
		if minSep, ok := result.Metrics["min_separation"]; ok && minSep < cfg.WarnSeparation {
			fmt.Printf("warning: bodies came within %.3e (threshold %.3e); results near close encounters are step-size sensitive\n",
				minSep, cfg.WarnSeparation)
		}
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runsList, err := st.List()
	if err != nil {
		return err
	}
	if len(runsList) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSTEPS\tDT\tINTEG\tOUTCOME\tDRIFT")
	for _, run := range runsList {
		fmt.Fprintf(w, "%s\t%s\t%d\t%g\t%s\t%s\t%.2e\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Dt,
			run.Integrator,
			run.Outcome,
			run.EnergyDrift,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s (%s, %d samples)\n\n", meta.ID, meta.Outcome, len(samples))

	tr := sim.NewTrajectory(samples)
	fmt.Println(viz.EnergyPlot(tr.Energies(), 70, 14))
	fmt.Println()

	seps := make([]float64, len(samples))
	for i, sample := range samples {
		seps[i] = physics.MinSeparation(sample.State)
	}
	fmt.Println(viz.SeparationPlot(seps, 70, 14))
	return nil
}

func replayRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	return viz.Run(samples)
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}

	if outFile == "" {
		return export.WriteStoredJSON(os.Stdout, meta, samples)
	}
	if err := export.ExportStoredJSON(outFile, meta, samples); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outFile)
	return nil
}

func svgRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}

	svg := export.OrbitSVG(sim.NewTrajectory(samples), svgWidth, svgHeight)
	if svg == "" {
		return fmt.Errorf("not enough samples to render")
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func runDivergence(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	system, err := cfg.System()
	if err != nil {
		return err
	}
	x0 := cfg.InitialState()
	simCfg := cfg.SimConfig()
	newInteg := func() dynamo.Integrator { return newIntegrator(cfg.IntegratorName()) }

	seps := analysis.Divergence(system, newInteg, x0, cfg.Dt, simCfg.StepCount(), delta)
	fmt.Println(viz.LogSeparationPlot(seps, 70, 14))
	fmt.Println()

	growth := 0.0
	if len(seps) > 0 && delta > 0 {
		growth = seps[len(seps)-1] / delta
	}
	lambda := analysis.LyapunovExponent(system, newInteg, x0, cfg.Dt, cfg.Dt*float64(simCfg.StepCount()), delta)
	fmt.Printf("initial perturbation: %.3e\n", delta)
	fmt.Printf("final/initial separation: %.3e\n", growth)
	fmt.Printf("estimated lyapunov exponent: %.4f\n", lambda)
	if lambda > 0 {
		fmt.Println("positive exponent: nearby trajectories separate exponentially")
	}
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if runs < 1 {
		return fmt.Errorf("runs must be at least 1")
	}

	x0 := cfg.InitialState()
	states := make([]dynamo.State, runs)
	states[0] = x0.Clone()
	for i := 1; i < runs; i++ {
		// Rotate through components so the copies do not all share one
		// perturbation direction.
		states[i] = analysis.Perturb(x0, i%physics.StateDim, delta*float64(i))
	}

	ensemble := sim.NewEnsemble(func() *sim.Simulator {
		simulator, err := buildSimulator(cfg)
		if err != nil {
			panic(err)
		}
		return simulator
	})

	start := time.Now()
	results, err := ensemble.Run(context.Background(), states, cfg.SimConfig())
	if err != nil {
		return err
	}
	fmt.Printf("%d runs in %v\n\n", runs, time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tOUTCOME\tDRIFT\tMIN SEP\tFINAL X1")
	for i, result := range results {
		final := result.Trajectory.Final()
		fmt.Fprintf(w, "%d\t%s\t%.2e\t%.3g\t%.6f\n",
			i, result.Outcome, result.EnergyDrift,
			result.Metrics["min_separation"], final.State[0])
	}
	return w.Flush()
}

func compareSteps(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var dts []float64
	for _, field := range strings.Split(dtList, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil || v <= 0 {
			return fmt.Errorf("bad step size %q", field)
		}
		dts = append(dts, v)
	}

	// The sweep holds total simulated time fixed while dt varies.
	if cfg.Duration <= 0 {
		cfg.Duration = cfg.Dt * float64(cfg.Steps)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DT\tSTEPS\tOUTCOME\tDRIFT\tWALL TIME")
	for _, stepSize := range dts {
		trial := *cfg
		trial.Dt = stepSize
		trial.Steps = 0 // keep the duration fixed across the sweep

		simulator, err := buildSimulator(&trial)
		if err != nil {
			return err
		}

		start := time.Now()
		result, err := simulator.Run(context.Background(), trial.InitialState(), trial.SimConfig())
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%g\t%d\t%s\t%.3e\t%v\n",
			stepSize, result.Trajectory.Len()-1, result.Outcome,
			result.EnergyDrift, time.Since(start).Round(time.Microsecond))
	}
	return w.Flush()
}
