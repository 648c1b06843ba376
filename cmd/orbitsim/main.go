package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/experiment"
	"github.com/san-kum/orbitsim/internal/simstate"
	"github.com/san-kum/orbitsim/internal/storage"
	"github.com/san-kum/orbitsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	verbose    bool

	preset     string
	bodiesFile string
	runName    string
	dt         float64
	duration   float64
	integrator string
	kernel     string
	progress   bool
	printStep  int

	stride  int
	outFile string

	frame   int
	focus   string
	elapsed float64
	speed   float64
	samples int

	benchBodies int
	benchIters  int
)

var logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "orbitsim"})

func main() {
	rootCmd := &cobra.Command{
		Use:           "orbitsim",
		Short:         "n-body orbit propagation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "propagate a body list and report its conservation metrics",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	runFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect [run_id]",
		Short: "show the header and end states of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  inspectRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy and angular momentum drift",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run states to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().IntVar(&stride, "stride", 1, "export every n-th step")
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	trailCmd := &cobra.Command{
		Use:   "trail [run_id]",
		Short: "print the trail samples at one frame",
		Args:  cobra.ExactArgs(1),
		RunE:  showTrail,
	}
	trailCmd.Flags().IntVar(&frame, "frame", -1, "frame to build the trail at (negative counts from the end)")
	trailCmd.Flags().StringVar(&focus, "focus", "", "sample positions relative to this body")
	trailCmd.Flags().Float64Var(&elapsed, "elapsed", 0, "play forward for this many wall-clock seconds")
	trailCmd.Flags().Float64Var(&speed, "speed", config.DefaultSpeed, "simulated days per wall-clock second")
	trailCmd.Flags().IntVar(&samples, "samples", 5, "newest samples to print per body (0 for all)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tBODIES\tDT\tDURATION\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%d\t%g\t%g\t%s\n", name, p.Bodies().Len(), p.Dt, p.Duration, p.Description)
			}
			w.Flush()
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "compare force kernels on one state",
		Args:  cobra.NoArgs,
		RunE:  benchKernels,
	}
	benchCmd.Flags().StringVar(&preset, "preset", "", "benchmark a preset body list")
	benchCmd.Flags().IntVar(&benchBodies, "bodies", 256, "number of random bodies when no preset is given")
	benchCmd.Flags().IntVar(&benchIters, "iters", 200, "evaluations per kernel")

	rootCmd.AddCommand(runCmd, listCmd, inspectCmd, plotCmd, exportCSVCmd, exportJSONCmd, trailCmd, presetsCmd, benchCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error(err.Error())
		stop()
		os.Exit(1)
	}
}

func runFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "use preset bodies and timing")
	cmd.Flags().StringVar(&bodiesFile, "bodies", "", "body list file (yaml)")
	cmd.Flags().StringVar(&runName, "name", "", "run name (default preset or config name)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep in seconds")
	cmd.Flags().Float64Var(&duration, "duration", config.DefaultDuration, "propagation time in seconds")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator (euler, rk4)")
	cmd.Flags().StringVar(&kernel, "kernel", "optimized", "force kernel (reference, optimized, native)")
	cmd.Flags().BoolVar(&progress, "progress", true, "log progress while integrating")
	cmd.Flags().IntVar(&printStep, "print-step", config.DefaultPrintStep, "steps between progress reports")
}

// loadConfig builds the run configuration: defaults, then the config file,
// then the preset, then explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	cfg.DataDir = dataDir

	flags := cmd.Flags()
	if flags.Changed("preset") {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		p.Apply(preset, cfg)
		cfg.Name = preset
	}
	if flags.Changed("bodies") {
		cfg.Preset = ""
		cfg.BodiesFile = bodiesFile
		if !flags.Changed("name") {
			cfg.Name = strings.TrimSuffix(filepath.Base(bodiesFile), filepath.Ext(bodiesFile))
		}
	}
	if flags.Changed("name") {
		cfg.Name = runName
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("duration") {
		cfg.Duration = duration
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("kernel") {
		cfg.Kernel = kernel
	}
	if flags.Changed("progress") {
		cfg.Progress = progress
	}
	if flags.Changed("print-step") {
		cfg.PrintStep = printStep
	}
	return cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.WithLogger(logger))
	if err != nil {
		return err
	}
	defer exp.Close()

	sim, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	results, err := exp.Evaluate(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render("run " + storage.ID(exp.Key())))
	fmt.Println(viz.Field("path", sim.Path()))
	fmt.Println(viz.Field("bodies", strings.Join(exp.Bodies().Names(), ", ")))
	fmt.Println(viz.Field("rows", fmt.Sprint(sim.Steps())))
	fmt.Println()
	fmt.Println(viz.Title.Render("metrics"))
	for _, name := range []string{"energy_drift", "momentum_drift"} {
		v := results[name]
		fmt.Println(viz.MetricLabel.Render(name+":"), viz.Drift(v, fmt.Sprintf("%.3e", v)))
	}
	fmt.Println(viz.Field("stability", fmt.Sprintf("%.4f", results["stability"])))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tBODIES\tDT\tSTEPS\tINTEG\tKERNEL\tE_DRIFT\tCREATED")

	for _, run := range runs {
		created, drift := "-", "-"
		if !run.Timestamp.IsZero() {
			created = run.Timestamp.Format("2006-01-02 15:04:05")
		}
		if v, ok := run.Metrics["energy_drift"]; ok {
			drift = fmt.Sprintf("%.2e", v)
		}
		fmt.Fprintf(w, "%s\t%d\t%g\t%d\t%s\t%s\t%s\t%s\n",
			run.ID,
			len(run.Bodies),
			run.Dt,
			run.Steps,
			run.Integrator,
			run.Kernel,
			drift,
			created,
		)
	}

	return w.Flush()
}

// openRun opens the trajectory of a run and its metadata. Runs without a
// metadata sidecar return nil metadata.
func openRun(id string) (*simstate.File, *storage.RunMetadata, error) {
	st := storage.New(dataDir)
	sim, err := simstate.Open(filepath.Join(dataDir, id+simstate.Ext))
	if err != nil {
		return nil, nil, err
	}
	meta, err := st.Load(id)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			sim.Close()
			return nil, nil, err
		}
		meta = nil
	}
	return sim, meta, nil
}

func bodyNames(meta *storage.RunMetadata, n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprint(i)
		if meta != nil && i < len(meta.Bodies) {
			names[i] = meta.Bodies[i]
		}
	}
	return names
}

func inspectRun(cmd *cobra.Command, args []string) error {
	sim, meta, err := openRun(args[0])
	if err != nil {
		return err
	}
	defer sim.Close()

	h := sim.Header()
	header := strings.Join([]string{
		viz.Field("version", fmt.Sprint(h.Version)),
		viz.Field("rows", fmt.Sprint(h.Rows)),
		viz.Field("bodies", fmt.Sprint(h.Bodies)),
		viz.Field("dt", fmt.Sprintf("%g s", h.Dt)),
		viz.Field("span", fmt.Sprintf("%g s", sim.Times()[sim.Steps()-1])),
	}, "\n")
	fmt.Println(viz.Title.Render(args[0]))
	fmt.Println(viz.Panel.Render(header))

	names := bodyNames(meta, sim.Bodies())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tSTEP\tRX\tRY\tRZ\tVX\tVY\tVZ")
	for _, step := range []int{0, -1} {
		row := sim.State(step)
		for b, name := range names {
			s := row[6*b : 6*b+6]
			fmt.Fprintf(w, "%s\t%d\t%.6e\t%.6e\t%.6e\t%.6e\t%.6e\t%.6e\n",
				name, (step+sim.Steps())%sim.Steps(), s[0], s[1], s[2], s[3], s[4], s[5])
		}
	}
	return w.Flush()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	sim, meta, err := openRun(args[0])
	if err != nil {
		return err
	}
	defer sim.Close()

	out := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return storage.ExportCSV(out, sim, bodyNames(meta, sim.Bodies()), stride)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta)
}
