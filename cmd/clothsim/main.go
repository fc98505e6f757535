package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	preset     string

	nodesX      int
	nodesY      int
	restLength  float64
	stiffness   float64
	gravity     float64
	dt          float64
	dampen      float64
	substeps    int
	relaxIters  int
	wind        bool
	gust        float64
	seed        int64
	ticks       int
	sampleEvery int

	frameRate int
	theme     string

	outFile       string
	metric        string
	analyzeMetric string
	svgWidth      int
	svgHeight     int
	braille       bool
	benchTicks    int
	benchRuns     int
	scriptFile    string
	sweepParams   []string
	sweepMetric   string

	logger *log.Logger
)

// main runs the live view when no subcommand is given. It exits with status 1
// if the command fails.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		if logger != nil {
			logger.Error(err)
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "clothsim",
		Short:         "mass-spring cloth simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger(os.Stderr)
		},
		RunE: runLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".clothsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	addSimFlags(rootCmd)
	addLiveFlags(rootCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&scriptFile, "script", "", "scenario file with scripted interaction events (yaml)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive cloth in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	addLiveFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot metric series of a run (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&metric, "metric", "", "plot only this metric")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "sway frequency and series statistics",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&analyzeMetric, "metric", "centroid_x", "series to analyse")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export metric series as CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render the final lattice of a run as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 600, "image height")
	exportSVGCmd.Flags().BoolVar(&braille, "braille", false, "render through the braille canvas")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "write the resolved configuration as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  writeConfig,
	}
	addSimFlags(configCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure tick throughput across lattice sizes",
		Args:  cobra.NoArgs,
		RunE:  benchLattice,
	}
	benchCmd.Flags().IntVar(&benchTicks, "ticks", 300, "ticks per size")
	benchCmd.Flags().IntVar(&benchRuns, "runs", 1, "concurrent simulators per size")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search physics parameters against a metric",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSimFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "name=v1,v2,... (stiffness, gravity, dampen, substeps, relax_iters, rest_length)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "max_stretch", "metric to minimise")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, analyzeCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd, configCmd, benchCmd, sweepCmd)
	return rootCmd
}

func setupLogger(w io.Writer) error {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	logger = log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "clothsim",
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
	return nil
}

func addSimFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "drape", "preset configuration")
	f.IntVar(&nodesX, "nodes-x", config.DefaultNodesX, "lattice columns")
	f.IntVar(&nodesY, "nodes-y", config.DefaultNodesY, "lattice rows")
	f.Float64Var(&restLength, "rest-length", 20, "spring rest length")
	f.Float64Var(&stiffness, "stiffness", 20000, "spring stiffness")
	f.Float64Var(&gravity, "gravity", 1000, "gravitational acceleration")
	f.Float64Var(&dt, "dt", 1.0/60, "tick duration in seconds")
	f.Float64Var(&dampen, "dampen", 0.99, "velocity retained per substep")
	f.IntVar(&substeps, "substeps", 5, "substeps per tick")
	f.IntVar(&relaxIters, "relax-iters", 3, "constraint relaxation passes per substep")
	f.BoolVar(&wind, "wind", false, "enable the wind zone")
	f.Float64Var(&gust, "gust", 0, "wind gust amplitude (0 for steady wind)")
	f.Int64Var(&seed, "seed", 0, "gust noise seed")
	f.IntVar(&ticks, "ticks", config.DefaultTicks, "ticks to simulate")
	f.IntVar(&sampleEvery, "sample-every", config.DefaultSampleEvery, "ticks between metric samples")
}

func addLiveFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&frameRate, "fps", 0, "frame rate (default 1/dt)")
	cmd.Flags().StringVar(&theme, "theme", "linen", "colour theme")
}

// resolveConfig starts from the preset, overlays the config file and then any
// flag set explicitly on the command line.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("nodes-x") {
		cfg.Lattice.NodesX = nodesX
	}
	if flags.Changed("nodes-y") {
		cfg.Lattice.NodesY = nodesY
	}
	if flags.Changed("rest-length") {
		cfg.Physics.RestLength = restLength
	}
	if flags.Changed("stiffness") {
		cfg.Physics.Stiffness = stiffness
	}
	if flags.Changed("gravity") {
		cfg.Physics.Gravity = gravity
	}
	if flags.Changed("dt") {
		cfg.Physics.Dt = dt
	}
	if flags.Changed("dampen") {
		cfg.Physics.DampenFactor = dampen
	}
	if flags.Changed("substeps") {
		cfg.Physics.Substeps = substeps
	}
	if flags.Changed("relax-iters") {
		cfg.Physics.RelaxIters = relaxIters
	}
	if flags.Changed("wind") {
		cfg.Wind.Enabled = wind
	}
	if flags.Changed("gust") {
		cfg.Wind.Gust = gust
	}
	if flags.Changed("seed") {
		cfg.Wind.Seed = seed
	}
	if flags.Changed("ticks") {
		cfg.Run.Ticks = ticks
	}
	if flags.Changed("sample-every") {
		cfg.Run.SampleEvery = sampleEvery
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
