package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/clothsim/internal/analysis"
	"github.com/san-kum/clothsim/internal/automation"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/export"
	"github.com/san-kum/clothsim/internal/metrics"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/san-kum/clothsim/internal/storage"
	"github.com/san-kum/clothsim/internal/viz"
	"github.com/spf13/cobra"
)

func presetName(cmd *cobra.Command) string {
	if configFile != "" && !cmd.Flags().Changed("preset") {
		return "custom"
	}
	return preset
}

func newStore() *storage.Store {
	st := storage.New(dataDir)
	st.SetLogger(logger.WithPrefix("storage"))
	return st
}

// resolveRunID returns args[0], or the most recent run when no id is given.
func resolveRunID(st *storage.Store, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	id, err := st.Latest()
	if errors.Is(err, storage.ErrRunNotFound) {
		return "", fmt.Errorf("no runs in %s; start one with 'clothsim run'", dataDir)
	}
	return id, err
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	setup, err := cfg.Setup()
	if err != nil {
		return err
	}

	s, err := sim.New(setup)
	if err != nil {
		return err
	}
	s.SetLogger(logger.WithPrefix("sim"))
	for _, m := range metrics.Defaults(10 * cfg.Extent()) {
		s.AddMetric(m)
	}

	st := newStore()
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runCfg := cfg.RunConfig()
	if scriptFile != "" {
		scenario, err := automation.LoadScenario(scriptFile)
		if err != nil {
			return err
		}
		script := scenario.Script()
		if script.Last() >= runCfg.Ticks {
			logger.Warn("scenario runs past the last tick", "last", script.Last(), "ticks", runCfg.Ticks)
		}
		runCfg.Script = script
		logger.Info("scenario loaded", "name", scenario.Name, "steps", len(scenario.Steps))
		logger.Debug("scenario event ticks", "ticks", script.Ticks())
	}

	start := time.Now()
	result, err := s.Run(ctx, runCfg)
	elapsed := time.Since(start)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err != nil {
		logger.Warn("run interrupted, saving partial result", "ticks", result.TicksTaken)
	}

	name := presetName(cmd)
	runID, err := st.Save(name, cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed %d ticks in %v\n", result.TicksTaken, elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("lattice: %dx%d, springs: %d\n", cfg.Lattice.NodesX, cfg.Lattice.NodesY, len(result.Final.Edges))
	fmt.Println("\nmetrics:")
	for _, name := range result.MetricNames {
		fmt.Printf("  %-16s %.6f\n", name, result.Metrics[name])
	}
	for _, e := range result.Errors {
		fmt.Printf("\nerror: %v\n", e)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	setup, err := cfg.Setup()
	if err != nil {
		return err
	}
	s, err := sim.New(setup)
	if err != nil {
		return err
	}

	// the terminal belongs to the view, so debug output goes to a file
	if logger.GetLevel() <= log.DebugLevel {
		f, err := os.Create("clothsim.log")
		if err != nil {
			return err
		}
		defer f.Close()
		fileLogger := logger.With()
		fileLogger.SetOutput(f)
		s.SetLogger(fileLogger.WithPrefix("sim"))
	}

	model := viz.NewModel(s, metrics.Defaults(10*cfg.Extent()), viz.Options{
		Title: fmt.Sprintf("%s %dx%d", presetName(cmd), cfg.Lattice.NodesX, cfg.Lattice.NodesY),
		FPS:   frameRate,
		Theme: theme,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := newStore().List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tTICKS\tPARTICLES\tSPRINGS\tSTATUS")
	for _, run := range runs {
		status := "ok"
		if len(run.Errors) > 0 {
			status = "diverged"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.Particles,
			run.Springs,
			status,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := newStore()
	runID, err := resolveRunID(st, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(series.Times) < 2 {
		return fmt.Errorf("run %s has too few samples to plot", runID)
	}

	names := series.Names
	if metric != "" {
		if !slices.Contains(names, metric) {
			return fmt.Errorf("unknown metric %q (available: %s)", metric, strings.Join(names, ", "))
		}
		names = []string{metric}
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("samples: %d\n\n", len(series.Times))

	for _, name := range names {
		graph := asciigraph.Plot(series.Values[name],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s vs time (%.2fs)", name, series.Times[len(series.Times)-1])),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := newStore()
	runID, err := resolveRunID(st, args)
	if err != nil {
		return err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	data, ok := series.Values[analyzeMetric]
	if !ok || len(data) < 4 {
		return fmt.Errorf("run %s has no usable %q series", runID, analyzeMetric)
	}

	sampleDt := series.Times[1] - series.Times[0]
	if meta.Config != nil {
		sampleDt = meta.Config.Physics.Dt * float64(meta.Config.Run.SampleEvery)
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("series: %s, %d samples every %.4fs\n\n", analyzeMetric, len(data), sampleDt)

	ps := analysis.PowerSpectrum(data)
	plotData := ps[1:]
	if len(plotData) > 8 {
		plotData = plotData[:len(plotData)/2]
	}
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum ("+analyzeMetric+")"),
	)
	fmt.Println(graph)
	fmt.Println()

	freq, power := analysis.DominantFrequency(data, sampleDt)
	fmt.Printf("dominant frequency: %.3f hz (power %.3g)\n", freq, power)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSTDDEV\tMIN\tMAX\tFINAL\tSETTLED")
	for _, name := range series.Names {
		sum := analysis.Summarize(series.Times, series.Values[name], 0.02)
		settled := "never"
		if sum.SettledAt >= 0 {
			settled = fmt.Sprintf("%.2fs", sum.SettledAt)
		}
		fmt.Fprintf(w, "%s\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\t%s\n",
			name, sum.Mean, sum.StdDev, sum.Min, sum.Max, sum.Final, settled)
	}
	return w.Flush()
}

// output opens outFile, or stdout when it is empty.
func output() (io.Writer, func() error, error) {
	if outFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := newStore()
	runID, err := resolveRunID(st, args)
	if err != nil {
		return err
	}
	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := st.ExportCSV(runID, w); err != nil {
		_ = closeFn()
		return err
	}
	return closeFn()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := newStore()
	runID, err := resolveRunID(st, args)
	if err != nil {
		return err
	}
	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := st.ExportJSON(runID, w); err != nil {
		_ = closeFn()
		return err
	}
	return closeFn()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := newStore()
	runID, err := resolveRunID(st, args)
	if err != nil {
		return err
	}
	frame, err := st.LoadFrame(runID)
	if err != nil {
		return err
	}

	var svg string
	if braille {
		canvas := export.RenderCanvas(frame, svgWidth/8, svgHeight/16)
		svg = export.CanvasToSVG(canvas, 4)
	} else {
		svg = export.FrameToSVG(frame, svgWidth, svgHeight, "#f2e8d5")
	}
	if svg == "" {
		return fmt.Errorf("run %s has no drawable lattice", runID)
	}

	path := outFile
	if path == "" {
		path = runID + ".svg"
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	logger.Info("svg written", "path", path, "springs", len(frame.Edges))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tLATTICE\tSTIFFNESS\tGRAVITY\tWIND\tTICKS")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		windDesc := "off"
		if cfg.Wind.Enabled {
			windDesc = fmt.Sprintf("(%.0f, %.0f)", cfg.Wind.Force.X, cfg.Wind.Force.Y)
			if cfg.Wind.Gust > 0 {
				windDesc += fmt.Sprintf(" gust %.1f", cfg.Wind.Gust)
			}
		}
		fmt.Fprintf(w, "%s\t%dx%d\t%.0f\t%.0f\t%s\t%d\n",
			name, cfg.Lattice.NodesX, cfg.Lattice.NodesY, cfg.Physics.Stiffness, cfg.Physics.Gravity, windDesc, cfg.Run.Ticks)
	}
	return w.Flush()
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	path := "clothsim.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	logger.Info("config written", "path", path)
	return nil
}

func benchLattice(cmd *cobra.Command, args []string) error {
	sizes := [][2]int{{10, 10}, {30, 20}, {64, 64}, {100, 100}}
	runCfg := sim.Config{Ticks: benchTicks, SampleEvery: max(benchTicks, 1)}
	benchRuns = max(benchRuns, 1)

	fmt.Printf("benchmarking %d ticks, %d concurrent run(s) per size\n\n", benchTicks, benchRuns)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LATTICE\tPARTICLES\tSPRINGS\tTIME\tTICKS/SEC\tPARTICLE-TICKS/SEC")

	for _, size := range sizes {
		cfg := config.DefaultConfig()
		cfg.Lattice.NodesX, cfg.Lattice.NodesY = size[0], size[1]
		cfg.Wind.Enabled = true
		if err := cfg.Validate(); err != nil {
			return err
		}

		setup := func(run int) sim.Setup {
			s, _ := cfg.Setup()
			return s
		}
		start := time.Now()
		results, err := sim.NewEnsemble(benchRuns, setup, nil).Run(cmd.Context(), runCfg)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		total := 0
		for _, r := range results {
			total += r.TicksTaken
		}
		particles := size[0] * size[1]
		springs := len(results[0].Final.Edges)
		tps := float64(total) / elapsed.Seconds()
		fmt.Fprintf(w, "%dx%d\t%d\t%d\t%v\t%.0f\t%.3g\n",
			size[0], size[1], particles, springs, elapsed.Round(time.Millisecond), tps, tps*float64(particles))
	}
	return w.Flush()
}
