package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/metrics"
	"github.com/san-kum/clothsim/internal/optim"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/spf13/cobra"
)

// sweepSetters maps a sweepable parameter to the config field it sets.
var sweepSetters = map[string]func(*config.Config, float64){
	"stiffness":   func(c *config.Config, v float64) { c.Physics.Stiffness = v },
	"gravity":     func(c *config.Config, v float64) { c.Physics.Gravity = v },
	"dampen":      func(c *config.Config, v float64) { c.Physics.DampenFactor = v },
	"rest_length": func(c *config.Config, v float64) { c.Physics.RestLength = v },
	"substeps":    func(c *config.Config, v float64) { c.Physics.Substeps = int(v) },
	"relax_iters": func(c *config.Config, v float64) { c.Physics.RelaxIters = int(v) },
}

// parseSweepParam parses "name=v1,v2,...".
func parseSweepParam(s string) (string, []float64, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok || list == "" {
		return "", nil, fmt.Errorf("invalid --param %q, want name=v1,v2", s)
	}
	if _, ok := sweepSetters[name]; !ok {
		return "", nil, fmt.Errorf("unknown sweep parameter %q", name)
	}
	var values []float64
	for _, field := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return "", nil, fmt.Errorf("--param %s: %w", name, err)
		}
		values = append(values, v)
	}
	return name, values, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if len(sweepParams) == 0 {
		return fmt.Errorf("at least one --param is required")
	}

	names := make([]string, 0, len(sweepParams))
	ranges := make([][]float64, 0, len(sweepParams))
	for _, raw := range sweepParams {
		name, values, err := parseSweepParam(raw)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	build := func(params map[string]float64) (*sim.Simulator, sim.Config, error) {
		cfg := base.Clone()
		for name, v := range params {
			sweepSetters[name](cfg, v)
		}
		setup, err := cfg.Setup()
		if err != nil {
			return nil, sim.Config{}, err
		}
		s, err := sim.New(setup)
		if err != nil {
			return nil, sim.Config{}, err
		}
		for _, m := range metrics.Defaults(10 * cfg.Extent()) {
			s.AddMetric(m)
		}
		return s, cfg.RunConfig(), nil
	}

	search := optim.NewGridSearch(names, ranges)
	logger.Info("sweep started", "points", len(search.Points()), "metric", sweepMetric)

	best, value, trials, err := search.Search(cmd.Context(), build, sweepMetric)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\t"+strings.ToUpper(sweepMetric))
	for _, tr := range trials {
		row := make([]string, 0, len(names)+1)
		for _, name := range names {
			row = append(row, strconv.FormatFloat(tr.Params[name], 'g', -1, 64))
		}
		if tr.Err != nil {
			row = append(row, "error: "+tr.Err.Error())
		} else {
			row = append(row, fmt.Sprintf("%.6g", tr.Value))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nbest %s = %.6g at", sweepMetric, value)
	for _, name := range names {
		fmt.Printf(" %s=%g", name, best[name])
	}
	fmt.Println()
	return nil
}
