package sim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Ensemble runs independent simulators concurrently. Each run gets its own
// Setup and its own metric instances since metrics carry state.
type Ensemble struct {
	numRuns int
	setup   func(run int) Setup
	metrics func() []Metric
}

func NewEnsemble(numRuns int, setup func(run int) Setup, metrics func() []Metric) *Ensemble {
	return &Ensemble{numRuns: numRuns, setup: setup, metrics: metrics}
}

// Run returns one result per run in run order. The first failing run cancels
// the others.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	for i := range e.numRuns {
		g.Go(func() error {
			s, err := New(e.setup(i))
			if err != nil {
				return err
			}
			if e.metrics != nil {
				for _, m := range e.metrics() {
					s.AddMetric(m)
				}
			}
			res, err := s.Run(ctx, cfg)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
