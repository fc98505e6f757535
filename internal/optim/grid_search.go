package optim

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"runtime"
	"sync"

	"github.com/san-kum/clothsim/internal/sim"
	"golang.org/x/sync/errgroup"
)

var ErrNoCandidates = errors.New("optim: no candidate finished")

// Build turns one parameter assignment into a ready simulator and its run
// configuration.
type Build func(params map[string]float64) (*sim.Simulator, sim.Config, error)

// Trial is the outcome of one grid point.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// GridSearch evaluates every combination of the given parameter values and
// keeps the one that minimises a metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges, workers: runtime.GOMAXPROCS(0)}
}

// Points expands the grid in row-major order, last parameter fastest.
func (g *GridSearch) Points() []map[string]float64 {
	points := []map[string]float64{{}}
	for depth, name := range g.paramNames {
		next := make([]map[string]float64, 0, len(points)*len(g.ranges[depth]))
		for _, p := range points {
			for _, val := range g.ranges[depth] {
				np := maps.Clone(p)
				np[name] = val
				next = append(next, np)
			}
		}
		points = next
	}
	return points
}

// Search runs every grid point and returns the best assignment, its metric
// value and all trials in grid order. Points whose run fails or diverges are
// recorded with their error and never win.
func (g *GridSearch) Search(ctx context.Context, build Build, metricName string) (map[string]float64, float64, []Trial, error) {
	points := g.Points()
	trials := make([]Trial, len(points))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(g.workers, 1))

	var mu sync.Mutex
	best := math.Inf(1)
	var bestParams map[string]float64

	for i, params := range points {
		eg.Go(func() error {
			trials[i] = Trial{Params: params, Value: math.NaN()}

			s, cfg, err := build(params)
			if err != nil {
				trials[i].Err = err
				return nil
			}
			result, err := s.Run(ctx, cfg)
			if err != nil {
				if ctx.Err() != nil {
					return err
				}
				trials[i].Err = err
				return nil
			}
			if len(result.Errors) > 0 {
				trials[i].Err = result.Errors[0]
				return nil
			}
			val, ok := result.Metrics[metricName]
			if !ok {
				trials[i].Err = fmt.Errorf("optim: metric %q not recorded", metricName)
				return nil
			}
			trials[i].Value = val

			mu.Lock()
			if val < best {
				best, bestParams = val, params
			}
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, 0, trials, err
	}
	if bestParams == nil {
		return nil, 0, trials, ErrNoCandidates
	}
	return bestParams, best, trials, nil
}
