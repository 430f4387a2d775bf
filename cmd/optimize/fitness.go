package main

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"github.com/sourcegraph/conc/pool"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/physarum/config"
	"github.com/pthm-cable/physarum/evolution"
	"github.com/pthm-cable/physarum/rng"
)

// FitnessEvaluator runs short evolutions and scores hyper-parameters.
type FitnessEvaluator struct {
	params      *ParamVector
	generations int
	seeds       []int64
	baseConfig  *config.Config

	mu       sync.Mutex
	lastBest []float64 // best fitness per seed of the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, generations int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		generations: generations,
		seeds:       seeds,
		baseConfig:  baseCfg,
	}
}

// LastBest returns the per-seed best fitness of the most recent evaluation.
func (fe *FitnessEvaluator) LastBest() []float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return append([]float64(nil), fe.lastBest...)
}

// Evaluate computes fitness for a parameter vector (lower = better): the
// negated mean over seeds of the best organism after a short evolution.
// Runs that fail score +Inf.
func (fe *FitnessEvaluator) Evaluate(ctx context.Context, x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	best := make([]float64, len(fe.seeds))
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	for i, seed := range fe.seeds {
		p.Go(func(ctx context.Context) error {
			f, err := fe.runEvolution(ctx, cfg, seed)
			best[i] = f
			return err
		})
	}
	if err := p.Wait(); err != nil {
		slog.Warn("evaluation failed", "error", err)
		return math.Inf(1)
	}

	fe.mu.Lock()
	fe.lastBest = best
	fe.mu.Unlock()

	return -stat.Mean(best, nil)
}

func (fe *FitnessEvaluator) runEvolution(ctx context.Context, cfg *config.Config, seed int64) (float64, error) {
	pop, err := evolution.NewPopulation(cfg, rng.New(seed))
	if err != nil {
		return 0, err
	}
	if err := pop.Run(ctx, fe.generations, nil); err != nil {
		return 0, err
	}
	return pop.Best().Fitness, nil
}
