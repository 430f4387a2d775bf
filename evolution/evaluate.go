package evolution

import (
	"context"
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"github.com/pthm-cable/physarum/rng"
)

// Evaluate runs NumTries trials of NumSteps for every organism and stores the
// aggregated fitness. Trial seeds are drawn up front from the population's
// stream, so scores do not depend on goroutine scheduling.
func (p *Population) Evaluate(ctx context.Context) error {
	tries := p.cfg.Evolution.NumTries
	seeds := make([][]int64, len(p.Organisms))
	for i := range seeds {
		seeds[i] = make([]int64, tries)
		for k := range seeds[i] {
			seeds[i][k] = p.rng.Seed()
		}
	}

	workers := p.cfg.Evolution.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	steps := p.cfg.Evolution.NumSteps
	wp := pool.New().WithContext(ctx).WithMaxGoroutines(workers).WithCancelOnError().WithFirstError()
	for i, o := range p.Organisms {
		wp.Go(func(ctx context.Context) error {
			return o.evaluate(ctx, seeds[i], steps, p.agg)
		})
	}
	return wp.Wait()
}

func (o *Organism) evaluate(ctx context.Context, seeds []int64, steps int, agg Aggregator) error {
	o.Trials = o.Trials[:0]
	for _, seed := range seeds {
		if err := ctx.Err(); err != nil {
			return err
		}
		o.world.Reset(rng.New(seed))
		o.Trials = append(o.Trials, o.world.Run(steps))
	}
	o.Fitness = agg.Aggregate(o.Trials)
	return nil
}
