package evolution

import (
	"context"
	"fmt"
	"time"

	"github.com/pthm-cable/physarum/telemetry"
)

// Recorder receives the stats of every evaluated generation. Returning an
// error stops the run.
type Recorder func(telemetry.GenerationStats) error

// Step evaluates and sorts the current generation and returns its stats.
// It does not breed.
func (p *Population) Step(ctx context.Context) (telemetry.GenerationStats, error) {
	start := time.Now()
	if err := p.Evaluate(ctx); err != nil {
		return telemetry.GenerationStats{}, fmt.Errorf("evaluating generation %d: %w", p.Generation, err)
	}
	p.Sort()
	best := p.Best()
	return telemetry.Summarize(p.Generation, p.Fitness(), best.Trials, best.Genome.Flatten(), time.Since(start)), nil
}

// Run evolves for the given number of generations. The population is left
// sorted after the last evaluation, so Best is the overall result.
func (p *Population) Run(ctx context.Context, generations int, record Recorder) error {
	for g := 0; g < generations; g++ {
		stats, err := p.Step(ctx)
		if err != nil {
			return err
		}
		if record != nil {
			if err := record(stats); err != nil {
				return fmt.Errorf("recording generation %d: %w", stats.Generation, err)
			}
		}
		if g < generations-1 {
			p.NextGeneration()
		}
	}
	return nil
}
