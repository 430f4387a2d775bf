package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// GenerationStats summarizes one evaluated generation.
type GenerationStats struct {
	Generation     int
	BestFitness    float64
	AverageFitness float64
	MedianFitness  float64
	WorstFitness   float64
	BestTrials     []float64 // per-trial fitness of the best organism
	BestGenome     []float64 // flattened
	Duration       time.Duration
}

// Summarize computes generation statistics from the aggregated fitness of
// every organism. best is the flattened genome of the top organism. The
// median of an even count is the lower middle value, as for trial
// aggregation.
func Summarize(generation int, fitness, bestTrials, best []float64, d time.Duration) GenerationStats {
	s := GenerationStats{
		Generation: generation,
		BestTrials: append([]float64(nil), bestTrials...),
		BestGenome: append([]float64(nil), best...),
		Duration:   d,
	}
	if len(fitness) == 0 {
		return s
	}
	sorted := append([]float64(nil), fitness...)
	sort.Float64s(sorted)

	s.BestFitness = floats.Max(sorted)
	s.WorstFitness = floats.Min(sorted)
	s.AverageFitness = stat.Mean(sorted, nil)
	s.MedianFitness = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.Float64("best", s.BestFitness),
		slog.Float64("average", s.AverageFitness),
		slog.Float64("median", s.MedianFitness),
		slog.Float64("worst", s.WorstFitness),
		slog.Int("params", len(s.BestGenome)),
		slog.Duration("duration", s.Duration),
	)
}

// ETA estimates the time left for the remaining generations from the mean
// duration of the completed ones.
type ETA struct {
	total     int
	completed int
	elapsed   time.Duration
}

// NewETA creates an estimator for a run of total generations.
func NewETA(total int) *ETA {
	return &ETA{total: total}
}

// Observe records one completed generation and returns the estimated time
// remaining.
func (e *ETA) Observe(d time.Duration) time.Duration {
	e.completed++
	e.elapsed += d
	left := e.total - e.completed
	if left <= 0 {
		return 0
	}
	mean := e.elapsed / time.Duration(e.completed)
	return mean * time.Duration(left)
}
