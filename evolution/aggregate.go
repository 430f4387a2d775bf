package evolution

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Aggregation selects how the trial fitnesses of one organism are combined.
type Aggregation uint8

const (
	AggregateMedian Aggregation = iota
	AggregateMean
	AggregateMin
	AggregatePercentile
)

// ParseAggregation maps a config name to an Aggregation.
func ParseAggregation(name string) (Aggregation, error) {
	switch name {
	case "median":
		return AggregateMedian, nil
	case "mean":
		return AggregateMean, nil
	case "min":
		return AggregateMin, nil
	case "percentile":
		return AggregatePercentile, nil
	}
	return 0, fmt.Errorf("unknown aggregation %q", name)
}

// Aggregator reduces trial fitnesses to one score.
type Aggregator struct {
	Kind Aggregation
	P    float64 // quantile for AggregatePercentile
}

// Aggregate combines trials. Quantiles use the empirical distribution: the
// result is the smallest trial with at least a fraction p of all trials at
// or below it, so the median of an even count is the lower middle value.
// An empty slice scores 0.
func (a Aggregator) Aggregate(trials []float64) float64 {
	if len(trials) == 0 {
		return 0
	}
	switch a.Kind {
	case AggregateMean:
		return stat.Mean(trials, nil)
	case AggregateMin:
		return floats.Min(trials)
	}

	p := 0.5
	if a.Kind == AggregatePercentile {
		p = a.P
	}
	sorted := append([]float64(nil), trials...)
	sort.Float64s(sorted)
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}
