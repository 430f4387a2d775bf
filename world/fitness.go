package world

import (
	"fmt"

	"github.com/pthm-cable/physarum/systems"
)

// FitnessMetric selects how a world is scored.
type FitnessMetric uint8

const (
	// FitnessEnergy is the total energy stored in nodes.
	FitnessEnergy FitnessMetric = iota
	// FitnessFoodConsumed is the energy absorbed from food since reset.
	FitnessFoodConsumed
	// FitnessCentrality weights node energy by 1/(1+distance to origin).
	FitnessCentrality
)

// ParseFitnessMetric maps a config name to a FitnessMetric.
func ParseFitnessMetric(name string) (FitnessMetric, error) {
	switch name {
	case "energy":
		return FitnessEnergy, nil
	case "food_consumed":
		return FitnessFoodConsumed, nil
	case "centrality":
		return FitnessCentrality, nil
	}
	return 0, fmt.Errorf("unknown fitness metric %q", name)
}

// MustParseFitnessMetric is like ParseFitnessMetric but panics on error.
func MustParseFitnessMetric(name string) FitnessMetric {
	m, err := ParseFitnessMetric(name)
	if err != nil {
		panic(err)
	}
	return m
}

func (w *World) updateFitness() {
	switch w.metric {
	case FitnessFoodConsumed:
		w.fitness = w.foodConsumed
	case FitnessCentrality:
		var score float64
		query := w.nodeQ.Query()
		for query.Next() {
			n := query.Get()
			score += n.Energy / (1 + systems.Distance(n.X, n.Y, 0, 0))
		}
		w.fitness = score
	default:
		w.fitness = w.NodeEnergy()
	}
}
