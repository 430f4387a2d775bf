package world

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/physarum/components"
	"github.com/pthm-cable/physarum/systems"
)

// randomizeFood places cfg.Food.Count sources. Radius grows with the square
// root of the stored energy.
func (w *World) randomizeFood() {
	fc := w.cfg.Food
	for i := 0; i < fc.Count; i++ {
		energy := w.rng.Uniform(fc.MinEnergy, fc.MaxEnergy)
		w.addFood(
			w.rng.Uniform(-fc.Spread, fc.Spread),
			w.rng.Uniform(-fc.Spread, fc.Spread),
			energy,
			math.Sqrt(energy/math.Pi),
		)
	}
}

func (w *World) addFood(x, y, energy, radius float64) ecs.Entity {
	f := components.FoodSource{
		Position: components.Position{X: x, Y: y},
		Radius:   radius,
		Energy:   energy,
	}
	e := w.foodMap.NewEntity(&f)
	w.foods = append(w.foods, e)
	return e
}

// linkFood attaches the node to the first food source containing it.
func (w *World) linkFood(e ecs.Entity) {
	node := w.nodeMap.Get(e)
	for _, f := range w.foods {
		if w.foodMap.Get(f).Contains(node.X, node.Y) {
			node.Food = f
			node.HasFood = true
			return
		}
	}
}

// updateFood lets each source feed at most one linked node, then removes
// depleted sources along with every link to them.
func (w *World) updateFood() {
	maxEnergy := w.cfg.World.MaxNodeEnergy
	rate := w.cfg.Food.AbsorbRate

	depleted := false
	for _, f := range w.foods {
		food := w.foodMap.Get(f)
		if food.Energy <= 0 {
			continue
		}
		for _, e := range w.nodes {
			node := w.nodeMap.Get(e)
			if !node.HasFood || node.Food != f || node.Energy >= maxEnergy {
				continue
			}
			take := math.Min(rate, food.Energy)
			received := math.Min(take, maxEnergy-node.Energy)
			food.Energy -= take
			node.Energy += received
			w.foodConsumed += take
			w.stats.Absorbed += take
			w.stats.Spilled += take - received
			break
		}
		if food.Energy <= systems.EnergyEpsilon {
			depleted = true
		}
	}
	if !depleted {
		return
	}

	remaining := w.foods[:0]
	var removed []ecs.Entity
	for _, f := range w.foods {
		if w.foodMap.Get(f).Energy <= systems.EnergyEpsilon {
			removed = append(removed, f)
		} else {
			remaining = append(remaining, f)
		}
	}
	w.foods = remaining

	for _, f := range removed {
		w.ecs.RemoveEntity(f)
	}
	for _, e := range w.nodes {
		node := w.nodeMap.Get(e)
		if node.HasFood && !w.ecs.Alive(node.Food) {
			node.Food = ecs.Entity{}
			node.HasFood = false
		}
	}
}
