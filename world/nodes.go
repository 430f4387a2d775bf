package world

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/physarum/components"
	"github.com/pthm-cable/physarum/neural"
	"github.com/pthm-cable/physarum/systems"
)

func (w *World) updateNodes() {
	w.collectGarbage()

	// Nodes grown during this pass are not visited until the next step.
	n := len(w.nodes)
	for i := 0; i < n; i++ {
		w.updateNode(w.nodes[i])
	}
}

// collectGarbage removes nodes without energy and every edge touching them,
// then purges stale incident references from the survivors.
func (w *World) collectGarbage() {
	var dead []ecs.Entity
	alive := w.nodes[:0]
	for _, e := range w.nodes {
		if w.nodeMap.Get(e).Energy <= 0 {
			dead = append(dead, e)
		} else {
			alive = append(alive, e)
		}
	}
	w.nodes = alive
	if len(dead) == 0 {
		return
	}

	for _, e := range dead {
		w.ecs.RemoveEntity(e)
	}
	w.stats.Removed += len(dead)

	keep := w.edges[:0]
	for _, e := range w.edges {
		edge := w.edgeMap.Get(e)
		if w.ecs.Alive(edge.From) && w.ecs.Alive(edge.To) {
			keep = append(keep, e)
			continue
		}
		w.ecs.RemoveEntity(e)
	}
	w.edges = keep

	for _, e := range w.nodes {
		node := w.nodeMap.Get(e)
		node.In = w.purgeIncidents(node.In)
		node.Out = w.purgeIncidents(node.Out)
	}
}

func (w *World) purgeIncidents(list []components.Incident) []components.Incident {
	kept := list[:0]
	for _, inc := range list {
		if w.ecs.Alive(inc.Edge) {
			kept = append(kept, inc)
		}
	}
	return kept
}

func (w *World) updateNode(e ecs.Entity) {
	w.transferEnergy(e)

	node := w.nodeMap.Get(e)
	if node.Energy < systems.EnergyEpsilon {
		return
	}

	in, avgInAngle := w.growthInput(node)
	decision := w.growthNet.Decide(in)

	if node.Degree() < w.cfg.World.MaxEdgesPerNode &&
		w.rng.Float64() < decision.Probability &&
		node.Energy > w.cfg.Derived.MinGrowthEnergy &&
		len(w.nodes) < w.cfg.World.MaxNodes {
		variance := math.Max(decision.AngleVariance, w.cfg.World.MinGrowthAngleVariance)
		angle := avgInAngle + decision.Angle + w.rng.Uniform(-variance, variance)
		w.growFrom(e, angle)
		node = w.nodeMap.Get(e) // growth creates entities
	}

	node.Signal = decision.Signal

	before := node.Energy
	node.Energy = systems.FloorTiny(node.Energy * (1 - w.cfg.World.PassiveEnergyLoss))
	w.stats.Decayed += before - node.Energy
}

// transferEnergy pushes energy along every outgoing edge of e.
func (w *World) transferEnergy(e ecs.Entity) {
	maxEnergy := w.cfg.World.MaxNodeEnergy
	node := w.nodeMap.Get(e)
	for _, inc := range node.Out {
		edge := w.edgeMap.Get(inc.Edge)
		if !w.ecs.Alive(edge.To) {
			continue
		}
		to := w.nodeMap.Get(edge.To)

		amount := math.Min(edge.FlowRate*node.Energy, node.Energy)
		if amount > 0 {
			received := math.Max(0, math.Min(amount, maxEnergy-to.Energy))
			node.Energy -= amount
			to.Energy += received
			w.stats.Transferred += amount
			w.stats.Spilled += amount - received
		}
		to.SignalHistory.Push(node.Signal)
	}
}

// growthInput gathers the features of a node. The average incoming angle
// is returned separately because growth is aimed relative to it.
func (w *World) growthInput(node *components.Node) (neural.GrowthInput, float64) {
	avgInAngle, avgInFlow := w.incidentAverages(node.In)
	avgOutAngle, avgOutFlow := w.incidentAverages(node.Out)
	return neural.GrowthInput{
		InEdges:      len(node.In),
		OutEdges:     len(node.Out),
		AvgInFlow:    avgInFlow,
		AvgOutFlow:   avgOutFlow,
		AvgInAngle:   avgInAngle,
		AvgOutAngle:  avgOutAngle,
		Energy:       node.Energy / w.cfg.World.MaxNodeEnergy,
		TouchingFood: node.HasFood,
		History:      node.SignalHistory.Values(),
	}, avgInAngle
}

// incidentAverages returns the mean angle and flow of a list. An empty list
// yields a uniformly random angle and zero flow.
func (w *World) incidentAverages(list []components.Incident) (angle, flow float64) {
	if len(list) == 0 {
		return w.rng.Uniform(0, 2*math.Pi), 0
	}
	var sumAngle, sumFlow float64
	for _, inc := range list {
		sumAngle += inc.Angle
		sumFlow += w.edgeMap.Get(inc.Edge).FlowRate
	}
	n := float64(len(list))
	return sumAngle / n, sumFlow / n
}

// netFlow is the signed flow balance of a node: incoming minus outgoing.
func (w *World) netFlow(node *components.Node) float64 {
	var total float64
	for _, inc := range node.In {
		total += w.edgeMap.Get(inc.Edge).FlowRate
	}
	for _, inc := range node.Out {
		total -= w.edgeMap.Get(inc.Edge).FlowRate
	}
	return total
}
