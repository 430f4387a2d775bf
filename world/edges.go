package world

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/physarum/components"
	"github.com/pthm-cable/physarum/neural"
	"github.com/pthm-cable/physarum/systems"
)

func (w *World) updateEdges() {
	step := w.cfg.World.FlowRateStep
	maxFlow := w.cfg.World.MaxFlowRate

	for _, e := range w.edges {
		edge := w.edgeMap.Get(e)
		from := w.nodeMap.Get(edge.From)
		to := w.nodeMap.Get(edge.To)

		decision := w.flowNet.Decide(neural.FlowInput{
			FlowRate:       edge.FlowRate,
			UpstreamFlow:   w.netFlow(from),
			DownstreamFlow: w.netFlow(to),
			Signal:         from.Signal,
		})

		if w.rng.Float64() < decision.Increase {
			edge.FlowRate = math.Min(edge.FlowRate+step, maxFlow)
		}
		if w.rng.Float64() < decision.Decrease && edge.FlowRate > 0 {
			edge.FlowRate -= step
		}

		if edge.FlowRate < 0 {
			edge.From, edge.To = edge.To, edge.From
			edge.FlowRate = -edge.FlowRate
			switchDirection(from, e)
			switchDirection(to, e)
		}
		edge.FlowRate = systems.FloorTiny(edge.FlowRate)
	}
}

// switchDirection moves the entry for e between the node's incoming and
// outgoing lists.
func switchDirection(node *components.Node, e ecs.Entity) {
	for i, inc := range node.In {
		if inc.Edge == e {
			node.In = append(node.In[:i], node.In[i+1:]...)
			node.Out = append(node.Out, inc)
			return
		}
	}
	for i, inc := range node.Out {
		if inc.Edge == e {
			node.Out = append(node.Out[:i], node.Out[i+1:]...)
			node.In = append(node.In, inc)
			return
		}
	}
}
