// Package world implements the growth network engine: an arena of nodes,
// edges and food sources stepped through growth, flow, feeding and fitness.
package world

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/physarum/components"
	"github.com/pthm-cable/physarum/config"
	"github.com/pthm-cable/physarum/neural"
	"github.com/pthm-cable/physarum/rng"
)

// StepStats is the energy ledger of the last step.
// Node energy changes by Absorbed - Spilled - GrowthCost - Decayed.
type StepStats struct {
	Transferred float64 // moved along edges, before receiver caps
	Spilled     float64 // lost to receiver caps (flow and feeding)
	GrowthCost  float64
	Decayed     float64 // passive loss and flooring
	Absorbed    float64 // taken from food sources
	Grown       int     // growth events
	Splits      int     // growth events that split an edge
	Removed     int     // nodes garbage collected
}

// World is one organism's growth network.
type World struct {
	cfg       *config.Config
	genome    *neural.Genome
	growthNet *neural.GrowthDecisionNet
	flowNet   *neural.FlowDecisionNet
	rng       *rng.Source

	metric    FitnessMetric
	collision CollisionMode

	ecs     *ecs.World
	nodeMap *ecs.Map1[components.Node]
	edgeMap *ecs.Map1[components.Edge]
	foodMap *ecs.Map1[components.FoodSource]
	nodeQ   *ecs.Filter1[components.Node]

	// Creation order of live entities. Iteration always follows these.
	nodes []ecs.Entity
	edges []ecs.Entity
	foods []ecs.Entity

	step         int
	fitness      float64
	foodConsumed float64
	stats        StepStats
}

// New creates a world with a seed node at the origin and randomized food.
// The genome is shared, not copied.
func New(cfg *config.Config, genome *neural.Genome, r *rng.Source) *World {
	w := &World{
		cfg:       cfg,
		genome:    genome,
		growthNet: neural.NewGrowthDecisionNet(genome),
		flowNet:   neural.NewFlowDecisionNet(genome),
		metric:    MustParseFitnessMetric(cfg.Fitness.Metric),
		collision: MustParseCollisionMode(cfg.World.Collision),
	}
	w.ecs = ecs.NewWorld()
	w.nodeMap = ecs.NewMap1[components.Node](w.ecs)
	w.edgeMap = ecs.NewMap1[components.Edge](w.ecs)
	w.foodMap = ecs.NewMap1[components.FoodSource](w.ecs)
	w.nodeQ = ecs.NewFilter1[components.Node](w.ecs)

	w.Reset(r)
	return w
}

// Reset discards the graph and starts a new trial on stream r.
func (w *World) Reset(r *rng.Source) {
	w.rng = r
	w.clear()

	w.step = 0
	w.fitness = 0
	w.foodConsumed = 0
	w.stats = StepStats{}

	w.randomizeFood()
	seed := w.addNode(0, 0, w.cfg.World.InitialEnergy)
	w.linkFood(seed)
	w.updateFitness()
}

func (w *World) clear() {
	for _, list := range [][]ecs.Entity{w.edges, w.nodes, w.foods} {
		for _, e := range list {
			if w.ecs.Alive(e) {
				w.ecs.RemoveEntity(e)
			}
		}
	}
	w.nodes = w.nodes[:0]
	w.edges = w.edges[:0]
	w.foods = w.foods[:0]
}

// Step advances the simulation by one step.
func (w *World) Step() {
	w.stats = StepStats{}
	w.updateNodes()
	w.updateEdges()
	w.updateFood()
	w.updateFitness()
	w.step++
}

// Run advances the simulation by n steps and returns the final fitness.
func (w *World) Run(n int) float64 {
	for i := 0; i < n; i++ {
		w.Step()
	}
	return w.fitness
}

// Genome returns the shared genome.
func (w *World) Genome() *neural.Genome { return w.genome }

// StepIndex returns the number of completed steps since Reset.
func (w *World) StepIndex() int { return w.step }

// Fitness returns the fitness computed at the end of the last step.
func (w *World) Fitness() float64 { return w.fitness }

// FoodConsumed returns the energy absorbed from food since Reset.
func (w *World) FoodConsumed() float64 { return w.foodConsumed }

// Stats returns the energy ledger of the last step.
func (w *World) Stats() StepStats { return w.stats }

// NodeCount returns the number of live nodes.
func (w *World) NodeCount() int { return len(w.nodes) }

// EdgeCount returns the number of live edges.
func (w *World) EdgeCount() int { return len(w.edges) }

// FoodCount returns the number of remaining food sources.
func (w *World) FoodCount() int { return len(w.foods) }

// Node returns a copy of a node, or false if the handle is stale.
func (w *World) Node(e ecs.Entity) (components.Node, bool) {
	if !w.ecs.Alive(e) || !w.nodeMap.HasAll(e) {
		return components.Node{}, false
	}
	return *w.nodeMap.Get(e), true
}

// Edge returns a copy of an edge, or false if the handle is stale.
func (w *World) Edge(e ecs.Entity) (components.Edge, bool) {
	if !w.ecs.Alive(e) || !w.edgeMap.HasAll(e) {
		return components.Edge{}, false
	}
	return *w.edgeMap.Get(e), true
}

// Nodes returns the live node handles in creation order.
func (w *World) Nodes() []ecs.Entity { return append([]ecs.Entity(nil), w.nodes...) }

// Edges returns the live edge handles in creation order.
func (w *World) Edges() []ecs.Entity { return append([]ecs.Entity(nil), w.edges...) }

// Foods returns the remaining food source handles in creation order.
func (w *World) Foods() []ecs.Entity { return append([]ecs.Entity(nil), w.foods...) }

// NodeEnergy returns the summed energy of all nodes.
func (w *World) NodeEnergy() float64 {
	var total float64
	query := w.nodeQ.Query()
	for query.Next() {
		total += query.Get().Energy
	}
	return total
}

// FoodEnergy returns the summed energy of all food sources.
func (w *World) FoodEnergy() float64 {
	var total float64
	for _, f := range w.foods {
		total += w.foodMap.Get(f).Energy
	}
	return total
}

func (w *World) addNode(x, y, energy float64) ecs.Entity {
	n := components.Node{
		Position: components.Position{X: x, Y: y},
		Energy:   energy,
	}
	e := w.nodeMap.NewEntity(&n)
	w.nodes = append(w.nodes, e)
	return e
}

// addEdge creates an edge whose geometry is taken from the endpoints'
// positions. Incident lists are not touched.
func (w *World) addEdge(from, to ecs.Entity, flow float64) ecs.Entity {
	a := w.nodeMap.Get(from).Position
	b := w.nodeMap.Get(to).Position
	edge := components.Edge{
		X1: a.X, Y1: a.Y,
		X2: b.X, Y2: b.Y,
		FlowRate: flow,
		From:     from,
		To:       to,
	}
	e := w.edgeMap.NewEntity(&edge)
	w.edges = append(w.edges, e)
	return e
}

// connect creates an edge and registers it with both endpoints.
func (w *World) connect(from, to ecs.Entity, flow float64) ecs.Entity {
	e := w.addEdge(from, to, flow)
	angle := w.edgeMap.Get(e).Angle()
	fromNode := w.nodeMap.Get(from)
	fromNode.Out = append(fromNode.Out, components.Incident{Edge: e, Angle: angle})
	toNode := w.nodeMap.Get(to)
	toNode.In = append(toNode.In, components.Incident{Edge: e, Angle: angle})
	return e
}

func (w *World) removeEdge(e ecs.Entity) {
	if w.ecs.Alive(e) {
		w.ecs.RemoveEntity(e)
	}
	w.edges = removeHandle(w.edges, e)
}

func removeHandle(list []ecs.Entity, e ecs.Entity) []ecs.Entity {
	for i, x := range list {
		if x == e {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
