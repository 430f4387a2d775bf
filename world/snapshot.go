package world

// NodeState is the recorded state of a node.
type NodeState struct {
	X, Y         float64
	Energy       float64
	TouchingFood bool
	Signal       int
	History      []int // oldest first
}

// EdgeState is the recorded state of an edge.
type EdgeState struct {
	X1, Y1, X2, Y2 float64
	FlowRate       float64
}

// FoodState is the recorded state of a food source.
type FoodState struct {
	X, Y   float64
	Radius float64
	Energy float64
}

// Snapshot is one frame of a trajectory.
type Snapshot struct {
	Step    int
	Fitness float64
	Nodes   []NodeState
	Edges   []EdgeState
	Foods   []FoodState
}

// Snapshot captures the current state in creation order.
func (w *World) Snapshot() Snapshot {
	s := Snapshot{
		Step:    w.step,
		Fitness: w.fitness,
		Nodes:   make([]NodeState, 0, len(w.nodes)),
		Edges:   make([]EdgeState, 0, len(w.edges)),
		Foods:   make([]FoodState, 0, len(w.foods)),
	}
	for _, e := range w.nodes {
		n := w.nodeMap.Get(e)
		s.Nodes = append(s.Nodes, NodeState{
			X:            n.X,
			Y:            n.Y,
			Energy:       n.Energy,
			TouchingFood: n.HasFood,
			Signal:       n.Signal,
			History:      n.SignalHistory.Values(),
		})
	}
	for _, e := range w.edges {
		edge := w.edgeMap.Get(e)
		s.Edges = append(s.Edges, EdgeState{
			X1: edge.X1, Y1: edge.Y1,
			X2: edge.X2, Y2: edge.Y2,
			FlowRate: edge.FlowRate,
		})
	}
	for _, f := range w.foods {
		food := w.foodMap.Get(f)
		s.Foods = append(s.Foods, FoodState{X: food.X, Y: food.Y, Radius: food.Radius, Energy: food.Energy})
	}
	return s
}
