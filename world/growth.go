package world

import (
	"fmt"
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/physarum/components"
	"github.com/pthm-cable/physarum/systems"
)

// CollisionMode selects which intersected edge a growing edge stops at.
type CollisionMode uint8

const (
	// CollisionNearest stops at the intersection closest to the grower.
	CollisionNearest CollisionMode = iota
	// CollisionFirst stops at the first intersecting edge in creation order.
	CollisionFirst
)

// ParseCollisionMode maps a config name to a CollisionMode.
func ParseCollisionMode(name string) (CollisionMode, error) {
	switch name {
	case "nearest":
		return CollisionNearest, nil
	case "first":
		return CollisionFirst, nil
	}
	return 0, fmt.Errorf("unknown collision mode %q", name)
}

// MustParseCollisionMode is like ParseCollisionMode but panics on error.
func MustParseCollisionMode(name string) CollisionMode {
	m, err := ParseCollisionMode(name)
	if err != nil {
		panic(err)
	}
	return m
}

type collision struct {
	edge ecs.Entity
	x, y float64
	t    float64
}

// growFrom extends a new edge from e at the given angle, splitting the first
// (or nearest) edge it would cross.
func (w *World) growFrom(e ecs.Entity, angle float64) {
	angle = systems.NormalizeHeading(angle)
	origin := w.nodeMap.Get(e).Position
	length := w.cfg.World.EdgeLength
	candidate := systems.Segment{
		X1: origin.X, Y1: origin.Y,
		X2: origin.X + length*math.Cos(angle),
		Y2: origin.Y + length*math.Sin(angle),
	}

	energy := w.cfg.World.DefaultNodeEnergy
	var target ecs.Entity
	if hit, ok := w.findCollision(e, candidate); ok {
		target = w.addNode(hit.x, hit.y, energy)
		w.splitEdge(hit.edge, target)
		w.stats.Splits++
	} else {
		target = w.addNode(candidate.X2, candidate.Y2, energy)
	}
	w.linkFood(target)

	stub := w.addEdge(e, target, w.cfg.World.DefaultFlowRate)
	grower := w.nodeMap.Get(e)
	grower.Out = append(grower.Out, components.Incident{Edge: stub, Angle: angle})
	node := w.nodeMap.Get(target)
	node.In = append([]components.Incident{{Edge: stub, Angle: angle}}, node.In...)

	before := grower.Energy
	grower.Energy -= energy + w.cfg.World.GrowthCost
	grower.Energy = systems.FloorTiny(grower.Energy)
	w.stats.GrowthCost += before - grower.Energy - energy
	w.stats.Grown++
}

// findCollision tests the candidate segment against every edge not touching
// the grower. Hits on an edge's endpoints are ignored.
func (w *World) findCollision(grower ecs.Entity, candidate systems.Segment) (collision, bool) {
	var best collision
	found := false
	for _, e := range w.edges {
		edge := w.edgeMap.Get(e)
		if edge.From == grower || edge.To == grower {
			continue
		}
		seg := systems.Segment{X1: edge.X1, Y1: edge.Y1, X2: edge.X2, Y2: edge.Y2}
		x, y, t, u, ok := systems.IntersectAt(candidate, seg)
		if !ok || t*w.cfg.World.EdgeLength < systems.EnergyEpsilon {
			continue
		}
		// Splitting at an endpoint would leave a zero-length segment.
		if u <= systems.GeometryEpsilon || u >= 1-systems.GeometryEpsilon {
			continue
		}
		if !found || t < best.t {
			best = collision{edge: e, x: x, y: y, t: t}
			found = true
		}
		if w.collision == CollisionFirst {
			break
		}
	}
	return best, found
}

// splitEdge replaces e with From->mid and mid->To segments that keep its flow
// rate. The endpoints' incident entries are rewritten in place.
func (w *World) splitEdge(e, mid ecs.Entity) {
	old := *w.edgeMap.Get(e)

	segA := w.addEdge(old.From, mid, old.FlowRate)
	segB := w.addEdge(mid, old.To, old.FlowRate)

	replaceIncident(w.nodeMap.Get(old.From), e, segA)
	replaceIncident(w.nodeMap.Get(old.To), e, segB)

	node := w.nodeMap.Get(mid)
	node.In = append(node.In, components.Incident{Edge: segA, Angle: w.edgeMap.Get(segA).Angle()})
	node.Out = append(node.Out, components.Incident{Edge: segB, Angle: w.edgeMap.Get(segB).Angle()})

	w.removeEdge(e)
}

func replaceIncident(node *components.Node, old, repl ecs.Entity) {
	for i := range node.In {
		if node.In[i].Edge == old {
			node.In[i].Edge = repl
		}
	}
	for i := range node.Out {
		if node.Out[i].Edge == old {
			node.Out[i].Edge = repl
		}
	}
}
