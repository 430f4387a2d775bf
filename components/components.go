// Package components defines the ECS components of a growth network.
package components

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/physarum/neural"
)

// Incident is one entry of a node's incoming or outgoing edge list.
type Incident struct {
	Edge  ecs.Entity
	Angle float64 // direction of the edge as seen from this node
}

// SignalHistory is a fixed-capacity FIFO of received signal values.
type SignalHistory struct {
	buf [neural.SignalHistoryLen]int
	n   int
}

// Push appends a signal, dropping the oldest entry when full.
func (h *SignalHistory) Push(signal int) {
	if h.n < len(h.buf) {
		h.buf[h.n] = signal
		h.n++
		return
	}
	copy(h.buf[:], h.buf[1:])
	h.buf[len(h.buf)-1] = signal
}

// Len returns the number of stored entries.
func (h *SignalHistory) Len() int { return h.n }

// Values returns the stored entries, oldest first.
func (h *SignalHistory) Values() []int {
	return append([]int(nil), h.buf[:h.n]...)
}

// Node is a junction of the network.
type Node struct {
	Position
	Energy        float64
	Food          ecs.Entity // valid only when HasFood
	HasFood       bool
	SignalHistory SignalHistory
	Signal        int
	In            []Incident
	Out           []Incident
}

// Degree returns the total incident edge count.
func (n *Node) Degree() int { return len(n.In) + len(n.Out) }

// Edge is a tube between two nodes. Geometry is fixed at creation;
// From and To swap when the flow direction reverses.
type Edge struct {
	X1, Y1   float64
	X2, Y2   float64
	FlowRate float64
	From     ecs.Entity
	To       ecs.Entity
}

// Angle returns the direction of the edge's stored geometry.
func (e *Edge) Angle() float64 {
	return angleOf(e.X1, e.Y1, e.X2, e.Y2)
}

// FoodSource is a circular energy reservoir.
type FoodSource struct {
	Position
	Radius float64
	Energy float64
}

// Contains reports whether (x, y) lies within the source's radius.
func (f *FoodSource) Contains(x, y float64) bool {
	return f.DistanceTo(x, y) <= f.Radius
}
