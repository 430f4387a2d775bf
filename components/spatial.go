package components

import "math"

// Position is a fixed point in the plane. Nodes never move once created.
type Position struct {
	X, Y float64
}

// DistanceTo returns the Euclidean distance to (x, y).
func (p Position) DistanceTo(x, y float64) float64 {
	return math.Hypot(p.X-x, p.Y-y)
}

func angleOf(x1, y1, x2, y2 float64) float64 {
	return math.Atan2(y2-y1, x2-x1)
}
