// Package systems holds the geometric and numeric helpers shared by the
// growth engine.
package systems

import "math"

// Tolerances for energy/flow flooring and geometric degeneracy.
const (
	EnergyEpsilon   = 1e-6
	GeometryEpsilon = 1e-9
)

// Clamp limits v to [minVal, maxVal].
func Clamp(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// FloorTiny returns 0 for values below EnergyEpsilon.
func FloorTiny(v float64) float64 {
	if v < EnergyEpsilon {
		return 0
	}
	return v
}

// NormalizeHeading wraps a heading to [0, 2π).
func NormalizeHeading(h float64) float64 {
	h = math.Mod(h, 2*math.Pi)
	if h < 0 {
		h += 2 * math.Pi
	}
	return h
}

// DistanceSq returns the squared distance between two points.
func DistanceSq(x1, y1, x2, y2 float64) float64 {
	dx := x1 - x2
	dy := y1 - y2
	return dx*dx + dy*dy
}

// Distance returns the Euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Sqrt(DistanceSq(x1, y1, x2, y2))
}
