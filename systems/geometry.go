package systems

// Segment is a line segment from (X1, Y1) to (X2, Y2).
type Segment struct {
	X1, Y1, X2, Y2 float64
}

// BBoxOverlap reports whether the axis-aligned bounding boxes of a and b
// overlap (touching counts).
func BBoxOverlap(a, b Segment) bool {
	aMinX, aMaxX := minmax(a.X1, a.X2)
	aMinY, aMaxY := minmax(a.Y1, a.Y2)
	bMinX, bMaxX := minmax(b.X1, b.X2)
	bMinY, bMaxY := minmax(b.Y1, b.Y2)
	return aMinX <= bMaxX+GeometryEpsilon && bMinX <= aMaxX+GeometryEpsilon &&
		aMinY <= bMaxY+GeometryEpsilon && bMinY <= aMaxY+GeometryEpsilon
}

func minmax(a, b float64) (float64, float64) {
	if a < b {
		return a, b
	}
	return b, a
}

// Intersect returns the intersection point of a and b. Parallel and
// degenerate segments never intersect. t is the parameter along a.
func Intersect(a, b Segment) (x, y, t float64, ok bool) {
	x, y, t, _, ok = IntersectAt(a, b)
	return x, y, t, ok
}

// IntersectAt is Intersect that also returns u, the parameter along b.
func IntersectAt(a, b Segment) (x, y, t, u float64, ok bool) {
	if !BBoxOverlap(a, b) {
		return 0, 0, 0, 0, false
	}

	rx, ry := a.X2-a.X1, a.Y2-a.Y1
	sx, sy := b.X2-b.X1, b.Y2-b.Y1
	denom := rx*sy - ry*sx
	if denom > -GeometryEpsilon && denom < GeometryEpsilon {
		return 0, 0, 0, 0, false
	}

	qx, qy := b.X1-a.X1, b.Y1-a.Y1
	t = (qx*sy - qy*sx) / denom
	u = (qx*ry - qy*rx) / denom
	if t < -GeometryEpsilon || t > 1+GeometryEpsilon || u < -GeometryEpsilon || u > 1+GeometryEpsilon {
		return 0, 0, 0, 0, false
	}

	t = Clamp(t, 0, 1)
	u = Clamp(u, 0, 1)
	return a.X1 + t*rx, a.Y1 + t*ry, t, u, true
}
