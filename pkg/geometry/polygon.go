package geometry

import "math"

// ClipPolygonToRect clips a polygon against an axis-aligned rectangle using
// the Sutherland-Hodgman algorithm. The subject may be concave; the result
// is nil when fewer than three vertices survive.
func ClipPolygonToRect(subject []Point2D, r Rect) []Point2D {
	if len(subject) < 3 || r.Empty() {
		return nil
	}

	clip := []Point2D{
		{X: r.X, Y: r.Y},
		{X: r.Right(), Y: r.Y},
		{X: r.Right(), Y: r.Bottom()},
		{X: r.X, Y: r.Bottom()},
	}

	output := make([]Point2D, len(subject))
	copy(output, subject)

	for i := 0; i < len(clip); i++ {
		if len(output) == 0 {
			return nil
		}
		output = clipPolygonByEdge(output, clip[i], clip[(i+1)%len(clip)])
	}

	if len(output) < 3 {
		return nil
	}
	return output
}

// clipPolygonByEdge clips a polygon against a single edge.
func clipPolygonByEdge(polygon []Point2D, edgeStart, edgeEnd Point2D) []Point2D {
	var clipped []Point2D

	for i := 0; i < len(polygon); i++ {
		current := polygon[i]
		next := polygon[(i+1)%len(polygon)]

		currentInside := isInsideEdge(current, edgeStart, edgeEnd)
		nextInside := isInsideEdge(next, edgeStart, edgeEnd)

		if currentInside {
			clipped = append(clipped, current)
			if !nextInside {
				if intersection, ok := lineIntersection(current, next, edgeStart, edgeEnd); ok {
					clipped = append(clipped, intersection)
				}
			}
		} else if nextInside {
			if intersection, ok := lineIntersection(current, next, edgeStart, edgeEnd); ok {
				clipped = append(clipped, intersection)
			}
		}
	}

	return clipped
}

// isInsideEdge checks if a point is on the inside of the directed edge.
// Clip edges run top-left, top-right, bottom-right, bottom-left in image
// coordinates (y grows downward).
func isInsideEdge(p, edgeStart, edgeEnd Point2D) bool {
	return (edgeEnd.X-edgeStart.X)*(p.Y-edgeStart.Y)-
		(edgeEnd.Y-edgeStart.Y)*(p.X-edgeStart.X) >= 0
}

// lineIntersection computes the intersection point of line p1-p2 with line e1-e2.
func lineIntersection(p1, p2, e1, e2 Point2D) (Point2D, bool) {
	x1, y1 := p1.X, p1.Y
	x2, y2 := p2.X, p2.Y
	x3, y3 := e1.X, e1.Y
	x4, y4 := e2.X, e2.Y

	denom := (x1-x2)*(y3-y4) - (y1-y2)*(x3-x4)
	if math.Abs(denom) < 1e-10 {
		// Lines are parallel
		return Point2D{}, false
	}

	t := ((x1-x3)*(y3-y4) - (y1-y3)*(x3-x4)) / denom

	return Point2D{
		X: x1 + t*(x2-x1),
		Y: y1 + t*(y2-y1),
	}, true
}

// PointInPolygon tests if a point is inside a polygon using ray casting.
func PointInPolygon(p Point2D, polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	n := len(polygon)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		pi, pj := polygon[i], polygon[j]

		// Check if ray from p going right intersects edge pi-pj
		if ((pi.Y > p.Y) != (pj.Y > p.Y)) &&
			(p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}

	return inside
}
