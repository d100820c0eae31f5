package geometry

import "math"

// degenerateEpsilon is the smallest |Cross| (twice a triangle's area, in
// square pixels) that still counts as a real turn.
const degenerateEpsilon = 1.0

// SignedArea returns the shoelace area of a closed polygon. The sign follows
// Cross: positive for clockwise vertex order in Y-down space.
func SignedArea(pts []Point) float64 {
	n := len(pts)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return sum / 2
}

// PolygonArea returns the absolute shoelace area of a closed polygon.
func PolygonArea(pts []Point) float64 {
	return math.Abs(SignedArea(pts))
}

// Perimeter returns the length of a closed polygon, including the closing edge.
func Perimeter(pts []Point) float64 {
	n := len(pts)
	if n < 2 {
		return 0
	}
	var total float64
	for i := 0; i < n; i++ {
		total += Distance(pts[i], pts[(i+1)%n])
	}
	return total
}

// IsConvex reports whether a closed polygon is strictly convex: every
// consecutive vertex triple turns the same way and no triple is collinear.
func IsConvex(pts []Point) bool {
	n := len(pts)
	if n < 3 {
		return false
	}
	sign := 0
	for i := 0; i < n; i++ {
		c := Cross(pts[i], pts[(i+1)%n], pts[(i+2)%n])
		switch {
		case c > 0:
			if sign < 0 {
				return false
			}
			sign = 1
		case c < 0:
			if sign > 0 {
				return false
			}
			sign = -1
		default:
			return false
		}
	}
	return true
}

// IsDegenerate reports whether four pixel-space corners cannot define a
// perspective transform: any three of them are collinear (or coincide), or
// the enclosed area is zero.
func IsDegenerate(corners [4]Point) bool {
	for _, p := range corners {
		if !p.IsFinite() {
			return true
		}
	}
	triples := [4][3]int{{0, 1, 2}, {0, 1, 3}, {0, 2, 3}, {1, 2, 3}}
	for _, t := range triples {
		if math.Abs(Cross(corners[t[0]], corners[t[1]], corners[t[2]])) < degenerateEpsilon {
			return true
		}
	}
	return PolygonArea(corners[:]) < degenerateEpsilon/2
}
