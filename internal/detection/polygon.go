package detection

import (
	"math"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
)

// approxPolygon simplifies a closed contour with the Douglas-Peucker
// algorithm, keeping vertices that deviate from the simplified outline by
// more than epsilon pixels.
//
// # Algorithm
//
// A closed curve has no natural endpoints, so it is split at two extreme
// points: A, the contour point farthest from the first point, and B, the
// point farthest from A. The chains A→B and B→A (wrapping around) are each
// simplified as open polylines and joined.
//
// The result lists vertices in contour order without repeating the first
// vertex.
func approxPolygon(contour []geometry.Point, epsilon float64) []geometry.Point {
	n := len(contour)
	if n < 3 {
		return append([]geometry.Point(nil), contour...)
	}

	a := farthestFrom(contour, contour[0])
	b := farthestFrom(contour, contour[a])
	if a == b {
		return []geometry.Point{contour[a]}
	}

	chain := func(from, to int) []geometry.Point {
		pts := make([]geometry.Point, 0, n)
		for i := from; ; i = (i + 1) % n {
			pts = append(pts, contour[i])
			if i == to {
				break
			}
		}
		return pts
	}

	first := simplifyOpen(chain(a, b), epsilon)
	second := simplifyOpen(chain(b, a), epsilon)

	// Each chain keeps both endpoints; drop the shared ones when joining.
	out := make([]geometry.Point, 0, len(first)+len(second))
	out = append(out, first...)
	out = append(out, second[1:len(second)-1]...)
	return out
}

// simplifyOpen runs Douglas-Peucker on an open polyline, always keeping both
// endpoints. It uses an explicit stack instead of recursion.
func simplifyOpen(pts []geometry.Point, epsilon float64) []geometry.Point {
	n := len(pts)
	if n < 3 {
		return append([]geometry.Point(nil), pts...)
	}

	keep := make([]bool, n)
	keep[0], keep[n-1] = true, true

	type span struct{ lo, hi int }
	stack := []span{{0, n - 1}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.hi-s.lo < 2 {
			continue
		}

		maxDist, index := -1.0, -1
		for i := s.lo + 1; i < s.hi; i++ {
			d := segmentDistance(pts[i], pts[s.lo], pts[s.hi])
			if d > maxDist {
				maxDist, index = d, i
			}
		}

		if maxDist > epsilon {
			keep[index] = true
			stack = append(stack, span{s.lo, index}, span{index, s.hi})
		}
	}

	out := make([]geometry.Point, 0, n)
	for i, k := range keep {
		if k {
			out = append(out, pts[i])
		}
	}
	return out
}

// segmentDistance returns the perpendicular distance from p to the line
// through a and b, or the distance to a when a and b coincide.
func segmentDistance(p, a, b geometry.Point) float64 {
	length := geometry.Distance(a, b)
	if length == 0 {
		return geometry.Distance(p, a)
	}
	return math.Abs(geometry.Cross(a, b, p)) / length
}

func farthestFrom(pts []geometry.Point, origin geometry.Point) int {
	best, bestDist := 0, -1.0
	for i, p := range pts {
		if d := geometry.Distance(p, origin); d > bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
