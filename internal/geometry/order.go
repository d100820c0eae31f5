package geometry

// OrderPoints arranges four pixel-space points in canonical order:
// top-left, top-right, bottom-right, bottom-left.
//
// # Algorithm
//
// For each point compute sum = x+y and diff = y-x:
//   - top-left has the minimum sum
//   - bottom-right has the maximum sum
//   - top-right has the minimum diff
//   - bottom-left has the maximum diff
//
// Ties go to the first point in input order that reaches the extremum.
//
// # Limitations
//
// The heuristic assumes a roughly upright quadrilateral. Quads rotated near
// 45 degrees, or strongly skewed, can map two roles to the same input point.
// Callers that need a guaranteed permutation should check the result with
// IsDegenerate before rectifying.
func OrderPoints(pts [4]Point) [4]Point {
	tl, br, tr, bl := 0, 0, 0, 0
	for i := 1; i < 4; i++ {
		sum := pts[i].X + pts[i].Y
		diff := pts[i].Y - pts[i].X
		if sum < pts[tl].X+pts[tl].Y {
			tl = i
		}
		if sum > pts[br].X+pts[br].Y {
			br = i
		}
		if diff < pts[tr].Y-pts[tr].X {
			tr = i
		}
		if diff > pts[bl].Y-pts[bl].X {
			bl = i
		}
	}
	return [4]Point{pts[tl], pts[tr], pts[br], pts[bl]}
}
