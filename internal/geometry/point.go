// Package geometry provides the point and quadrilateral types shared by the
// detector, the rectifier and the server, together with the canonical corner
// ordering every consumer relies on.
//
// # Coordinate Spaces
//
// Two spaces are in use and both put the origin at the top-left corner with
// X increasing rightward and Y increasing downward:
//   - Pixel space: units are pixels of a specific image.
//   - Normalized space: each axis is in [0,1] relative to width and height.
//
// Converting between them is a plain scale by the image dimensions. There is
// no vertical flip anywhere in this module.
//
// # Canonical Order
//
// Four-corner arrays are always ordered top-left, top-right, bottom-right,
// bottom-left. Quad.Corners and QuadFromCorners are the only places that map
// between the array form and the named fields.
package geometry

import "math"

// Point is a 2-D coordinate in pixel or normalized space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul scales both coordinates by k.
func (p Point) Mul(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

// Distance returns the Euclidean distance between p and q.
func Distance(p, q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Cross returns the z component of (b-a) × (c-a). It is twice the signed
// area of triangle abc; positive when a→b→c turns clockwise in Y-down space.
func Cross(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// IsFinite reports whether both coordinates are neither NaN nor infinite.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}
