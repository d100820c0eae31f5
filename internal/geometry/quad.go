package geometry

import (
	"encoding/json"
	"fmt"
	"math"
)

// Quad is a four-corner document boundary with named corners.
type Quad struct {
	TopLeft     Point
	TopRight    Point
	BottomLeft  Point
	BottomRight Point
}

// Wire field names for the eight-value representation.
const (
	FieldTopLeftX     = "topLeftX"
	FieldTopLeftY     = "topLeftY"
	FieldTopRightX    = "topRightX"
	FieldTopRightY    = "topRightY"
	FieldBottomLeftX  = "bottomLeftX"
	FieldBottomLeftY  = "bottomLeftY"
	FieldBottomRightX = "bottomRightX"
	FieldBottomRightY = "bottomRightY"
)

// FieldNames lists the eight wire fields in serialization order.
var FieldNames = []string{
	FieldTopLeftX, FieldTopLeftY,
	FieldTopRightX, FieldTopRightY,
	FieldBottomLeftX, FieldBottomLeftY,
	FieldBottomRightX, FieldBottomRightY,
}

// DefaultQuad returns the full-frame quad in normalized space, reported when
// no document boundary is found.
func DefaultQuad() Quad {
	return Quad{
		TopLeft:     Point{0, 0},
		TopRight:    Point{1, 0},
		BottomLeft:  Point{0, 1},
		BottomRight: Point{1, 1},
	}
}

// QuadFromCorners builds a Quad from corners in canonical order
// (top-left, top-right, bottom-right, bottom-left).
func QuadFromCorners(c [4]Point) Quad {
	return Quad{
		TopLeft:     c[0],
		TopRight:    c[1],
		BottomRight: c[2],
		BottomLeft:  c[3],
	}
}

// Corners returns the corners in canonical order
// (top-left, top-right, bottom-right, bottom-left).
func (q Quad) Corners() [4]Point {
	return [4]Point{q.TopLeft, q.TopRight, q.BottomRight, q.BottomLeft}
}

// Scale multiplies X by sx and Y by sy on every corner.
func (q Quad) Scale(sx, sy float64) Quad {
	c := q.Corners()
	for i := range c {
		c[i] = Point{X: c[i].X * sx, Y: c[i].Y * sy}
	}
	return QuadFromCorners(c)
}

// Denormalize converts a normalized quad to pixel space for a width×height image.
func (q Quad) Denormalize(width, height int) Quad {
	return q.Scale(float64(width), float64(height))
}

// Normalize converts a pixel-space quad to normalized space for a
// width×height image. Results are clamped to [0,1].
func (q Quad) Normalize(width, height int) Quad {
	if width <= 0 || height <= 0 {
		return DefaultQuad()
	}
	c := q.Scale(1/float64(width), 1/float64(height)).Corners()
	for i := range c {
		c[i] = Point{X: clampUnit(c[i].X), Y: clampUnit(c[i].Y)}
	}
	return QuadFromCorners(c)
}

// Fields returns the eight-value wire form.
func (q Quad) Fields() map[string]float64 {
	return map[string]float64{
		FieldTopLeftX:     q.TopLeft.X,
		FieldTopLeftY:     q.TopLeft.Y,
		FieldTopRightX:    q.TopRight.X,
		FieldTopRightY:    q.TopRight.Y,
		FieldBottomLeftX:  q.BottomLeft.X,
		FieldBottomLeftY:  q.BottomLeft.Y,
		FieldBottomRightX: q.BottomRight.X,
		FieldBottomRightY: q.BottomRight.Y,
	}
}

// ParseQuad reads the eight-value wire form of a normalized quad.
//
// Every field must be present, finite and within [0,1]; values are taken
// as-is so that Fields followed by ParseQuad is an exact round trip.
func ParseQuad(fields map[string]float64) (Quad, error) {
	get := func(name string) (float64, error) {
		v, ok := fields[name]
		if !ok {
			return 0, fmt.Errorf("missing quad field %q", name)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("quad field %q is not finite", name)
		}
		if v < 0 || v > 1 {
			return 0, fmt.Errorf("quad field %q out of range [0,1]: %v", name, v)
		}
		return v, nil
	}

	var vals [8]float64
	for i, name := range FieldNames {
		v, err := get(name)
		if err != nil {
			return Quad{}, err
		}
		vals[i] = v
	}

	return Quad{
		TopLeft:     Point{vals[0], vals[1]},
		TopRight:    Point{vals[2], vals[3]},
		BottomLeft:  Point{vals[4], vals[5]},
		BottomRight: Point{vals[6], vals[7]},
	}, nil
}

// MarshalJSON encodes the quad as its eight named fields.
func (q Quad) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.Fields())
}

// UnmarshalJSON decodes the eight named fields, validating them like ParseQuad.
func (q *Quad) UnmarshalJSON(data []byte) error {
	var fields map[string]float64
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("invalid quad: %w", err)
	}
	parsed, err := ParseQuad(fields)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
