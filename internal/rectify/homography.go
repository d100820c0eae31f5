package rectify

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
)

// ErrDegenerate is returned when four corners cannot define a perspective
// transform: three of them are collinear or the enclosed area is zero.
var ErrDegenerate = errors.New("degenerate quadrilateral")

// Matrix is a 3×3 projective transform in row-major order.
type Matrix [9]float64

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Apply maps p through the transform. The second result is false when p
// maps to the line at infinity.
func (m Matrix) Apply(p geometry.Point) (geometry.Point, bool) {
	w := m[6]*p.X + m[7]*p.Y + m[8]
	if math.Abs(w) < 1e-12 {
		return geometry.Point{}, false
	}
	return geometry.Point{
		X: (m[0]*p.X + m[1]*p.Y + m[2]) / w,
		Y: (m[3]*p.X + m[4]*p.Y + m[5]) / w,
	}, true
}

// Inverse returns the inverse transform, scaled so its last element is 1.
func (m Matrix) Inverse() (Matrix, error) {
	var inv mat.Dense
	if err := inv.Inverse(mat.NewDense(3, 3, m[:])); err != nil {
		return Matrix{}, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}

	var out Matrix
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r*3+c] = inv.At(r, c)
		}
	}
	return out.normalized()
}

// Mul returns m×n, the transform that applies n first and then m.
func (m Matrix) Mul(n Matrix) Matrix {
	var out Matrix
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += m[r*3+k] * n[k*3+c]
			}
			out[r*3+c] = sum
		}
	}
	return out
}

func (m Matrix) normalized() (Matrix, error) {
	if math.Abs(m[8]) < 1e-12 {
		return Matrix{}, ErrDegenerate
	}
	s := 1 / m[8]
	for i := range m {
		m[i] *= s
	}
	return m, nil
}

// Homography computes the projective transform that maps each src[i] onto
// dst[i].
//
// # Algorithm
//
// With h22 fixed to 1, each correspondence (X,Y) → (x,y) contributes two
// linear equations:
//
//	x = (h00 X + h01 Y + h02) / (h20 X + h21 Y + 1)
//	y = (h10 X + h11 Y + h12) / (h20 X + h21 Y + 1)
//
// giving an 8×8 system solved with LU decomposition. Both point sets are
// first scaled into roughly unit range so that the system stays well
// conditioned for large images; the scaling is undone on the result.
//
// Returns ErrDegenerate when the system is singular.
func Homography(src, dst [4]geometry.Point) (Matrix, error) {
	srcScale := extent(src)
	dstScale := extent(dst)
	if srcScale == 0 || dstScale == 0 {
		return Matrix{}, ErrDegenerate
	}

	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		X, Y := src[i].X/srcScale, src[i].Y/srcScale
		x, y := dst[i].X/dstScale, dst[i].Y/dstScale
		r := 2 * i

		a.SetRow(r, []float64{X, Y, 1, 0, 0, 0, -X * x, -Y * x})
		b.SetVec(r, x)

		a.SetRow(r+1, []float64{0, 0, 0, X, Y, 1, -X * y, -Y * y})
		b.SetVec(r+1, y)
	}

	var h mat.VecDense
	if err := h.SolveVec(a, b); err != nil {
		return Matrix{}, fmt.Errorf("%w: %v", ErrDegenerate, err)
	}

	normalizedH := Matrix{
		h.AtVec(0), h.AtVec(1), h.AtVec(2),
		h.AtVec(3), h.AtVec(4), h.AtVec(5),
		h.AtVec(6), h.AtVec(7), 1,
	}
	for _, v := range normalizedH {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Matrix{}, ErrDegenerate
		}
	}

	// H = Tdst⁻¹ · H' · Tsrc
	tSrc := Matrix{1 / srcScale, 0, 0, 0, 1 / srcScale, 0, 0, 0, 1}
	tDstInv := Matrix{dstScale, 0, 0, 0, dstScale, 0, 0, 0, 1}
	return tDstInv.Mul(normalizedH).Mul(tSrc).normalized()
}

// extent returns the largest absolute coordinate among pts.
func extent(pts [4]geometry.Point) float64 {
	var m float64
	for _, p := range pts {
		m = math.Max(m, math.Max(math.Abs(p.X), math.Abs(p.Y)))
	}
	return m
}
