// Package rectify warps a quadrilateral region of an image onto an upright
// rectangle.
//
// The output size comes from the quadrilateral's edge lengths, the mapping
// from a projective transform (homography) solved exactly from the four
// corner correspondences, and every output pixel is sampled bilinearly from
// the source.
//
// Corners are always given in pixel space and canonical order: top-left,
// top-right, bottom-right, bottom-left.
package rectify

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
)

// OutputSize returns the width and height of the rectified image: the longer
// of each pair of opposite edges, rounded, and at least 1.
func OutputSize(corners [4]geometry.Point) (int, int) {
	tl, tr, br, bl := corners[0], corners[1], corners[2], corners[3]

	width := math.Max(geometry.Distance(tl, tr), geometry.Distance(bl, br))
	height := math.Max(geometry.Distance(tl, bl), geometry.Distance(tr, br))

	w := int(math.Round(width))
	h := int(math.Round(height))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// Rectify extracts the region bounded by corners and warps it to an upright
// rectangle of OutputSize.
//
// Destination corners are (0,0), (W-1,0), (W-1,H-1) and (0,H-1). Each
// destination pixel is mapped back into the source through the inverse of
// the source→destination homography and sampled bilinearly; samples that
// fall outside the source clamp to the nearest border pixel.
//
// Returns ErrDegenerate when three corners are collinear, the area is zero,
// or the transform cannot be solved.
func Rectify(src image.Image, corners [4]geometry.Point) (*image.NRGBA, error) {
	if geometry.IsDegenerate(corners) {
		return nil, ErrDegenerate
	}

	w, h := OutputSize(corners)
	dst := [4]geometry.Point{
		{X: 0, Y: 0},
		{X: float64(w - 1), Y: 0},
		{X: float64(w - 1), Y: float64(h - 1)},
		{X: 0, Y: float64(h - 1)},
	}

	forward, err := Homography(corners, dst)
	if err != nil {
		return nil, err
	}
	inverse, err := forward.Inverse()
	if err != nil {
		return nil, err
	}

	// Source coordinates are relative to the image's top-left corner.
	source := imaging.Clone(src)
	out := image.NewNRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p, ok := inverse.Apply(geometry.Point{X: float64(x), Y: float64(y)})
			if !ok {
				continue
			}
			i := y*out.Stride + x*4
			bilinear(source, p.X, p.Y, out.Pix[i:i+4])
		}
	}

	return out, nil
}

// bilinear samples img at (x, y) into px (4 bytes, non-premultiplied RGBA).
// Coordinates are clamped to the image so border pixels extend outward.
func bilinear(img *image.NRGBA, x, y float64, px []uint8) {
	b := img.Bounds()
	maxX := float64(b.Dx() - 1)
	maxY := float64(b.Dy() - 1)
	x = math.Max(0, math.Min(x, maxX))
	y = math.Max(0, math.Min(y, maxY))

	x0, y0 := int(x), int(y)
	x1, y1 := x0+1, y0+1
	if x1 > b.Dx()-1 {
		x1 = b.Dx() - 1
	}
	if y1 > b.Dy()-1 {
		y1 = b.Dy() - 1
	}
	fx := x - float64(x0)
	fy := y - float64(y0)

	i00 := y0*img.Stride + x0*4
	i10 := y0*img.Stride + x1*4
	i01 := y1*img.Stride + x0*4
	i11 := y1*img.Stride + x1*4

	for c := 0; c < 4; c++ {
		top := lerp(float64(img.Pix[i00+c]), float64(img.Pix[i10+c]), fx)
		bottom := lerp(float64(img.Pix[i01+c]), float64(img.Pix[i11+c]), fx)
		px[c] = uint8(math.Max(0, math.Min(255, lerp(top, bottom, fy)+0.5)))
	}
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
