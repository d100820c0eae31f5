package imaging

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Downscale resizes img so that its shorter side is shortSide pixels,
// preserving aspect ratio with a linear filter.
//
// Images whose shorter side is already at or below shortSide are copied
// unchanged. The returned ratio is original/downscaled (>= 1); multiplying a
// coordinate in the downscaled image by it gives the source coordinate.
func Downscale(img image.Image, shortSide int) (*image.NRGBA, float64) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	shorter := w
	if h < shorter {
		shorter = h
	}

	if shortSide <= 0 || shorter <= shortSide {
		return imaging.Clone(img), 1
	}

	ratio := float64(shorter) / float64(shortSide)
	newW := int(math.Round(float64(w) / ratio))
	newH := int(math.Round(float64(h) / ratio))
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	return imaging.Resize(img, newW, newH, imaging.Linear), ratio
}
