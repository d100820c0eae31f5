package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
)

// Close applies morphological closing to a binary edge map: iterations
// dilate passes followed by the same number of erode passes, each with a
// radius-1 structuring element.
//
// Closing bridges one- and two-pixel gaps in edge chains so that the
// document outline forms a single connected contour.
func Close(edges *image.Gray, iterations int) *image.Gray {
	if iterations <= 0 {
		return binaryGray(edges)
	}

	var img image.Image = edges
	for i := 0; i < iterations; i++ {
		img = effect.Dilate(img, 1)
	}
	for i := 0; i < iterations; i++ {
		img = effect.Erode(img, 1)
	}

	return binaryGray(img)
}
