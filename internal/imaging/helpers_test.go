package imaging

import (
	"image"
	"image/color"
)

// createSolidImage creates an in-memory image filled with a single colour.
func createSolidImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createRectangleImage creates a black image with a filled white rectangle
// covering [x1,x2) × [y1,y2).
func createRectangleImage(width, height, x1, y1, x2, y2 int) *image.RGBA {
	img := createSolidImage(width, height, color.RGBA{0, 0, 0, 255})
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			img.Set(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	return img
}

func grayAt(img *image.Gray, x, y int) uint8 {
	return img.GrayAt(x, y).Y
}

// anyEdgeNear reports whether any pixel within r of (x,y) is set.
func anyEdgeNear(img *image.Gray, x, y, r int) bool {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			p := image.Pt(x+dx, y+dy)
			if p.In(img.Bounds()) && grayAt(img, p.X, p.Y) == 255 {
				return true
			}
		}
	}
	return false
}
