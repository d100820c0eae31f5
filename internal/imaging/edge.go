package imaging

import (
	"image"
	"image/color"
	"math"
)

// EdgeOptions configures the edge-map stages used by document detection.
type EdgeOptions struct {
	// ShortSide is the target length of the shorter image side before
	// edge detection. Images already at or below it are not upscaled.
	ShortSide int

	// BilateralDiameter is the bilateral filter window width in pixels.
	BilateralDiameter int

	// SigmaColor and SigmaSpace are the bilateral range and spatial
	// standard deviations, on the 0-255 intensity scale and in pixels.
	SigmaColor float64
	SigmaSpace float64

	// CannyLow and CannyHigh are the hysteresis thresholds applied to the
	// Sobel gradient magnitude, on the 0-255 intensity scale.
	CannyLow  float64
	CannyHigh float64

	// CloseIterations is the number of dilate passes followed by the same
	// number of erode passes. Zero disables closing.
	CloseIterations int
}

// DefaultEdgeOptions returns the settings used for document detection.
func DefaultEdgeOptions() EdgeOptions {
	return EdgeOptions{
		ShortSide:         500,
		BilateralDiameter: 11,
		SigmaColor:        17,
		SigmaSpace:        17,
		CannyLow:          75,
		CannyHigh:         200,
		CloseIterations:   2,
	}
}

// EdgeMap runs downscale, bilateral smoothing, Canny and morphological
// closing on img.
//
// Returns:
//   - *image.Gray: binary edge map (255 = edge) in downscaled coordinates.
//   - float64: ratio of original to downscaled size; multiply edge-map
//     coordinates by it to get back to the source image.
func EdgeMap(img image.Image, opts EdgeOptions) (*image.Gray, float64) {
	small, ratio := Downscale(img, opts.ShortSide)
	gray := Luminance(small)
	smoothed := Bilateral(gray, opts.BilateralDiameter, opts.SigmaColor, opts.SigmaSpace)
	edges := Canny(smoothed, opts.CannyLow, opts.CannyHigh)
	if opts.CloseIterations > 0 {
		edges = Close(edges, opts.CloseIterations)
	}
	return edges, ratio
}

// Luminance converts an image to a row-major intensity matrix on the
// 0-255 scale using ITU-R BT.601 weights (0.299*R + 0.587*G + 0.114*B).
func Luminance(img image.Image) [][]float64 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	gray := make([][]float64, height)
	for y := 0; y < height; y++ {
		gray[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			gray[y][x] = 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
		}
	}
	return gray
}

// Bilateral applies an edge-preserving bilateral filter to an intensity
// matrix.
//
// Each output value is the average of the neighbours inside a
// diameter×diameter window, weighted by a spatial Gaussian (sigmaSpace, in
// pixels) and a range Gaussian on the intensity difference (sigmaColor).
// Neighbours past the border are clamped to the nearest edge pixel.
func Bilateral(gray [][]float64, diameter int, sigmaColor, sigmaSpace float64) [][]float64 {
	height := len(gray)
	if height == 0 {
		return gray
	}
	width := len(gray[0])

	radius := diameter / 2
	if radius < 1 || sigmaColor <= 0 || sigmaSpace <= 0 {
		out := make([][]float64, height)
		for y := range gray {
			out[y] = append([]float64(nil), gray[y]...)
		}
		return out
	}

	size := 2*radius + 1
	spatial := make([]float64, size*size)
	for ky := -radius; ky <= radius; ky++ {
		for kx := -radius; kx <= radius; kx++ {
			d2 := float64(kx*kx + ky*ky)
			spatial[(ky+radius)*size+kx+radius] = math.Exp(-d2 / (2 * sigmaSpace * sigmaSpace))
		}
	}

	// Range weights indexed by rounded absolute intensity difference.
	var rangeW [256]float64
	for i := range rangeW {
		d := float64(i)
		rangeW[i] = math.Exp(-d * d / (2 * sigmaColor * sigmaColor))
	}

	out := make([][]float64, height)
	for y := 0; y < height; y++ {
		out[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			center := gray[y][x]
			var sum, wsum float64
			for ky := -radius; ky <= radius; ky++ {
				py := clamp(y+ky, 0, height-1)
				row := gray[py]
				for kx := -radius; kx <= radius; kx++ {
					v := row[clamp(x+kx, 0, width-1)]
					diff := clamp(int(math.Abs(v-center)+0.5), 0, 255)
					w := spatial[(ky+radius)*size+kx+radius] * rangeW[diff]
					sum += v * w
					wsum += w
				}
			}
			out[y][x] = sum / wsum
		}
	}
	return out
}

// Canny detects edges in an intensity matrix and returns a binary image
// where edge pixels are 255.
//
// # Algorithm
//
//  1. Gradient computation: Sobel operators for X and Y gradients,
//     magnitude = sqrt(Gx² + Gy²), direction = atan2(Gy, Gx)
//
//  2. Non-maximum suppression: thin edges to 1-pixel width by keeping only
//     local maxima along the gradient direction
//
//  3. Hysteresis: pixels at or above high seed edges; pixels at or above
//     low are kept when they are 8-connected, through any chain of such
//     pixels, to a seed
//
// Thresholds are on the same scale as the input (0-255 intensities give
// gradient magnitudes up to about 1442).
func Canny(gray [][]float64, low, high float64) *image.Gray {
	height := len(gray)
	width := 0
	if height > 0 {
		width = len(gray[0])
	}
	result := image.NewGray(image.Rect(0, 0, width, height))
	if width < 3 || height < 3 {
		return result
	}

	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	magnitude := make([][]float64, height)
	direction := make([][]float64, height)
	for y := 0; y < height; y++ {
		magnitude[y] = make([]float64, width)
		direction[y] = make([]float64, width)

		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					gx += gray[py][px] * sobelX[ky+1][kx+1]
					gy += gray[py][px] * sobelY[ky+1][kx+1]
				}
			}
			magnitude[y][x] = math.Sqrt(gx*gx + gy*gy)
			direction[y][x] = math.Atan2(gy, gx)
		}
	}

	// Non-maximum suppression
	suppressed := make([][]float64, height)
	for y := 0; y < height; y++ {
		suppressed[y] = make([]float64, width)
		if y == 0 || y == height-1 {
			continue
		}
		for x := 1; x < width-1; x++ {
			angle := direction[y][x]
			mag := magnitude[y][x]

			var n1, n2 float64
			if (angle >= -math.Pi/8 && angle < math.Pi/8) || (angle >= 7*math.Pi/8 || angle < -7*math.Pi/8) {
				n1 = magnitude[y][x-1]
				n2 = magnitude[y][x+1]
			} else if (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8) {
				n1 = magnitude[y-1][x-1]
				n2 = magnitude[y+1][x+1]
			} else if (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8) {
				n1 = magnitude[y-1][x]
				n2 = magnitude[y+1][x]
			} else {
				n1 = magnitude[y-1][x+1]
				n2 = magnitude[y+1][x-1]
			}

			if mag >= n1 && mag >= n2 {
				suppressed[y][x] = mag
			}
		}
	}

	// Hysteresis: breadth-first growth from strong pixels through weak ones.
	queue := make([]image.Point, 0, width)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if suppressed[y][x] >= high && high > 0 {
				result.Pix[y*result.Stride+x] = 255
				queue = append(queue, image.Pt(x, y))
			}
		}
	}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := p.X+dx, p.Y+dy
				if nx < 0 || ny < 0 || nx >= width || ny >= height {
					continue
				}
				i := ny*result.Stride + nx
				if result.Pix[i] == 0 && suppressed[ny][nx] >= low && suppressed[ny][nx] > 0 {
					result.Pix[i] = 255
					queue = append(queue, image.Pt(nx, ny))
				}
			}
		}
	}

	return result
}

// binaryGray converts an image to a binary *image.Gray: any pixel whose
// red channel is at least half intensity becomes 255.
func binaryGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			r, _, _, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			if r>>8 >= 128 {
				out.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return out
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
