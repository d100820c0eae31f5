package detection

import (
	"image"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
)

// mooreOffsets lists the 8 neighbours clockwise on screen (Y down),
// starting from West.
var mooreOffsets = [8]image.Point{
	{-1, 0},  // W
	{-1, -1}, // NW
	{0, -1},  // N
	{1, -1},  // NE
	{1, 0},   // E
	{1, 1},   // SE
	{0, 1},   // S
	{-1, 1},  // SW
}

// findContours returns the outer boundary of every external 8-connected
// component of set pixels in a binary edge map.
//
// Components are labelled with an iterative flood fill, then each one's
// outer boundary is traced with Moore-neighbour tracing starting from its
// first pixel in raster order. A component is external when the background
// to the West of that first pixel connects to the image border; anything
// enclosed by another component is skipped, as are holes. Boundaries are
// returned as pixel-centre points in tracing order (clockwise on screen).
func findContours(edges *image.Gray) [][]geometry.Point {
	bounds := edges.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	labels := make([]int32, width*height)
	set := func(x, y int) bool {
		return edges.Pix[y*edges.Stride+x] != 0
	}
	outside := outsideBackground(set, width, height)

	contours := make([][]geometry.Point, 0)
	var next int32
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !set(x, y) || labels[y*width+x] != 0 {
				continue
			}
			next++
			size := floodFill(set, labels, next, x, y, width, height)
			// (x-1, y) is background: a set pixel there would share the label.
			if x > 0 && !outside[y*width+x-1] {
				continue
			}
			contours = append(contours, traceBoundary(labels, next, image.Pt(x, y), width, height, size))
		}
	}
	return contours
}

// outsideBackground marks the background pixels 4-connected to the image
// border. Background enclosed by a component stays false.
func outsideBackground(set func(x, y int) bool, width, height int) []bool {
	outside := make([]bool, width*height)
	stack := make([]image.Point, 0, 2*(width+height))
	for x := 0; x < width; x++ {
		stack = append(stack, image.Pt(x, 0), image.Pt(x, height-1))
	}
	for y := 0; y < height; y++ {
		stack = append(stack, image.Pt(0, y), image.Pt(width-1, y))
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		i := p.Y*width + p.X
		if outside[i] || set(p.X, p.Y) {
			continue
		}
		outside[i] = true
		stack = append(stack,
			image.Pt(p.X-1, p.Y), image.Pt(p.X+1, p.Y),
			image.Pt(p.X, p.Y-1), image.Pt(p.X, p.Y+1))
	}
	return outside
}

// floodFill labels the 8-connected component containing (startX, startY).
//
// Uses a stack-based approach (not recursive) to avoid stack overflow
// on large components. Returns the number of pixels labelled.
func floodFill(set func(x, y int) bool, labels []int32, label int32, startX, startY, width, height int) int {
	stack := []image.Point{{X: startX, Y: startY}}
	count := 0

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if labels[p.Y*width+p.X] != 0 || !set(p.X, p.Y) {
			continue
		}

		labels[p.Y*width+p.X] = label
		count++

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, image.Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}
	return count
}

// traceBoundary walks the outer boundary of the component with the given
// label using Moore-neighbour tracing.
//
// start must be the component's first pixel in raster order, so its West
// neighbour is background. Tracing stops when the walk leaves start towards
// the second boundary pixel again, or after a step budget proportional to
// the component size.
func traceBoundary(labels []int32, label int32, start image.Point, width, height, size int) []geometry.Point {
	inside := func(p image.Point) bool {
		return p.X >= 0 && p.X < width && p.Y >= 0 && p.Y < height && labels[p.Y*width+p.X] == label
	}

	contour := []geometry.Point{toPoint(start)}

	// back indexes mooreOffsets: the backtrack pixel relative to p.
	p, back := start, 0
	var second image.Point
	maxSteps := 4*size + 8

	for step := 0; step < maxSteps; step++ {
		q, nextBack, ok := mooreStep(inside, p, back)
		if !ok {
			// Isolated pixel.
			break
		}
		if step == 0 {
			second = q
		} else if p == start && q == second {
			break
		}
		p, back = q, nextBack
		contour = append(contour, toPoint(p))
	}

	// A closed walk ends on start; drop the repeat.
	if n := len(contour); n > 1 && contour[n-1] == contour[0] {
		contour = contour[:n-1]
	}
	return contour
}

// mooreStep finds the next boundary pixel clockwise from the backtrack
// direction. The neighbour checked just before it is background and becomes
// the new backtrack pixel.
func mooreStep(inside func(image.Point) bool, p image.Point, back int) (image.Point, int, bool) {
	for k := 1; k <= 8; k++ {
		idx := (back + k) % 8
		q := p.Add(mooreOffsets[idx])
		if !inside(q) {
			continue
		}
		prev := p.Add(mooreOffsets[(idx+7)%8])
		return q, offsetIndex(prev.Sub(q)), true
	}
	return p, back, false
}

// offsetIndex returns the mooreOffsets index of a unit offset.
func offsetIndex(d image.Point) int {
	for i, o := range mooreOffsets {
		if o == d {
			return i
		}
	}
	return 0
}

func toPoint(p image.Point) geometry.Point {
	return geometry.Point{X: float64(p.X), Y: float64(p.Y)}
}
