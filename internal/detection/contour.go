package detection

import (
	"context"
	"image"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/ironsheep/docscan-mcp/internal/logger"
)

// Options configures the contour-search detector.
type Options struct {
	// Edges configures the edge-map stages (downscale, bilateral, Canny,
	// closing).
	Edges imaging.EdgeOptions

	// MinAreaFraction rejects contours enclosing less than this fraction of
	// the downscaled image area.
	MinAreaFraction float64

	// EpsilonFraction is the Douglas-Peucker tolerance as a fraction of the
	// contour perimeter.
	EpsilonFraction float64
}

// DefaultOptions returns the settings used for document detection.
func DefaultOptions() Options {
	return Options{
		Edges:           imaging.DefaultEdgeOptions(),
		MinAreaFraction: 0.04,
		EpsilonFraction: 0.01,
	}
}

// ContourDetector finds a document by searching the edge map for the
// largest convex four-sided contour.
//
// It holds no per-call state and is safe for concurrent use.
type ContourDetector struct {
	opts Options
}

// NewContourDetector creates a contour-search detector. Zero-valued options
// are replaced by their defaults.
func NewContourDetector(opts Options) *ContourDetector {
	def := DefaultOptions()
	if opts.Edges == (imaging.EdgeOptions{}) {
		opts.Edges = def.Edges
	}
	if opts.MinAreaFraction <= 0 {
		opts.MinAreaFraction = def.MinAreaFraction
	}
	if opts.EpsilonFraction <= 0 {
		opts.EpsilonFraction = def.EpsilonFraction
	}
	return &ContourDetector{opts: opts}
}

// Detect locates the most prominent document quadrilateral in img.
//
// # Algorithm
//
//  1. Edge map: downscale so the shorter side is 500 px, bilateral filter,
//     Canny, morphological closing (see imaging.EdgeMap)
//  2. Contours: outer boundary of each 8-connected edge component
//  3. Filtering: drop contours enclosing less than MinAreaFraction of the
//     downscaled image
//  4. Approximation: Douglas-Peucker with epsilon = EpsilonFraction ×
//     perimeter; keep results with exactly four convex vertices
//  5. Selection: the candidate whose contour encloses the largest area
//  6. Mapping: scale back to source pixels, order the corners and normalize
//
// A miss returns the full-frame default quad with Found=false. A cancelled
// context is treated as a miss.
func (d *ContourDetector) Detect(ctx context.Context, img image.Image) Result {
	if ctx.Err() != nil {
		return Miss(BackendContour)
	}

	start := time.Now()
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	edges, ratio := imaging.EdgeMap(img, d.opts.Edges)
	corners, confidence, ok := d.findQuad(edges)

	fields := logrus.Fields{
		"backend": BackendContour,
		"width":   width,
		"height":  height,
		"elapsed": time.Since(start).String(),
	}
	if !ok {
		logger.WithFields(fields).Debug("No document quadrilateral found")
		return Miss(BackendContour)
	}

	for i := range corners {
		corners[i] = corners[i].Mul(ratio)
	}
	quad := geometry.QuadFromCorners(geometry.OrderPoints(corners)).Normalize(width, height)

	fields["confidence"] = confidence
	logger.WithFields(fields).Debug("Document quadrilateral found")

	return Result{
		Quad:       quad,
		Found:      true,
		Backend:    BackendContour,
		Confidence: confidence,
	}
}

// findQuad returns the corners of the best quadrilateral in edge-map
// coordinates, in contour order.
func (d *ContourDetector) findQuad(edges *image.Gray) ([4]geometry.Point, float64, bool) {
	b := edges.Bounds()
	minArea := d.opts.MinAreaFraction * float64(b.Dx()*b.Dy())

	var best [4]geometry.Point
	bestArea, bestConfidence := 0.0, 0.0
	found := false

	for _, contour := range findContours(edges) {
		if len(contour) < 4 {
			continue
		}
		area := geometry.PolygonArea(contour)
		if area < minArea || area <= bestArea {
			continue
		}

		epsilon := d.opts.EpsilonFraction * geometry.Perimeter(contour)
		approx := approxPolygon(contour, epsilon)
		if len(approx) != 4 || !geometry.IsConvex(approx) {
			continue
		}

		copy(best[:], approx)
		bestArea = area
		bestConfidence = math.Min(1, geometry.PolygonArea(approx)/area)
		found = true
	}

	return best, bestConfidence, found
}
