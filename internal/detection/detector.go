package detection

import (
	"context"
	"image"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/logger"
)

// Backend names reported in Result.Backend.
const (
	BackendContour = "contour"
	BackendModel   = "model"
)

// Result is the outcome of a detection attempt.
type Result struct {
	// Quad is the document boundary in normalized, top-left origin
	// coordinates. It is DefaultQuad when nothing was found.
	Quad geometry.Quad

	// Found reports whether a document boundary was actually located.
	Found bool

	// Backend names the detector that produced the result.
	Backend string

	// Confidence is in [0,1]. For the contour backend it is the ratio of
	// the fitted quad's area to the traced contour's area; for the model
	// backend it is the service's score. Zero on a miss.
	Confidence float64
}

// Detector locates the most prominent document quadrilateral in an image.
//
// Implementations never fail for a decoded image: a miss is reported as
// Result{Found: false} with the full-frame default quad.
type Detector interface {
	Detect(ctx context.Context, img image.Image) Result
}

// Miss returns the result reported when no quadrilateral was found.
func Miss(backend string) Result {
	return Result{Quad: geometry.DefaultQuad(), Backend: backend}
}

// SelectOptions configures backend selection.
type SelectOptions struct {
	// InferenceURL is the base URL of a rectangle-inference service.
	// Empty selects contour search.
	InferenceURL string

	// Timeout bounds each HTTP call to the service.
	Timeout time.Duration

	// MinConfidence is the lowest score accepted from the service.
	MinConfidence float64

	// Contour configures the contour backend, which is also the fallback
	// for the model backend.
	Contour Options
}

// Select chooses a detector backend.
//
// The model backend is used when an inference URL is configured and its
// health endpoint answers; otherwise contour search is used. Either way the
// caller receives a Detector and never needs to know which one it got.
func Select(ctx context.Context, opts SelectOptions) Detector {
	contour := NewContourDetector(opts.Contour)
	if opts.InferenceURL == "" {
		logger.WithField("backend", BackendContour).Info("Using contour detection")
		return contour
	}

	model := NewModelDetector(opts.InferenceURL, opts.Timeout, opts.MinConfidence, contour)
	if err := model.CheckHealth(ctx); err != nil {
		logger.WithFields(logrus.Fields{
			"backend": BackendContour,
			"url":     opts.InferenceURL,
		}).WithError(err).Warn("Inference service unavailable, falling back to contour detection")
		return contour
	}

	logger.WithFields(logrus.Fields{
		"backend": BackendModel,
		"url":     opts.InferenceURL,
	}).Info("Using inference service for detection")
	return model
}
