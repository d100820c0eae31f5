package detection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"math"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/logger"
)

// uploadQuality is the JPEG quality of images sent for inference.
const uploadQuality = 90

// ModelDetector asks an external rectangle-inference service for the
// document boundary.
//
// The service receives the image as a multipart JPEG upload at
// <baseURL>/predict and answers with candidate rectangles in normalized,
// top-left origin coordinates. Transport and decode failures are logged
// and the image is handed to the fallback detector instead, so Detect never
// fails.
type ModelDetector struct {
	baseURL       string
	client        *http.Client
	minConfidence float64
	fallback      Detector
}

// NewModelDetector creates a detector backed by the inference service at
// baseURL. timeout bounds each HTTP call; minConfidence is the lowest score
// accepted; fallback handles images the service could not process.
func NewModelDetector(baseURL string, timeout time.Duration, minConfidence float64, fallback Detector) *ModelDetector {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if minConfidence <= 0 || math.IsNaN(minConfidence) {
		minConfidence = 0.6
	}
	return &ModelDetector{
		baseURL:       baseURL,
		client:        &http.Client{Timeout: timeout},
		minConfidence: minConfidence,
		fallback:      fallback,
	}
}

// modelPoint and modelRectangle mirror the inference service's JSON.
type modelPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type modelRectangle struct {
	TopLeft     modelPoint `json:"top_left"`
	TopRight    modelPoint `json:"top_right"`
	BottomLeft  modelPoint `json:"bottom_left"`
	BottomRight modelPoint `json:"bottom_right"`
	Confidence  float64    `json:"confidence"`
}

type modelResponse struct {
	Rectangles []modelRectangle `json:"rectangles"`
}

// Detect sends img to the inference service and returns its best rectangle.
//
// The highest-confidence rectangle at or above the configured threshold
// whose coordinates are all finite and within [0,1] wins. If the service
// answers but no rectangle qualifies, the result is a miss. If the call
// itself fails, the fallback detector's result is returned.
func (m *ModelDetector) Detect(ctx context.Context, img image.Image) Result {
	start := time.Now()

	rects, err := m.predict(ctx, img)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"backend": BackendModel,
			"url":     m.baseURL,
		}).WithError(err).Warn("Inference failed, using fallback detector")
		if m.fallback == nil {
			return Miss(BackendModel)
		}
		return m.fallback.Detect(ctx, img)
	}

	best, ok := m.pick(rects)
	fields := logrus.Fields{
		"backend":    BackendModel,
		"candidates": len(rects),
		"elapsed":    time.Since(start).String(),
	}
	if !ok {
		logger.WithFields(fields).Debug("No rectangle above confidence threshold")
		return Miss(BackendModel)
	}

	fields["confidence"] = best.Confidence
	logger.WithFields(fields).Debug("Document quadrilateral found")

	return Result{
		Quad: geometry.Quad{
			TopLeft:     geometry.Pt(best.TopLeft.X, best.TopLeft.Y),
			TopRight:    geometry.Pt(best.TopRight.X, best.TopRight.Y),
			BottomLeft:  geometry.Pt(best.BottomLeft.X, best.BottomLeft.Y),
			BottomRight: geometry.Pt(best.BottomRight.X, best.BottomRight.Y),
		},
		Found:      true,
		Backend:    BackendModel,
		Confidence: best.Confidence,
	}
}

// pick returns the highest-confidence valid rectangle.
func (m *ModelDetector) pick(rects []modelRectangle) (modelRectangle, bool) {
	var best modelRectangle
	found := false
	for _, r := range rects {
		if !validRectangle(r) || r.Confidence < m.minConfidence {
			continue
		}
		if !found || r.Confidence > best.Confidence {
			best = r
			found = true
		}
	}
	return best, found
}

func validRectangle(r modelRectangle) bool {
	if math.IsNaN(r.Confidence) || math.IsInf(r.Confidence, 0) {
		return false
	}
	for _, p := range []modelPoint{r.TopLeft, r.TopRight, r.BottomLeft, r.BottomRight} {
		for _, v := range []float64{p.X, p.Y} {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 1 {
				return false
			}
		}
	}
	return true
}

// predict uploads the image and decodes the service's answer.
func (m *ModelDetector) predict(ctx context.Context, img image.Image) ([]modelRectangle, error) {
	endpoint, err := url.JoinPath(m.baseURL, "predict")
	if err != nil {
		return nil, fmt.Errorf("failed to build predict URL: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if err := imaging.Encode(part, img, imaging.JPEG, imaging.JPEGQuality(uploadQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference failed with status: %d", resp.StatusCode)
	}

	var result modelResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return result.Rectangles, nil
}

// CheckHealth probes <baseURL>/health.
func (m *ModelDetector) CheckHealth(ctx context.Context) error {
	endpoint, err := url.JoinPath(m.baseURL, "health")
	if err != nil {
		return fmt.Errorf("failed to build health URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach inference service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference service unhealthy: %d", resp.StatusCode)
	}

	return nil
}
