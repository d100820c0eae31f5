// Package pipeline ties detection, rectification, filtering and encoding
// into the two calls callers make: Detect and RectifyAndFilter.
//
// Each call is synchronous and CPU-bound. A Scanner holds only immutable
// collaborators, so one value can serve any number of concurrent calls;
// WorkerPool bounds how many run at once.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docscan-mcp/internal/apperr"
	"github.com/ironsheep/docscan-mcp/internal/codec"
	"github.com/ironsheep/docscan-mcp/internal/detection"
	"github.com/ironsheep/docscan-mcp/internal/filter"
	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/logger"
	"github.com/ironsheep/docscan-mcp/internal/ocr"
	"github.com/ironsheep/docscan-mcp/internal/rectify"
)

// DefaultOCRMinConfidence drops recognized words below this score from the
// PDF text layer.
const DefaultOCRMinConfidence = 0.3

// Options configures a Scanner.
type Options struct {
	// Detector finds document boundaries. Required.
	Detector detection.Detector

	// Quality is the default JPEG quality; zero means codec.DefaultQuality.
	Quality int

	// OutputDir receives files when a request sets WriteFile. Empty means
	// the system temp directory.
	OutputDir string

	// Recognizer enables searchable PDFs. Nil disables them.
	Recognizer ocr.Recognizer

	// OCRMinConfidence overrides DefaultOCRMinConfidence when positive.
	OCRMinConfidence float64
}

// Scanner runs the document pipeline.
type Scanner struct {
	detector         detection.Detector
	quality          int
	outputDir        string
	recognizer       ocr.Recognizer
	ocrMinConfidence float64
}

// NewScanner creates a Scanner. A nil detector falls back to contour search
// with default options.
func NewScanner(opts Options) *Scanner {
	d := opts.Detector
	if d == nil {
		d = detection.NewContourDetector(detection.DefaultOptions())
	}
	minConf := opts.OCRMinConfidence
	if minConf <= 0 {
		minConf = DefaultOCRMinConfidence
	}
	return &Scanner{
		detector:         d,
		quality:          opts.Quality,
		outputDir:        opts.OutputDir,
		recognizer:       opts.Recognizer,
		ocrMinConfidence: minConf,
	}
}

// Searchable reports whether the scanner can produce PDFs with a text layer.
func (s *Scanner) Searchable() bool {
	return s.recognizer != nil
}

// DetectRequest asks for the document boundary in Image.
type DetectRequest struct {
	Image image.Image
}

// DetectResponse is the detected boundary. Quad is normalized with a
// top-left origin; it is the full-frame default when Found is false.
type DetectResponse struct {
	Quad       geometry.Quad `json:"quad"`
	Found      bool          `json:"found"`
	Backend    string        `json:"backend"`
	Confidence float64       `json:"confidence"`
	Width      int           `json:"width"`
	Height     int           `json:"height"`
}

// Detect locates the most prominent document quadrilateral. A miss is not
// an error.
func (s *Scanner) Detect(ctx context.Context, req DetectRequest) (*DetectResponse, error) {
	if req.Image == nil {
		return nil, apperr.InvalidArguments("image is required", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	result := s.detector.Detect(ctx, req.Image)
	b := req.Image.Bounds()

	logger.WithFields(logrus.Fields{
		"backend":    result.Backend,
		"found":      result.Found,
		"confidence": result.Confidence,
		"width":      b.Dx(),
		"height":     b.Dy(),
		"elapsed":    time.Since(start).String(),
	}).Debug("Detection finished")

	return &DetectResponse{
		Quad:       result.Quad,
		Found:      result.Found,
		Backend:    result.Backend,
		Confidence: result.Confidence,
		Width:      b.Dx(),
		Height:     b.Dy(),
	}, nil
}

// RectifyRequest describes one rectify, filter and encode run.
type RectifyRequest struct {
	Image image.Image

	// Quad is the document boundary in normalized coordinates. Corners may
	// be supplied under any role; they are reordered before warping.
	Quad geometry.Quad

	Filter filter.Spec
	Format codec.Format

	// Quality overrides the scanner's JPEG quality when non-zero.
	Quality int

	// Searchable adds an invisible OCR text layer. PDF only.
	Searchable bool

	// WriteFile writes the result to the output directory instead of
	// returning the bytes.
	WriteFile bool
}

// RectifyResponse is the encoded page. Exactly one of Data and Path is set.
type RectifyResponse struct {
	Data      []byte       `json:"-"`
	Path      string       `json:"path,omitempty"`
	Width     int          `json:"width"`
	Height    int          `json:"height"`
	Format    codec.Format `json:"format"`
	MimeType  string       `json:"mime_type"`
	SizeBytes int64        `json:"size_bytes"`
	Words     int          `json:"words,omitempty"`

	// Text is the recognized text of a searchable PDF, words joined by
	// single spaces.
	Text string `json:"text,omitempty"`
}

// RectifyAndFilter warps the quad region of Image to an upright rectangle,
// applies the tone filter and encodes the result.
//
// Stages run in order: validate, denormalize, order corners, rectify,
// filter, optional OCR, encode. The context is checked between stages; a
// stage in progress is never interrupted.
//
// Errors are AppErrors: INVALID_ARGUMENTS for bad requests,
// DEGENERATE_QUADRILATERAL when the corners enclose no area, ENCODE_ERROR
// when the output cannot be produced. A cancelled context returns the
// context's error.
func (s *Scanner) RectifyAndFilter(ctx context.Context, req RectifyRequest) (*RectifyResponse, error) {
	start := time.Now()

	format, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := req.Image.Bounds()
	corners := geometry.OrderPoints(req.Quad.Denormalize(b.Dx(), b.Dy()).Corners())

	warped, err := rectify.Rectify(req.Image, corners)
	if err != nil {
		return nil, classify(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filtered, err := filter.Apply(warped, req.Filter)
	if err != nil {
		return nil, classify(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := codec.Options{Quality: s.quality}
	if req.Quality != 0 {
		opts.Quality = req.Quality
	}
	if req.Searchable {
		words, err := s.recognizer.Recognize(filtered)
		if err != nil {
			return nil, apperr.Encode("failed to recognize text for the PDF text layer", err)
		}
		opts.Words = ocr.Filter(words, s.ocrMinConfidence)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	out := filtered.Bounds()
	resp := &RectifyResponse{
		Width:    out.Dx(),
		Height:   out.Dy(),
		Format:   format,
		MimeType: format.MimeType(),
		Words:    len(opts.Words),
		Text:     ocr.Text(opts.Words),
	}

	if req.WriteFile {
		path, err := codec.WriteFile(s.outputDir, filtered, format, opts)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, apperr.Encode("failed to stat output file", err)
		}
		resp.Path = path
		resp.SizeBytes = info.Size()
	} else {
		data, err := codec.EncodeBytes(filtered, format, opts)
		if err != nil {
			return nil, err
		}
		resp.Data = data
		resp.SizeBytes = int64(len(data))
	}

	logger.WithFields(logrus.Fields{
		"width":   resp.Width,
		"height":  resp.Height,
		"mode":    req.Filter.Mode,
		"format":  format,
		"bytes":   resp.SizeBytes,
		"elapsed": time.Since(start).String(),
	}).Debug("Rectified document")

	return resp, nil
}

func (s *Scanner) validate(req RectifyRequest) (codec.Format, error) {
	if req.Image == nil {
		return "", apperr.InvalidArguments("image is required", nil)
	}
	b := req.Image.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return "", apperr.InvalidArguments("image is empty", nil)
	}

	if _, err := geometry.ParseQuad(req.Quad.Fields()); err != nil {
		return "", apperr.InvalidArguments(err.Error(), err)
	}
	if err := req.Filter.Validate(); err != nil {
		return "", err
	}

	format, err := codec.ParseFormat(string(req.Format))
	if err != nil {
		return "", err
	}
	if req.Quality < 0 || req.Quality > 100 {
		return "", apperr.InvalidArgumentsf("quality must be in [1,100] (got %d)", req.Quality)
	}
	if req.Searchable {
		if format != codec.FormatPDF {
			return "", apperr.InvalidArguments("searchable output requires the pdf format", nil)
		}
		if s.recognizer == nil {
			return "", apperr.InvalidArguments("searchable PDFs are not available: OCR support is not enabled", nil)
		}
	}
	return format, nil
}

// classify turns lower-layer failures into AppErrors.
func classify(err error) error {
	var appErr *apperr.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, rectify.ErrDegenerate):
		return apperr.DegenerateQuad("quadrilateral has three collinear corners or zero area", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return apperr.New(apperr.CodeInternal, fmt.Sprintf("pipeline failed: %v", err), err)
}
