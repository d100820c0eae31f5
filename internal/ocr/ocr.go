// Package ocr recognizes words on a rectified page so a PDF can carry an
// invisible, searchable text layer.
//
// Recognition uses Tesseract through gosseract and is compiled in only with
// the "tesseract" build tag, since it needs the native library and language
// data at runtime:
//
//	go build -tags tesseract ./cmd/docscan-mcp
//
// Without the tag, New returns ErrUnavailable and searchable PDFs are
// rejected as invalid arguments by the caller.
package ocr

import (
	"errors"
	"image"
	"strings"
)

// ErrUnavailable is returned when the binary was built without OCR support.
var ErrUnavailable = errors.New("ocr: built without tesseract support")

// DefaultLanguage is the Tesseract language used when none is configured.
const DefaultLanguage = "eng"

// Word is a recognized word and its box in image pixel coordinates.
type Word struct {
	Text       string          `json:"text"`
	Confidence float64         `json:"confidence"` // 0..1
	Bounds     image.Rectangle `json:"bounds"`
}

// Recognizer extracts words from an image.
type Recognizer interface {
	Recognize(img image.Image) ([]Word, error)
}

// Filter drops blank words and words below minConfidence.
func Filter(words []Word, minConfidence float64) []Word {
	out := make([]Word, 0, len(words))
	for _, w := range words {
		w.Text = strings.TrimSpace(w.Text)
		if w.Text == "" || w.Confidence < minConfidence {
			continue
		}
		if w.Bounds.Empty() {
			continue
		}
		out = append(out, w)
	}
	return out
}

// Text joins words with single spaces.
func Text(words []Word) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}
