//go:build tesseract

package ocr

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// Available reports whether this binary can run OCR.
const Available = true

// Tesseract recognizes words with a fresh gosseract client per call, so a
// single value is safe to share between workers.
type Tesseract struct {
	language string
}

// New returns a Tesseract recognizer for language.
func New(language string) (Recognizer, error) {
	if language == "" {
		language = DefaultLanguage
	}
	return &Tesseract{language: language}, nil
}

// Recognize runs word-level recognition on img.
func (t *Tesseract) Recognize(img image.Image) ([]Word, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image for OCR: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	// Boxes come back relative to the encoded image, which starts at 0,0.
	origin := img.Bounds().Min
	words := make([]Word, 0, len(boxes))
	for _, box := range boxes {
		words = append(words, Word{
			Text:       box.Word,
			Confidence: float64(box.Confidence) / 100.0,
			Bounds:     box.Box.Add(origin),
		})
	}
	return words, nil
}
