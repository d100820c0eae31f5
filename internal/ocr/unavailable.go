//go:build !tesseract

package ocr

// Available reports whether this binary can run OCR.
const Available = false

// New always fails with ErrUnavailable; build with -tags tesseract to enable
// recognition.
func New(language string) (Recognizer, error) {
	return nil, ErrUnavailable
}
