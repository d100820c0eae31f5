// Package codec serializes processed pages as JPEG or single-page PDF.
package codec

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"

	"github.com/ironsheep/docscan-mcp/internal/apperr"
	"github.com/ironsheep/docscan-mcp/internal/ocr"
)

// Format is an output container.
type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPDF  Format = "pdf"
)

// DefaultQuality is the JPEG quality used when Options.Quality is unset.
const DefaultQuality = 80

// ParseFormat resolves a format name. "jpg" is accepted for JPEG and an
// empty name means JPEG.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "jpeg", "jpg":
		return FormatJPEG, nil
	case "pdf":
		return FormatPDF, nil
	}
	return "", apperr.InvalidArgumentsf("unsupported output format %q (use jpeg or pdf)", name)
}

// Extension returns the file extension without the dot.
func (f Format) Extension() string {
	if f == FormatPDF {
		return "pdf"
	}
	return "jpeg"
}

// MimeType returns the media type of the encoded output.
func (f Format) MimeType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "image/jpeg"
}

// Options controls encoding.
type Options struct {
	// Quality is the JPEG quality, 1-100. Zero means DefaultQuality. PDF
	// pages embed the image as JPEG at this quality.
	Quality int

	// Words, when non-empty, are written as an invisible text layer over a
	// PDF page. Ignored for JPEG.
	Words []ocr.Word
}

func (o Options) quality() int {
	switch {
	case o.Quality <= 0:
		return DefaultQuality
	case o.Quality > 100:
		return 100
	}
	return o.Quality
}

// Encode writes img to w in the given format. Failures are ENCODE_ERROR.
func Encode(w io.Writer, img image.Image, format Format, opts Options) error {
	var err error
	switch format {
	case FormatJPEG, "":
		err = imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(opts.quality()))
	case FormatPDF:
		err = encodePDF(w, img, opts)
	default:
		return apperr.Encode(fmt.Sprintf("unsupported output format %q", format), nil)
	}
	if err != nil {
		return apperr.Encode(fmt.Sprintf("failed to encode %s", format.Extension()), err)
	}
	return nil
}

// EncodeBytes is Encode into memory.
func EncodeBytes(img image.Image, format Format, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, format, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile encodes img into a new file named scan-<random>.<ext> inside dir
// (the system temp directory when dir is empty) and returns its path.
func WriteFile(dir string, img image.Image, format Format, opts Options) (string, error) {
	f, err := os.CreateTemp(dir, "scan-*."+format.Extension())
	if err != nil {
		return "", apperr.Encode("failed to create output file", err)
	}
	path := f.Name()

	if err := Encode(f, img, format, opts); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", apperr.Encode("failed to write output file", err)
	}
	return path, nil
}

// encodePDF writes a single page whose media box is the image size, one
// point per pixel, with the image drawn at the origin.
func encodePDF(w io.Writer, img image.Image, opts Options) error {
	b := img.Bounds()
	width, height := float64(b.Dx()), float64(b.Dy())

	var jpegData bytes.Buffer
	if err := imaging.Encode(&jpegData, img, imaging.JPEG, imaging.JPEGQuality(opts.quality())); err != nil {
		return err
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("P", gofpdf.SizeType{Wd: width, Ht: height})

	imgOpts := gofpdf.ImageOptions{ImageType: "JPG"}
	pdf.RegisterImageOptionsReader("page", imgOpts, &jpegData)
	pdf.ImageOptions("page", 0, 0, width, height, false, imgOpts, 0, "")

	if len(opts.Words) > 0 {
		addTextLayer(pdf, b.Min, opts.Words)
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

// addTextLayer places each word over its box in rendering mode 3 (neither
// filled nor stroked) so the page is searchable but looks unchanged.
func addTextLayer(pdf *gofpdf.Fpdf, origin image.Point, words []ocr.Word) {
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTextRenderingMode(3)
	for _, word := range words {
		box := word.Bounds.Sub(origin)
		if box.Empty() {
			continue
		}
		pdf.SetFont("Helvetica", "", float64(box.Dy()))
		pdf.SetXY(float64(box.Min.X), float64(box.Min.Y))
		pdf.CellFormat(float64(box.Dx()), float64(box.Dy()), tr(word.Text+" "), "", 0, "LM", false, 0, "")
	}
	pdf.SetTextRenderingMode(0)
}
