package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
)

// DefaultOutlineColor is used when a preview is requested without a colour.
const DefaultOutlineColor = "#00FF00"

// PreviewResult contains a preview image encoded as base64 PNG.
type PreviewResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// QuadOverlay draws a document quadrilateral on top of img and returns the
// result as a PNG preview.
//
// Parameters:
//   - img: Source image. It is not modified.
//   - corners: Pixel-space corners in canonical order (top-left, top-right,
//     bottom-right, bottom-left).
//   - colorHex: Outline colour as "#RRGGBB". Empty or invalid values fall
//     back to DefaultOutlineColor.
//   - thickness: Line width in pixels; values below 1 are treated as 1.
//
// Each corner is tagged with a small label (TL, TR, BR, BL) so the caller can
// confirm the role assignment before rectifying.
func QuadOverlay(img image.Image, corners [4]geometry.Point, colorHex string, thickness int) (*PreviewResult, error) {
	bounds := img.Bounds()
	result := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	lineColor := parseOutlineColor(colorHex)
	if thickness < 1 {
		thickness = 1
	}

	for i := 0; i < 4; i++ {
		drawLine(result, corners[i], corners[(i+1)%4], thickness, lineColor)
	}

	labels := [4]string{"TL", "TR", "BR", "BL"}
	fg := color.RGBA{255, 255, 255, 255}
	bg := color.RGBA{0, 0, 0, 200}
	for i, c := range corners {
		drawLabel(result, int(math.Round(c.X))+thickness+1, int(math.Round(c.Y))+thickness+1, labels[i], fg, bg)
	}

	return encodePreview(result)
}

// EdgePreview renders the detector's edge map for img as a PNG preview.
// The preview has the downscaled edge-map dimensions.
func EdgePreview(img image.Image, opts EdgeOptions) (*PreviewResult, error) {
	edges, _ := EdgeMap(img, opts)
	return encodePreview(edges)
}

func encodePreview(img image.Image) (*PreviewResult, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	b := img.Bounds()
	return &PreviewResult{
		Width:       b.Dx(),
		Height:      b.Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// parseOutlineColor parses "#RRGGBB", falling back to DefaultOutlineColor.
func parseOutlineColor(hex string) color.RGBA {
	c, err := colorful.Hex(hex)
	if err != nil {
		c, _ = colorful.Hex(DefaultOutlineColor)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// drawLine draws a straight segment of the given thickness by stamping
// square brushes along its length. Pixels outside img are skipped.
func drawLine(img *image.RGBA, from, to geometry.Point, thickness int, c color.RGBA) {
	steps := int(math.Ceil(math.Max(math.Abs(to.X-from.X), math.Abs(to.Y-from.Y))))
	if steps < 1 {
		steps = 1
	}
	half := thickness / 2
	bounds := img.Bounds()
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		cx := int(math.Round(from.X + (to.X-from.X)*t))
		cy := int(math.Round(from.Y + (to.Y-from.Y)*t))
		for dy := -half; dy < thickness-half; dy++ {
			for dx := -half; dx < thickness-half; dx++ {
				px, py := cx+dx, cy+dy
				if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
					img.SetRGBA(px, py, c)
				}
			}
		}
	}
}

// drawLabel draws a simple text label at the given position using a 3x5
// pixel font that covers the corner names.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	glyphs := map[rune][]string{
		'T': {"111", "010", "010", "010", "010"},
		'L': {"100", "100", "100", "100", "111"},
		'R': {"110", "101", "110", "101", "101"},
		'B': {"110", "101", "110", "101", "110"},
	}

	bounds := img.Bounds()
	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	// Draw background
	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			px, py := x+dx, y+dy
			if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
				img.Set(px, py, bg)
			}
		}
	}

	// Draw text
	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					px, py := cx+col, y+row
					if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
						img.Set(px, py, fg)
					}
				}
			}
		}
		cx += charWidth
	}
}
