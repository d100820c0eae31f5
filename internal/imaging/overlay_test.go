package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
)

func decodePreview(t *testing.T, r *PreviewResult) image.Image {
	t.Helper()
	if r.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", r.MimeType)
	}
	data, err := base64.StdEncoding.DecodeString(r.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	return img
}

func rgb8(img image.Image, x, y int) (uint8, uint8, uint8) {
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}

func TestQuadOverlay(t *testing.T) {
	img := createSolidImage(100, 100, color.RGBA{0, 0, 0, 255})
	corners := [4]geometry.Point{{X: 10, Y: 10}, {X: 90, Y: 10}, {X: 90, Y: 90}, {X: 10, Y: 90}}

	result, err := QuadOverlay(img, corners, "#FF0000", 1)
	if err != nil {
		t.Fatalf("QuadOverlay failed: %v", err)
	}
	if result.Width != 100 || result.Height != 100 {
		t.Errorf("dimensions: got %dx%d, want 100x100", result.Width, result.Height)
	}

	out := decodePreview(t, result)

	if r, g, b := rgb8(out, 50, 10); r != 255 || g != 0 || b != 0 {
		t.Errorf("top edge at (50,10): got (%d,%d,%d), want (255,0,0)", r, g, b)
	}
	if r, g, b := rgb8(out, 90, 50); r != 255 || g != 0 || b != 0 {
		t.Errorf("right edge at (90,50): got (%d,%d,%d), want (255,0,0)", r, g, b)
	}
	if r, g, b := rgb8(out, 50, 50); r != 0 || g != 0 || b != 0 {
		t.Errorf("interior at (50,50): got (%d,%d,%d), want (0,0,0)", r, g, b)
	}

	// The source image is not modified.
	if r, _, _, _ := img.At(50, 10).RGBA(); r != 0 {
		t.Error("QuadOverlay modified its input")
	}
}

func TestQuadOverlay_InvalidColorFallsBack(t *testing.T) {
	img := createSolidImage(100, 100, color.RGBA{0, 0, 0, 255})
	corners := [4]geometry.Point{{X: 10, Y: 10}, {X: 90, Y: 10}, {X: 90, Y: 90}, {X: 10, Y: 90}}

	for _, hex := range []string{"", "nonsense", "#12"} {
		result, err := QuadOverlay(img, corners, hex, 3)
		if err != nil {
			t.Fatalf("QuadOverlay(%q) failed: %v", hex, err)
		}
		out := decodePreview(t, result)
		if r, g, b := rgb8(out, 50, 90); r != 0 || g != 255 || b != 0 {
			t.Errorf("%q: bottom edge at (50,90): got (%d,%d,%d), want (0,255,0)", hex, r, g, b)
		}
	}
}

func TestQuadOverlay_CornersOutsideImage(t *testing.T) {
	img := createSolidImage(20, 20, color.RGBA{0, 0, 0, 255})
	corners := [4]geometry.Point{{X: -10, Y: -10}, {X: 30, Y: -10}, {X: 30, Y: 30}, {X: -10, Y: 30}}

	if _, err := QuadOverlay(img, corners, "#0000FF", 2); err != nil {
		t.Fatalf("QuadOverlay failed: %v", err)
	}
}

func TestEdgePreview(t *testing.T) {
	img := createRectangleImage(100, 80, 20, 20, 80, 60)

	result, err := EdgePreview(img, DefaultEdgeOptions())
	if err != nil {
		t.Fatalf("EdgePreview failed: %v", err)
	}
	if result.Width != 100 || result.Height != 80 {
		t.Errorf("dimensions: got %dx%d, want 100x80", result.Width, result.Height)
	}

	out := decodePreview(t, result)
	if r, _, _ := rgb8(out, 50, 40); r != 0 {
		t.Error("rectangle interior should not be an edge")
	}
}

func TestParseOutlineColor(t *testing.T) {
	tests := []struct {
		hex  string
		want color.RGBA
	}{
		{"#FF0000", color.RGBA{255, 0, 0, 255}},
		{"#0000ff", color.RGBA{0, 0, 255, 255}},
		{"", color.RGBA{0, 255, 0, 255}},
		{"red", color.RGBA{0, 255, 0, 255}},
	}
	for _, tt := range tests {
		if got := parseOutlineColor(tt.hex); got != tt.want {
			t.Errorf("parseOutlineColor(%q): got %v, want %v", tt.hex, got, tt.want)
		}
	}
}
