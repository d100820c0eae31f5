package rectify

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
)

// createGradientImage creates an image whose red channel encodes x and
// green channel encodes y, so resampling errors show up as small deltas.
func createGradientImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 2), G: uint8(y * 2), B: 100, A: 255})
		}
	}
	return img
}

func quadCorners(x1, y1, x2, y2 float64) [4]geometry.Point {
	return [4]geometry.Point{{X: x1, Y: y1}, {X: x2, Y: y1}, {X: x2, Y: y2}, {X: x1, Y: y2}}
}

func TestOutputSize(t *testing.T) {
	tests := []struct {
		name    string
		corners [4]geometry.Point
		w, h    int
	}{
		{"rectangle", quadCorners(0, 0, 200, 100), 200, 100},
		{"trapezoid takes longer edges", [4]geometry.Point{{X: 20, Y: 0}, {X: 80, Y: 0}, {X: 100, Y: 50}, {X: 0, Y: 50}}, 100, 54},
		{"rounds", quadCorners(0, 0, 10.6, 5.4), 11, 5},
		{"minimum one", quadCorners(0, 0, 0.2, 0.2), 1, 1},
	}
	for _, tt := range tests {
		w, h := OutputSize(tt.corners)
		if w != tt.w || h != tt.h {
			t.Errorf("%s: got %dx%d, want %dx%d", tt.name, w, h, tt.w, tt.h)
		}
	}
}

func TestHomography_MapsCorners(t *testing.T) {
	src := [4]geometry.Point{{X: 120, Y: 80}, {X: 910, Y: 140}, {X: 860, Y: 990}, {X: 60, Y: 900}}
	dst := quadCorners(0, 0, 799, 1099)

	h, err := Homography(src, dst)
	if err != nil {
		t.Fatalf("Homography failed: %v", err)
	}
	for i := range src {
		got, ok := h.Apply(src[i])
		if !ok {
			t.Fatalf("corner %d mapped to infinity", i)
		}
		if geometry.Distance(got, dst[i]) > 1e-6 {
			t.Errorf("corner %d: got %v, want %v", i, got, dst[i])
		}
	}

	inv, err := h.Inverse()
	if err != nil {
		t.Fatalf("Inverse failed: %v", err)
	}
	for i := range dst {
		got, _ := inv.Apply(dst[i])
		if geometry.Distance(got, src[i]) > 1e-6 {
			t.Errorf("inverse corner %d: got %v, want %v", i, got, src[i])
		}
	}
}

func TestHomography_Identity(t *testing.T) {
	c := quadCorners(0, 0, 50, 30)
	h, err := Homography(c, c)
	if err != nil {
		t.Fatalf("Homography failed: %v", err)
	}
	id := Identity()
	for i := range h {
		if math.Abs(h[i]-id[i]) > 1e-9 {
			t.Fatalf("expected identity, got %v", h)
		}
	}
}

func TestHomography_Singular(t *testing.T) {
	collinear := [4]geometry.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 20, Y: 0}, {X: 30, Y: 0}}
	_, err := Homography(collinear, quadCorners(0, 0, 10, 10))
	if !errors.Is(err, ErrDegenerate) {
		t.Errorf("expected ErrDegenerate, got %v", err)
	}
}

func TestRectify_FullFrameKeepsDimensions(t *testing.T) {
	sizes := [][2]int{{640, 480}, {300, 301}, {1000, 1000}}
	for _, s := range sizes {
		img := createGradientImage(s[0], s[1])
		full := geometry.DefaultQuad().Denormalize(s[0], s[1]).Corners()

		out, err := Rectify(img, full)
		if err != nil {
			t.Fatalf("%v: Rectify failed: %v", s, err)
		}
		dx := out.Bounds().Dx() - s[0]
		dy := out.Bounds().Dy() - s[1]
		if dx < -1 || dx > 1 || dy < -1 || dy > 1 {
			t.Errorf("%v: got %dx%d", s, out.Bounds().Dx(), out.Bounds().Dy())
		}
	}
}

func TestRectify_AxisAlignedMatchesCrop(t *testing.T) {
	img := createGradientImage(100, 80)
	corners := quadCorners(10, 20, 60, 50)

	out, err := Rectify(img, corners)
	if err != nil {
		t.Fatalf("Rectify failed: %v", err)
	}
	if out.Bounds().Dx() != 50 || out.Bounds().Dy() != 30 {
		t.Fatalf("size: got %v, want 50x30", out.Bounds())
	}

	// The destination spans W-1 pixels for a W-pixel source span, so the
	// match with a plain crop is close but not exact.
	for y := 0; y < 30; y++ {
		for x := 0; x < 50; x++ {
			got := out.NRGBAAt(x, y)
			want := img.NRGBAAt(10+x, 20+y)
			if absDiff(got.R, want.R) > 3 || absDiff(got.G, want.G) > 3 || got.B != want.B {
				t.Fatalf("pixel (%d,%d): got %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestRectify_PerspectiveCornersLandOnOutputCorners(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 400, 400))
	corners := [4]geometry.Point{{X: 50, Y: 60}, {X: 330, Y: 40}, {X: 360, Y: 350}, {X: 30, Y: 320}}
	marks := []color.NRGBA{{255, 0, 0, 255}, {0, 255, 0, 255}, {0, 0, 255, 255}, {255, 255, 0, 255}}
	// Paint a 5×5 block of colour around each corner.
	for i, c := range corners {
		for dy := -2; dy <= 2; dy++ {
			for dx := -2; dx <= 2; dx++ {
				img.SetNRGBA(int(c.X)+dx, int(c.Y)+dy, marks[i])
			}
		}
	}

	out, err := Rectify(img, corners)
	if err != nil {
		t.Fatalf("Rectify failed: %v", err)
	}
	w, h := out.Bounds().Dx(), out.Bounds().Dy()
	outCorners := []image.Point{{0, 0}, {w - 1, 0}, {w - 1, h - 1}, {0, h - 1}}
	for i, p := range outCorners {
		if got := out.NRGBAAt(p.X, p.Y); got != marks[i] {
			t.Errorf("output corner %d: got %v, want %v", i, got, marks[i])
		}
	}
}

func TestRectify_Degenerate(t *testing.T) {
	img := createGradientImage(50, 50)
	tests := []struct {
		name    string
		corners [4]geometry.Point
	}{
		{"collinear", [4]geometry.Point{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 20, Y: 20}, {X: 30, Y: 30}}},
		{"three collinear", [4]geometry.Point{{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 40, Y: 0}, {X: 0, Y: 30}}},
		{"coincident", [4]geometry.Point{{X: 5, Y: 5}, {X: 5, Y: 5}, {X: 40, Y: 40}, {X: 5, Y: 40}}},
	}
	for _, tt := range tests {
		if _, err := Rectify(img, tt.corners); !errors.Is(err, ErrDegenerate) {
			t.Errorf("%s: expected ErrDegenerate, got %v", tt.name, err)
		}
	}
}

func TestRectify_OutsideSourceClampsToBorder(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	for i := range img.Pix {
		img.Pix[i] = 200
	}

	out, err := Rectify(img, quadCorners(-20, -20, 30, 30))
	if err != nil {
		t.Fatalf("Rectify failed: %v", err)
	}
	if got := out.NRGBAAt(0, 0); got != (color.NRGBA{200, 200, 200, 200}) {
		t.Errorf("out-of-range sample should take the border value, got %v", got)
	}
}

func TestBilinear(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{0, 0, 0, 255})
	img.SetNRGBA(1, 0, color.NRGBA{200, 100, 50, 255})

	px := make([]uint8, 4)
	bilinear(img, 0.5, 0, px)
	if px[0] != 100 || px[1] != 50 || px[2] != 25 || px[3] != 255 {
		t.Errorf("midpoint: got %v", px)
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
