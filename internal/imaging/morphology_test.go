package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestClose_BridgesSmallGap(t *testing.T) {
	edges := image.NewGray(image.Rect(0, 0, 50, 30))
	for x := 5; x <= 40; x++ {
		if x == 21 || x == 22 {
			continue
		}
		edges.SetGray(x, 10, color.Gray{Y: 255})
	}

	closed := Close(edges, 2)

	for _, x := range []int{21, 22} {
		if grayAt(closed, x, 10) != 255 {
			t.Errorf("gap pixel (%d,10) should be filled after closing", x)
		}
	}
	if grayAt(closed, 25, 20) != 0 {
		t.Error("background far from the line should stay empty")
	}
	if grayAt(closed, 20, 10) != 255 || grayAt(closed, 30, 10) != 255 {
		t.Error("original line pixels should survive closing")
	}
}

func TestClose_ZeroIterations(t *testing.T) {
	edges := image.NewGray(image.Rect(0, 0, 10, 10))
	edges.SetGray(3, 3, color.Gray{Y: 255})

	closed := Close(edges, 0)
	if closed == edges {
		t.Error("Close should return a new image")
	}
	if grayAt(closed, 3, 3) != 255 || grayAt(closed, 4, 3) != 0 {
		t.Error("zero iterations should leave the edge map unchanged")
	}
}
