package ocr

import (
	"errors"
	"image"
	"testing"
)

func TestFilter(t *testing.T) {
	words := []Word{
		{Text: "Invoice", Confidence: 0.93, Bounds: image.Rect(10, 10, 80, 30)},
		{Text: "  ", Confidence: 0.99, Bounds: image.Rect(90, 10, 95, 30)},
		{Text: "smudge", Confidence: 0.2, Bounds: image.Rect(100, 10, 140, 30)},
		{Text: " total ", Confidence: 0.7, Bounds: image.Rect(10, 40, 60, 60)},
		{Text: "ghost", Confidence: 0.9, Bounds: image.Rectangle{}},
	}

	got := Filter(words, 0.5)
	if len(got) != 2 {
		t.Fatalf("expected 2 words, got %d: %+v", len(got), got)
	}
	if got[0].Text != "Invoice" || got[1].Text != "total" {
		t.Errorf("unexpected words %q, %q", got[0].Text, got[1].Text)
	}
	if Text(got) != "Invoice total" {
		t.Errorf("Text: got %q", Text(got))
	}
}

func TestFilter_Empty(t *testing.T) {
	if got := Filter(nil, 0); len(got) != 0 {
		t.Errorf("expected no words, got %v", got)
	}
	if Text(nil) != "" {
		t.Error("Text of no words should be empty")
	}
}

func TestNew(t *testing.T) {
	r, err := New("")
	if Available {
		if err != nil || r == nil {
			t.Errorf("expected a recognizer, got %v, %v", r, err)
		}
		return
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
