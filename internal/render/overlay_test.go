package render

import (
	"testing"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/shellpane/internal/surface"
)

var (
	testRed  = colorful.Color{R: 1, G: 0, B: 0}
	testBlue = colorful.Color{R: 0, G: 0, B: 1}
)

func TestOverlaysAt(t *testing.T) {
	var o Overlays
	o.Add(surface.Span{Start: 0, End: 3}, &testRed, nil)
	o.Add(surface.Span{Start: 2, End: 5}, nil, &testBlue)

	tests := []struct {
		offset surface.ByteOffset
		fg     colorful.Color
		bg     colorful.Color
		hasFg  bool
		hasBg  bool
	}{
		{0, testRed, colorful.Color{}, true, false},
		{1, testRed, colorful.Color{}, true, false},
		{2, testRed, testBlue, true, true},
		{4, colorful.Color{}, testBlue, false, true},
		{5, colorful.Color{}, colorful.Color{}, false, false}, // span ends are exclusive
	}
	for _, tt := range tests {
		fg, bg, hasFg, hasBg := o.At(tt.offset)
		if fg != tt.fg || bg != tt.bg || hasFg != tt.hasFg || hasBg != tt.hasBg {
			t.Errorf("At(%d) = %v %v %v %v, want %v %v %v %v",
				tt.offset, fg, bg, hasFg, hasBg, tt.fg, tt.bg, tt.hasFg, tt.hasBg)
		}
	}
}

func TestOverlaysNewestSpanWins(t *testing.T) {
	var o Overlays
	o.Add(surface.Span{Start: 0, End: 4}, &testRed, nil)
	o.Add(surface.Span{Start: 0, End: 4}, &testBlue, nil)

	fg, _, hasFg, _ := o.At(1)
	if !hasFg || fg != testBlue {
		t.Errorf("fg = %v (%v), want %v", fg, hasFg, testBlue)
	}
}

func TestOverlaysReset(t *testing.T) {
	var o Overlays
	o.Add(surface.Span{Start: 0, End: 10}, &testRed, &testBlue)
	o.Reset()

	if o.Len() != 0 {
		t.Errorf("Len = %d after reset, want 0", o.Len())
	}
	_, _, hasFg, hasBg := o.At(1)
	if hasFg || hasBg {
		t.Error("colors survived a reset")
	}
}

func TestOverlaysIgnoreColorlessSpan(t *testing.T) {
	var o Overlays
	o.Add(surface.Span{Start: 0, End: 10}, nil, nil)

	if o.Len() != 0 {
		t.Errorf("retained %d spans, want 0", o.Len())
	}
}
