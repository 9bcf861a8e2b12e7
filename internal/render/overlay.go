package render

import (
	"sync"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/shellpane/internal/surface"
)

// colorSpan is a retained stretch of colored scrollback. Committed
// offsets are stable until the console clears, so spans index by
// absolute position.
type colorSpan struct {
	span  surface.Span
	fg    colorful.Color
	bg    colorful.Color
	hasFg bool
	hasBg bool
}

// Overlays retains color span events and answers per-cell colors while
// painting. Events arrive on the console's owner goroutine; painters
// read from their own loops.
type Overlays struct {
	mu    sync.Mutex
	spans []colorSpan
}

// Add retains one colored span. Nil colors leave that channel unstyled;
// a span with neither color is dropped.
func (o *Overlays) Add(span surface.Span, fg, bg *colorful.Color) {
	cs := colorSpan{span: span}
	if fg != nil {
		cs.fg = *fg
		cs.hasFg = true
	}
	if bg != nil {
		cs.bg = *bg
		cs.hasBg = true
	}
	if !cs.hasFg && !cs.hasBg {
		return
	}

	o.mu.Lock()
	o.spans = append(o.spans, cs)
	o.mu.Unlock()
}

// Reset drops every retained span.
func (o *Overlays) Reset() {
	o.mu.Lock()
	o.spans = o.spans[:0]
	o.mu.Unlock()
}

// Len reports the number of retained spans.
func (o *Overlays) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.spans)
}

// At layers every span covering offset, newest last, and reports the
// effective colors.
func (o *Overlays) At(offset surface.ByteOffset) (fg, bg colorful.Color, hasFg, hasBg bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, cs := range o.spans {
		if !cs.span.Contains(offset) {
			continue
		}
		if cs.hasFg {
			fg = cs.fg
			hasFg = true
		}
		if cs.hasBg {
			bg = cs.bg
			hasBg = true
		}
	}
	return fg, bg, hasFg, hasBg
}
