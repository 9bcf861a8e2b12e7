package console

import "github.com/dshills/shellpane/internal/surface"

// Tracker follows the line currently being composed: whether one is open,
// where it starts, and how that start moves as the buffer changes.
//
// The start anchor is backward biased: text inserted exactly at the anchor
// does not push it forward. Programmatic echo written at the anchor
// therefore lands inside the input line instead of before it.
type Tracker struct {
	composing bool
	start     surface.ByteOffset
}

// Composing reports whether an input line is open.
func (t *Tracker) Composing() bool {
	return t.composing
}

// Start returns the input line anchor. ok is false while idle.
func (t *Tracker) Start() (start surface.ByteOffset, ok bool) {
	return t.start, t.composing
}

// Begin opens an input line anchored at start. Beginning while already
// composing keeps the existing anchor.
func (t *Tracker) Begin(start surface.ByteOffset) {
	if t.composing {
		return
	}
	t.composing = true
	t.start = start
}

// End closes the input line and returns the anchor it had. Ending while
// idle reports false.
func (t *Tracker) End() (start surface.ByteOffset, ended bool) {
	if !t.composing {
		return 0, false
	}
	start = t.start
	t.composing = false
	t.start = 0
	return start, true
}

// Abandon discards any open input line without reporting it.
func (t *Tracker) Abandon() {
	t.composing = false
	t.start = 0
}

// Translate re-anchors the start across a buffer change.
func (t *Tracker) Translate(ch surface.Change) {
	if !t.composing {
		return
	}
	t.start = surface.TransformOffsetSticky(t.start, ch, true)
}

// Extent returns the span of the input line within its own buffer line,
// from the anchor to the end of that line.
func (t *Tracker) Extent(snap *surface.Snapshot) (surface.Span, error) {
	if !t.composing {
		return surface.Span{}, ErrNotComposing
	}
	start := t.clamp(snap)
	return surface.Span{Start: start, End: snap.LineEndAt(start)}, nil
}

// AllExtent returns the span from the anchor to the absolute end of the
// buffer. Unlike Extent it tolerates extra lines in the tail, as when an
// external writer appended while input was open.
func (t *Tracker) AllExtent(snap *surface.Snapshot) (surface.Span, error) {
	if !t.composing {
		return surface.Span{}, ErrNotComposing
	}
	start := t.clamp(snap)
	return surface.Span{Start: start, End: snap.Len()}, nil
}

func (t *Tracker) clamp(snap *surface.Snapshot) surface.ByteOffset {
	start := t.start
	if start > snap.Len() {
		start = snap.Len()
	}
	if start < 0 {
		start = 0
	}
	return start
}
