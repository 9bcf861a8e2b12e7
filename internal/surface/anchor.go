package surface

// TransformOffset updates an offset after a change.
// Returns the new offset position.
//
// Transformation rules:
//   - If the change is entirely before the offset: adjust by the delta
//   - If the change starts at or after the offset: offset unchanged
//   - If the change spans the offset: move to the end of the new text
func TransformOffset(offset ByteOffset, ch Change) ByteOffset {
	if ch.Span.End <= offset {
		return offset - ch.Span.Len() + ByteOffset(len(ch.NewText))
	}

	if ch.Span.Start >= offset {
		return offset
	}

	return ch.Span.Start + ByteOffset(len(ch.NewText))
}

// TransformOffsetSticky is like TransformOffset but with a "sticky" behavior
// that determines how the offset behaves when text is inserted exactly at it.
// If sticky is true, the offset stays put and the inserted text lands after
// it (backward bias). If sticky is false, the offset moves to the end of the
// insertion. The insertion case is decided before the plain shift rule so a
// sticky anchor never drifts forward.
func TransformOffsetSticky(offset ByteOffset, ch Change, sticky bool) ByteOffset {
	if ch.Span.Start == offset && ch.Span.IsEmpty() {
		if sticky {
			return offset
		}
		return offset + ByteOffset(len(ch.NewText))
	}

	if ch.Span.End <= offset {
		return offset - ch.Span.Len() + ByteOffset(len(ch.NewText))
	}

	if ch.Span.Start >= offset {
		return offset
	}

	return ch.Span.Start + ByteOffset(len(ch.NewText))
}

// TransformOffsetMulti applies TransformOffsetSticky across a sequence of
// changes in the order they were applied.
func TransformOffsetMulti(offset ByteOffset, changes []Change, sticky bool) ByteOffset {
	for _, ch := range changes {
		offset = TransformOffsetSticky(offset, ch, sticky)
	}
	return offset
}
