package surface

import "fmt"

// Span represents a byte range in the surface text.
// Start is inclusive, End is exclusive: [Start, End).
type Span struct {
	Start ByteOffset // Inclusive start position
	End   ByteOffset // Exclusive end position
}

// NewSpan creates a new Span from start and end offsets.
func NewSpan(start, end ByteOffset) Span {
	return Span{Start: start, End: end}
}

// String returns a human-readable representation of the span.
func (s Span) String() string {
	return fmt.Sprintf("[%d:%d)", s.Start, s.End)
}

// Len returns the length of the span in bytes.
func (s Span) Len() ByteOffset {
	return s.End - s.Start
}

// IsEmpty returns true if the span has zero length.
func (s Span) IsEmpty() bool {
	return s.Start == s.End
}

// IsValid returns true if the span is valid (Start <= End).
func (s Span) IsValid() bool {
	return s.Start <= s.End
}

// Contains returns true if the given offset is within the span.
func (s Span) Contains(offset ByteOffset) bool {
	return offset >= s.Start && offset < s.End
}

// ContainsSpan returns true if the given span is entirely within this span.
func (s Span) ContainsSpan(other Span) bool {
	return other.Start >= s.Start && other.End <= s.End
}

// Overlaps returns true if this span overlaps with another span.
// Touching at an edge does not count as overlap.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// Intersect returns the intersection of two spans, or an empty span if they
// do not overlap.
func (s Span) Intersect(other Span) Span {
	start := s.Start
	if other.Start > start {
		start = other.Start
	}
	end := s.End
	if other.End < end {
		end = other.End
	}
	if start >= end {
		return Span{Start: start, End: start}
	}
	return Span{Start: start, End: end}
}

// Union returns the smallest span that contains both spans.
func (s Span) Union(other Span) Span {
	start := s.Start
	if other.Start < start {
		start = other.Start
	}
	end := s.End
	if other.End > end {
		end = other.End
	}
	return Span{Start: start, End: end}
}

// Shift returns a new span shifted by the given delta.
func (s Span) Shift(delta ByteOffset) Span {
	return Span{
		Start: s.Start + delta,
		End:   s.End + delta,
	}
}

// Transform returns the span translated across a change. Both edges move
// with non-sticky bias; the result is normalized so Start <= End.
func (s Span) Transform(ch Change) Span {
	start := TransformOffset(s.Start, ch)
	end := TransformOffset(s.End, ch)
	if start > end {
		start, end = end, start
	}
	return Span{Start: start, End: end}
}
