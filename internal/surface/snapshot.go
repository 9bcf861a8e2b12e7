package surface

import "strings"

// Snapshot provides a read-only view of a surface at a specific point in
// time. It is safe for concurrent access and will not change even if the
// originating surface is modified.
type Snapshot struct {
	text    string
	version Version
}

// Text returns the full snapshot content as a string.
func (s *Snapshot) Text() string {
	return s.text
}

// TextRange returns text in the given span, clamped to the snapshot bounds.
func (s *Snapshot) TextRange(span Span) string {
	start, end := span.Start, span.End
	if start < 0 {
		start = 0
	}
	if end > ByteOffset(len(s.text)) {
		end = ByteOffset(len(s.text))
	}
	if start >= end {
		return ""
	}
	return s.text[start:end]
}

// Len returns the total byte length of the snapshot.
func (s *Snapshot) Len() ByteOffset {
	return ByteOffset(len(s.text))
}

// Version returns the surface version this snapshot was taken at.
func (s *Snapshot) Version() Version {
	return s.version
}

// IsEmpty returns true if the snapshot is empty.
func (s *Snapshot) IsEmpty() bool {
	return len(s.text) == 0
}

// LineEndAt returns the offset of the end of the line containing offset,
// before the newline. Offsets past the end of the text report the text end.
func (s *Snapshot) LineEndAt(offset ByteOffset) ByteOffset {
	if offset < 0 {
		offset = 0
	}
	if offset > ByteOffset(len(s.text)) {
		return ByteOffset(len(s.text))
	}
	i := strings.IndexByte(s.text[offset:], '\n')
	if i < 0 {
		return ByteOffset(len(s.text))
	}
	return offset + ByteOffset(i)
}

// LineStartAt returns the offset of the start of the line containing offset.
func (s *Snapshot) LineStartAt(offset ByteOffset) ByteOffset {
	if offset > ByteOffset(len(s.text)) {
		offset = ByteOffset(len(s.text))
	}
	if offset <= 0 {
		return 0
	}
	i := strings.LastIndexByte(s.text[:offset], '\n')
	return ByteOffset(i + 1)
}

// LineCount returns the number of lines in the snapshot. An empty snapshot
// has one (empty) line; a trailing newline opens a new line.
func (s *Snapshot) LineCount() int {
	return strings.Count(s.text, "\n") + 1
}
