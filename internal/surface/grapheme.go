package surface

import "github.com/rivo/uniseg"

// LastGraphemeSpan returns the span of the final grapheme cluster in the
// snapshot, or an empty span at the end when the snapshot is empty.
// A trailing newline counts as one removable character. Only the final
// line is scanned.
func LastGraphemeSpan(snap *Snapshot) Span {
	n := snap.Len()
	if n == 0 {
		return Span{Start: 0, End: 0}
	}
	if snap.text[n-1] == '\n' {
		start := n - 1
		if n >= 2 && snap.text[n-2] == '\r' {
			start = n - 2
		}
		return Span{Start: start, End: n}
	}

	lineStart := snap.LineStartAt(n)
	rest := snap.text[lineStart:]
	last := Span{Start: lineStart, End: lineStart}
	off := lineStart
	state := -1
	for len(rest) > 0 {
		cluster, tail, _, st := uniseg.FirstGraphemeClusterInString(rest, state)
		last = Span{Start: off, End: off + ByteOffset(len(cluster))}
		off += ByteOffset(len(cluster))
		rest = tail
		state = st
	}
	return last
}

// DisplayWidth returns the number of terminal cells the string occupies.
func DisplayWidth(s string) int {
	return uniseg.StringWidth(s)
}
