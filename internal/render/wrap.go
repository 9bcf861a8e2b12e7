package render

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/dshills/shellpane/internal/surface"
)

// Cell is one grapheme cluster placed on a visual row.
type Cell struct {
	Cluster string
	Offset  surface.ByteOffset
	Width   int
}

// Row is one screen row of wrapped scrollback text. Start is the byte
// offset the row begins at and is valid even when the row holds no
// cells, as after a trailing newline.
type Row struct {
	Start surface.ByteOffset
	Cells []Cell
}

// Width is the total cell width of the row.
func (r Row) Width() int {
	w := 0
	for _, c := range r.Cells {
		w += c.Width
	}
	return w
}

// Wrap lays text out into rows no wider than width cells. Newline
// clusters end a row and are not kept as cells. A cluster that does not
// fit the remaining space moves to the next row; one wider than the
// whole row is placed anyway and overflows. The final row is always
// present, so empty text produces a single empty row.
func Wrap(text string, width int) []Row {
	if width < 1 {
		width = 1
	}

	rows := make([]Row, 0, strings.Count(text, "\n")+1)
	cur := Row{}
	used := 0

	offset := surface.ByteOffset(0)
	state := -1
	rest := text
	for len(rest) > 0 {
		cluster, tail, boundaries, next := uniseg.FirstGraphemeClusterInString(rest, state)
		size := surface.ByteOffset(len(cluster))

		if strings.ContainsRune(cluster, '\n') {
			rows = append(rows, cur)
			cur = Row{Start: offset + size}
			used = 0
		} else {
			w := boundaries >> uniseg.ShiftWidth
			if used+w > width && used > 0 {
				rows = append(rows, cur)
				cur = Row{Start: offset}
				used = 0
			}
			cur.Cells = append(cur.Cells, Cell{Cluster: cluster, Offset: offset, Width: w})
			used += w
		}

		offset += size
		rest = tail
		state = next
	}

	return append(rows, cur)
}

// RowContaining returns the index of the row holding offset. Offsets
// past the end land on the last row. The scan runs from the tail because
// visibility targets cluster there.
func RowContaining(rows []Row, offset surface.ByteOffset) int {
	for i := len(rows) - 1; i > 0; i-- {
		if rows[i].Start <= offset {
			return i
		}
	}
	return 0
}
