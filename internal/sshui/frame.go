package sshui

import (
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"

	"github.com/dshills/shellpane/internal/render"
)

type cellStyle struct {
	fg    colorful.Color
	bg    colorful.Color
	hasFg bool
	hasBg bool
}

// renderRow emits one wrapped row as text with inline truecolor SGR
// runs. Style changes reset before restyling so runs never leak into
// each other, and a styled row always ends with a reset.
func renderRow(row render.Row, overlays *render.Overlays) string {
	var b strings.Builder
	var cur cellStyle
	styled := false

	for _, c := range row.Cells {
		fg, bg, hasFg, hasBg := overlays.At(c.Offset)
		want := cellStyle{fg: fg, bg: bg, hasFg: hasFg, hasBg: hasBg}
		if want != cur {
			if styled {
				b.WriteString(sgrReset)
				styled = false
			}
			if want.hasFg {
				b.WriteString(fgSGR(want.fg))
				styled = true
			}
			if want.hasBg {
				b.WriteString(bgSGR(want.bg))
				styled = true
			}
			cur = want
		}
		b.WriteString(c.Cluster)
	}
	if styled {
		b.WriteString(sgrReset)
	}
	return b.String()
}

// renderStatus emits the reverse-video status line, truncated by display
// width and padded to exactly width cells.
func renderStatus(text string, width int) string {
	var b strings.Builder
	b.WriteString(sgrReverse)

	w := 0
	state := -1
	rest := text
	for len(rest) > 0 && w < width {
		cluster, tail, boundaries, next := uniseg.FirstGraphemeClusterInString(rest, state)
		cw := boundaries >> uniseg.ShiftWidth
		if w+cw > width {
			break
		}
		b.WriteString(cluster)
		w += cw
		rest = tail
		state = next
	}
	for ; w < width; w++ {
		b.WriteByte(' ')
	}

	b.WriteString(sgrReset)
	return b.String()
}
