package tui

import (
	"github.com/gdamore/tcell/v2"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/shellpane/internal/render"
	"github.com/dshills/shellpane/internal/surface"
)

// toTcell converts a color to tcell's 24-bit form.
func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// styleAt layers the retained overlay colors for offset onto base.
func styleAt(o *render.Overlays, offset surface.ByteOffset, base tcell.Style) tcell.Style {
	fg, bg, hasFg, hasBg := o.At(offset)
	if hasFg {
		base = base.Foreground(toTcell(fg))
	}
	if hasBg {
		base = base.Background(toTcell(bg))
	}
	return base
}
