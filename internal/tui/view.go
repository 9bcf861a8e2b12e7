package tui

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/shellpane/internal/config"
	"github.com/dshills/shellpane/internal/surface"
)

// screenView adapts a tcell screen to the surface view contract. Metrics
// are terminal cell counts, so ColumnWidth is 1. EnsureVisible records
// the target offset for the next paint instead of scrolling in place:
// requests arrive on the console's owner goroutine while painting happens
// on the event loop.
type screenView struct {
	screen  tcell.Screen
	margins config.Margins
	request func()

	mu        sync.Mutex
	target    surface.ByteOffset
	hasTarget bool
}

func newScreenView(screen tcell.Screen, margins config.Margins, request func()) *screenView {
	return &screenView{screen: screen, margins: margins, request: request}
}

// Metrics reports the terminal size in cells.
func (v *screenView) Metrics() surface.ViewMetrics {
	w, _ := v.screen.Size()
	return surface.ViewMetrics{
		ViewportWidth: float64(w),
		MarginLeft:    float64(v.margins.Left),
		MarginRight:   float64(v.margins.Right),
		ColumnWidth:   1,
	}
}

// EnsureVisible schedules a scroll to offset on the next paint.
func (v *screenView) EnsureVisible(offset surface.ByteOffset) {
	v.mu.Lock()
	v.target = offset
	v.hasTarget = true
	v.mu.Unlock()
	if v.request != nil {
		v.request()
	}
}

// takeTarget consumes the pending scroll target.
func (v *screenView) takeTarget() (surface.ByteOffset, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	offset, ok := v.target, v.hasTarget
	v.hasTarget = false
	return offset, ok
}
