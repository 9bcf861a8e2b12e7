package console

import "github.com/dshills/shellpane/internal/surface"

// defaultMinWidth is the floor for the computed console width. Hosts
// format tabular output against this value, so it never drops below 80
// columns regardless of viewport size.
const defaultMinWidth = 80

// computeWidth derives the console column count from view metrics: the
// viewport width minus both margins, divided by the column width, floored,
// and clamped to minCols.
func computeWidth(m surface.ViewMetrics, minCols int) int {
	if m.ColumnWidth <= 0 {
		return minCols
	}
	usable := m.ViewportWidth - m.MarginLeft - m.MarginRight
	cols := int(usable / m.ColumnWidth)
	if cols < minCols {
		return minCols
	}
	return cols
}
