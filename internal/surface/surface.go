package surface

// Surface is the capability the console engine consumes: snapshot-based
// reads, region-validated mutations, read-only region markers, caret and
// viewport access, and change notification. Buffer is the reference
// implementation; a host editor adapter satisfies the same contract.
type Surface interface {
	// Snapshot returns an immutable view of the current content.
	Snapshot() *Snapshot

	// Insert inserts text at the given offset, honoring read-only regions.
	Insert(offset ByteOffset, text string) (EditResult, error)

	// Delete removes the text in the given span, honoring read-only regions.
	Delete(span Span) (EditResult, error)

	// Replace replaces the span with new text, honoring read-only regions.
	Replace(span Span, text string) (EditResult, error)

	// Edit runs fn inside an atomic edit session. All text and region
	// operations performed through the session commit together; if fn
	// returns an error every applied operation is rolled back.
	Edit(fn func(*Tx) error) error

	// AddRegion creates a read-only region over the span.
	AddRegion(span Span, policy EdgePolicy) (RegionID, error)

	// RemoveRegion clears a previously created region.
	RemoveRegion(id RegionID) error

	// Regions returns the active regions in creation order.
	Regions() []Region

	// EnsureVisible asks the attached view to scroll the offset into view.
	EnsureVisible(offset ByteOffset)

	// Metrics reports the attached view's layout measurements.
	Metrics() ViewMetrics

	// OnChange registers an observer for content changes.
	// The returned function unsubscribes it.
	OnChange(fn func(Change)) func()

	// OnViewport registers an observer for viewport and zoom changes.
	// The returned function unsubscribes it.
	OnViewport(fn func()) func()

	// SetProperty stores a value in the surface property bag.
	SetProperty(key string, value any)

	// Property looks up a value from the surface property bag.
	Property(key string) (any, bool)
}

// View is the presentation side a Buffer can be attached to. Frontends
// implement it; the buffer forwards caret requests and layout queries.
type View interface {
	// Metrics reports viewport width, margins, and column width.
	Metrics() ViewMetrics

	// EnsureVisible scrolls the given offset into view.
	EnsureVisible(offset ByteOffset)
}

// ViewMetrics describes the layout measurements a view exposes for width
// computation. Terminal views report cell counts with ColumnWidth 1;
// pixel-based views report pixels and the average formatted column width.
type ViewMetrics struct {
	ViewportWidth float64
	MarginLeft    float64
	MarginRight   float64
	ColumnWidth   float64
}
