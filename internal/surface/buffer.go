package surface

import (
	"errors"
	"sync"
)

// Errors returned by surface operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrSpanInvalid      = errors.New("invalid span")
	ErrRegionLocked     = errors.New("span is locked by a read-only region")
	ErrRegionNotFound   = errors.New("region not found")
)

// Buffer is the reference Surface implementation: UTF-8 text guarded by a
// mutex, with read-only regions, cached snapshots, and change observers.
// All methods are thread-safe.
type Buffer struct {
	mu      sync.RWMutex
	text    []byte
	version Version
	snap    *Snapshot

	regions      []Region
	nextRegionID RegionID

	view       View
	properties map[string]any

	changeSubs   map[uint64]func(Change)
	viewportSubs map[uint64]func()
	nextSubID    uint64
}

// NewBuffer creates a new empty buffer.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{
		version:      NextVersion(),
		nextRegionID: 1,
		properties:   make(map[string]any),
		changeSubs:   make(map[uint64]func(Change)),
		viewportSubs: make(map[uint64]func()),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// NewBufferFromString creates a buffer with initial content.
func NewBufferFromString(s string, opts ...Option) *Buffer {
	b := NewBuffer(opts...)
	b.text = []byte(s)
	return b
}

// Read Operations

// Snapshot returns a read-only snapshot of the current buffer state.
// Safe for concurrent access from other goroutines. Snapshots are cached
// per version, so repeated calls without intervening writes are cheap.
func (b *Buffer) Snapshot() *Snapshot {
	b.mu.RLock()
	if b.snap != nil {
		snap := b.snap
		b.mu.RUnlock()
		return snap
	}
	b.mu.RUnlock()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.snap == nil {
		b.snap = &Snapshot{text: string(b.text), version: b.version}
	}
	return b.snap
}

// Len returns the total byte length of the buffer.
func (b *Buffer) Len() ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return ByteOffset(len(b.text))
}

// Version returns the current content version.
func (b *Buffer) Version() Version {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// IsEmpty returns true if the buffer is empty.
func (b *Buffer) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.text) == 0
}

// Write Operations

// Insert inserts text at the given offset.
// Insertion into or at a denying edge of a read-only region fails with
// ErrRegionLocked.
func (b *Buffer) Insert(offset ByteOffset, text string) (EditResult, error) {
	b.mu.Lock()
	res, ch, err := b.insertLocked(offset, text)
	b.mu.Unlock()
	if err != nil {
		return EditResult{}, err
	}
	b.notifyChange(ch)
	return res, nil
}

// Delete removes text in the given span.
// Spans overlapping a read-only region fail with ErrRegionLocked.
func (b *Buffer) Delete(span Span) (EditResult, error) {
	b.mu.Lock()
	res, ch, err := b.deleteLocked(span)
	b.mu.Unlock()
	if err != nil {
		return EditResult{}, err
	}
	b.notifyChange(ch)
	return res, nil
}

// Replace replaces text in the given span with new text.
func (b *Buffer) Replace(span Span, text string) (EditResult, error) {
	b.mu.Lock()
	res, ch, err := b.replaceLocked(span, text)
	b.mu.Unlock()
	if err != nil {
		return EditResult{}, err
	}
	b.notifyChange(ch)
	return res, nil
}

func (b *Buffer) insertLocked(offset ByteOffset, text string) (EditResult, Change, error) {
	if offset < 0 || offset > ByteOffset(len(b.text)) {
		return EditResult{}, Change{}, ErrOffsetOutOfRange
	}
	for _, r := range b.regions {
		if r.BlocksInsert(offset) {
			return EditResult{}, Change{}, ErrRegionLocked
		}
	}

	ch := Change{
		Type:    ChangeInsert,
		Span:    Span{Start: offset, End: offset},
		NewSpan: Span{Start: offset, End: offset + ByteOffset(len(text))},
		NewText: text,
	}
	b.applyLocked(ch)

	return EditResult{
		OldSpan: ch.Span,
		NewSpan: ch.NewSpan,
		Delta:   int64(len(text)),
	}, ch, nil
}

func (b *Buffer) deleteLocked(span Span) (EditResult, Change, error) {
	if !span.IsValid() || span.Start < 0 || span.End > ByteOffset(len(b.text)) {
		return EditResult{}, Change{}, ErrSpanInvalid
	}
	for _, r := range b.regions {
		if r.BlocksEdit(span) {
			return EditResult{}, Change{}, ErrRegionLocked
		}
	}

	ch := Change{
		Type:    ChangeDelete,
		Span:    span,
		NewSpan: Span{Start: span.Start, End: span.Start},
		OldText: string(b.text[span.Start:span.End]),
	}
	b.applyLocked(ch)

	return EditResult{
		OldSpan: ch.Span,
		NewSpan: ch.NewSpan,
		OldText: ch.OldText,
		Delta:   -int64(span.Len()),
	}, ch, nil
}

func (b *Buffer) replaceLocked(span Span, text string) (EditResult, Change, error) {
	if !span.IsValid() || span.Start < 0 || span.End > ByteOffset(len(b.text)) {
		return EditResult{}, Change{}, ErrSpanInvalid
	}
	if span.IsEmpty() {
		return b.insertLocked(span.Start, text)
	}
	for _, r := range b.regions {
		if r.BlocksEdit(span) {
			return EditResult{}, Change{}, ErrRegionLocked
		}
	}

	ch := Change{
		Type:    ChangeReplace,
		Span:    span,
		NewSpan: Span{Start: span.Start, End: span.Start + ByteOffset(len(text))},
		OldText: string(b.text[span.Start:span.End]),
		NewText: text,
	}
	b.applyLocked(ch)

	return EditResult{
		OldSpan: ch.Span,
		NewSpan: ch.NewSpan,
		OldText: ch.OldText,
		Delta:   int64(len(text)) - int64(span.Len()),
	}, ch, nil
}

// applyLocked mutates the text, bumps the version, invalidates the snapshot
// cache, and slides region spans across the change. Region edges are sticky:
// appending at a region's End never grows the region.
func (b *Buffer) applyLocked(ch Change) {
	next := make([]byte, 0, len(b.text)-int(ch.Span.Len())+len(ch.NewText))
	next = append(next, b.text[:ch.Span.Start]...)
	next = append(next, ch.NewText...)
	next = append(next, b.text[ch.Span.End:]...)
	b.text = next

	b.version = NextVersion()
	b.snap = nil

	for i := range b.regions {
		b.regions[i].Span.Start = TransformOffsetSticky(b.regions[i].Span.Start, ch, true)
		b.regions[i].Span.End = TransformOffsetSticky(b.regions[i].Span.End, ch, true)
	}
}

// Regions

// AddRegion creates a read-only region over the span.
func (b *Buffer) AddRegion(span Span, policy EdgePolicy) (RegionID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addRegionLocked(span, policy)
}

func (b *Buffer) addRegionLocked(span Span, policy EdgePolicy) (RegionID, error) {
	if !span.IsValid() || span.Start < 0 || span.End > ByteOffset(len(b.text)) {
		return 0, ErrSpanInvalid
	}
	id := b.nextRegionID
	b.nextRegionID++
	b.regions = append(b.regions, Region{ID: id, Span: span, Policy: policy})
	return id, nil
}

// RemoveRegion clears a previously created region.
func (b *Buffer) RemoveRegion(id RegionID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.removeRegionLocked(id)
}

func (b *Buffer) removeRegionLocked(id RegionID) error {
	for i, r := range b.regions {
		if r.ID == id {
			b.regions = append(b.regions[:i], b.regions[i+1:]...)
			return nil
		}
	}
	return ErrRegionNotFound
}

// restoreRegionLocked re-adds a removed region with its original identity.
// Used by edit session rollback.
func (b *Buffer) restoreRegionLocked(r Region) {
	b.regions = append(b.regions, r)
	if r.ID >= b.nextRegionID {
		b.nextRegionID = r.ID + 1
	}
}

// Regions returns the active regions in creation order.
func (b *Buffer) Regions() []Region {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Region, len(b.regions))
	copy(out, b.regions)
	return out
}

// View Integration

// SetView attaches the presentation side. A nil view detaches it.
func (b *Buffer) SetView(v View) {
	b.mu.Lock()
	b.view = v
	b.mu.Unlock()
}

// EnsureVisible forwards a caret visibility request to the attached view.
// Detached buffers ignore the request.
func (b *Buffer) EnsureVisible(offset ByteOffset) {
	b.mu.RLock()
	v := b.view
	b.mu.RUnlock()
	if v != nil {
		v.EnsureVisible(offset)
	}
}

// Metrics reports the attached view's layout measurements, or zero metrics
// when detached.
func (b *Buffer) Metrics() ViewMetrics {
	b.mu.RLock()
	v := b.view
	b.mu.RUnlock()
	if v == nil {
		return ViewMetrics{}
	}
	return v.Metrics()
}

// ViewportChanged notifies viewport observers. Views call this on resize
// and zoom changes.
func (b *Buffer) ViewportChanged() {
	b.mu.RLock()
	subs := make([]func(), 0, len(b.viewportSubs))
	for _, fn := range b.viewportSubs {
		subs = append(subs, fn)
	}
	b.mu.RUnlock()

	for _, fn := range subs {
		fn()
	}
}

// Observers

// OnChange registers an observer for content changes.
// The returned function unsubscribes it.
func (b *Buffer) OnChange(fn func(Change)) func() {
	b.mu.Lock()
	id := b.nextSubID
	b.nextSubID++
	b.changeSubs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.changeSubs, id)
		b.mu.Unlock()
	}
}

// OnViewport registers an observer for viewport and zoom changes.
// The returned function unsubscribes it.
func (b *Buffer) OnViewport(fn func()) func() {
	b.mu.Lock()
	id := b.nextSubID
	b.nextSubID++
	b.viewportSubs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.viewportSubs, id)
		b.mu.Unlock()
	}
}

// notifyChange delivers a change to observers outside the lock.
func (b *Buffer) notifyChange(ch Change) {
	b.mu.RLock()
	subs := make([]func(Change), 0, len(b.changeSubs))
	for _, fn := range b.changeSubs {
		subs = append(subs, fn)
	}
	b.mu.RUnlock()

	for _, fn := range subs {
		fn(ch)
	}
}

// Property Bag

// SetProperty stores a value in the surface property bag. Consoles register
// themselves here so keystroke layers can find the owner of a surface.
func (b *Buffer) SetProperty(key string, value any) {
	b.mu.Lock()
	b.properties[key] = value
	b.mu.Unlock()
}

// Property looks up a value from the surface property bag.
func (b *Buffer) Property(key string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.properties[key]
	return v, ok
}
