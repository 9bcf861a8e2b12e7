// Package surface provides the text surface a console renders into: a
// thread-safe snapshot buffer with read-only region markers, anchored
// offset translation, and atomic edit sessions.
//
// The surface package provides:
//
//   - Surface, the capability interface consumed by the console engine
//   - Buffer, the reference implementation backed by a UTF-8 byte slice
//   - Read-only regions with configurable edge insertion policies
//   - Offset and span translation across edits, with backward-biased
//     (sticky) anchoring for positions that must not drift forward
//   - Edit sessions that apply multiple text and region operations
//     atomically, rolling back on error
//
// Basic usage:
//
//	buf := surface.NewBuffer()
//	buf.Insert(0, "hello")
//
//	// Lock the written text, leave the tail open for appending.
//	id, _ := buf.AddRegion(surface.Span{Start: 0, End: buf.Snapshot().Len()}, surface.EdgeAllowEnd)
//
//	// Reads go through immutable snapshots.
//	snap := buf.Snapshot()
//	_ = snap.Text()
//	_ = buf.RemoveRegion(id)
//
// Thread Safety:
//
// All Buffer methods are thread-safe. Mutations acquire an exclusive lock;
// reads share a read lock. Snapshot returns a consistent immutable view
// that other goroutines may hold across later mutations.
package surface
