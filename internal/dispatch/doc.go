// Package dispatch serializes operations onto a single owning goroutine.
//
// A console's text surface has strict single-owner affinity: exactly one
// goroutine may touch its lock state, caret, and width cache. Dispatcher
// provides the marshaling contract for everyone else: a call from a foreign
// goroutine is packaged as a closure, queued to the owner's worker loop, and
// the caller blocks until the unit completes. Calls already on the owning
// goroutine are detected by goroutine identity and run inline, so the
// facade never deadlocks on itself.
//
// Queued units execute in submission order (single queue, single consumer).
// There is no cancellation or timeout for a queued unit; a blocked caller
// waits until its unit completes. An error returned by the unit comes back
// as Invoke's return value; a panic inside the unit is captured on the
// worker and re-raised on the calling goroutine with the original panic
// value.
//
// Shutdown is explicit: Close stops the worker after the in-flight unit and
// fails queued and future calls with ErrDispatcherClosed. Close is
// idempotent and must be called by the component that created the
// dispatcher; nothing here relies on finalizers.
package dispatch
