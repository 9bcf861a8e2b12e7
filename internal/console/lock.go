package console

import "github.com/dshills/shellpane/internal/surface"

// LockMode is the read-only partitioning policy active on the surface.
// Exactly one mode is active at any time.
type LockMode int

const (
	// LockNone leaves the entire buffer editable.
	LockNone LockMode = iota

	// LockBeginAndBody locks everything committed so far and keeps the
	// tail after it open for insertion. This is the input mode lock.
	LockBeginAndBody

	// LockAll locks the entire buffer. Nothing may be inserted anywhere,
	// the end included. This is the idle output mode lock.
	LockAll
)

// String returns the mode name.
func (m LockMode) String() string {
	switch m {
	case LockNone:
		return "none"
	case LockBeginAndBody:
		return "begin+body"
	case LockAll:
		return "all"
	default:
		return "unknown"
	}
}

// LockState is the explicit lock state threaded through mode transitions:
// the active mode plus the handles of the marker regions enforcing it.
// The zero value means no lock has been applied.
type LockState struct {
	Mode  LockMode
	Begin surface.RegionID
	Body  surface.RegionID
}

// applyLock transitions the lock to mode inside an edit session and
// returns the resulting state. Existing markers are cleared first. On an
// empty buffer no markers are created, the mode is only recorded.
//
// LockBeginAndBody creates two markers: a zero-length denying region at
// offset zero, which blocks insertion before the first character, and a
// body lock over everything committed so far whose end stays open for
// appends. The body lock is sized once, at transition time; region edges
// are sticky, so output appended later never grows it. LockAll creates a
// single denying region over the whole buffer, edges included.
func applyLock(tx *surface.Tx, st LockState, mode LockMode) (LockState, error) {
	if st.Begin != 0 {
		if err := tx.RemoveRegion(st.Begin); err != nil {
			return st, err
		}
	}
	if st.Body != 0 {
		if err := tx.RemoveRegion(st.Body); err != nil {
			return st, err
		}
	}

	next := LockState{Mode: mode}
	length := tx.Len()
	if length == 0 {
		return next, nil
	}

	switch mode {
	case LockBeginAndBody:
		begin, err := tx.AddRegion(surface.Span{}, surface.EdgeDeny)
		if err != nil {
			return next, err
		}
		body, err := tx.AddRegion(surface.Span{Start: 0, End: length}, surface.EdgeAllowEnd)
		if err != nil {
			return next, err
		}
		next.Begin = begin
		next.Body = body
	case LockAll:
		body, err := tx.AddRegion(surface.Span{Start: 0, End: length}, surface.EdgeDeny)
		if err != nil {
			return next, err
		}
		next.Body = body
	}
	return next, nil
}
