// Package console implements an interactive console engine over a text
// surface: a scrollback buffer that alternates between a fully locked
// output mode and an input mode where a single editable tail holds the
// line being composed.
//
// The engine is built from four cooperating parts behind one facade:
//
//   - The region lock policy partitions the surface. LockAll freezes the
//     whole buffer between commands, LockBeginAndBody freezes everything
//     committed so far while keeping the tail open for typing, and
//     LockNone opens the buffer during writes and after a clear. Every
//     transition is one atomic edit session.
//   - The input line tracker anchors the start of the line being composed
//     and re-anchors it across every buffer change. The anchor is backward
//     biased, so programmatic echo inserted exactly at it stays inside the
//     input line.
//   - The history log records submitted lines and drives Up/Down recall
//     over a lazily taken snapshot, clamped at the oldest entry and parked
//     on an empty line past the newest.
//   - The dispatcher confines all of the above to one owning goroutine.
//     Public methods marshal themselves there and block until done, so
//     hosts may call the console from any goroutine.
//
// Usage:
//
//	buf := surface.NewBuffer()
//	con, err := console.New(buf)
//	if err != nil {
//		return err
//	}
//	defer con.Dispose()
//
//	con.SetHost(myHost)
//	con.WriteLine("ready")
//	con.BeginInputLine()
//	// ... user types into the open tail ...
//	line, ended, err := con.EndInputLine(false)
//
// Completed non-echo lines are appended to history and handed to the Host
// for execution. Output produced by the host through Write, WriteLine, and
// WriteColored transiently unlocks the surface and locks it again over the
// grown buffer.
package console
