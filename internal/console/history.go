package console

// defaultHistoryLimit bounds the command log unless overridden.
const defaultHistoryLimit = 1000

// History is the append-only command log plus the Up/Down recall cursor.
//
// Navigation works over a snapshot of the log taken lazily on the first
// move after a reset; the cursor starts one past the newest entry, the
// position that stands for a new empty line. Moves that would leave the
// valid range are ignored rather than wrapped: walking up clamps at the
// oldest entry, walking down parks one past the newest and resolves to
// the empty string.
type History struct {
	entries []string
	limit   int

	working []string
	cursor  int
	active  bool
}

// NewHistory creates a command log. limit <= 0 means unbounded.
func NewHistory(limit int) *History {
	return &History{limit: limit, cursor: -1}
}

// Append records a submitted command line. Empty lines are not recorded.
// When a limit is set the oldest entries are dropped to stay within it.
func (h *History) Append(cmd string) {
	if cmd == "" {
		return
	}
	h.entries = append(h.entries, cmd)
	if h.limit > 0 && len(h.entries) > h.limit {
		n := copy(h.entries, h.entries[len(h.entries)-h.limit:])
		h.entries = h.entries[:n]
	}
}

// Reset drops the navigation snapshot and cursor. The next navigation
// re-reads the live log.
func (h *History) Reset() {
	h.active = false
	h.working = nil
	h.cursor = -1
}

// Navigate moves the cursor by offset and resolves the text at the new
// position: a log entry, or the empty string at the parked position past
// the newest entry. ok is false when the move was ignored because the log
// is empty or the move would have left the valid range.
func (h *History) Navigate(offset int) (text string, ok bool) {
	if !h.active {
		if len(h.entries) == 0 {
			return "", false
		}
		h.working = make([]string, len(h.entries))
		copy(h.working, h.entries)
		h.cursor = len(h.working)
		h.active = true
	}

	next := h.cursor + offset
	if next < 0 || next > len(h.working) {
		return "", false
	}
	h.cursor = next
	if next < len(h.working) {
		return h.working[next], true
	}
	return "", true
}

// Entries returns a copy of the log, oldest first.
func (h *History) Entries() []string {
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of recorded entries.
func (h *History) Len() int {
	return len(h.entries)
}
