package ptyhost

import "sync"

// maxLedger bounds the pending echo. A ledger this deep means the tty
// stopped echoing; stale entries are dropped oldest first so they cannot
// swallow genuine output later.
const maxLedger = 8192

// echoLedger records text written to the tty so the driver's echo of it
// can be suppressed on the way back.
type echoLedger struct {
	mu  sync.Mutex
	buf []rune
}

// Sent records text just written to the tty.
func (e *echoLedger) Sent(input []rune) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.buf = append(e.buf, input...)
	if over := len(e.buf) - maxLedger; over > 0 {
		n := copy(e.buf, e.buf[over:])
		e.buf = e.buf[:n]
	}
}

// Cancel consumes the prefix of input matching the pending echo and
// returns what remains. The driver echoes "\n" as "\r\n"; the extra
// carriage return is tolerated while matching.
func (e *echoLedger) Cancel(input []rune) []rune {
	e.mu.Lock()
	defer e.mu.Unlock()

	var i, r int
	for i = 0; i < len(input); i++ {
		if r >= len(e.buf) {
			break
		}
		if e.buf[r] == input[i] {
			r++
			continue
		}
		if e.buf[r] == '\n' && input[i] == '\r' {
			continue
		}
		break
	}

	n := copy(e.buf, e.buf[r:])
	e.buf = e.buf[:n]
	return input[i:]
}

// Pending returns the number of runes still awaiting their echo.
func (e *echoLedger) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.buf)
}
