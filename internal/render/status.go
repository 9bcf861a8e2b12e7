package render

import (
	"fmt"
	"strings"
	"sync"
)

var spinnerFrames = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

// Status is the console status surface shared by the frontends: a busy
// spinner and a progress readout rendered as one line of text. Console
// callbacks arrive on the console's owner goroutine; painters and
// spinner tickers read from their own loops.
type Status struct {
	mu        sync.Mutex
	busy      bool
	frame     int
	progress  bool
	operation string
	percent   int

	request func()
}

// NewStatus creates a status line. request, when non-nil, is invoked
// after every state change so the frontend can repaint.
func NewStatus(request func()) *Status {
	return &Status{request: request}
}

// ShowProgress reports an in-progress operation at percent complete.
func (s *Status) ShowProgress(operation string, percent int) {
	s.mu.Lock()
	s.progress = true
	s.operation = operation
	s.percent = percent
	s.mu.Unlock()
	s.repaint()
}

// HideProgress removes the progress readout.
func (s *Status) HideProgress() {
	s.mu.Lock()
	s.progress = false
	s.mu.Unlock()
	s.repaint()
}

// SetBusy toggles the spinner.
func (s *Status) SetBusy(busy bool) {
	s.mu.Lock()
	s.busy = busy
	if !busy {
		s.frame = 0
	}
	s.mu.Unlock()
	s.repaint()
}

// RefreshCommandUI requests a repaint once execution finishes.
func (s *Status) RefreshCommandUI() {
	s.repaint()
}

func (s *Status) repaint() {
	if s.request != nil {
		s.request()
	}
}

// Tick advances the spinner one frame and reports whether a repaint is
// worthwhile.
func (s *Status) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.busy {
		return false
	}
	s.frame = (s.frame + 1) % len(spinnerFrames)
	return true
}

// Showing reports whether a progress readout is visible.
func (s *Status) Showing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// Line renders the status text.
func (s *Status) Line() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	if s.busy {
		b.WriteRune(spinnerFrames[s.frame])
		b.WriteString(" running")
	} else {
		b.WriteString("ready")
	}
	if s.progress {
		fmt.Fprintf(&b, " | %s %d%%", s.operation, s.percent)
	}
	return b.String()
}
