package ptyhost

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"unicode/utf8"

	"github.com/creack/pty"
	"pkt.systems/pslog"

	"github.com/dshills/shellpane/internal/console"
)

// ErrHostClosed is returned when using a closed host.
var ErrHostClosed = errors.New("pty host is closed")

// ExitFunc is called once from the reader goroutine when the child's tty
// stops producing output. err is the read error that ended the stream.
type ExitFunc func(err error)

// Host runs a command under a pty and feeds its output to the console.
type Host struct {
	con      *console.Console
	logger   pslog.Logger
	onExit   ExitFunc
	onOutput func()
	echo     echoLedger

	cmd *exec.Cmd
	tty *os.File

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
	reapOnce  sync.Once
	wg        sync.WaitGroup
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the host's logger.
func WithLogger(logger pslog.Logger) Option {
	return func(h *Host) { h.logger = logger }
}

// WithOnExit registers a callback for child exit.
func WithOnExit(fn ExitFunc) Option {
	return func(h *Host) { h.onExit = fn }
}

// WithOnOutput registers a callback that fires from the reader goroutine
// after each chunk of child output lands in the console. Frontends use it
// to move the pending input line back behind the new output.
func WithOnOutput(fn func()) Option {
	return func(h *Host) { h.onOutput = fn }
}

// Start launches command under a fresh pty and begins streaming its
// output into con.
func Start(con *console.Console, command string, args []string, opts ...Option) (*Host, error) {
	h := &Host{
		con:    con,
		logger: pslog.Ctx(context.Background()),
		cmd:    exec.Command(command, args...),
	}
	for _, opt := range opts {
		opt(h)
	}

	tty, err := pty.Start(h.cmd)
	if err != nil {
		return nil, fmt.Errorf("starting %s under pty: %w", command, err)
	}
	h.tty = tty

	h.wg.Add(1)
	go h.readLoop()
	return h, nil
}

// Submit writes a completed line to the child's stdin. The line is
// recorded in the echo ledger so the driver's copy of it is not rendered
// a second time.
func (h *Host) Submit(line console.PendingInputLine) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHostClosed
	}

	text := line.Text + "\n"
	h.echo.Sent([]rune(text))
	if _, err := h.tty.WriteString(text); err != nil {
		return fmt.Errorf("writing to pty: %w", err)
	}
	return nil
}

// Resize propagates a window size change to the child.
func (h *Host) Resize(rows, cols int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHostClosed
	}
	return pty.Setsize(h.tty, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}

// Close terminates the child and stops the reader. It is idempotent.
func (h *Host) Close() error {
	var err error
	h.closeOnce.Do(func() {
		h.mu.Lock()
		h.closed = true
		h.mu.Unlock()

		if h.cmd.Process != nil {
			_ = h.cmd.Process.Kill()
		}
		err = h.tty.Close()
		h.wg.Wait()
		h.reap()
	})
	return err
}

func (h *Host) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// reap waits for the child exactly once.
func (h *Host) reap() {
	h.reapOnce.Do(func() {
		_ = h.cmd.Wait()
	})
}

// readLoop streams tty output into the console. Reads end with an error
// when the child exits or the master side is closed; which of the two
// happened decides whether the exit callback fires.
func (h *Host) readLoop() {
	defer h.wg.Done()

	buf := make([]byte, 8192)
	var pending []byte

	for {
		n, err := h.tty.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			cut := completeBoundary(pending)
			h.deliver(pending[:cut])
			pending = append(pending[:0], pending[cut:]...)
		}
		if err != nil {
			if len(pending) > 0 {
				h.deliver(pending)
			}
			if h.isClosed() {
				return
			}
			h.logger.Debug("pty stream ended", "err", err)
			h.reap()
			if h.onExit != nil {
				h.onExit(err)
			}
			return
		}
	}
}

// completeBoundary returns the length of the prefix that ends on a rune
// boundary, holding back a trailing partial rune for the next read.
func completeBoundary(p []byte) int {
	i := len(p)
	for i > 0 && len(p)-i < utf8.UTFMax && !utf8.RuneStart(p[i-1]) {
		i--
	}
	if i == 0 {
		return len(p)
	}
	if utf8.FullRune(p[i-1:]) {
		return len(p)
	}
	return i - 1
}

func (h *Host) deliver(raw []byte) {
	if len(raw) == 0 {
		return
	}
	input := h.echo.Cancel([]rune(string(raw)))
	text, backspaces := normalize(input)

	for i := 0; i < backspaces; i++ {
		if err := h.con.WriteBackspace(); err != nil {
			h.logger.Warn("pty backspace dropped", "err", err)
			break
		}
	}
	if text != "" {
		if err := h.con.Write(text); err != nil {
			h.logger.Warn("pty output dropped", "err", err, "len", len(text))
		}
	}
	if (text != "" || backspaces > 0) && h.onOutput != nil {
		h.onOutput()
	}
}

// normalize converts raw tty output into console text: CRLF and lone CR
// become LF, NUL padding is dropped, and backspaces erase the previous
// rune. Backspaces that would reach before this chunk are returned as a
// count for the caller to apply against the scrollback; they never cross
// a line break.
func normalize(input []rune) (string, int) {
	out := make([]rune, 0, len(input))
	var leading int

	for i := 0; i < len(input); i++ {
		r := input[i]
		switch r {
		case '\x00':
		case '\r':
			if i+1 < len(input) && input[i+1] == '\n' {
				continue
			}
			out = append(out, '\n')
		case '\b':
			if len(out) == 0 {
				leading++
				continue
			}
			if out[len(out)-1] != '\n' {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, r)
		}
	}
	return string(out), leading
}
