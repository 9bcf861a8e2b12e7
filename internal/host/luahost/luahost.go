package luahost

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
	"pkt.systems/pslog"

	"github.com/dshills/shellpane/internal/config"
	"github.com/dshills/shellpane/internal/console"
)

var (
	// ErrHostClosed is returned when submitting to a closed host.
	ErrHostClosed = errors.New("lua host is closed")

	// ErrBusy is returned when the submission queue is full.
	ErrBusy = errors.New("lua host queue is full")
)

const defaultQueueSize = 64

// CompletionFunc is called on the worker goroutine after each chunk
// finishes. err is the chunk's execution error, nil on success.
type CompletionFunc func(line console.PendingInputLine, err error)

// Host executes console input lines as Lua chunks on a dedicated worker.
type Host struct {
	con        *console.Console
	palette    config.Palette
	logger     pslog.Logger
	onComplete CompletionFunc

	queue     chan console.PendingInputLine
	done      chan struct{}
	wg        sync.WaitGroup
	closed    atomic.Bool
	closeOnce sync.Once
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the host's logger.
func WithLogger(logger pslog.Logger) Option {
	return func(h *Host) { h.logger = logger }
}

// WithPalette sets the colors used for rendered errors.
func WithPalette(p config.Palette) Option {
	return func(h *Host) { h.palette = p }
}

// WithOnComplete registers a completion callback.
func WithOnComplete(fn CompletionFunc) Option {
	return func(h *Host) { h.onComplete = fn }
}

// WithQueueSize sets the submission queue capacity.
func WithQueueSize(n int) Option {
	return func(h *Host) {
		if n > 0 {
			h.queue = make(chan console.PendingInputLine, n)
		}
	}
}

// New creates a Lua host writing to con and starts its worker. The worker
// owns the interpreter state for the host's whole life.
func New(con *console.Console, opts ...Option) *Host {
	h := &Host{
		con:     con,
		palette: defaultPalette(),
		logger:  pslog.Ctx(context.Background()),
		queue:   make(chan console.PendingInputLine, defaultQueueSize),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.wg.Add(1)
	go h.run()
	return h
}

// Submit queues a completed line for execution. It never blocks: a full
// queue fails with ErrBusy.
func (h *Host) Submit(line console.PendingInputLine) error {
	if h.closed.Load() {
		return ErrHostClosed
	}
	select {
	case <-h.done:
		return ErrHostClosed
	case h.queue <- line:
		return nil
	default:
		return ErrBusy
	}
}

// Close stops the worker after the chunk in flight, if any. Queued lines
// are dropped. Close is idempotent.
func (h *Host) Close() {
	h.closeOnce.Do(func() {
		h.closed.Store(true)
		close(h.done)
		h.wg.Wait()
	})
}

// run owns the LState. The state is created and closed here so it never
// leaves this goroutine.
func (h *Host) run() {
	defer h.wg.Done()

	L := lua.NewState()
	defer L.Close()
	h.register(L)

	for {
		select {
		case <-h.done:
			return
		case line := <-h.queue:
			h.execute(L, line)
		}
	}
}

func (h *Host) execute(L *lua.LState, line console.PendingInputLine) {
	if err := h.con.SetExecutionMode(true); err != nil {
		h.logger.Warn("execution mode unavailable", "err", err)
		if h.onComplete != nil {
			h.onComplete(line, err)
		}
		return
	}

	err := h.runChunk(L, line.Text)
	if err != nil {
		h.renderError(err)
	}

	if modeErr := h.con.SetExecutionMode(false); modeErr != nil && !errors.Is(modeErr, console.ErrDisposed) {
		h.logger.Warn("leaving execution mode failed", "err", modeErr)
	}
	if h.onComplete != nil {
		h.onComplete(line, err)
	}
}

// runChunk executes one chunk, converting interpreter panics into errors
// so a broken binding cannot take the worker down.
func (h *Host) runChunk(L *lua.LState, chunk string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch v := r.(type) {
			case error:
				err = v
			default:
				err = fmt.Errorf("lua panic: %v", v)
			}
		}
	}()
	return L.DoString(chunk)
}

func (h *Host) renderError(err error) {
	errColor := h.palette.Error
	if werr := h.con.WriteColored(err.Error()+"\n", &errColor, nil); werr != nil {
		h.logger.Warn("rendering lua error failed", "err", werr)
	}
}

func defaultPalette() config.Palette {
	p, err := config.Default().Theme.Palette()
	if err != nil {
		return config.Palette{}
	}
	return p
}
