package dispatch

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrDispatcherClosed is returned by Invoke after Close has been called.
var ErrDispatcherClosed = errors.New("dispatcher is closed")

// defaultQueueSize is the buffered depth of the call queue. Callers block
// on submission once the queue is full, which keeps a slow owner from
// accumulating unbounded work.
const defaultQueueSize = 100

// call is one marshaled unit of work plus the channel its outcome is
// reported on. The reply channel is buffered so the worker never blocks
// on a caller that has not reached its receive yet.
type call struct {
	fn    func() error
	reply chan outcome
}

// outcome carries a unit's result from the worker back to the caller.
// Exactly one of err or the panic fields is meaningful.
type outcome struct {
	err      error
	panicked bool
	panicVal any
	stack    []byte
}

// Dispatcher owns a single worker goroutine and funnels closures onto it.
//
// The worker goroutine is the owner: units run there one at a time, in
// submission order. Invoke from any other goroutine blocks until the
// submitted unit has completed on the worker.
type Dispatcher struct {
	queue chan *call

	// done is closed by Close to stop the worker; stopped is closed by
	// the worker on exit, after the queue has been drained.
	done    chan struct{}
	stopped chan struct{}

	owner     atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithQueueSize sets the buffered depth of the call queue.
func WithQueueSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queue = make(chan *call, n)
		}
	}
}

// New creates a Dispatcher and starts its worker goroutine.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		queue:   make(chan *call, defaultQueueSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	go d.run()
	return d
}

// run is the worker loop. It records its own goroutine id so Invoke can
// detect calls that are already on the owner, then consumes units until
// Close fires.
func (d *Dispatcher) run() {
	d.owner.Store(goroutineID())
	defer close(d.stopped)

	for {
		select {
		case <-d.done:
			d.drainQueue()
			return
		case c := <-d.queue:
			c.reply <- runUnit(c.fn)
		}
	}
}

// drainQueue fails every unit still waiting in the queue at shutdown.
// Their callers unblock with ErrDispatcherClosed.
func (d *Dispatcher) drainQueue() {
	for {
		select {
		case c := <-d.queue:
			c.reply <- outcome{err: ErrDispatcherClosed}
		default:
			return
		}
	}
}

// runUnit executes one closure, converting a panic into a captured
// outcome so the worker loop survives and the caller can re-raise it.
func runUnit(fn func() error) (out outcome) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			out.panicked = true
			out.panicVal = r
			out.stack = buf[:n]
		}
	}()
	out.err = fn()
	return out
}

// Invoke runs fn on the owning goroutine and returns its error.
//
// When the caller already is the owner, fn runs inline with no queuing;
// a panic then propagates naturally. From any other goroutine the call is
// queued and Invoke blocks, with no timeout, until the worker has executed
// it. If fn panicked on the worker, Invoke re-raises the original panic
// value on the calling goroutine.
func (d *Dispatcher) Invoke(fn func() error) error {
	if d.closed.Load() {
		return ErrDispatcherClosed
	}
	if goroutineID() == d.owner.Load() {
		return fn()
	}

	c := &call{fn: fn, reply: make(chan outcome, 1)}
	select {
	case d.queue <- c:
	case <-d.done:
		return ErrDispatcherClosed
	}

	var out outcome
	select {
	case out = <-c.reply:
	case <-d.stopped:
		// The worker exited while we waited. Our unit either ran just
		// before the exit or was never picked up; a buffered reply
		// disambiguates the two.
		select {
		case out = <-c.reply:
		default:
			return ErrDispatcherClosed
		}
	}
	if out.panicked {
		panic(out.panicVal)
	}
	return out.err
}

// Post submits fn to the worker without waiting for it to run. The unit's
// outcome is discarded, panics included; callers that need the result use
// Invoke. Post never blocks: when the queue is full the hand-off finishes
// on a helper goroutine, so it is safe to call from a unit running on the
// worker itself.
func (d *Dispatcher) Post(fn func() error) error {
	if d.closed.Load() {
		return ErrDispatcherClosed
	}
	c := &call{fn: fn, reply: make(chan outcome, 1)}
	select {
	case d.queue <- c:
		return nil
	case <-d.done:
		return ErrDispatcherClosed
	default:
	}
	go func() {
		select {
		case d.queue <- c:
		case <-d.done:
		}
	}()
	return nil
}

// Close stops the worker after the unit in flight, fails all queued units
// with ErrDispatcherClosed, and waits for the worker to exit. It is safe
// to call more than once, and safe to call from a unit running on the
// worker itself, in which case it does not wait.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
	})
	if goroutineID() != d.owner.Load() {
		<-d.stopped
	}
}

// IsClosed reports whether Close has been called.
func (d *Dispatcher) IsClosed() bool {
	return d.closed.Load()
}
