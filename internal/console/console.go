package console

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	colorful "github.com/lucasb-eyer/go-colorful"
	"pkt.systems/pslog"

	"github.com/dshills/shellpane/internal/dispatch"
	"github.com/dshills/shellpane/internal/surface"
)

// OwnerProperty is the surface property key under which a console
// registers itself, so keystroke layers can find the owner of a surface.
const OwnerProperty = "console.owner"

// Console combines the surface, the lock policy, input line tracking,
// history, and event publishing behind a goroutine-safe facade.
//
// All mutable state is confined to the dispatcher's worker goroutine;
// public methods marshal themselves there and block until done. A host
// executing a command may therefore write output from any goroutine, and
// may call back into the console from inside a callback without
// deadlocking.
type Console struct {
	surf       surface.Surface
	dispatcher *dispatch.Dispatcher
	notifier   *Notifier
	logger     pslog.Logger

	// Owner-confined state, touched only from dispatcher units.
	lock      LockState
	tracker   Tracker
	history   *History
	host      Host
	status    Status
	executing bool

	// width caches the computed console width; zero means not computed.
	// Viewport notifications reset it and may arrive on any goroutine.
	width atomic.Int64

	minWidth     int
	historyLimit int
	queueSize    int

	disposed      atomic.Bool
	disposeOnce   sync.Once
	unsubChange   func()
	unsubViewport func()
}

// New wires a console onto a surface: it installs the initial full lock,
// registers for change and viewport notifications, records itself in the
// surface property bag, and starts the owning dispatcher.
//
// The caller owns the console and must call Dispose when done; there is
// no finalizer fallback.
func New(surf surface.Surface, opts ...Option) (*Console, error) {
	c := &Console{
		surf:         surf,
		notifier:     NewNotifier(),
		logger:       pslog.Ctx(context.Background()),
		minWidth:     defaultMinWidth,
		historyLimit: defaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.history = NewHistory(c.historyLimit)

	var dopts []dispatch.Option
	if c.queueSize > 0 {
		dopts = append(dopts, dispatch.WithQueueSize(c.queueSize))
	}
	c.dispatcher = dispatch.New(dopts...)

	err := c.dispatcher.Invoke(func() error {
		c.unsubChange = surf.OnChange(c.onSurfaceChange)
		c.unsubViewport = surf.OnViewport(c.onViewportChange)
		surf.SetProperty(OwnerProperty, c)
		return c.setLock(LockAll)
	})
	if err != nil {
		c.dispatcher.Close()
		return nil, err
	}
	return c, nil
}

// FromSurface returns the console registered as the owner of a surface.
func FromSurface(surf surface.Surface) (*Console, bool) {
	v, ok := surf.Property(OwnerProperty)
	if !ok {
		return nil, false
	}
	c, ok := v.(*Console)
	return c, ok
}

// Surface returns the text surface this console renders into. Hosting
// windows use it as the content to display.
func (c *Console) Surface() surface.Surface {
	return c.surf
}

// Events returns the console's event notifier.
func (c *Console) Events() *Notifier {
	return c.notifier
}

// Subscribe registers an observer for console events.
func (c *Console) Subscribe(obs Observer) *Subscription {
	return c.notifier.Subscribe(obs)
}

// invoke marshals fn onto the owning goroutine, mapping dispatcher
// shutdown onto ErrDisposed.
func (c *Console) invoke(fn func() error) error {
	if c.disposed.Load() {
		return ErrDisposed
	}
	err := c.dispatcher.Invoke(fn)
	if errors.Is(err, dispatch.ErrDispatcherClosed) {
		return ErrDisposed
	}
	return err
}

// onSurfaceChange re-anchors the input line start across every buffer
// change. It runs on the owning goroutine, synchronously after each edit.
func (c *Console) onSurfaceChange(ch surface.Change) {
	c.tracker.Translate(ch)
}

// onViewportChange invalidates the cached width. Views may call this from
// any goroutine.
func (c *Console) onViewportChange() {
	c.width.Store(0)
}

// Lock Policy

// SetMode applies a lock transition as one atomic edit session.
func (c *Console) SetMode(mode LockMode) error {
	return c.invoke(func() error {
		return c.setLock(mode)
	})
}

// LockState reports the current lock state.
func (c *Console) LockState() (LockState, error) {
	var st LockState
	err := c.invoke(func() error {
		st = c.lock
		return nil
	})
	return st, err
}

// setLock transitions the region lock to mode. Owner only.
func (c *Console) setLock(mode LockMode) error {
	var next LockState
	err := c.surf.Edit(func(tx *surface.Tx) error {
		var err error
		next, err = applyLock(tx, c.lock, mode)
		return err
	})
	if err != nil {
		return err
	}
	c.lock = next
	return nil
}

// Output

// Write appends text to the console.
//
// While idle the buffer is fully locked; the write transiently drops the
// lock, appends, and restores the full lock over the grown buffer, all in
// one edit session. While composing the tail is already open and the lock
// is left alone.
func (c *Console) Write(text string) error {
	return c.invoke(func() error {
		_, err := c.write(text)
		return err
	})
}

// WriteLine appends text followed by a newline.
func (c *Console) WriteLine(text string) error {
	return c.invoke(func() error {
		_, err := c.write(text + "\n")
		return err
	})
}

// WriteColored appends text and, when either color is set, publishes a
// color span event covering exactly the written span. The span is
// measured by buffer growth rather than by text length, which keeps it
// correct if the surface normalizes what it stores.
func (c *Console) WriteColored(text string, fg, bg *colorful.Color) error {
	return c.invoke(func() error {
		before := c.surf.Snapshot().Len()
		if _, err := c.write(text); err != nil {
			return err
		}
		if fg == nil && bg == nil {
			return nil
		}
		after := c.surf.Snapshot().Len()
		c.notifier.NotifyColorSpan(surface.Span{Start: before, End: after}, fg, bg)
		return nil
	})
}

// WriteBackspace removes the final grapheme cluster of the buffer. It
// always targets the very end of the buffer regardless of mode; callers
// decide when a backspace is appropriate. An empty buffer is left alone.
func (c *Console) WriteBackspace() error {
	return c.invoke(func() error {
		snap := c.surf.Snapshot()
		last := surface.LastGraphemeSpan(snap)
		if last.IsEmpty() {
			return nil
		}

		idle := !c.tracker.Composing()
		var next LockState
		err := c.surf.Edit(func(tx *surface.Tx) error {
			st := c.lock
			var err error
			if idle {
				if st, err = applyLock(tx, st, LockNone); err != nil {
					return err
				}
			}
			if _, err = tx.Delete(last); err != nil {
				return err
			}
			if idle {
				if st, err = applyLock(tx, st, LockAll); err != nil {
					return err
				}
			}
			next = st
			return nil
		})
		if err != nil {
			return err
		}
		c.lock = next
		c.surf.EnsureVisible(last.Start)
		return nil
	})
}

// write appends text at the end of the buffer and returns the span it
// landed on. Owner only.
func (c *Console) write(text string) (surface.Span, error) {
	var span surface.Span
	idle := !c.tracker.Composing()
	var next LockState
	err := c.surf.Edit(func(tx *surface.Tx) error {
		st := c.lock
		var err error
		if idle {
			if st, err = applyLock(tx, st, LockNone); err != nil {
				return err
			}
		}
		res, err := tx.Insert(tx.Len(), text)
		if err != nil {
			return err
		}
		span = res.NewSpan
		if idle {
			if st, err = applyLock(tx, st, LockAll); err != nil {
				return err
			}
		}
		next = st
		return nil
	})
	if err != nil {
		return surface.Span{}, err
	}
	c.lock = next
	c.surf.EnsureVisible(span.End)
	return span, nil
}

// Clearing

// Clear empties the console: it drops the lock, deletes all text,
// abandons any input line in progress without submitting it, resets
// history navigation, and publishes a cleared event. The mode is left at
// LockNone until the next write or input line re-establishes a lock.
func (c *Console) Clear() error {
	return c.invoke(c.clear)
}

// ClearConsole clears the console on behalf of the keystroke layer. When
// an input line is being composed the clear is deferred through the
// dispatcher queue instead of running mid-composition.
func (c *Console) ClearConsole() error {
	return c.invoke(func() error {
		if c.tracker.Composing() {
			return c.dispatcher.Post(c.clear)
		}
		return c.clear()
	})
}

// clear performs Clear on the owning goroutine.
func (c *Console) clear() error {
	var next LockState
	err := c.surf.Edit(func(tx *surface.Tx) error {
		st, err := applyLock(tx, c.lock, LockNone)
		if err != nil {
			return err
		}
		if l := tx.Len(); l > 0 {
			if _, err := tx.Delete(surface.Span{Start: 0, End: l}); err != nil {
				return err
			}
		}
		next = st
		return nil
	})
	if err != nil {
		return err
	}
	c.lock = next
	c.tracker.Abandon()
	c.history.Reset()
	c.logger.Debug("console cleared")
	c.notifier.NotifyCleared()
	return nil
}

// Input Lines

// BeginInputLine opens input mode: it locks everything written so far and
// anchors the input line at the current end of the buffer. Beginning
// while already composing changes nothing.
func (c *Console) BeginInputLine() error {
	return c.invoke(func() error {
		if c.tracker.Composing() {
			return nil
		}
		if err := c.setLock(LockBeginAndBody); err != nil {
			return err
		}
		start := c.surf.Snapshot().Len()
		c.tracker.Begin(start)
		c.logger.Debug("input line started", "start", int64(start))
		return nil
	})
}

// EndInputLine closes input mode and reports the completed line. The
// effects run in a fixed order: history navigation is reset, the line
// extent is captured, the anchor is cleared, the buffer is fully locked,
// and finally, for lines that were not echoed, the completed line is
// recorded in history and handed to the host. Ending while idle reports
// ended == false.
func (c *Console) EndInputLine(isEcho bool) (line PendingInputLine, ended bool, err error) {
	err = c.invoke(func() error {
		if !c.tracker.Composing() {
			return nil
		}
		c.history.Reset()

		snap := c.surf.Snapshot()
		extent, err := c.tracker.Extent(snap)
		if err != nil {
			return err
		}
		line = PendingInputLine{
			ID:      uuid.New(),
			Text:    snap.TextRange(extent),
			Span:    extent,
			Version: snap.Version(),
		}
		c.tracker.End()
		if err := c.setLock(LockAll); err != nil {
			c.tracker.Begin(extent.Start)
			return err
		}
		ended = true
		c.logger.Debug("input line ended", "echo", isEcho, "len", len(line.Text))

		if isEcho {
			return nil
		}
		c.history.Append(line.Text)
		if c.host != nil {
			if err := c.host.Submit(line); err != nil {
				c.logger.Warn("input line hand-off failed", "err", err, "id", line.ID.String())
			}
		}
		c.notifier.NotifyInputLine(line)
		return nil
	})
	if err != nil {
		return PendingInputLine{}, false, err
	}
	return line, ended, nil
}

// InputLineStart returns the current input line anchor. ok is false while
// idle.
func (c *Console) InputLineStart() (start surface.ByteOffset, ok bool, err error) {
	err = c.invoke(func() error {
		start, ok = c.tracker.Start()
		return nil
	})
	return start, ok, err
}

// InputLineExtent returns the span from the anchor to the end of that
// buffer line. It fails with ErrNotComposing while idle.
func (c *Console) InputLineExtent() (span surface.Span, err error) {
	err = c.invoke(func() error {
		var ierr error
		span, ierr = c.tracker.Extent(c.surf.Snapshot())
		return ierr
	})
	return span, err
}

// AllInputExtent returns the span from the anchor to the absolute end of
// the buffer. It fails with ErrNotComposing while idle.
func (c *Console) AllInputExtent() (span surface.Span, err error) {
	err = c.invoke(func() error {
		var ierr error
		span, ierr = c.tracker.AllExtent(c.surf.Snapshot())
		return ierr
	})
	return span, err
}

// InputLineText returns the text of the line being composed. It fails
// with ErrNotComposing while idle.
func (c *Console) InputLineText() (text string, err error) {
	err = c.invoke(func() error {
		snap := c.surf.Snapshot()
		extent, ierr := c.tracker.Extent(snap)
		if ierr != nil {
			return ierr
		}
		text = snap.TextRange(extent)
		return nil
	})
	return text, err
}

// Edit runs fn as an atomic edit session on the owning goroutine. The
// keystroke layer routes user edits through here so every mutation shares
// the console's single-owner discipline.
func (c *Console) Edit(fn func(*surface.Tx) error) error {
	return c.invoke(func() error {
		return c.surf.Edit(fn)
	})
}

// History

// NavigateHistory moves through command history by offset, replacing the
// whole input tail with the recalled entry in one edit and scrolling it
// into view. Moves outside the valid range and navigation while idle are
// ignored.
func (c *Console) NavigateHistory(offset int) error {
	return c.invoke(func() error {
		if !c.tracker.Composing() {
			return nil
		}
		text, ok := c.history.Navigate(offset)
		if !ok {
			return nil
		}
		extent, err := c.tracker.AllExtent(c.surf.Snapshot())
		if err != nil {
			return err
		}
		var end surface.ByteOffset
		err = c.surf.Edit(func(tx *surface.Tx) error {
			res, rerr := tx.Replace(extent, text)
			if rerr != nil {
				return rerr
			}
			end = res.NewSpan.End
			return nil
		})
		if err != nil {
			return err
		}
		c.surf.EnsureVisible(end)
		return nil
	})
}

// History returns a copy of the submitted command log, oldest first.
func (c *Console) History() ([]string, error) {
	var out []string
	err := c.invoke(func() error {
		out = c.history.Entries()
		return nil
	})
	return out, err
}

// Width and Status

// Width returns the console's column count. The value is computed from
// the view metrics once and cached until the viewport or zoom changes.
func (c *Console) Width() (int, error) {
	var w int
	err := c.invoke(func() error {
		if cached := c.width.Load(); cached > 0 {
			w = int(cached)
			return nil
		}
		w = computeWidth(c.surf.Metrics(), c.minWidth)
		c.width.Store(int64(w))
		return nil
	})
	return w, err
}

// WriteProgress reports operation progress to the status surface. The
// percentage is clamped to [0, 100]; reaching 100 hides the indicator
// instead of reporting it as progress. An empty operation label is a
// caller bug and fails with ErrNoOperation.
func (c *Console) WriteProgress(operation string, percent int) error {
	if operation == "" {
		return ErrNoOperation
	}
	return c.invoke(func() error {
		if c.status == nil {
			return nil
		}
		if percent < 0 {
			percent = 0
		}
		if percent >= 100 {
			c.status.HideProgress()
			return nil
		}
		c.status.ShowProgress(operation, percent)
		return nil
	})
}

// SetExecutionMode toggles the host environment's busy indicator. Leaving
// execution also hides any progress and requests a command UI refresh.
func (c *Console) SetExecutionMode(executing bool) error {
	return c.invoke(func() error {
		was := c.executing
		c.executing = executing
		if c.status == nil {
			return nil
		}
		c.status.SetBusy(executing)
		if was && !executing {
			c.status.HideProgress()
			c.status.RefreshCommandUI()
		}
		return nil
	})
}

// Executing reports whether a submitted command is currently running.
func (c *Console) Executing() (bool, error) {
	var executing bool
	err := c.invoke(func() error {
		executing = c.executing
		return nil
	})
	return executing, err
}

// SetHost attaches the command execution host. The host may be set once;
// a second call fails with ErrHostAlreadySet.
func (c *Console) SetHost(h Host) error {
	if h == nil {
		return ErrNilHost
	}
	return c.invoke(func() error {
		if c.host != nil {
			return ErrHostAlreadySet
		}
		c.host = h
		return nil
	})
}

// Lifecycle

// Dispose tears the console down: the dispatcher worker is stopped and
// the surface subscriptions are removed. Dispose is idempotent and must
// be called by the owner; there is no finalizer fallback.
func (c *Console) Dispose() {
	c.disposeOnce.Do(func() {
		c.disposed.Store(true)
		c.dispatcher.Close()
		if c.unsubChange != nil {
			c.unsubChange()
		}
		if c.unsubViewport != nil {
			c.unsubViewport()
		}
		c.logger.Debug("console disposed")
	})
}
