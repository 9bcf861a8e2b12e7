package console

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/shellpane/internal/surface"
)

type stubHost struct {
	lines []PendingInputLine
	err   error
}

func (h *stubHost) Submit(line PendingInputLine) error {
	h.lines = append(h.lines, line)
	return h.err
}

type progressCall struct {
	operation string
	percent   int
}

type stubStatus struct {
	shows     []progressCall
	hides     int
	busy      []bool
	refreshes int
}

func (s *stubStatus) ShowProgress(operation string, percent int) {
	s.shows = append(s.shows, progressCall{operation, percent})
}
func (s *stubStatus) HideProgress()     { s.hides++ }
func (s *stubStatus) SetBusy(busy bool) { s.busy = append(s.busy, busy) }
func (s *stubStatus) RefreshCommandUI() { s.refreshes++ }

type stubView struct {
	metrics surface.ViewMetrics
	visible []surface.ByteOffset
}

func (v *stubView) Metrics() surface.ViewMetrics         { return v.metrics }
func (v *stubView) EnsureVisible(off surface.ByteOffset) { v.visible = append(v.visible, off) }

func newTestConsole(t *testing.T, opts ...Option) (*Console, *surface.Buffer) {
	t.Helper()
	buf := surface.NewBuffer()
	con, err := New(buf, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(con.Dispose)
	return con, buf
}

func appendInput(t *testing.T, con *Console, text string) {
	t.Helper()
	err := con.Edit(func(tx *surface.Tx) error {
		_, ierr := tx.Insert(tx.Len(), text)
		return ierr
	})
	if err != nil {
		t.Fatalf("append %q: %v", text, err)
	}
}

func lockMode(t *testing.T, con *Console) LockMode {
	t.Helper()
	st, err := con.LockState()
	if err != nil {
		t.Fatalf("LockState() error = %v", err)
	}
	return st.Mode
}

func inputText(t *testing.T, con *Console) string {
	t.Helper()
	text, err := con.InputLineText()
	if err != nil {
		t.Fatalf("InputLineText() error = %v", err)
	}
	return text
}

func submitLine(t *testing.T, con *Console, text string) {
	t.Helper()
	if err := con.BeginInputLine(); err != nil {
		t.Fatalf("BeginInputLine() error = %v", err)
	}
	appendInput(t, con, text)
	if err := con.Write("\n"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if _, _, err := con.EndInputLine(false); err != nil {
		t.Fatalf("EndInputLine() error = %v", err)
	}
}

func TestNewInstallsFullLock(t *testing.T) {
	con, buf := newTestConsole(t)

	if mode := lockMode(t, con); mode != LockAll {
		t.Fatalf("initial mode = %v, want %v", mode, LockAll)
	}
	// The buffer is empty, so the mode is recorded without markers.
	if len(buf.Regions()) != 0 {
		t.Fatalf("regions = %d on an empty buffer, want 0", len(buf.Regions()))
	}
}

func TestWriteWhileIdleRestoresFullLock(t *testing.T) {
	con, buf := newTestConsole(t)

	for _, text := range []string{"hello", "!"} {
		if err := con.Write(text); err != nil {
			t.Fatalf("Write(%q) error = %v", text, err)
		}
		if mode := lockMode(t, con); mode != LockAll {
			t.Fatalf("mode after Write = %v, want %v", mode, LockAll)
		}
	}

	if got := buf.Snapshot().Text(); got != "hello!" {
		t.Fatalf("text = %q, want %q", got, "hello!")
	}
	if len(buf.Regions()) != 1 {
		t.Fatalf("regions = %d, want 1", len(buf.Regions()))
	}
	// The restored lock covers the grown buffer, end included.
	if _, err := buf.Insert(buf.Snapshot().Len(), "x"); !errors.Is(err, surface.ErrRegionLocked) {
		t.Fatalf("Insert at end error = %v, want %v", err, surface.ErrRegionLocked)
	}
}

func TestWriteLineAppendsTerminator(t *testing.T) {
	con, buf := newTestConsole(t)

	if err := con.WriteLine("ready"); err != nil {
		t.Fatalf("WriteLine() error = %v", err)
	}
	if got := buf.Snapshot().Text(); got != "ready\n" {
		t.Fatalf("text = %q, want %q", got, "ready\n")
	}
}

func TestWriteWhileComposingKeepsInputOpen(t *testing.T) {
	con, _ := newTestConsole(t)

	if err := con.WriteLine("ready"); err != nil {
		t.Fatalf("WriteLine() error = %v", err)
	}
	if err := con.BeginInputLine(); err != nil {
		t.Fatalf("BeginInputLine() error = %v", err)
	}

	// Programmatic echo lands inside the input line: the anchor is
	// backward biased and does not move when text is inserted at it.
	if err := con.Write("echo"); err != nil {
		t.Fatalf("Write() while composing error = %v", err)
	}
	if mode := lockMode(t, con); mode != LockBeginAndBody {
		t.Fatalf("mode = %v, want %v", mode, LockBeginAndBody)
	}
	if got := inputText(t, con); got != "echo" {
		t.Fatalf("input text = %q, want %q", got, "echo")
	}
}

func TestBeginInputLineIdempotent(t *testing.T) {
	con, _ := newTestConsole(t)

	if err := con.WriteLine("out"); err != nil {
		t.Fatalf("WriteLine() error = %v", err)
	}
	if err := con.BeginInputLine(); err != nil {
		t.Fatalf("BeginInputLine() error = %v", err)
	}
	first, ok, err := con.InputLineStart()
	if err != nil || !ok {
		t.Fatalf("InputLineStart() = %v, %v, %v", first, ok, err)
	}

	if err := con.BeginInputLine(); err != nil {
		t.Fatalf("second BeginInputLine() error = %v", err)
	}
	second, ok, err := con.InputLineStart()
	if err != nil || !ok {
		t.Fatalf("InputLineStart() = %v, %v, %v", second, ok, err)
	}
	if second != first {
		t.Fatalf("anchor moved from %d to %d", first, second)
	}
	if mode := lockMode(t, con); mode != LockBeginAndBody {
		t.Fatalf("mode = %v, want %v", mode, LockBeginAndBody)
	}
}

func TestEndInputLineRoundTrip(t *testing.T) {
	con, _ := newTestConsole(t)
	host := &stubHost{}
	if err := con.SetHost(host); err != nil {
		t.Fatalf("SetHost() error = %v", err)
	}

	if err := con.Write("> "); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := con.BeginInputLine(); err != nil {
		t.Fatalf("BeginInputLine() error = %v", err)
	}
	appendInput(t, con, "list packages")
	if err := con.Write("\n"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	line, ended, err := con.EndInputLine(false)
	if err != nil {
		t.Fatalf("EndInputLine() error = %v", err)
	}
	if !ended {
		t.Fatal("EndInputLine() reported nothing ended")
	}
	if line.Text != "list packages" {
		t.Fatalf("line text = %q, want %q", line.Text, "list packages")
	}
	if line.ID == uuid.Nil {
		t.Fatal("line has no ID")
	}

	history, err := con.History()
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) == 0 || history[len(history)-1] != "list packages" {
		t.Fatalf("history = %v, want last entry %q", history, "list packages")
	}

	if len(host.lines) != 1 {
		t.Fatalf("host received %d lines, want 1", len(host.lines))
	}
	if host.lines[0].Text != "list packages" {
		t.Fatalf("host line = %q, want %q", host.lines[0].Text, "list packages")
	}
	if mode := lockMode(t, con); mode != LockAll {
		t.Fatalf("mode = %v, want %v", mode, LockAll)
	}
}

func TestEndInputLinePublishesEvent(t *testing.T) {
	con, _ := newTestConsole(t)

	var lines []PendingInputLine
	con.Subscribe(func(ev Event) {
		if ev.Kind == EventInputLine {
			lines = append(lines, ev.Line)
		}
	})

	submitLine(t, con, "deploy")
	if len(lines) != 1 || lines[0].Text != "deploy" {
		t.Fatalf("input line events = %+v, want one for %q", lines, "deploy")
	}

	// Echoed completions stay quiet.
	if err := con.BeginInputLine(); err != nil {
		t.Fatalf("BeginInputLine() error = %v", err)
	}
	appendInput(t, con, "echoed")
	if _, _, err := con.EndInputLine(true); err != nil {
		t.Fatalf("EndInputLine() error = %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("input line events after echo = %d, want 1", len(lines))
	}
}

func TestEndInputLineWhileIdle(t *testing.T) {
	con, _ := newTestConsole(t)

	line, ended, err := con.EndInputLine(false)
	if err != nil {
		t.Fatalf("EndInputLine() error = %v", err)
	}
	if ended {
		t.Fatal("EndInputLine() on an idle console reported ended")
	}
	if line.ID != uuid.Nil {
		t.Fatalf("line = %+v, want zero value", line)
	}
}

func TestEndInputLineEchoSkipsHandOff(t *testing.T) {
	con, _ := newTestConsole(t)
	host := &stubHost{}
	if err := con.SetHost(host); err != nil {
		t.Fatalf("SetHost() error = %v", err)
	}

	if err := con.BeginInputLine(); err != nil {
		t.Fatalf("BeginInputLine() error = %v", err)
	}
	appendInput(t, con, "echoed")

	line, ended, err := con.EndInputLine(true)
	if err != nil {
		t.Fatalf("EndInputLine() error = %v", err)
	}
	if !ended || line.Text != "echoed" {
		t.Fatalf("EndInputLine() = %q, %v, want %q, true", line.Text, ended, "echoed")
	}

	if len(host.lines) != 0 {
		t.Fatalf("host received %d echoed lines, want 0", len(host.lines))
	}
	history, err := con.History()
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("history = %v, want empty after echo", history)
	}
}

func TestEndThenBeginStartsFresh(t *testing.T) {
	con, buf := newTestConsole(t)

	if err := con.BeginInputLine(); err != nil {
		t.Fatalf("BeginInputLine() error = %v", err)
	}
	appendInput(t, con, "first")
	if err := con.Write("\n"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if _, _, err := con.EndInputLine(false); err != nil {
		t.Fatalf("EndInputLine() error = %v", err)
	}

	if err := con.WriteLine("out"); err != nil {
		t.Fatalf("WriteLine() error = %v", err)
	}
	if err := con.BeginInputLine(); err != nil {
		t.Fatalf("BeginInputLine() error = %v", err)
	}

	start, ok, err := con.InputLineStart()
	if err != nil || !ok {
		t.Fatalf("InputLineStart() = %v, %v, %v", start, ok, err)
	}
	if want := buf.Snapshot().Len(); start != want {
		t.Fatalf("anchor = %d, want end of buffer %d", start, want)
	}

	// Text committed by the previous round is never editable again.
	err = con.Edit(func(tx *surface.Tx) error {
		_, derr := tx.Delete(surface.Span{Start: 6, End: 9})
		return derr
	})
	if !errors.Is(err, surface.ErrRegionLocked) {
		t.Fatalf("Delete of committed text error = %v, want %v", err, surface.ErrRegionLocked)
	}
}

func TestHistoryNavigationEndToEnd(t *testing.T) {
	con, _ := newTestConsole(t)

	submitLine(t, con, "a")
	submitLine(t, con, "b")
	if err := con.BeginInputLine(); err != nil {
		t.Fatalf("BeginInputLine() error = %v", err)
	}

	steps := []struct {
		offset int
		want   string
	}{
		{-1, "b"},
		{-1, "a"},
		{-1, "a"}, // clamped at the oldest entry
		{+1, "b"},
		{+1, ""}, // parked past the newest entry
	}
	for i, step := range steps {
		if err := con.NavigateHistory(step.offset); err != nil {
			t.Fatalf("step %d: NavigateHistory(%+d) error = %v", i, step.offset, err)
		}
		if got := inputText(t, con); got != step.want {
			t.Fatalf("step %d: input = %q, want %q", i, got, step.want)
		}
	}
}

func TestNavigateHistoryWhileIdleIsIgnored(t *testing.T) {
	con, buf := newTestConsole(t)
	submitLine(t, con, "a")

	before := buf.Snapshot().Text()
	if err := con.NavigateHistory(-1); err != nil {
		t.Fatalf("NavigateHistory() error = %v", err)
	}
	if got := buf.Snapshot().Text(); got != before {
		t.Fatalf("idle navigation changed the buffer: %q -> %q", before, got)
	}
}

func TestNavigateHistoryEmptyLogKeepsTyped(t *testing.T) {
	con, _ := newTestConsole(t)

	if err := con.BeginInputLine(); err != nil {
		t.Fatalf("BeginInputLine() error = %v", err)
	}
	appendInput(t, con, "typed")

	if err := con.NavigateHistory(-1); err != nil {
		t.Fatalf("NavigateHistory() error = %v", err)
	}
	if got := inputText(t, con); got != "typed" {
		t.Fatalf("input = %q, want %q", got, "typed")
	}
}

func TestHistoryCursorResetOnCompletion(t *testing.T) {
	con, _ := newTestConsole(t)

	submitLine(t, con, "a")
	submitLine(t, con, "b")

	if err := con.BeginInputLine(); err != nil {
		t.Fatalf("BeginInputLine() error = %v", err)
	}
	if err := con.NavigateHistory(-1); err != nil {
		t.Fatalf("NavigateHistory() error = %v", err)
	}
	if err := con.NavigateHistory(-1); err != nil {
		t.Fatalf("NavigateHistory() error = %v", err)
	}
	if err := con.Write("\n"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	// Completing the recalled line resets the cursor; the next session
	// starts from the freshly appended newest entry.
	if _, _, err := con.EndInputLine(false); err != nil {
		t.Fatalf("EndInputLine() error = %v", err)
	}

	if err := con.BeginInputLine(); err != nil {
		t.Fatalf("BeginInputLine() error = %v", err)
	}
	if err := con.NavigateHistory(-1); err != nil {
		t.Fatalf("NavigateHistory() error = %v", err)
	}
	if got := inputText(t, con); got != "a" {
		t.Fatalf("input = %q, want newest entry %q", got, "a")
	}
}

func TestClearFromIdle(t *testing.T) {
	con, buf := newTestConsole(t)

	var events []Event
	con.Subscribe(func(ev Event) { events = append(events, ev) })

	if err := con.WriteLine("junk"); err != nil {
		t.Fatalf("WriteLine() error = %v", err)
	}
	if err := con.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	if l := buf.Snapshot().Len(); l != 0 {
		t.Fatalf("length after Clear = %d, want 0", l)
	}
	if mode := lockMode(t, con); mode != LockNone {
		t.Fatalf("mode after Clear = %v, want %v", mode, LockNone)
	}
	if len(buf.Regions()) != 0 {
		t.Fatalf("regions after Clear = %d, want 0", len(buf.Regions()))
	}
	if len(events) != 1 || events[0].Kind != EventCleared {
		t.Fatalf("events = %v, want exactly one cleared event", events)
	}
}

func TestClearWhileComposingAbandonsInput(t *testing.T) {
	con, buf := newTestConsole(t)
	host := &stubHost{}
	if err := con.SetHost(host); err != nil {
		t.Fatalf("SetHost() error = %v", err)
	}

	var cleared int
	con.Subscribe(func(ev Event) {
		if ev.Kind == EventCleared {
			cleared++
		}
	})

	if err := con.WriteLine("out"); err != nil {
		t.Fatalf("WriteLine() error = %v", err)
	}
	if err := con.BeginInputLine(); err != nil {
		t.Fatalf("BeginInputLine() error = %v", err)
	}
	appendInput(t, con, "half typed")

	if err := con.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	if l := buf.Snapshot().Len(); l != 0 {
		t.Fatalf("length after Clear = %d, want 0", l)
	}
	if _, ok, _ := con.InputLineStart(); ok {
		t.Fatal("input line survived Clear")
	}
	if len(host.lines) != 0 {
		t.Fatalf("abandoned input reached the host: %v", host.lines)
	}
	if cleared != 1 {
		t.Fatalf("cleared events = %d, want 1", cleared)
	}

	// The mode stays none until the next output call re-establishes it.
	if mode := lockMode(t, con); mode != LockNone {
		t.Fatalf("mode after Clear = %v, want %v", mode, LockNone)
	}
	if err := con.Write("fresh"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if mode := lockMode(t, con); mode != LockAll {
		t.Fatalf("mode after first write = %v, want %v", mode, LockAll)
	}
}

func TestClearConsoleImmediateWhileIdle(t *testing.T) {
	con, buf := newTestConsole(t)

	if err := con.WriteLine("out"); err != nil {
		t.Fatalf("WriteLine() error = %v", err)
	}
	if err := con.ClearConsole(); err != nil {
		t.Fatalf("ClearConsole() error = %v", err)
	}
	if l := buf.Snapshot().Len(); l != 0 {
		t.Fatalf("length = %d, want 0 immediately after ClearConsole", l)
	}
}

func TestClearConsoleDefersWhileComposing(t *testing.T) {
	con, buf := newTestConsole(t)

	cleared := make(chan struct{}, 1)
	con.Subscribe(func(ev Event) {
		if ev.Kind == EventCleared {
			select {
			case cleared <- struct{}{}:
			default:
			}
		}
	})

	if err := con.BeginInputLine(); err != nil {
		t.Fatalf("BeginInputLine() error = %v", err)
	}
	appendInput(t, con, "half")

	if err := con.ClearConsole(); err != nil {
		t.Fatalf("ClearConsole() error = %v", err)
	}

	select {
	case <-cleared:
	case <-time.After(time.Second):
		t.Fatal("deferred clear never ran")
	}
	if l := buf.Snapshot().Len(); l != 0 {
		t.Fatalf("length = %d, want 0 after deferred clear", l)
	}
}

func TestWidthNeverBelowFloor(t *testing.T) {
	tests := []struct {
		name    string
		metrics surface.ViewMetrics
		want    int
	}{
		{"zero metrics", surface.ViewMetrics{}, 80},
		{"tiny viewport", surface.ViewMetrics{ViewportWidth: 10, ColumnWidth: 1}, 80},
		{"narrow after margins", surface.ViewMetrics{ViewportWidth: 100, MarginLeft: 10, MarginRight: 10, ColumnWidth: 2}, 80},
		{"negative margins", surface.ViewMetrics{ViewportWidth: 10, MarginLeft: -100, MarginRight: -100, ColumnWidth: 10}, 80},
		{"wide viewport", surface.ViewMetrics{ViewportWidth: 2000, MarginLeft: 40, MarginRight: 40, ColumnWidth: 8}, 240},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := &stubView{metrics: tt.metrics}
			buf := surface.NewBuffer(surface.WithView(view))
			con, err := New(buf)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			defer con.Dispose()

			w, err := con.Width()
			if err != nil {
				t.Fatalf("Width() error = %v", err)
			}
			if w != tt.want {
				t.Errorf("Width() = %d, want %d", w, tt.want)
			}
		})
	}
}

func TestWidthCachedUntilViewportChange(t *testing.T) {
	view := &stubView{metrics: surface.ViewMetrics{ViewportWidth: 1000, ColumnWidth: 10}}
	buf := surface.NewBuffer(surface.WithView(view))
	con, err := New(buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer con.Dispose()

	if w, _ := con.Width(); w != 100 {
		t.Fatalf("Width() = %d, want 100", w)
	}

	view.metrics.ViewportWidth = 2000
	if w, _ := con.Width(); w != 100 {
		t.Fatalf("Width() = %d, want cached 100", w)
	}

	buf.ViewportChanged()
	if w, _ := con.Width(); w != 200 {
		t.Fatalf("Width() after viewport change = %d, want 200", w)
	}
}

func TestWriteColoredPublishesSpan(t *testing.T) {
	con, buf := newTestConsole(t)

	var events []Event
	con.Subscribe(func(ev Event) {
		if ev.Kind == EventColorSpan {
			events = append(events, ev)
		}
	})

	if err := con.WriteColored("plain", nil, nil); err != nil {
		t.Fatalf("WriteColored() error = %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("colorless write published %d events, want 0", len(events))
	}

	before := buf.Snapshot().Len()
	fg := &colorful.Color{R: 1}
	if err := con.WriteColored("red", fg, nil); err != nil {
		t.Fatalf("WriteColored() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	want := surface.Span{Start: before, End: before + 3}
	if events[0].Span != want {
		t.Errorf("span = %v, want %v", events[0].Span, want)
	}
	if events[0].Foreground != fg || events[0].Background != nil {
		t.Errorf("colors = %v, %v, want fg only", events[0].Foreground, events[0].Background)
	}

	bg := &colorful.Color{B: 1}
	if err := con.WriteColored("blue", nil, bg); err != nil {
		t.Fatalf("WriteColored() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[1].Background != bg {
		t.Errorf("Background = %v, want %v", events[1].Background, bg)
	}
}

func TestWriteProgress(t *testing.T) {
	status := &stubStatus{}
	con, _ := newTestConsole(t, WithStatus(status))

	if err := con.WriteProgress("", 10); !errors.Is(err, ErrNoOperation) {
		t.Fatalf("WriteProgress(\"\") error = %v, want %v", err, ErrNoOperation)
	}

	steps := []int{-5, 42, 100, 150, 99}
	for _, pct := range steps {
		if err := con.WriteProgress("restore", pct); err != nil {
			t.Fatalf("WriteProgress(%d) error = %v", pct, err)
		}
	}

	wantShows := []progressCall{{"restore", 0}, {"restore", 42}, {"restore", 99}}
	if len(status.shows) != len(wantShows) {
		t.Fatalf("shows = %v, want %v", status.shows, wantShows)
	}
	for i, want := range wantShows {
		if status.shows[i] != want {
			t.Errorf("show %d = %v, want %v", i, status.shows[i], want)
		}
	}
	if status.hides != 2 {
		t.Errorf("hides = %d, want 2", status.hides)
	}
}

func TestWriteProgressWithoutStatus(t *testing.T) {
	con, _ := newTestConsole(t)

	if err := con.WriteProgress("restore", 50); err != nil {
		t.Fatalf("WriteProgress() without status error = %v", err)
	}
}

func TestSetExecutionMode(t *testing.T) {
	status := &stubStatus{}
	con, _ := newTestConsole(t, WithStatus(status))

	if executing, err := con.Executing(); err != nil || executing {
		t.Fatalf("Executing() = %v, %v, want false, nil", executing, err)
	}
	if err := con.SetExecutionMode(true); err != nil {
		t.Fatalf("SetExecutionMode(true) error = %v", err)
	}
	if executing, err := con.Executing(); err != nil || !executing {
		t.Fatalf("Executing() = %v, %v, want true, nil", executing, err)
	}
	if err := con.SetExecutionMode(false); err != nil {
		t.Fatalf("SetExecutionMode(false) error = %v", err)
	}

	if len(status.busy) != 2 || !status.busy[0] || status.busy[1] {
		t.Fatalf("busy = %v, want [true false]", status.busy)
	}
	if status.hides != 1 {
		t.Errorf("hides = %d, want 1", status.hides)
	}
	if status.refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", status.refreshes)
	}

	// Not a transition: no extra hide or refresh.
	if err := con.SetExecutionMode(false); err != nil {
		t.Fatalf("SetExecutionMode(false) error = %v", err)
	}
	if status.hides != 1 || status.refreshes != 1 {
		t.Errorf("repeat false hid %d refreshed %d, want 1, 1", status.hides, status.refreshes)
	}
}

func TestSetHostContract(t *testing.T) {
	con, _ := newTestConsole(t)

	if err := con.SetHost(nil); !errors.Is(err, ErrNilHost) {
		t.Fatalf("SetHost(nil) error = %v, want %v", err, ErrNilHost)
	}
	if err := con.SetHost(&stubHost{}); err != nil {
		t.Fatalf("SetHost() error = %v", err)
	}
	if err := con.SetHost(&stubHost{}); !errors.Is(err, ErrHostAlreadySet) {
		t.Fatalf("second SetHost() error = %v, want %v", err, ErrHostAlreadySet)
	}
}

func TestWriteBackspace(t *testing.T) {
	t.Run("empty buffer", func(t *testing.T) {
		con, buf := newTestConsole(t)
		if err := con.WriteBackspace(); err != nil {
			t.Fatalf("WriteBackspace() error = %v", err)
		}
		if l := buf.Snapshot().Len(); l != 0 {
			t.Fatalf("length = %d, want 0", l)
		}
	})

	t.Run("idle removes last character", func(t *testing.T) {
		con, buf := newTestConsole(t)
		if err := con.Write("ab"); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if err := con.WriteBackspace(); err != nil {
			t.Fatalf("WriteBackspace() error = %v", err)
		}
		if got := buf.Snapshot().Text(); got != "a" {
			t.Fatalf("text = %q, want %q", got, "a")
		}
		if mode := lockMode(t, con); mode != LockAll {
			t.Fatalf("mode = %v, want %v", mode, LockAll)
		}
	})

	t.Run("composing removes typed character", func(t *testing.T) {
		con, buf := newTestConsole(t)
		if err := con.Write("> "); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if err := con.BeginInputLine(); err != nil {
			t.Fatalf("BeginInputLine() error = %v", err)
		}
		appendInput(t, con, "x")
		if err := con.WriteBackspace(); err != nil {
			t.Fatalf("WriteBackspace() error = %v", err)
		}
		if got := buf.Snapshot().Text(); got != "> " {
			t.Fatalf("text = %q, want %q", got, "> ")
		}
		if got := inputText(t, con); got != "" {
			t.Fatalf("input = %q, want empty", got)
		}
	})

	t.Run("composing with empty input hits the lock", func(t *testing.T) {
		con, _ := newTestConsole(t)
		if err := con.Write("> "); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if err := con.BeginInputLine(); err != nil {
			t.Fatalf("BeginInputLine() error = %v", err)
		}
		if err := con.WriteBackspace(); !errors.Is(err, surface.ErrRegionLocked) {
			t.Fatalf("WriteBackspace() error = %v, want %v", err, surface.ErrRegionLocked)
		}
	})
}

func TestExternalTailWriteTolerated(t *testing.T) {
	con, _ := newTestConsole(t)
	host := &stubHost{}
	if err := con.SetHost(host); err != nil {
		t.Fatalf("SetHost() error = %v", err)
	}

	if err := con.Write("$ "); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := con.BeginInputLine(); err != nil {
		t.Fatalf("BeginInputLine() error = %v", err)
	}
	appendInput(t, con, "cmd")

	// An external writer appends past the input line while it is open.
	if err := con.Write("\nnoise"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if got := inputText(t, con); got != "cmd" {
		t.Fatalf("input = %q, want %q", got, "cmd")
	}
	all, err := con.AllInputExtent()
	if err != nil {
		t.Fatalf("AllInputExtent() error = %v", err)
	}
	if want := (surface.Span{Start: 2, End: 11}); all != want {
		t.Fatalf("AllInputExtent() = %v, want %v", all, want)
	}

	line, _, err := con.EndInputLine(false)
	if err != nil {
		t.Fatalf("EndInputLine() error = %v", err)
	}
	if line.Text != "cmd" {
		t.Fatalf("completed line = %q, want %q", line.Text, "cmd")
	}
}

func TestInputAccessorsWhileIdle(t *testing.T) {
	con, _ := newTestConsole(t)

	if _, ok, err := con.InputLineStart(); ok || err != nil {
		t.Fatalf("InputLineStart() = _, %v, %v, want false, nil", ok, err)
	}
	if _, err := con.InputLineExtent(); !errors.Is(err, ErrNotComposing) {
		t.Errorf("InputLineExtent() error = %v, want %v", err, ErrNotComposing)
	}
	if _, err := con.AllInputExtent(); !errors.Is(err, ErrNotComposing) {
		t.Errorf("AllInputExtent() error = %v, want %v", err, ErrNotComposing)
	}
	if _, err := con.InputLineText(); !errors.Is(err, ErrNotComposing) {
		t.Errorf("InputLineText() error = %v, want %v", err, ErrNotComposing)
	}
}

func TestConcurrentHostWrites(t *testing.T) {
	con, buf := newTestConsole(t)

	const writers, perWriter = 4, 25
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				if err := con.Write("x"); err != nil {
					t.Errorf("Write() error = %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if l := buf.Snapshot().Len(); l != writers*perWriter {
		t.Fatalf("length = %d, want %d", l, writers*perWriter)
	}
	if mode := lockMode(t, con); mode != LockAll {
		t.Fatalf("mode = %v, want %v", mode, LockAll)
	}
	if len(buf.Regions()) != 1 {
		t.Fatalf("regions = %d, want 1", len(buf.Regions()))
	}
}

func TestFromSurface(t *testing.T) {
	con, buf := newTestConsole(t)

	got, ok := FromSurface(buf)
	if !ok || got != con {
		t.Fatalf("FromSurface() = %v, %v, want the console", got, ok)
	}

	if _, ok := FromSurface(surface.NewBuffer()); ok {
		t.Fatal("FromSurface() on an unowned buffer reported a console")
	}
}

func TestDisposeIdempotent(t *testing.T) {
	buf := surface.NewBuffer()
	con, err := New(buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	con.Dispose()
	con.Dispose()

	if err := con.Write("late"); !errors.Is(err, ErrDisposed) {
		t.Fatalf("Write() after Dispose error = %v, want %v", err, ErrDisposed)
	}
	if _, _, err := con.EndInputLine(false); !errors.Is(err, ErrDisposed) {
		t.Fatalf("EndInputLine() after Dispose error = %v, want %v", err, ErrDisposed)
	}
	if _, err := con.Width(); !errors.Is(err, ErrDisposed) {
		t.Fatalf("Width() after Dispose error = %v, want %v", err, ErrDisposed)
	}
}

func TestEnsureVisibleAfterWrites(t *testing.T) {
	view := &stubView{metrics: surface.ViewMetrics{ViewportWidth: 800, ColumnWidth: 8}}
	buf := surface.NewBuffer(surface.WithView(view))
	con, err := New(buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer con.Dispose()

	if err := con.Write("out"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if len(view.visible) == 0 {
		t.Fatal("Write() did not scroll the caret into view")
	}
	if last := view.visible[len(view.visible)-1]; last != 3 {
		t.Fatalf("EnsureVisible offset = %d, want 3", last)
	}
}
