package sshui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	gliderssh "github.com/gliderlabs/ssh"
	"pkt.systems/pslog"

	"github.com/dshills/shellpane/internal/config"
	"github.com/dshills/shellpane/internal/console"
	"github.com/dshills/shellpane/internal/host/luahost"
	"github.com/dshills/shellpane/internal/host/ptyhost"
	"github.com/dshills/shellpane/internal/render"
	"github.com/dshills/shellpane/internal/surface"
)

const sessionSpinnerInterval = 250 * time.Millisecond

// sessionView adapts the SSH window size to the surface view contract.
// Sizes arrive on the session loop while the console reads metrics from
// its owner goroutine.
type sessionView struct {
	margins config.Margins
	request func()

	mu        sync.Mutex
	width     int
	target    surface.ByteOffset
	hasTarget bool
}

func newSessionView(margins config.Margins, request func()) *sessionView {
	return &sessionView{margins: margins, request: request}
}

func (v *sessionView) setWidth(w int) {
	v.mu.Lock()
	v.width = w
	v.mu.Unlock()
}

// Metrics reports the window size in cells.
func (v *sessionView) Metrics() surface.ViewMetrics {
	v.mu.Lock()
	w := v.width
	v.mu.Unlock()
	return surface.ViewMetrics{
		ViewportWidth: float64(w),
		MarginLeft:    float64(v.margins.Left),
		MarginRight:   float64(v.margins.Right),
		ColumnWidth:   1,
	}
}

// EnsureVisible schedules a scroll to offset on the next paint.
func (v *sessionView) EnsureVisible(offset surface.ByteOffset) {
	v.mu.Lock()
	v.target = offset
	v.hasTarget = true
	v.mu.Unlock()
	if v.request != nil {
		v.request()
	}
}

// takeTarget consumes the pending scroll target.
func (v *sessionView) takeTarget() (surface.ByteOffset, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	offset, ok := v.target, v.hasTarget
	v.hasTarget = false
	return offset, ok
}

// session is one connected console: its own surface, console, host, and
// frame painter over the SSH stream.
type session struct {
	cfg     config.Config
	palette config.Palette
	logger  pslog.Logger
	sess    gliderssh.Session
	scr     *screen

	buf      *surface.Buffer
	con      *console.Console
	view     *sessionView
	status   *render.Status
	overlays render.Overlays

	host       console.Host
	hostClose  func() error
	resizePTY  func(rows, cols int) error
	promptText string

	wantPrompt  atomic.Bool
	scrollReset atomic.Bool
	redrawCh    chan struct{}

	// Loop state. Touched only between channel receives.
	width     int
	height    int
	scrollTop int
}

func newSession(sess gliderssh.Session, cfg config.Config, palette config.Palette, logger pslog.Logger) (*session, error) {
	s := &session{
		cfg:      cfg,
		palette:  palette,
		logger:   logger,
		sess:     sess,
		scr:      newScreen(sess),
		redrawCh: make(chan struct{}, 1),
	}
	s.status = render.NewStatus(s.requestRedraw)
	s.view = newSessionView(cfg.Margins, s.requestRedraw)
	s.buf = surface.NewBuffer(surface.WithView(s.view))

	con, err := console.New(s.buf,
		console.WithLogger(logger),
		console.WithStatus(s.status),
		console.WithHistoryLimit(cfg.HistoryLimit),
		console.WithMinWidth(cfg.MinWidth),
	)
	if err != nil {
		return nil, err
	}
	s.con = con
	return s, nil
}

func (s *session) requestRedraw() {
	select {
	case s.redrawCh <- struct{}{}:
	default:
	}
}

// wireHost attaches the event observers and the configured host.
func (s *session) wireHost() error {
	s.buf.OnChange(func(surface.Change) { s.requestRedraw() })

	s.con.Subscribe(func(ev console.Event) {
		switch ev.Kind {
		case console.EventColorSpan:
			s.overlays.Add(ev.Span, ev.Foreground, ev.Background)
		case console.EventCleared:
			s.overlays.Reset()
			s.scrollReset.Store(true)
			s.wantPrompt.Store(true)
		}
		s.requestRedraw()
	})

	switch s.cfg.Host.Kind {
	case config.HostPTY:
		h, err := ptyhost.Start(s.con, s.cfg.Host.Command, s.cfg.Host.Args,
			ptyhost.WithLogger(s.logger),
			ptyhost.WithOnOutput(s.reanchor),
			ptyhost.WithOnExit(s.hostExited),
		)
		if err != nil {
			return err
		}
		s.host = h
		s.hostClose = h.Close
		s.resizePTY = h.Resize
		s.promptText = ""
	default:
		h := luahost.New(s.con,
			luahost.WithLogger(s.logger),
			luahost.WithPalette(s.palette),
			luahost.WithOnComplete(s.commandDone),
		)
		s.host = h
		s.hostClose = func() error { h.Close(); return nil }
		s.promptText = s.cfg.Prompt
	}
	return s.con.SetHost(s.host)
}

// run services the session until the client disconnects or exits.
func (s *session) run(ctx context.Context, winCh <-chan gliderssh.Window) error {
	defer s.teardown()

	if err := s.wireHost(); err != nil {
		return err
	}

	s.scr.EnterAltScreen()
	defer s.scr.ExitAltScreen()

	s.banner()
	s.writePrompt()

	keys := make(chan key, 16)
	go readKeys(s.sess, keys)

	spinner := time.NewTicker(sessionSpinnerInterval)
	defer spinner.Stop()

	s.paint()
	for {
		select {
		case <-ctx.Done():
			return nil
		case k, ok := <-keys:
			if !ok {
				return nil
			}
			if s.handleKey(k) {
				return nil
			}
		case win, ok := <-winCh:
			if ok {
				s.setSize(win.Width, win.Height)
			}
		case <-spinner.C:
			if !s.status.Tick() {
				continue
			}
		case <-s.redrawCh:
		}

		if s.wantPrompt.Swap(false) {
			s.writePrompt()
		}
		s.paint()
	}
}

// teardown stops the host before the console so its last writes still
// land.
func (s *session) teardown() {
	if s.hostClose != nil {
		if err := s.hostClose(); err != nil {
			s.logger.Debug("host close failed", "err", err)
		}
	}
	s.con.Dispose()
}

func (s *session) setSize(w, h int) {
	if w < 1 || h < 1 {
		return
	}
	s.width, s.height = w, h
	s.view.setWidth(w)
	s.buf.ViewportChanged()
	if s.resizePTY != nil {
		if err := s.resizePTY(h, w); err != nil {
			s.logger.Debug("pty resize failed", "err", err)
		}
	}
}

// Key handling

func (s *session) handleKey(k key) bool {
	switch k.kind {
	case keyCtrlC, keyCtrlD:
		return true
	case keyCtrlL:
		if err := s.con.ClearConsole(); err != nil {
			s.logger.Warn("clear failed", "err", err)
		}
	case keyEnter:
		s.submitLine()
	case keyBackspace:
		s.eraseLast()
	case keyUp:
		_ = s.con.NavigateHistory(-1)
	case keyDown:
		_ = s.con.NavigateHistory(1)
	case keyPageUp:
		s.scrollBy(-s.pageSize())
	case keyPageDown:
		s.scrollBy(s.pageSize())
	case keyRune:
		s.typeRune(k.r)
	}
	return false
}

func (s *session) composing() bool {
	_, ok, err := s.con.InputLineStart()
	return err == nil && ok
}

func (s *session) typeRune(r rune) {
	if !s.composing() {
		return
	}
	err := s.con.Edit(func(tx *surface.Tx) error {
		_, ierr := tx.Insert(tx.Len(), string(r))
		return ierr
	})
	if err != nil {
		s.logger.Debug("keystroke rejected", "err", err)
	}
}

func (s *session) submitLine() {
	if !s.composing() {
		return
	}
	if err := s.con.Write("\n"); err != nil {
		s.logger.Warn("line terminator rejected", "err", err)
		return
	}
	if _, _, err := s.con.EndInputLine(false); err != nil {
		s.logger.Warn("input line hand-off failed", "err", err)
		return
	}
	if s.cfg.Host.Kind == config.HostPTY {
		// The child answers asynchronously; reopen input right away.
		s.wantPrompt.Store(true)
	}
}

func (s *session) eraseLast() {
	if !s.composing() {
		return
	}
	if err := s.con.WriteBackspace(); err != nil {
		s.scr.Beep()
	}
}

func (s *session) scrollBy(delta int) {
	s.scrollTop += delta
	if s.scrollTop < 0 {
		s.scrollTop = 0
	}
}

func (s *session) pageSize() int {
	if s.height <= 2 {
		return 1
	}
	return s.height - 2
}

// Prompt cycle

func (s *session) banner() {
	color := s.palette.Banner
	text := fmt.Sprintf("shellpane %s console\n", s.cfg.Host.Kind)
	if err := s.con.WriteColored(text, &color, nil); err != nil {
		s.logger.Warn("banner write failed", "err", err)
	}
}

func (s *session) writePrompt() {
	if executing, err := s.con.Executing(); err != nil || executing {
		return
	}
	if s.composing() {
		return
	}
	if s.promptText != "" {
		color := s.palette.Prompt
		if err := s.con.WriteColored(s.promptText, &color, nil); err != nil {
			s.logger.Warn("prompt write failed", "err", err)
			return
		}
	}
	if err := s.con.BeginInputLine(); err != nil {
		s.logger.Warn("input line open failed", "err", err)
	}
}

// commandDone runs on the Lua worker after each submitted chunk.
func (s *session) commandDone(line console.PendingInputLine, err error) {
	if err != nil {
		s.logger.Warn("command failed", "id", line.ID, "err", err)
	}
	s.wantPrompt.Store(true)
	s.requestRedraw()
}

// reanchor runs on the pty reader after each burst of child output.
func (s *session) reanchor() {
	if s.composing() {
		if _, _, err := s.con.EndInputLine(true); err != nil {
			s.logger.Debug("input reanchor failed", "err", err)
			return
		}
	}
	if err := s.con.BeginInputLine(); err != nil {
		s.logger.Debug("input reopen failed", "err", err)
	}
	s.requestRedraw()
}

// hostExited runs on the pty reader when the child's stream ends.
func (s *session) hostExited(err error) {
	s.logger.Info("host process exited", "err", err)
	if s.composing() {
		_, _, _ = s.con.EndInputLine(true)
	}
	color := s.palette.Error
	if werr := s.con.WriteColored("process exited\n", &color, nil); werr != nil {
		s.logger.Debug("exit notice dropped", "err", werr)
	}
	s.requestRedraw()
}

// Painting

func (s *session) paint() {
	width, height := s.width, s.height
	if width < 1 || height < 2 {
		return
	}
	textRows := height - 1

	marginLeft := s.cfg.Margins.Left
	if marginLeft < 0 {
		marginLeft = 0
	}
	marginRight := s.cfg.Margins.Right
	if marginRight < 0 {
		marginRight = 0
	}
	usable := width - marginLeft - marginRight
	if usable < 1 {
		marginLeft = 0
		usable = width
	}

	snap := s.buf.Snapshot()
	rows := render.Wrap(snap.Text(), usable)

	if s.scrollReset.Swap(false) {
		s.scrollTop = 0
	}
	if target, ok := s.view.takeTarget(); ok {
		i := render.RowContaining(rows, target)
		if i < s.scrollTop {
			s.scrollTop = i
		} else if i >= s.scrollTop+textRows {
			s.scrollTop = i - textRows + 1
		}
	}
	maxTop := len(rows) - textRows
	if maxTop < 0 {
		maxTop = 0
	}
	if s.scrollTop > maxTop {
		s.scrollTop = maxTop
	}
	if s.scrollTop < 0 {
		s.scrollTop = 0
	}

	pad := strings.Repeat(" ", marginLeft)
	lines := make([]string, 0, height)
	for y := 0; y < textRows; y++ {
		i := s.scrollTop + y
		if i >= len(rows) {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, pad+renderRow(rows[i], &s.overlays))
	}
	lines = append(lines, renderStatus(s.status.Line(), width))

	cursorRow, cursorCol := 0, 0
	if s.composing() {
		last := len(rows) - 1
		if y := last - s.scrollTop; y >= 0 && y < textRows {
			cursorRow = y + 1
			cursorCol = marginLeft + rows[last].Width() + 1
		}
	}

	if err := s.scr.Render(lines, cursorRow, cursorCol); err != nil {
		s.logger.Debug("frame write failed", "err", err)
	}
}
