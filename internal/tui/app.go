package tui

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
	"pkt.systems/pslog"

	"github.com/dshills/shellpane/internal/config"
	"github.com/dshills/shellpane/internal/console"
	"github.com/dshills/shellpane/internal/host/luahost"
	"github.com/dshills/shellpane/internal/host/ptyhost"
	"github.com/dshills/shellpane/internal/render"
	"github.com/dshills/shellpane/internal/surface"
)

const spinnerInterval = 120 * time.Millisecond

// App is the terminal frontend. It owns the screen, the console it
// paints, and the host that executes submitted lines.
type App struct {
	cfg    config.Config
	logger pslog.Logger

	screen tcell.Screen
	buf    *surface.Buffer
	con    *console.Console

	view     *screenView
	status   *render.Status
	overlays render.Overlays

	host      console.Host
	hostClose func() error
	resizePTY func(rows, cols int) error

	// stateMu guards the reloadable settings. ApplyConfig writes them
	// from the watcher goroutine while the event loop reads them.
	stateMu    sync.Mutex
	palette    config.Palette
	promptText string

	wantPrompt  atomic.Bool
	scrollReset atomic.Bool

	// Event-loop state. Touched only between PollEvent calls.
	scrollTop int
	quit      bool

	done chan struct{}
	wg   sync.WaitGroup
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the frontend logger.
func WithLogger(logger pslog.Logger) Option {
	return func(a *App) { a.logger = logger }
}

// WithScreen substitutes the screen. Tests pass a simulation screen.
func WithScreen(screen tcell.Screen) Option {
	return func(a *App) { a.screen = screen }
}

// New builds the frontend around a fresh surface and console configured
// from cfg. The screen is not touched until Run.
func New(cfg config.Config, opts ...Option) (*App, error) {
	palette, err := cfg.Theme.Palette()
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:     cfg,
		palette: palette,
		logger:  pslog.Ctx(context.Background()),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.status = render.NewStatus(a.requestPaint)
	a.buf = surface.NewBuffer()
	con, err := console.New(a.buf,
		console.WithLogger(a.logger),
		console.WithStatus(a.status),
		console.WithHistoryLimit(cfg.HistoryLimit),
		console.WithMinWidth(cfg.MinWidth),
	)
	if err != nil {
		return nil, err
	}
	a.con = con
	return a, nil
}

// Console exposes the frontend's console.
func (a *App) Console() *console.Console {
	return a.con
}

// ApplyConfig adopts the reloadable settings from a fresh configuration:
// theme colors and, for the Lua host, the prompt text. Structural settings
// such as the host kind or history limit keep their startup values.
func (a *App) ApplyConfig(cfg config.Config) {
	palette, err := cfg.Theme.Palette()
	if err != nil {
		a.logger.Warn("theme reload rejected", "err", err)
		return
	}
	a.stateMu.Lock()
	a.palette = palette
	if a.cfg.Host.Kind != config.HostPTY {
		a.promptText = cfg.Prompt
	}
	a.stateMu.Unlock()
	a.requestPaint()
}

func (a *App) currentPalette() config.Palette {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	return a.palette
}

func (a *App) currentPrompt() string {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	return a.promptText
}

func (a *App) setPrompt(text string) {
	a.stateMu.Lock()
	a.promptText = text
	a.stateMu.Unlock()
}

// Run initializes the screen, wires the host, and services events until
// the user exits or the screen is finalized.
func (a *App) Run() error {
	if a.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("opening terminal: %w", err)
		}
		a.screen = screen
	}
	if err := a.screen.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer a.screen.Fini()

	if err := a.wire(); err != nil {
		return err
	}
	defer a.teardown()

	a.wg.Add(1)
	go a.spinLoop()

	a.banner()
	a.writePrompt()
	a.paint()

	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return nil
		}
		a.handleEvent(ev)
		if a.quit {
			return nil
		}
		if a.wantPrompt.Swap(false) {
			a.writePrompt()
		}
		a.paint()
	}
}

// wire attaches the view, the event observers, and the configured host.
func (a *App) wire() error {
	a.view = newScreenView(a.screen, a.cfg.Margins, a.requestPaint)
	a.buf.SetView(a.view)
	a.buf.OnChange(func(surface.Change) { a.requestPaint() })

	a.con.Subscribe(func(ev console.Event) {
		switch ev.Kind {
		case console.EventColorSpan:
			a.overlays.Add(ev.Span, ev.Foreground, ev.Background)
		case console.EventCleared:
			a.overlays.Reset()
			a.scrollReset.Store(true)
			a.wantPrompt.Store(true)
		}
		a.requestPaint()
	})

	switch a.cfg.Host.Kind {
	case config.HostPTY:
		h, err := ptyhost.Start(a.con, a.cfg.Host.Command, a.cfg.Host.Args,
			ptyhost.WithLogger(a.logger),
			ptyhost.WithOnOutput(a.reanchor),
			ptyhost.WithOnExit(a.hostExited),
		)
		if err != nil {
			return err
		}
		a.host = h
		a.hostClose = h.Close
		a.resizePTY = h.Resize
		a.setPrompt("")
	default:
		h := luahost.New(a.con,
			luahost.WithLogger(a.logger),
			luahost.WithPalette(a.currentPalette()),
			luahost.WithOnComplete(a.commandDone),
		)
		a.host = h
		a.hostClose = func() error { h.Close(); return nil }
		a.setPrompt(a.cfg.Prompt)
	}
	return a.con.SetHost(a.host)
}

// teardown stops the host before the console so the host's last writes
// still land, then stops the spinner.
func (a *App) teardown() {
	if a.hostClose != nil {
		if err := a.hostClose(); err != nil {
			a.logger.Debug("host close failed", "err", err)
		}
	}
	a.con.Dispose()
	close(a.done)
	a.wg.Wait()
}

// requestPaint wakes the event loop. Posting is best effort: a full queue
// means more events are already on the way and the loop paints after
// every one of them.
func (a *App) requestPaint() {
	s := a.screen
	if s == nil {
		return
	}
	_ = s.PostEvent(tcell.NewEventInterrupt(nil))
}

// stopRequest is the interrupt payload Stop posts to end the event loop.
type stopRequest struct{}

// Stop asks the event loop to exit and restore the terminal. It may be
// called from any goroutine.
func (a *App) Stop() {
	s := a.screen
	if s == nil {
		return
	}
	_ = s.PostEvent(tcell.NewEventInterrupt(stopRequest{}))
}

func (a *App) spinLoop() {
	defer a.wg.Done()
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()
	for {
		select {
		case <-a.done:
			return
		case <-ticker.C:
			if a.status.Tick() {
				a.requestPaint()
			}
		}
	}
}

// Event handling

func (a *App) handleEvent(ev tcell.Event) {
	switch e := ev.(type) {
	case *tcell.EventKey:
		a.handleKey(e)
	case *tcell.EventResize:
		a.screen.Sync()
		a.buf.ViewportChanged()
		if a.resizePTY != nil {
			w, h := e.Size()
			if err := a.resizePTY(h, w); err != nil {
				a.logger.Debug("pty resize failed", "err", err)
			}
		}
	case *tcell.EventInterrupt:
		// Repaint request unless Stop posted it; painting happens after
		// every event either way.
		if _, ok := e.Data().(stopRequest); ok {
			a.quit = true
		}
	}
}

func (a *App) handleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyCtrlD:
		a.quit = true
	case tcell.KeyCtrlL:
		if err := a.con.ClearConsole(); err != nil {
			a.logger.Warn("clear failed", "err", err)
		}
	case tcell.KeyEnter:
		a.submitLine()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.eraseLast()
	case tcell.KeyUp:
		_ = a.con.NavigateHistory(-1)
	case tcell.KeyDown:
		_ = a.con.NavigateHistory(1)
	case tcell.KeyPgUp:
		a.scrollBy(-a.pageSize())
	case tcell.KeyPgDn:
		a.scrollBy(a.pageSize())
	case tcell.KeyRune:
		a.typeRune(ev.Rune())
	}
}

func (a *App) composing() bool {
	_, ok, err := a.con.InputLineStart()
	return err == nil && ok
}

func (a *App) typeRune(r rune) {
	if !a.composing() {
		return
	}
	err := a.con.Edit(func(tx *surface.Tx) error {
		_, ierr := tx.Insert(tx.Len(), string(r))
		return ierr
	})
	if err != nil {
		a.logger.Debug("keystroke rejected", "err", err)
	}
}

func (a *App) submitLine() {
	if !a.composing() {
		return
	}
	if err := a.con.Write("\n"); err != nil {
		a.logger.Warn("line terminator rejected", "err", err)
		return
	}
	if _, _, err := a.con.EndInputLine(false); err != nil {
		a.logger.Warn("input line hand-off failed", "err", err)
		return
	}
	if a.cfg.Host.Kind == config.HostPTY {
		// The child answers asynchronously; reopen input right away.
		a.wantPrompt.Store(true)
	}
}

func (a *App) eraseLast() {
	if !a.composing() {
		return
	}
	if err := a.con.WriteBackspace(); err != nil {
		a.screen.Beep()
	}
}

func (a *App) scrollBy(delta int) {
	a.scrollTop += delta
	if a.scrollTop < 0 {
		a.scrollTop = 0
	}
}

func (a *App) pageSize() int {
	_, h := a.screen.Size()
	if h <= 2 {
		return 1
	}
	return h - 2
}

// Prompt cycle

func (a *App) banner() {
	color := a.currentPalette().Banner
	text := fmt.Sprintf("shellpane %s console\n", a.cfg.Host.Kind)
	if err := a.con.WriteColored(text, &color, nil); err != nil {
		a.logger.Warn("banner write failed", "err", err)
	}
}

// writePrompt opens the next input line unless a command is still running
// or input is already open. The pty host paints its own prompts, so only
// the Lua cycle writes prompt text.
func (a *App) writePrompt() {
	if executing, err := a.con.Executing(); err != nil || executing {
		return
	}
	if a.composing() {
		return
	}
	if prompt := a.currentPrompt(); prompt != "" {
		color := a.currentPalette().Prompt
		if err := a.con.WriteColored(prompt, &color, nil); err != nil {
			a.logger.Warn("prompt write failed", "err", err)
			return
		}
	}
	if err := a.con.BeginInputLine(); err != nil {
		a.logger.Warn("input line open failed", "err", err)
	}
}

// commandDone runs on the Lua worker after each submitted chunk.
func (a *App) commandDone(line console.PendingInputLine, err error) {
	if err != nil {
		a.logger.Warn("command failed", "id", line.ID, "err", err)
	}
	a.wantPrompt.Store(true)
	a.requestPaint()
}

// reanchor runs on the pty reader after each burst of child output. An
// open input line is abandoned as echo and reopened behind the output.
func (a *App) reanchor() {
	if a.composing() {
		if _, _, err := a.con.EndInputLine(true); err != nil {
			a.logger.Debug("input reanchor failed", "err", err)
			return
		}
	}
	if err := a.con.BeginInputLine(); err != nil {
		a.logger.Debug("input reopen failed", "err", err)
	}
	a.requestPaint()
}

// hostExited runs on the pty reader when the child's stream ends.
func (a *App) hostExited(err error) {
	a.logger.Info("host process exited", "err", err)
	if a.composing() {
		_, _, _ = a.con.EndInputLine(true)
	}
	color := a.currentPalette().Error
	if werr := a.con.WriteColored("process exited\n", &color, nil); werr != nil {
		a.logger.Debug("exit notice dropped", "err", werr)
	}
	a.requestPaint()
}

// Painting

func (a *App) paint() {
	width, height := a.screen.Size()
	if width < 1 || height < 2 {
		return
	}
	textRows := height - 1

	marginLeft := a.cfg.Margins.Left
	if marginLeft < 0 {
		marginLeft = 0
	}
	marginRight := a.cfg.Margins.Right
	if marginRight < 0 {
		marginRight = 0
	}
	usable := width - marginLeft - marginRight
	if usable < 1 {
		marginLeft = 0
		usable = width
	}

	snap := a.buf.Snapshot()
	rows := render.Wrap(snap.Text(), usable)

	if a.scrollReset.Swap(false) {
		a.scrollTop = 0
	}
	if target, ok := a.view.takeTarget(); ok {
		a.scrollTo(rows, target, textRows)
	}
	maxTop := len(rows) - textRows
	if maxTop < 0 {
		maxTop = 0
	}
	if a.scrollTop > maxTop {
		a.scrollTop = maxTop
	}
	if a.scrollTop < 0 {
		a.scrollTop = 0
	}

	a.screen.Clear()

	base := tcell.StyleDefault
	for y := 0; y < textRows; y++ {
		i := a.scrollTop + y
		if i >= len(rows) {
			break
		}
		x := marginLeft
		for _, c := range rows[i].Cells {
			if c.Width < 1 {
				continue
			}
			runes := []rune(c.Cluster)
			a.screen.SetContent(x, y, runes[0], runes[1:], styleAt(&a.overlays, c.Offset, base))
			x += c.Width
		}
	}

	a.paintStatus(width, height-1)
	a.paintCursor(rows, textRows, marginLeft)
	a.screen.Show()
}

// scrollTo moves the window the minimal distance that shows target.
func (a *App) scrollTo(rows []render.Row, target surface.ByteOffset, textRows int) {
	i := render.RowContaining(rows, target)
	if i < a.scrollTop {
		a.scrollTop = i
	} else if i >= a.scrollTop+textRows {
		a.scrollTop = i - textRows + 1
	}
}

func (a *App) paintStatus(width, y int) {
	style := tcell.StyleDefault.Reverse(true)
	if a.status.Showing() {
		style = style.Foreground(toTcell(a.currentPalette().Progress))
	}

	x := 0
	state := -1
	rest := a.status.Line()
	for len(rest) > 0 && x < width {
		cluster, tail, boundaries, next := uniseg.FirstGraphemeClusterInString(rest, state)
		if w := boundaries >> uniseg.ShiftWidth; w > 0 {
			runes := []rune(cluster)
			a.screen.SetContent(x, y, runes[0], runes[1:], style)
			x += w
		}
		rest = tail
		state = next
	}
	for ; x < width; x++ {
		a.screen.SetContent(x, y, ' ', nil, style)
	}
}

// paintCursor places the terminal cursor at the insertion point, the end
// of the wrapped text, while input is open.
func (a *App) paintCursor(rows []render.Row, textRows, marginLeft int) {
	if !a.composing() {
		a.screen.HideCursor()
		return
	}
	last := len(rows) - 1
	y := last - a.scrollTop
	if y < 0 || y >= textRows {
		a.screen.HideCursor()
		return
	}
	a.screen.ShowCursor(marginLeft+rows[last].Width(), y)
}
