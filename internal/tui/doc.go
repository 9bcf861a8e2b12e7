// Package tui is the terminal frontend. It owns a tcell screen, paints a
// console surface onto it, and routes keys into the console: runes append
// to the open input tail, Enter submits the line, Up and Down walk
// history, Ctrl+L clears, and Ctrl+C or Ctrl+D exits.
//
// The app implements the surface view contract (terminal metrics with
// ColumnWidth 1) and the console status contract (a one-row status bar
// with a busy spinner and progress readout). Scrollback wraps at the
// usable width using grapheme cluster widths, and colored output spans
// are retained as absolute-offset overlays until the console clears.
//
// The frontend drives a prompt cycle against the configured host. With
// the Lua host it writes a colored prompt, opens an input line, and
// reopens it when the submitted command completes; a runaway chunk that
// never returns blocks shutdown until it does. With the pty host the
// child process provides its own prompts, so the frontend keeps an input
// line open and moves it behind each burst of child output.
package tui
