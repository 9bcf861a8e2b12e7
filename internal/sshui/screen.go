package sshui

import (
	"fmt"
	"io"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	sgrReset   = "\x1b[0m"
	sgrReverse = "\x1b[7m"
)

// screen writes full-frame ANSI updates to the session stream.
type screen struct {
	out io.Writer
}

func newScreen(out io.Writer) *screen {
	return &screen{out: out}
}

func (s *screen) EnterAltScreen() {
	_, _ = io.WriteString(s.out, "\x1b[?1049h\x1b[H\x1b[2J")
}

func (s *screen) ExitAltScreen() {
	_, _ = io.WriteString(s.out, "\x1b[?1049l\x1b[?25h")
}

func (s *screen) Beep() {
	_, _ = io.WriteString(s.out, "\a")
}

// Render replaces the whole frame. Cursor coordinates are 1-based; a
// cursorRow of 0 leaves the cursor hidden.
func (s *screen) Render(lines []string, cursorRow, cursorCol int) error {
	var b strings.Builder
	b.WriteString("\x1b[?25l")
	b.WriteString("\x1b[H\x1b[2J")
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\r\n")
		}
		b.WriteString(line)
	}
	if cursorRow > 0 {
		if cursorCol < 1 {
			cursorCol = 1
		}
		fmt.Fprintf(&b, "\x1b[%d;%dH", cursorRow, cursorCol)
		b.WriteString("\x1b[?25h")
	}
	_, err := io.WriteString(s.out, b.String())
	return err
}

func fgSGR(c colorful.Color) string {
	r, g, b := c.RGB255()
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm", r, g, b)
}

func bgSGR(c colorful.Color) string {
	r, g, b := c.RGB255()
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm", r, g, b)
}
