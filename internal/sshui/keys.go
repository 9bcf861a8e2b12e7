package sshui

import (
	"bufio"
	"io"
	"unicode"
	"unicode/utf8"
)

type keyKind int

const (
	keyRune keyKind = iota
	keyEnter
	keyBackspace
	keyUp
	keyDown
	keyPageUp
	keyPageDown
	keyCtrlC
	keyCtrlD
	keyCtrlL
)

type key struct {
	kind keyKind
	r    rune
}

// readKeys decodes the raw session byte stream into keys until the
// reader fails, then closes out. CSI and SS3 escape sequences cover the
// cursor and paging keys; printable input arrives as UTF-8 runes and
// unmapped control bytes are dropped.
func readKeys(r io.Reader, out chan<- key) {
	defer close(out)
	br := bufio.NewReader(r)
	lastWasCR := false
	for {
		b, err := br.ReadByte()
		if err != nil {
			return
		}
		if lastWasCR {
			lastWasCR = false
			if b == '\n' {
				continue
			}
		}
		switch b {
		case 0x1b:
			readEscape(br, out)
		case '\r':
			out <- key{kind: keyEnter}
			lastWasCR = true
		case '\n':
			out <- key{kind: keyEnter}
		case 0x7f, 0x08:
			out <- key{kind: keyBackspace}
		case 0x03:
			out <- key{kind: keyCtrlC}
		case 0x04:
			out <- key{kind: keyCtrlD}
		case 0x0c:
			out <- key{kind: keyCtrlL}
		default:
			if b < 0x20 {
				continue
			}
			if b < utf8.RuneSelf {
				out <- key{kind: keyRune, r: rune(b)}
				continue
			}
			_ = br.UnreadByte()
			rn, _, err := br.ReadRune()
			if err != nil {
				return
			}
			out <- key{kind: keyRune, r: rn}
		}
	}
}

func readEscape(br *bufio.Reader, out chan<- key) {
	b, err := br.ReadByte()
	if err != nil {
		return
	}
	switch b {
	case '[':
		readCSI(br, out)
	case 'O':
		readSS3(br, out)
	}
}

func readCSI(br *bufio.Reader, out chan<- key) {
	seq := []byte{}
	for {
		b, err := br.ReadByte()
		if err != nil {
			return
		}
		seq = append(seq, b)
		if b == '~' || unicode.IsLetter(rune(b)) {
			break
		}
		if len(seq) > 8 {
			return
		}
	}
	switch string(seq) {
	case "A":
		out <- key{kind: keyUp}
	case "B":
		out <- key{kind: keyDown}
	case "5~":
		out <- key{kind: keyPageUp}
	case "6~":
		out <- key{kind: keyPageDown}
	}
}

func readSS3(br *bufio.Reader, out chan<- key) {
	b, err := br.ReadByte()
	if err != nil {
		return
	}
	switch b {
	case 'A':
		out <- key{kind: keyUp}
	case 'B':
		out <- key{kind: keyDown}
	}
}
