package dispatch

import (
	"runtime"
	"strconv"
	"strings"
)

// goroutineID returns the runtime's numeric id for the calling goroutine.
//
// The id is parsed from the first line of the goroutine's stack header,
// which has the stable form "goroutine N [state]:". The runtime offers no
// public accessor, and the dispatcher only ever compares ids for equality,
// so parsing the header is sufficient here.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	header := strings.TrimPrefix(string(buf[:n]), "goroutine ")
	end := strings.IndexByte(header, ' ')
	if end < 0 {
		return 0
	}
	id, err := strconv.ParseUint(header[:end], 10, 64)
	if err != nil {
		return 0
	}
	return id
}
