// Package render holds the frontend-neutral pieces of console painting:
// wrapping scrollback text into fixed-width rows by grapheme cluster
// width, and retaining colored output spans keyed by absolute byte
// offset. The tcell and SSH frontends share this layer and differ only
// in how they put cells on the wire.
package render
