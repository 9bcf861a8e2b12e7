// Package ptyhost runs an external command under a pseudo terminal and
// bridges it to the console.
//
// Submitted lines are written to the child's tty; a reader goroutine
// streams its output back into the console through the cross-thread
// facade. The tty driver echoes everything we write, so the host keeps a
// ledger of recently sent text and cancels the echo against it before the
// output reaches the scrollback. Carriage returns, NUL padding, and
// backspace sequences from the driver are normalized into plain text and
// WriteBackspace calls.
package ptyhost
