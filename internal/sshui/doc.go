// Package sshui serves consoles over SSH. Every session gets its own
// surface, console, and host; the session goroutines drive the console
// facade the same way local frontends do, with every call marshaled to
// the console's owner.
//
// Input arrives as raw bytes and is decoded into keys (UTF-8 runes plus
// CSI and SS3 sequences for cursor and paging keys). Output is painted
// as full frames of ANSI text on the alternate screen, with truecolor
// SGR runs for retained color spans and a reverse-video status line.
// Window-change requests feed the surface metrics and, for pty hosts,
// the child process size.
//
// The server's host key is an ed25519 key kept on disk; a missing key is
// generated and PEM-written on first start. No authentication is
// configured: anyone who can reach the listener gets a console.
package sshui
