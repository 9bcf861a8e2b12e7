// Package luahost runs submitted console lines as Lua chunks.
//
// gopher-lua's LState is not goroutine-safe, so the host confines it to a
// single worker goroutine created at construction. Submit queues a
// completed line and returns; the worker executes chunks in order,
// bracketing each one with the console's execution mode so frontends can
// show busy state. Script output flows back through the console: print is
// redirected to WriteLine, and a console table exposes width, progress,
// clear, and colored writes. Lua errors are rendered into the scrollback
// in the theme's error color.
package luahost
