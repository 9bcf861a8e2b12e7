package config

import "errors"

var (
	// ErrUnknownFormat indicates a config file extension the loader does
	// not understand.
	ErrUnknownFormat = errors.New("unknown config format")

	// ErrUnknownHostKind indicates a host.kind outside "lua" and "pty".
	ErrUnknownHostKind = errors.New("unknown host kind")

	// ErrInvalidColor indicates a theme entry that does not parse as a
	// hex color.
	ErrInvalidColor = errors.New("invalid theme color")
)
