package console

import "errors"

// Errors returned by console operations.
var (
	// ErrDisposed is returned by operations on a disposed console.
	ErrDisposed = errors.New("console is disposed")

	// ErrHostAlreadySet is returned when SetHost is called a second time.
	ErrHostAlreadySet = errors.New("console host already set")

	// ErrNilHost is returned when SetHost is called with a nil host.
	ErrNilHost = errors.New("console host is nil")

	// ErrNotComposing is returned by input line accessors while no input
	// line is open.
	ErrNotComposing = errors.New("no input line is being composed")

	// ErrNoOperation is returned by WriteProgress for an empty operation
	// label.
	ErrNoOperation = errors.New("progress operation label is empty")
)
