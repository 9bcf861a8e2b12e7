package console

import (
	"github.com/google/uuid"

	"github.com/dshills/shellpane/internal/surface"
)

// PendingInputLine is a completed command line handed off for execution.
// It is an immutable value: text and span are captured the instant input
// mode ends and are owned by the execution pipeline from then on.
type PendingInputLine struct {
	// ID uniquely identifies this submission.
	ID uuid.UUID

	// Text is the command text as it stood when the line completed.
	Text string

	// Span is the extent the line occupied in the buffer.
	Span surface.Span

	// Version is the surface version the span was captured against.
	Version surface.Version
}

// Host consumes completed input lines. Implementations queue the line for
// execution and return promptly; they may call back into the console from
// any goroutine to produce output.
type Host interface {
	Submit(line PendingInputLine) error
}

// Status is the busy and progress surface of the hosting environment.
// A console tolerates having none: every status effect is skipped when no
// Status was provided.
type Status interface {
	// ShowProgress reports an in-progress operation at percent complete.
	ShowProgress(operation string, percent int)

	// HideProgress removes the progress indicator.
	HideProgress()

	// SetBusy toggles the busy indicator.
	SetBusy(busy bool)

	// RefreshCommandUI asks the environment to refresh command state after
	// execution finishes. Implementations may refresh asynchronously.
	RefreshCommandUI()
}
