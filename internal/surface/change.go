package surface

import "fmt"

// ChangeType categorizes the kind of mutation applied to the surface.
type ChangeType uint8

const (
	ChangeInsert  ChangeType = iota // Text was inserted
	ChangeDelete                    // Text was deleted
	ChangeReplace                   // Text was replaced
)

// String returns a string representation of the change type.
func (c ChangeType) String() string {
	switch c {
	case ChangeInsert:
		return "insert"
	case ChangeDelete:
		return "delete"
	case ChangeReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// Change describes a single applied mutation. Observers receive it after
// the mutation commits; anchor translation consumes it.
type Change struct {
	Type    ChangeType // Kind of mutation
	Span    Span       // Original span that was affected
	NewSpan Span       // Resulting span after the change
	OldText string     // Text that was removed (for delete/replace)
	NewText string     // Text that was added (for insert/replace)
	Version Version    // Surface version after the change
}

// String returns a human-readable representation of the change.
func (c Change) String() string {
	switch c.Type {
	case ChangeInsert:
		return fmt.Sprintf("Insert(%d, %q)", c.Span.Start, c.NewText)
	case ChangeDelete:
		return fmt.Sprintf("Delete%s", c.Span.String())
	default:
		return fmt.Sprintf("Replace%s with %q", c.Span.String(), c.NewText)
	}
}

// Delta returns the change in surface length caused by this change.
func (c Change) Delta() ByteOffset {
	return ByteOffset(len(c.NewText)) - c.Span.Len()
}

// Invert returns the inverse change that would undo this change.
func (c Change) Invert() Change {
	switch c.Type {
	case ChangeInsert:
		return Change{
			Type:    ChangeDelete,
			Span:    c.NewSpan,
			NewSpan: Span{Start: c.NewSpan.Start, End: c.NewSpan.Start},
			OldText: c.NewText,
		}
	case ChangeDelete:
		return Change{
			Type:    ChangeInsert,
			Span:    Span{Start: c.Span.Start, End: c.Span.Start},
			NewSpan: c.Span,
			NewText: c.OldText,
		}
	case ChangeReplace:
		return Change{
			Type:    ChangeReplace,
			Span:    c.NewSpan,
			NewSpan: c.Span,
			OldText: c.NewText,
			NewText: c.OldText,
		}
	default:
		return c
	}
}

// EditResult contains information about an applied edit.
type EditResult struct {
	OldSpan Span   // The original span that was modified
	NewSpan Span   // The resulting span after the edit
	OldText string // The text that was replaced (if any)
	Delta   int64  // Change in surface length
}
