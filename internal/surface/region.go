package surface

import "fmt"

// RegionID identifies a read-only region on a surface.
// The zero value is never a valid ID.
type RegionID uint64

// EdgePolicy controls whether text may be inserted at the edges of a
// read-only region. The interior of a region is always protected.
type EdgePolicy uint8

const (
	// EdgeAllowEnd blocks insertion inside [Start, End) but permits
	// appending at the End offset. This is the body-lock policy: committed
	// text is frozen while the tail after it stays open.
	EdgeAllowEnd EdgePolicy = iota

	// EdgeDeny blocks insertion anywhere in [Start, End], both edges
	// included. A zero-length EdgeDeny region blocks insertion at exactly
	// its position.
	EdgeDeny
)

// String returns the policy name.
func (p EdgePolicy) String() string {
	switch p {
	case EdgeAllowEnd:
		return "allow-end"
	case EdgeDeny:
		return "deny"
	default:
		return "unknown"
	}
}

// Region is a read-only marker over a span of the surface.
type Region struct {
	ID     RegionID
	Span   Span
	Policy EdgePolicy
}

// String returns a human-readable representation of the region.
func (r Region) String() string {
	return fmt.Sprintf("region %d %s %s", r.ID, r.Span, r.Policy)
}

// BlocksInsert reports whether the region forbids inserting at the offset.
func (r Region) BlocksInsert(offset ByteOffset) bool {
	switch r.Policy {
	case EdgeDeny:
		return offset >= r.Span.Start && offset <= r.Span.End
	case EdgeAllowEnd:
		return offset >= r.Span.Start && offset < r.Span.End
	default:
		return false
	}
}

// BlocksEdit reports whether the region forbids deleting or replacing the
// span. Zero-length regions only constrain insertion, never removal around
// them.
func (r Region) BlocksEdit(span Span) bool {
	return r.Span.Overlaps(span)
}
