package surface

import "sync/atomic"

// ByteOffset represents a byte position in the surface text.
// This is the fundamental position type, directly indexing into the text.
type ByteOffset = int64

// Version identifies one state of a surface's content. Versions increase
// monotonically with every successful mutation; offsets and spans are only
// meaningful relative to the version they were computed against.
type Version uint64

var versionCounter uint64

// NextVersion returns a new unique version.
// Versions are globally ordered across all surfaces in the process.
func NextVersion() Version {
	return Version(atomic.AddUint64(&versionCounter, 1))
}
