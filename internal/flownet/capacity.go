package flownet

import "fmt"

// NodeID is a stable handle into the Network node arena.
type NodeID int32

// EdgeID is a stable handle into the Network edge arena.
type EdgeID int32

// noEdge marks an unset predecessor in the traversal workspace.
const noEdge EdgeID = -1

// =============================================================================
// Capacity
// =============================================================================

// Capacity is a tagged edge capacity: either Bounded(n) with n ≥ 0, or
// Unbounded for dependency edges.
//
// Unbounded is deliberately not encoded as a large numeric literal. Summing
// math.MaxInt64-style sentinels into a cut total silently overflows; a tagged
// value forces every summation site to decide what an unbounded edge means
// there. An unbounded edge can never be the bottleneck of an augmenting path
// (every path leaves the source over a bounded profit edge) and can never
// cross a finite minimum cut.
type Capacity struct {
	n       int64
	bounded bool
}

// Bounded returns a finite capacity of n units.
func Bounded(n int64) Capacity {
	return Capacity{n: n, bounded: true}
}

// Unbounded returns the unlimited capacity used for dependency edges.
func Unbounded() Capacity {
	return Capacity{}
}

// IsUnbounded reports whether the capacity is the unlimited sentinel.
func (c Capacity) IsUnbounded() bool {
	return !c.bounded
}

// Value returns the numeric capacity and true for bounded capacities,
// and 0 and false for Unbounded.
func (c Capacity) Value() (int64, bool) {
	if !c.bounded {
		return 0, false
	}
	return c.n, true
}

// String returns "unbounded" or the decimal capacity value.
func (c Capacity) String() string {
	if !c.bounded {
		return "unbounded"
	}
	return fmt.Sprintf("%d", c.n)
}
