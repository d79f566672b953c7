package flownet

// Edge is a directed arc between two arena nodes. Topology and capacity are
// fixed at creation; only the flow value changes during optimisation.
//
// Residual capacities follow the usual definition:
//
//	forward   = capacity - flow   (always positive for unbounded edges)
//	push-back = flow
type Edge struct {
	origin NodeID
	dest   NodeID
	cap    Capacity
	flow   int64
}

// Origin returns the handle of the node the edge leaves.
func (e *Edge) Origin() NodeID {
	return e.origin
}

// Destination returns the handle of the node the edge enters.
func (e *Edge) Destination() NodeID {
	return e.dest
}

// Capacity returns the fixed capacity of the edge.
func (e *Edge) Capacity() Capacity {
	return e.cap
}

// Flow returns the current flow on the edge.
func (e *Edge) Flow() int64 {
	return e.flow
}

// residualForward returns the remaining forward capacity. Unbounded edges
// report the traversal infinity sentinel so that min() with any finite
// bottleneck leaves the finite value in place.
func (e *Edge) residualForward() int64 {
	if !e.cap.bounded {
		return infiniteBottleneck
	}
	return e.cap.n - e.flow
}
