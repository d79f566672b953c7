package flownet

import "math"

// infiniteBottleneck is the +infinity sentinel for the per-search bottleneck
// table. It exists only inside the traversal workspace and is never stored as
// an edge capacity, so it can never be summed into a cut total.
const infiniteBottleneck = math.MaxInt64

// =============================================================================
// Traversal workspace
// =============================================================================

// searchState is the shared per-search workspace: one visited flag, one
// bottleneck value and one predecessor edge per node, plus a slice-backed
// FIFO queue. It is reset at the start of every search; its contents are
// meaningless between searches except after the final failed one, whose
// visited set is the minimum-cut partition.
//
// Keeping this out of the node arena makes the "one search in flight at a
// time" rule explicit: there is exactly one workspace per network.
type searchState struct {
	visited    []bool
	bottleneck []int64
	pred       []EdgeID

	queue []NodeID
	head  int
}

func (st *searchState) reset(n int) {
	if cap(st.visited) < n {
		st.visited = make([]bool, n)
		st.bottleneck = make([]int64, n)
		st.pred = make([]EdgeID, n)
	} else {
		st.visited = st.visited[:n]
		st.bottleneck = st.bottleneck[:n]
		st.pred = st.pred[:n]
		for i := range st.visited {
			st.visited[i] = false
		}
	}
	for i := range st.pred {
		st.pred[i] = noEdge
		st.bottleneck[i] = 0
	}
	st.queue = st.queue[:0]
	st.head = 0
}

func (st *searchState) push(v NodeID) {
	st.queue = append(st.queue, v)
}

func (st *searchState) pop() NodeID {
	v := st.queue[st.head]
	st.head++
	return v
}

func (st *searchState) empty() bool {
	return st.head >= len(st.queue)
}

// =============================================================================
// Augmenting-path search (Edmonds-Karp discipline)
// =============================================================================

// findPath runs one breadth-first search for a shortest augmenting path from
// source to sink and returns its bottleneck, or 0 when no path exists.
//
// Each node's incident edges are examined in insertion order. An edge is
// taken forward when its residual forward capacity is positive, and as a
// push-back when it carries positive flow toward the current node. The search
// short-circuits the moment it reaches the sink; every node is visited at
// most once, so a single search is O(V + E).
func (nw *Network) findPath() int64 {
	st := &nw.state
	st.reset(len(nw.nodes))
	st.visited[nw.source] = true
	st.bottleneck[nw.source] = infiniteBottleneck
	st.push(nw.source)

	for !st.empty() {
		u := st.pop()
		for _, id := range nw.nodes[u].incident {
			e := &nw.edges[id]

			var v NodeID
			var residual int64
			if e.origin == u {
				v = e.dest
				residual = e.residualForward()
			} else {
				v = e.origin
				residual = e.flow
			}
			if residual <= 0 || st.visited[v] {
				continue
			}

			b := st.bottleneck[u]
			if residual < b {
				b = residual
			}
			st.visited[v] = true
			st.pred[v] = id
			st.bottleneck[v] = b

			if v == nw.sink {
				return b
			}
			st.push(v)
		}
	}

	return 0
}

// augment retraces the predecessor chain from the sink back to the source
// and shifts the bottleneck amount along it: forward edges gain flow,
// push-back edges lose it. Capacities and topology are untouched.
func (nw *Network) augment(b int64) {
	v := nw.sink
	for v != nw.source {
		e := &nw.edges[nw.state.pred[v]]
		if e.dest == v {
			e.flow += b
			v = e.origin
		} else {
			e.flow -= b
			v = e.dest
		}
	}
}
