package flownet

import (
	"techsel/pkg/domain"
)

// =============================================================================
// Optimise: top-level loop
// =============================================================================

// Optimise runs the augmenting-path loop to saturation and extracts the
// result. The first call seals the network; subsequent calls return the
// memoized Selection unchanged.
//
// Termination is guaranteed because every augmenting path leaves the source
// over a bounded profit edge, so each augmentation removes at least one unit
// of finite residual capacity. When the final search fails, its visited set
// is exactly the set of nodes reachable from the source in the residual
// graph, which is the source side of a minimum cut.
func (nw *Network) Optimise() *domain.Selection {
	if nw.result != nil {
		return nw.result
	}
	for b := nw.findPath(); b != 0; b = nw.findPath() {
		nw.augment(b)
	}
	nw.result = nw.extract()
	return nw.result
}

// =============================================================================
// Result extraction
// =============================================================================

// extract reads the final traversal state into a Selection:
//
//	revenue = total profit potential - minimum-cut capacity
//	chosen  = every visited non-source node, in creation order
//
// By the project-selection reduction the revenue is the maximum net revenue
// over all dependency-closed technology subsets, and the chosen set is one
// subset attaining it.
func (nw *Network) extract() *domain.Selection {
	cut := nw.cutCapacity()
	potential := nw.profitPotential()

	chosen := make([]string, 0, len(nw.nodes))
	for id, n := range nw.nodes {
		if NodeID(id) == nw.source || NodeID(id) == nw.sink {
			continue
		}
		if nw.state.visited[id] {
			chosen = append(chosen, n.name)
		}
	}

	return &domain.Selection{
		Revenue: potential - cut,
		Chosen:  chosen,
	}
}

// cutCapacity sums the capacity of every edge leaving the visited partition.
// Dependency edges are unbounded and by construction never cross a finite
// minimum cut; an unbounded crossing here means the build contract was
// violated, which is a programming error, not a recoverable condition.
func (nw *Network) cutCapacity() int64 {
	var total int64
	for i := range nw.edges {
		e := &nw.edges[i]
		if !nw.state.visited[e.origin] || nw.state.visited[e.dest] {
			continue
		}
		n, ok := e.cap.Value()
		if !ok {
			panic("flownet: unbounded edge crosses the minimum cut")
		}
		total += n
	}
	return total
}

// profitPotential sums the capacity of every source-incident edge. Source
// edges are always bounded profit edges.
func (nw *Network) profitPotential() int64 {
	var total int64
	for _, id := range nw.nodes[nw.source].incident {
		e := &nw.edges[id]
		if e.origin != nw.source {
			continue
		}
		if n, ok := e.cap.Value(); ok {
			total += n
		}
	}
	return total
}
