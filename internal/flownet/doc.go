// Package flownet implements the project-selection optimisation core.
//
// A technology portfolio with development costs, resale profits and
// "depends-on" relations is reduced to a flow network: one node per
// technology plus the reserved source and sink, a source→technology edge
// with capacity equal to the profit, a technology→sink edge with capacity
// equal to the cost, and an unbounded edge per dependency. The maximum net
// revenue over all dependency-closed subsets equals the total profit
// potential minus the capacity of a minimum source/sink cut, which the
// network computes with the Edmonds-Karp augmenting-path method.
//
// # Layout
//
// Nodes and edges live in two arenas owned by the Network and are addressed
// by NodeID/EdgeID handles; edges store endpoint handles and nodes store
// incident edge handles, so there are no pointer cycles between them.
//
// # Lifecycle
//
//	nw := flownet.NewNetwork()
//	_ = nw.AddTechnology("bronze", 6, 2)
//	_ = nw.AddTechnology("iron", 6, 6)
//	_ = nw.AddDependency("iron", "bronze")
//	sel := nw.Optimise()
//	// sel.Revenue, sel.Chosen
//
// The build API is append-only; after the first Optimise call the network
// is sealed and further build calls fail. Optimise is memoized, repeated
// calls return the same Selection.
//
// # Concurrency
//
// A Network is single-owner. The breadth-first search reuses one shared
// traversal workspace, so all calls on one instance must be serialized by
// the caller. There is no internal locking.
package flownet
