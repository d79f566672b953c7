package flownet

import (
	"techsel/pkg/apperror"
	"techsel/pkg/domain"
)

// Reserved node names. They are created once per network and are kept out of
// the technology name index, so user input can never collide with them.
const (
	SourceName = domain.ReservedSourceName
	SinkName   = domain.ReservedSinkName
)

// node is one arena entry: the technology name plus the handles of every
// incident edge, in both directions, in insertion order.
type node struct {
	name     string
	incident []EdgeID
}

// Network owns the node and edge arenas and implements the build API and the
// optimisation loop. Both collections are append-only during the build phase
// and structurally frozen once Optimise has run.
type Network struct {
	nodes  []node
	edges  []Edge
	byName map[string]NodeID

	source NodeID
	sink   NodeID

	depCount int

	// Shared breadth-first search workspace, reset at the start of every
	// search. After the final (failed) search it holds the minimum-cut
	// partition that result extraction reads.
	state searchState

	result *domain.Selection
}

// NewNetwork creates an empty network with the reserved source and sink
// nodes already in place.
func NewNetwork() *Network {
	nw := &Network{byName: make(map[string]NodeID)}
	nw.source = nw.addNode(SourceName)
	nw.sink = nw.addNode(SinkName)
	return nw
}

func (nw *Network) addNode(name string) NodeID {
	id := NodeID(len(nw.nodes))
	nw.nodes = append(nw.nodes, node{name: name})
	return id
}

func (nw *Network) addEdge(origin, dest NodeID, cap Capacity) EdgeID {
	id := EdgeID(len(nw.edges))
	nw.edges = append(nw.edges, Edge{origin: origin, dest: dest, cap: cap})
	nw.nodes[origin].incident = append(nw.nodes[origin].incident, id)
	nw.nodes[dest].incident = append(nw.nodes[dest].incident, id)
	return id
}

// =============================================================================
// Build API
// =============================================================================

// AddTechnology registers a technology node. A positive profit adds a
// source→node edge with capacity profit; a positive cost adds a node→sink
// edge with capacity cost. A technology with neither is a valid, edge-less
// node that can never affect the flow or the cut.
//
// Fails with CodeDuplicateTechnology if the name is already registered, and
// with CodeEmptyTechnologyName / CodeReservedTechnologyName for unusable
// names. On error the network must be discarded.
func (nw *Network) AddTechnology(name string, profit, cost int64) error {
	if err := nw.buildable(); err != nil {
		return err
	}
	if name == "" {
		return apperror.ErrEmptyTechnologyName
	}
	if name == SourceName || name == SinkName {
		return apperror.NewWithField(apperror.CodeReservedTechnologyName,
			"technology name is reserved", name)
	}
	if _, exists := nw.byName[name]; exists {
		return apperror.NewWithField(apperror.CodeDuplicateTechnology,
			"technology is already registered", name)
	}

	id := nw.addNode(name)
	nw.byName[name] = id

	if profit > 0 {
		nw.addEdge(nw.source, id, Bounded(profit))
	}
	if cost > 0 {
		nw.addEdge(id, nw.sink, Bounded(cost))
	}
	return nil
}

// AddDependency records that selecting from requires also selecting to, as
// an unbounded from→to edge. Both technologies must already be registered;
// forward references fail with CodeUnknownTechnology.
func (nw *Network) AddDependency(from, to string) error {
	if err := nw.buildable(); err != nil {
		return err
	}
	f, ok := nw.byName[from]
	if !ok {
		return apperror.NewWithField(apperror.CodeUnknownTechnology,
			"dependency references an unregistered technology", from)
	}
	t, ok := nw.byName[to]
	if !ok {
		return apperror.NewWithField(apperror.CodeUnknownTechnology,
			"dependency references an unregistered technology", to)
	}

	nw.addEdge(f, t, Unbounded())
	nw.depCount++
	return nil
}

func (nw *Network) buildable() error {
	if nw.result != nil {
		return apperror.ErrNetworkSealed
	}
	return nil
}

// =============================================================================
// Introspection
// =============================================================================

// TechnologyCount returns the number of registered technologies, excluding
// the reserved source and sink.
func (nw *Network) TechnologyCount() int {
	return len(nw.nodes) - 2
}

// DependencyCount returns the number of registered dependencies.
func (nw *Network) DependencyCount() int {
	return nw.depCount
}

// EdgeCount returns the total number of edges in the arena.
func (nw *Network) EdgeCount() int {
	return len(nw.edges)
}

// MaxFlow returns the total flow leaving the source. Before Optimise it is 0;
// afterwards it equals the maximum flow value of the network.
func (nw *Network) MaxFlow() int64 {
	var total int64
	for _, id := range nw.nodes[nw.source].incident {
		e := &nw.edges[id]
		if e.origin == nw.source {
			total += e.flow
		}
	}
	return total
}

// sinkInflow returns the total flow entering the sink. Used by conservation
// checks; at maximum flow it equals MaxFlow.
func (nw *Network) sinkInflow() int64 {
	var total int64
	for _, id := range nw.nodes[nw.sink].incident {
		e := &nw.edges[id]
		if e.dest == nw.sink {
			total += e.flow
		}
	}
	return total
}
