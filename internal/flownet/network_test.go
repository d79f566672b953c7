package flownet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techsel/pkg/apperror"
)

// referenceNetwork builds the 9-technology / 7-dependency fixture whose
// optimum was verified by brute force over all dependency-closed subsets.
func referenceNetwork(t *testing.T) *Network {
	t.Helper()

	nw := NewNetwork()
	techs := []struct {
		name         string
		profit, cost int64
	}{
		{"bronze", 6, 2},
		{"iron", 6, 6},
		{"archery", 2, 3},
		{"horseback-riding", 10, 2},
		{"horse-archer", 0, 6},
		{"knights", 6, 12},
		{"mathematics", 6, 0},
		{"construction", 8, 4},
		{"currency", 2, 10},
	}
	for _, tc := range techs {
		require.NoError(t, nw.AddTechnology(tc.name, tc.profit, tc.cost))
	}

	deps := [][2]string{
		{"iron", "bronze"},
		{"horse-archer", "archery"},
		{"horse-archer", "horseback-riding"},
		{"knights", "horseback-riding"},
		{"knights", "iron"},
		{"construction", "mathematics"},
		{"currency", "mathematics"},
	}
	for _, d := range deps {
		require.NoError(t, nw.AddDependency(d[0], d[1]))
	}

	return nw
}

func TestOptimise(t *testing.T) {
	tests := []struct {
		name         string
		setupNetwork func(t *testing.T) *Network
		wantRevenue  int64
		wantChosen   []string
	}{
		{
			name: "single_profitable_technology",
			setupNetwork: func(t *testing.T) *Network {
				nw := NewNetwork()
				require.NoError(t, nw.AddTechnology("pottery", 6, 2))
				return nw
			},
			wantRevenue: 4,
			wantChosen:  []string{"pottery"},
		},
		{
			name: "dependency_forces_unprofitable_cost",
			setupNetwork: func(t *testing.T) *Network {
				// Selecting A forces B's cost 6; net 6-2-6 < 0, so the
				// optimum selects neither.
				nw := NewNetwork()
				require.NoError(t, nw.AddTechnology("A", 6, 2))
				require.NoError(t, nw.AddTechnology("B", 0, 6))
				require.NoError(t, nw.AddDependency("A", "B"))
				return nw
			},
			wantRevenue: 0,
			wantChosen:  []string{},
		},
		{
			name: "empty_network",
			setupNetwork: func(t *testing.T) *Network {
				return NewNetwork()
			},
			wantRevenue: 0,
			wantChosen:  []string{},
		},
		{
			name: "independent_technologies_keep_only_profitable",
			setupNetwork: func(t *testing.T) *Network {
				nw := NewNetwork()
				require.NoError(t, nw.AddTechnology("good", 10, 3))
				require.NoError(t, nw.AddTechnology("bad", 2, 9))
				require.NoError(t, nw.AddTechnology("neutral", 5, 5))
				return nw
			},
			wantRevenue: 7,
			wantChosen:  []string{"good"},
		},
		{
			name: "profitable_chain_taken_whole",
			setupNetwork: func(t *testing.T) *Network {
				// C alone loses 3 but unlocks A, which more than pays for it.
				nw := NewNetwork()
				require.NoError(t, nw.AddTechnology("A", 10, 1))
				require.NoError(t, nw.AddTechnology("B", 0, 2))
				require.NoError(t, nw.AddTechnology("C", 1, 4))
				require.NoError(t, nw.AddDependency("A", "B"))
				require.NoError(t, nw.AddDependency("B", "C"))
				return nw
			},
			wantRevenue: 4,
			wantChosen:  []string{"A", "B", "C"},
		},
		{
			name: "zero_profit_zero_cost_excluded",
			setupNetwork: func(t *testing.T) *Network {
				// An edge-less node is never reached from the source.
				nw := NewNetwork()
				require.NoError(t, nw.AddTechnology("mysticism", 0, 0))
				require.NoError(t, nw.AddTechnology("pottery", 3, 1))
				return nw
			},
			wantRevenue: 2,
			wantChosen:  []string{"pottery"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nw := tt.setupNetwork(t)
			sel := nw.Optimise()

			require.NotNil(t, sel)
			assert.Equal(t, tt.wantRevenue, sel.Revenue, "revenue mismatch")
			assert.Equal(t, tt.wantChosen, sel.Chosen, "chosen set mismatch")
		})
	}
}

func TestOptimise_ReferenceFixture(t *testing.T) {
	nw := referenceNetwork(t)

	sel := nw.Optimise()
	require.NotNil(t, sel)

	assert.Equal(t, int64(22), sel.Revenue)
	assert.Equal(t,
		[]string{"bronze", "horseback-riding", "mathematics", "construction"},
		sel.Chosen, "chosen set must preserve creation order")

	assert.Equal(t, int64(24), nw.MaxFlow())
	assert.Equal(t, 9, nw.TechnologyCount())
	assert.Equal(t, 7, nw.DependencyCount())
}

func TestOptimise_FlowConservation(t *testing.T) {
	nw := referenceNetwork(t)
	nw.Optimise()

	// At maximum flow everything leaving the source arrives at the sink.
	assert.Equal(t, nw.MaxFlow(), nw.sinkInflow())

	// No bounded edge may carry more than its capacity, and no edge may
	// carry negative flow.
	for i := range nw.edges {
		e := &nw.edges[i]
		assert.GreaterOrEqual(t, e.flow, int64(0), "negative flow on edge %d", i)
		if n, ok := e.cap.Value(); ok {
			assert.LessOrEqual(t, e.flow, n, "overfull edge %d", i)
		}
	}
}

func TestOptimise_MinCutDuality(t *testing.T) {
	nw := referenceNetwork(t)
	sel := nw.Optimise()

	// revenue = profit potential - max flow, by max-flow/min-cut duality.
	assert.Equal(t, nw.profitPotential()-nw.MaxFlow(), sel.Revenue)
}

func TestOptimise_Idempotent(t *testing.T) {
	nw := referenceNetwork(t)

	first := nw.Optimise()
	second := nw.Optimise()

	assert.Same(t, first, second, "repeated Optimise must return the memoized result")
	assert.Equal(t, int64(22), second.Revenue)
}

func TestOptimise_DependencyClosure(t *testing.T) {
	nw := referenceNetwork(t)
	sel := nw.Optimise()

	chosen := make(map[string]bool, len(sel.Chosen))
	for _, name := range sel.Chosen {
		chosen[name] = true
	}

	// Every dependency edge with a chosen origin must have a chosen
	// destination.
	for i := range nw.edges {
		e := &nw.edges[i]
		if !e.cap.IsUnbounded() {
			continue
		}
		from := nw.nodes[e.origin].name
		to := nw.nodes[e.dest].name
		if chosen[from] {
			assert.True(t, chosen[to], "%s chosen but its prerequisite %s is not", from, to)
		}
	}
}

func TestAddTechnology_Errors(t *testing.T) {
	tests := []struct {
		name     string
		techName string
		wantCode apperror.ErrorCode
	}{
		{"empty_name", "", apperror.CodeEmptyTechnologyName},
		{"reserved_source", SourceName, apperror.CodeReservedTechnologyName},
		{"reserved_sink", SinkName, apperror.CodeReservedTechnologyName},
		{"duplicate", "pottery", apperror.CodeDuplicateTechnology},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nw := NewNetwork()
			require.NoError(t, nw.AddTechnology("pottery", 6, 2))

			err := nw.AddTechnology(tt.techName, 1, 1)
			require.Error(t, err)
			assert.True(t, apperror.Is(err, tt.wantCode),
				"error = %v, want code %s", err, tt.wantCode)
		})
	}
}

func TestAddDependency_UnknownTechnology(t *testing.T) {
	nw := NewNetwork()
	require.NoError(t, nw.AddTechnology("pottery", 6, 2))

	err := nw.AddDependency("pottery", "writing")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeUnknownTechnology))

	err = nw.AddDependency("writing", "pottery")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeUnknownTechnology))
}

func TestNetwork_SealedAfterOptimise(t *testing.T) {
	nw := NewNetwork()
	require.NoError(t, nw.AddTechnology("pottery", 6, 2))
	nw.Optimise()

	err := nw.AddTechnology("writing", 4, 3)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeNetworkSealed))

	err = nw.AddDependency("pottery", "pottery")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeNetworkSealed))
}

func TestNetwork_Counts(t *testing.T) {
	nw := NewNetwork()
	assert.Equal(t, 0, nw.TechnologyCount())
	assert.Equal(t, 0, nw.EdgeCount())

	require.NoError(t, nw.AddTechnology("pottery", 6, 2))  // source edge + sink edge
	require.NoError(t, nw.AddTechnology("mysticism", 0, 0)) // no edges
	require.NoError(t, nw.AddTechnology("writing", 4, 0))  // source edge only
	require.NoError(t, nw.AddDependency("writing", "pottery"))

	assert.Equal(t, 3, nw.TechnologyCount())
	assert.Equal(t, 1, nw.DependencyCount())
	assert.Equal(t, 4, nw.EdgeCount())
}

func TestFindPath_ShortCircuitsAtSink(t *testing.T) {
	nw := NewNetwork()
	require.NoError(t, nw.AddTechnology("pottery", 6, 2))

	b := nw.findPath()
	assert.Equal(t, int64(2), b, "bottleneck is the sink edge capacity")

	nw.augment(b)
	assert.Equal(t, int64(2), nw.MaxFlow())

	// The second search saturates nothing further.
	assert.Equal(t, int64(0), nw.findPath())
}

func TestAugment_PushBack(t *testing.T) {
	// The first search routes everything through a->b and saturates b's
	// sink edge. The only way to route c's profit afterwards is to push 3
	// units back off a->b and send them to d instead.
	nw := NewNetwork()
	require.NoError(t, nw.AddTechnology("a", 4, 0))
	require.NoError(t, nw.AddTechnology("b", 0, 4))
	require.NoError(t, nw.AddTechnology("c", 3, 0))
	require.NoError(t, nw.AddTechnology("d", 0, 3))
	require.NoError(t, nw.AddDependency("a", "b"))
	require.NoError(t, nw.AddDependency("a", "d"))
	require.NoError(t, nw.AddDependency("c", "b"))

	sel := nw.Optimise()
	assert.Equal(t, int64(7), nw.MaxFlow())
	assert.Equal(t, int64(0), sel.Revenue)
	assert.Equal(t, nw.MaxFlow(), nw.sinkInflow())
}
