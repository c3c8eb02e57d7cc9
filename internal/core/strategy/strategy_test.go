package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/callrank/internal/core/model"
	"github.com/agenthands/callrank/internal/core/tree"
	"github.com/agenthands/callrank/internal/core/weights"
)

func ep(service string) model.Endpoint {
	return model.Endpoint{Service: service, Version: "v1", Endpoint: "/" + service}
}

func critical(deviation float64) model.SimulatedComparison {
	return model.SimulatedComparison{Critical: true, MaxDeviation: deviation}
}

// run annotates then extracts every call of the forest built for target and
// returns the forest with the extracted score of every call.
func run(t *testing.T, kind Kind, calls []model.Call, target string) (*tree.Forest, map[model.Call]float64) {
	t.Helper()

	g := model.NewGraph()
	seen := make(map[model.Endpoint]bool)
	for _, c := range calls {
		g.Edges.Add(c)
		for _, e := range []model.Endpoint{c.Source(), c.Target()} {
			if !seen[e] {
				seen[e] = true
				g.Endpoints = append(g.Endpoints, e)
			}
		}
	}

	forest, err := tree.Build(g, target, nil)
	require.NoError(t, err)

	strat, err := New(kind, weights.Default())
	require.NoError(t, err)

	forest.Walk(func(n *tree.Node) {
		for i, c := range n.Calls {
			strat.Annotate(c, n, n.Children[i])
		}
	})
	scores := make(map[model.Call]float64)
	forest.Walk(func(n *tree.Node) {
		for i, c := range n.Calls {
			scores[c] = strat.Extract(c, n, n.Children[i])
		}
	})
	return forest, scores
}

func node(t *testing.T, forest *tree.Forest, e model.Endpoint) *tree.Node {
	t.Helper()
	n, ok := forest.Node(e)
	require.True(t, ok, "missing node %s", e)
	return n
}

func TestSubtree_CountsEdges(t *testing.T) {
	a, b, c, d := ep("a"), ep("b"), ep("c"), ep("d")
	ab := model.NewCommonCall(a, b, nil)
	bc := model.NewCommonCall(b, c, nil)
	bd := model.NewCommonCall(b, d, nil)

	_, scores := run(t, Subtree, []model.Call{ab, bc, bd}, "a")

	assert.Equal(t, 3.0, scores[ab])
	assert.Equal(t, 1.0, scores[bc])
	assert.Equal(t, 1.0, scores[bd])
}

func TestSubtreeWithUncertainty_CommonCallsWeighNothing(t *testing.T) {
	a, b, c := ep("a"), ep("b"), ep("c")
	ab := model.NewCommonCall(a, b, nil)
	ac := model.NewCommonCall(a, c, nil)

	_, scores := run(t, SubtreeWithUncertainty, []model.Call{ab, ac}, "a")

	assert.Equal(t, 0.0, scores[ab])
	assert.Equal(t, 0.0, scores[ac])
}

func TestSubtreeWithUncertainty_CommonChainWeighsNothing(t *testing.T) {
	a, b, c, d := ep("a"), ep("b"), ep("c"), ep("d")
	ab := model.NewCommonCall(a, b, nil)
	bc := model.NewCommonCall(b, c, nil)
	cd := model.NewCommonCall(c, d, nil)

	forest, scores := run(t, SubtreeWithUncertainty, []model.Call{ab, bc, cd}, "a")

	assert.Equal(t, 0.0, scores[ab])
	assert.Equal(t, 0.0, scores[bc])
	assert.Equal(t, 0.0, scores[cd])
	assert.Zero(t, node(t, forest, a).State.Value)
	assert.Zero(t, node(t, forest, b).State.Value)

	// Subtree on the same chain still counts edges
	_, counted := run(t, Subtree, []model.Call{ab, bc, cd}, "a")
	assert.Equal(t, 3.0, counted[ab])
}

func TestSubtreeFamily_OwnContribution(t *testing.T) {
	a, b, c := ep("a"), ep("b"), ep("c")
	ab := model.NewCommonCall(a, b, critical(10))
	bc := model.NewDiffCall(b, c, model.AddCallToNewService, nil)
	calls := []model.Call{ab, bc}

	tests := []struct {
		kind Kind
		ab   float64
		bc   float64
	}{
		// B holds one edge for the counting variants, weight 3 for the propagating ones
		{Subtree, 2, 1},
		{SubtreeWithUncertainty, 0, 3},
		{SubtreeWithUncertaintyPropagation, 3, 3},
		{SubtreeWithPenalty, 6, 0},
		{SubtreeWithUncertaintyPropagationAndPenalty, 8, 3},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			_, scores := run(t, tt.kind, calls, "a")
			assert.Equal(t, tt.ab, scores[ab])
			assert.Equal(t, tt.bc, scores[bc])
		})
	}
}

func TestResponseTime_FlagsAddedCall(t *testing.T) {
	a, b, c := ep("a"), ep("b"), ep("c")
	ab := model.NewCommonCall(a, b, critical(50))
	bc := model.NewDiffCall(b, c, model.AddCallToNewService, model.SimulatedSimpleStatistics{Count: 3})

	forest, scores := run(t, ResponseTimeAnalysis, []model.Call{ab, bc}, "a")

	nodeA, nodeB, nodeC := node(t, forest, a), node(t, forest, b), node(t, forest, c)
	assert.Equal(t, 1, nodeB.State.Flagged)
	assert.Equal(t, 1, nodeC.State.Flagged)

	dev, ok := nodeA.State.Deviation(ab)
	require.True(t, ok)
	assert.Equal(t, 50.0, dev)
	assert.Equal(t, []*tree.Node{nodeB}, nodeA.State.SourcesOf(ab))
	assert.Equal(t, []*tree.Node{nodeC}, nodeB.State.SourcesOf(bc))

	assert.Equal(t, 1.0, scores[ab])
	assert.Equal(t, 1.0, scores[bc])
}

func TestResponseTime_IgnoresNonCriticalCalls(t *testing.T) {
	a, b, c := ep("a"), ep("b"), ep("c")
	ab := model.NewCommonCall(a, b, model.SimulatedComparison{MaxDeviation: 50})
	bc := model.NewDiffCall(b, c, model.AddCallToNewService, nil)

	forest, scores := run(t, ResponseTimeAnalysis, []model.Call{ab, bc}, "a")

	assert.Zero(t, node(t, forest, b).State.Flagged)
	assert.Zero(t, node(t, forest, c).State.Flagged)
	assert.Equal(t, 0.0, scores[ab])
	assert.Equal(t, 0.0, scores[bc])
}

func TestResponseTime_RemovedCallIsNoCandidate(t *testing.T) {
	a, b, c := ep("a"), ep("b"), ep("c")
	ab := model.NewCommonCall(a, b, critical(50))
	bc := model.NewDiffCall(b, c, model.RemoveCall, nil)

	forest, _ := run(t, ResponseTimeAnalysis, []model.Call{ab, bc}, "a")

	assert.Equal(t, 1, node(t, forest, b).State.Flagged)
	assert.Zero(t, node(t, forest, c).State.Flagged)
}

func TestResponseTime_Cascade(t *testing.T) {
	a, b, c, d := ep("a"), ep("b"), ep("c"), ep("d")
	ab := model.NewCommonCall(a, b, critical(50))
	bc := model.NewCommonCall(b, c, critical(50))
	cd := model.NewDiffCall(c, d, model.AddCallToExistingEndpoint, nil)

	forest, scores := run(t, ResponseTimeAnalysis, []model.Call{ab, bc, cd}, "a")

	// the deviation seen on A -> B matches B -> C, so it only strengthens
	// the suspicion below B
	assert.Zero(t, node(t, forest, b).State.Flagged)
	assert.Equal(t, 2, node(t, forest, c).State.Flagged)
	assert.Equal(t, 2, node(t, forest, d).State.Flagged)

	dev, _ := node(t, forest, a).State.Deviation(ab)
	assert.Equal(t, 50.0, dev)

	assert.Equal(t, 0.0, scores[ab])
	assert.Equal(t, 2.0, scores[bc])
	assert.Equal(t, 2.0, scores[cd])
}

func TestResponseTime_GrowingDeviation(t *testing.T) {
	a, b, c, d := ep("a"), ep("b"), ep("c"), ep("d")
	ab := model.NewCommonCall(a, b, critical(120))
	bc := model.NewCommonCall(b, c, critical(50))
	cd := model.NewDiffCall(c, d, model.AddCallToExistingEndpoint, nil)

	forest, scores := run(t, ResponseTimeAnalysis, []model.Call{ab, bc, cd}, "a")

	assert.Equal(t, 1, node(t, forest, b).State.Flagged)
	assert.Equal(t, 2, node(t, forest, c).State.Flagged)
	assert.Equal(t, 2, node(t, forest, d).State.Flagged)

	dev, _ := node(t, forest, a).State.Deviation(ab)
	assert.Equal(t, 120.0, dev)
	assert.Equal(t, 1.0, scores[ab])
}

func TestResponseTimeAndHybrid_Arithmetic(t *testing.T) {
	a, b, c := ep("a"), ep("b"), ep("c")
	ab := model.NewCommonCall(a, b, critical(50))
	bc := model.NewDiffCall(b, c, model.AddCallToNewService, nil)
	calls := []model.Call{ab, bc}

	// B and C are flagged once; weight(ab)=0, penalty(ab)=5, weight(bc)=3
	tests := []struct {
		kind Kind
		ab   float64
		bc   float64
	}{
		{ResponseTimeAnalysis, 1, 1},
		{ResponseTimeAnalysisWithPenalty, 5, 5},
		{ResponseTimeAnalysisWithUncertaintyAndPenalty, 10, 8},
		{HybridWithUncertainty, 2, 4},
		{HybridWithUncertaintyPropagation, 4, 4},
		{HybridWithUncertaintyAndPenalty, 6, 8},
		{HybridWithUncertaintyPropagationAndPenalty, 8, 8},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			_, scores := run(t, tt.kind, calls, "a")
			assert.Equal(t, tt.ab, scores[ab])
			assert.Equal(t, tt.bc, scores[bc])
		})
	}
}

func TestExtract_LeafCallIsZero(t *testing.T) {
	a := ep("a")
	leaf := &tree.Node{Endpoint: a}
	call := model.NewCommonCall(a, ep("b"), critical(10))

	for _, kind := range []Kind{ResponseTimeAnalysis, ResponseTimeAnalysisWithPenalty} {
		strat, err := New(kind, weights.Default())
		require.NoError(t, err)
		assert.Equal(t, 0.0, strat.Extract(call, leaf, nil))
	}
}

func TestKind_Names(t *testing.T) {
	all := All()
	require.Len(t, all, 12)
	assert.Equal(t, Subtree, all[0])
	assert.Equal(t, HybridWithUncertaintyPropagationAndPenalty, all[11])
	assert.Equal(t, HybridWithUncertaintyPropagationAndPenalty, Default)

	for _, k := range all {
		parsed, err := Parse(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)

		_, err = New(k, weights.Default())
		assert.NoError(t, err)
	}

	parsed, err := Parse(" responsetimeanalysis ")
	require.NoError(t, err)
	assert.Equal(t, ResponseTimeAnalysis, parsed)

	_, err = Parse("PageRank")
	assert.ErrorIs(t, err, ErrUnknownStrategy)

	_, err = New(Kind(42), weights.Default())
	assert.ErrorIs(t, err, ErrUnknownStrategy)
	assert.Equal(t, "Kind(42)", Kind(42).String())
}

func TestKind_Text(t *testing.T) {
	text, err := SubtreeWithPenalty.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "SubtreeWithPenalty", string(text))

	var k Kind
	require.NoError(t, k.UnmarshalText([]byte("HybridWithUncertainty")))
	assert.Equal(t, HybridWithUncertainty, k)

	_, err = Kind(-1).MarshalText()
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}
