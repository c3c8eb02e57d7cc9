package strategy

import (
	"github.com/agenthands/callrank/internal/core/model"
	"github.com/agenthands/callrank/internal/core/tree"
	"github.com/agenthands/callrank/internal/core/weights"
)

// responseTime attributes response time regressions to the nodes most likely
// to have introduced them. A node's Flagged counter is the number of times it
// was suspected.
//
// Known limitation: a change that removes all previous deviations followed by
// an unrelated change introducing a new one is not told apart from a single
// smaller deviation.
type responseTime struct {
	weights weights.Table

	// multiply the flag count by the response penalty
	scaled bool
	// add weight and penalty of the call
	complexity bool
}

func (r *responseTime) Annotate(call model.Call, node *tree.Node, children []*tree.Node) {
	cc, ok := call.(model.ComparableCall)
	if !ok || !cc.HasCriticalResponseTime() {
		return
	}
	for _, child := range children {
		handleChild(cc, node, child)
	}
}

func (r *responseTime) Extract(call model.Call, node *tree.Node, children []*tree.Node) float64 {
	score := float64(maxFlagged(children))
	if r.scaled {
		score *= r.weights.ResponsePenalty
	}
	if r.complexity {
		score += r.weights.Complexity(call, true)
	}
	return score
}

func handleChild(call model.ComparableCall, node, child *tree.Node) {
	// (1) first deviation seen on this path: the child is the prime suspect
	if !child.State.HasDeviations() {
		node.State.SetDeviation(call, call.MaxNegativeDeviation())
		node.State.AddSource(call, child)
		child.State.Flagged++
		flagPotentialSources(child)
		return
	}

	total := child.State.TotalDeviation()
	deviation := 0.0

	// (2) the deviation matches what was already measured below: it cascades
	// (3) a smaller deviation (e.g. a new cache) cascades as well
	if call.IsDeviationWithinBoundary(total) {
		node.State.SetDeviation(call, total)
	} else {
		deviation = call.MaxNegativeDeviation()
		node.State.SetDeviation(call, deviation)
	}
	node.State.AddSource(call, child)
	propagateDown(child)

	// (4) the deviation grew, so another change contributes to it
	if deviation > total {
		child.State.Flagged++
		flagPotentialSources(child)
	}
}

// flagPotentialSources flags the destinations of calls added to node, as newly
// added calls are likely causes of a regression.
func flagPotentialSources(node *tree.Node) {
	for i, call := range node.Calls {
		diff, ok := call.(*model.DiffCall)
		if !ok || !diff.IsAddition() {
			continue
		}
		for _, target := range node.Children[i] {
			target.State.Flagged++
			node.State.AddSource(call, target)
		}
	}
}

// propagateDown flags every node already suspected below node once more.
func propagateDown(node *tree.Node) {
	for _, src := range node.State.Sources {
		for _, sub := range src.Nodes {
			sub.State.Flagged++
			propagateDown(sub)
		}
	}
}

// maxFlagged is the largest flag count among children, 0 for a leaf call.
func maxFlagged(children []*tree.Node) int {
	highest := 0
	for _, child := range children {
		if child.State.Flagged > highest {
			highest = child.State.Flagged
		}
	}
	return highest
}
