package strategy

import (
	"github.com/agenthands/callrank/internal/core/model"
	"github.com/agenthands/callrank/internal/core/tree"
	"github.com/agenthands/callrank/internal/core/weights"
)

// ownContribution is what a call adds to its own score on top of the subtree.
type ownContribution int

const (
	ownOne ownContribution = iota
	ownWeight
	ownPenalty
	ownWeightAndPenalty
)

// subtree scores a call by the structural complexity below it.
type subtree struct {
	weights   weights.Table
	increment increment
	own       ownContribution
}

func (s *subtree) Annotate(call model.Call, node *tree.Node, children []*tree.Node) {
	aggregate(node, children)
	node.State.Value += s.increment.of(call, s.weights)
}

func (s *subtree) Extract(call model.Call, node *tree.Node, children []*tree.Node) float64 {
	return childValues(children) + s.contribution(call)
}

func (s *subtree) contribution(call model.Call) float64 {
	switch s.own {
	case ownWeight:
		return s.weights.Weight(call)
	case ownPenalty:
		return s.weights.Penalty(call)
	case ownWeightAndPenalty:
		return s.weights.Complexity(call, true)
	default:
		return 1
	}
}
