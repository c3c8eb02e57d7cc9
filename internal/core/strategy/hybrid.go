package strategy

import (
	"github.com/agenthands/callrank/internal/core/model"
	"github.com/agenthands/callrank/internal/core/tree"
)

// hybrid combines response time flagging with subtree complexity.
type hybrid struct {
	responseTime
	increment increment
}

func (h *hybrid) Annotate(call model.Call, node *tree.Node, children []*tree.Node) {
	// flag the nodes based on response time
	h.responseTime.Annotate(call, node, children)

	// propagate uncertainty complexity
	aggregate(node, children)
	node.State.Value += h.increment.of(call, h.weights)
}

func (h *hybrid) Extract(call model.Call, node *tree.Node, children []*tree.Node) float64 {
	return h.responseTime.Extract(call, node, children) + childValues(children) + h.weights.Weight(call)
}
