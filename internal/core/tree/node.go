package tree

import (
	"fmt"

	"github.com/agenthands/callrank/internal/core/model"
)

// Deviation is a negative response time deviation recorded against a call.
type Deviation struct {
	Call  model.Call
	Value float64
}

// Source lists the nodes suspected to cause the regression seen on a call.
type Source struct {
	Call  model.Call
	Nodes []*Node
}

// State is the mutable strategy state of one node. Complexity strategies only
// use Value; the response time strategies use the rest.
type State struct {
	Value      float64
	Flagged    int
	Deviations []Deviation
	Sources    []Source
}

func (s *State) HasDeviations() bool {
	return len(s.Deviations) > 0
}

// SetDeviation records or replaces the deviation attributed to call.
func (s *State) SetDeviation(call model.Call, value float64) {
	for i := range s.Deviations {
		if s.Deviations[i].Call == call {
			s.Deviations[i].Value = value
			return
		}
	}
	s.Deviations = append(s.Deviations, Deviation{Call: call, Value: value})
}

func (s *State) Deviation(call model.Call) (float64, bool) {
	for _, d := range s.Deviations {
		if d.Call == call {
			return d.Value, true
		}
	}
	return 0, false
}

func (s *State) TotalDeviation() float64 {
	total := 0.0
	for _, d := range s.Deviations {
		total += d.Value
	}
	return total
}

// AddSource registers node as a potential regression source for call.
func (s *State) AddSource(call model.Call, node *Node) {
	for i := range s.Sources {
		if s.Sources[i].Call == call {
			s.Sources[i].Nodes = append(s.Sources[i].Nodes, node)
			return
		}
	}
	s.Sources = append(s.Sources, Source{Call: call, Nodes: []*Node{node}})
}

func (s *State) SourcesOf(call model.Call) []*Node {
	for _, src := range s.Sources {
		if src.Call == call {
			return src.Nodes
		}
	}
	return nil
}

// Node is one endpoint of a call tree. Children[i] holds the nodes reached
// through Calls[i]: one node, or two for a callee version migration (new and
// prior destination).
type Node struct {
	Endpoint model.Endpoint
	Calls    []model.Call
	Children [][]*Node
	State    State
}

// ChildrenOf returns the nodes reached through call, nil if the call does not
// leave this node.
func (n *Node) ChildrenOf(call model.Call) []*Node {
	for i, c := range n.Calls {
		if c == call {
			return n.Children[i]
		}
	}
	return nil
}

func (n *Node) IsLeaf() bool {
	return len(n.Calls) == 0
}

func (n *Node) String() string {
	return fmt.Sprintf("{endpoint: %s, value: %v, flagged: %d}", n.Endpoint, n.State.Value, n.State.Flagged)
}
