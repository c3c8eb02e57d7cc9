package strategy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agenthands/callrank/internal/core/model"
	"github.com/agenthands/callrank/internal/core/tree"
	"github.com/agenthands/callrank/internal/core/weights"
)

var ErrUnknownStrategy = errors.New("unknown ranking strategy")

// Strategy scores the calls of a call tree in two bottom-up passes.
//
// Annotate is called once per (call, node) after every child node has been
// annotated. It may update the node state and, for the response time
// strategies, the state of descendants.
//
// Extract is called once per (call, node) after the annotate pass and returns
// the score of the call. It only reads state.
type Strategy interface {
	Annotate(call model.Call, node *tree.Node, children []*tree.Node)
	Extract(call model.Call, node *tree.Node, children []*tree.Node) float64
}

type Kind int

const (
	Subtree Kind = iota
	SubtreeWithUncertainty
	SubtreeWithUncertaintyPropagation
	SubtreeWithPenalty
	SubtreeWithUncertaintyPropagationAndPenalty
	ResponseTimeAnalysis
	ResponseTimeAnalysisWithPenalty
	ResponseTimeAnalysisWithUncertaintyAndPenalty
	HybridWithUncertainty
	HybridWithUncertaintyPropagation
	HybridWithUncertaintyAndPenalty
	HybridWithUncertaintyPropagationAndPenalty
)

// Default is the production strategy.
const Default = HybridWithUncertaintyPropagationAndPenalty

var names = [...]string{
	Subtree:                                       "Subtree",
	SubtreeWithUncertainty:                        "SubtreeWithUncertainty",
	SubtreeWithUncertaintyPropagation:             "SubtreeWithUncertaintyPropagation",
	SubtreeWithPenalty:                            "SubtreeWithPenalty",
	SubtreeWithUncertaintyPropagationAndPenalty:   "SubtreeWithUncertaintyPropagationAndPenalty",
	ResponseTimeAnalysis:                          "ResponseTimeAnalysis",
	ResponseTimeAnalysisWithPenalty:               "ResponseTimeAnalysisWithPenalty",
	ResponseTimeAnalysisWithUncertaintyAndPenalty: "ResponseTimeAnalysisWithUncertaintyAndPenalty",
	HybridWithUncertainty:                         "HybridWithUncertainty",
	HybridWithUncertaintyPropagation:              "HybridWithUncertaintyPropagation",
	HybridWithUncertaintyAndPenalty:               "HybridWithUncertaintyAndPenalty",
	HybridWithUncertaintyPropagationAndPenalty:    "HybridWithUncertaintyPropagationAndPenalty",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(names) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return names[k]
}

func (k Kind) Valid() bool {
	return k >= 0 && int(k) < len(names)
}

// All lists every strategy in declaration order.
func All() []Kind {
	kinds := make([]Kind, len(names))
	for i := range names {
		kinds[i] = Kind(i)
	}
	return kinds
}

// Parse resolves a strategy by name, ignoring case.
func Parse(name string) (Kind, error) {
	for i, n := range names {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStrategy, int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// New returns the strategy of the given kind using table for weights and
// penalties.
func New(kind Kind, table weights.Table) (Strategy, error) {
	switch kind {
	case Subtree:
		return &subtree{weights: table, increment: incrementOne, own: ownOne}, nil
	case SubtreeWithUncertainty:
		return &subtree{weights: table, increment: incrementNone, own: ownWeight}, nil
	case SubtreeWithUncertaintyPropagation:
		return &subtree{weights: table, increment: incrementWeight, own: ownWeight}, nil
	case SubtreeWithPenalty:
		return &subtree{weights: table, increment: incrementOne, own: ownPenalty}, nil
	case SubtreeWithUncertaintyPropagationAndPenalty:
		return &subtree{weights: table, increment: incrementWeight, own: ownWeightAndPenalty}, nil
	case ResponseTimeAnalysis:
		return &responseTime{weights: table}, nil
	case ResponseTimeAnalysisWithPenalty:
		return &responseTime{weights: table, scaled: true}, nil
	case ResponseTimeAnalysisWithUncertaintyAndPenalty:
		return &responseTime{weights: table, scaled: true, complexity: true}, nil
	case HybridWithUncertainty:
		return &hybrid{responseTime: responseTime{weights: table}, increment: incrementOne}, nil
	case HybridWithUncertaintyPropagation:
		return &hybrid{responseTime: responseTime{weights: table}, increment: incrementWeight}, nil
	case HybridWithUncertaintyAndPenalty:
		return &hybrid{responseTime: responseTime{weights: table, scaled: true}, increment: incrementOne}, nil
	case HybridWithUncertaintyPropagationAndPenalty:
		return &hybrid{responseTime: responseTime{weights: table, scaled: true}, increment: incrementWeight}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownStrategy, int(kind))
	}
}

// increment is what a call adds to its node's running value during annotate.
type increment int

const (
	incrementOne increment = iota
	incrementWeight
	// values stay 0, a call scores its own weight only
	incrementNone
)

func (i increment) of(call model.Call, table weights.Table) float64 {
	switch i {
	case incrementWeight:
		return table.Weight(call)
	case incrementNone:
		return 0
	default:
		return 1
	}
}

// aggregate adds the children's subtree values to the node.
func aggregate(node *tree.Node, children []*tree.Node) {
	node.State.Value += childValues(children)
}

func childValues(children []*tree.Node) float64 {
	sum := 0.0
	for _, child := range children {
		sum += child.State.Value
	}
	return sum
}
