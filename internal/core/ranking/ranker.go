package ranking

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/agenthands/callrank/internal/core/model"
	"github.com/agenthands/callrank/internal/core/strategy"
	"github.com/agenthands/callrank/internal/core/tree"
	"github.com/agenthands/callrank/internal/core/weights"
)

// Ranker ranks the calls of a diffed call graph from the point of view of one
// target service. A Ranker holds no per-run state and can be reused.
type Ranker struct {
	Strategy strategy.Kind
	Weights  weights.Table
	Logger   *slog.Logger
}

func NewRanker(kind strategy.Kind, table weights.Table, logger *slog.Logger) *Ranker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ranker{
		Strategy: kind,
		Weights:  table,
		Logger:   logger,
	}
}

// Rank returns one score per call of the graph, highest first. Calls not
// reachable from targetService score -1 and are left at severity NONE.
func (r *Ranker) Rank(graph *model.Graph, targetService string) ([]*model.RankingScore, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	strat, err := strategy.New(r.Strategy, r.Weights)
	if err != nil {
		return nil, err
	}

	// 1. Build the call trees of the target service
	forest, err := tree.Build(graph, targetService, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build call trees for %s: %w", targetService, err)
	}

	// 2. Annotate bottom-up
	forest.Walk(func(node *tree.Node) {
		for i, call := range node.Calls {
			strat.Annotate(call, node, node.Children[i])
		}
	})

	// 3. Extract bottom-up
	var scores []*model.RankingScore
	forest.Walk(func(node *tree.Node) {
		for i, call := range node.Calls {
			scores = append(scores, model.NewRankingScore(call, strat.Extract(call, node, node.Children[i])))
		}
	})

	scores = Dedupe(scores)
	reached := len(scores)

	// 4. Calls never reached from the target service
	scores = AppendUnreached(scores, graph.Edges.Calls())

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	AssignSeverity(scores)

	logger.Debug("ranked call graph",
		"target", targetService,
		"strategy", r.Strategy.String(),
		"roots", len(forest.Roots),
		"nodes", forest.Len(),
		"complexity", Complexity(forest),
		"reached", reached,
		"unreached", len(scores)-reached,
		"cycles", len(forest.Cycles))

	return scores, nil
}

// Dedupe keeps the first score of every call.
func Dedupe(scores []*model.RankingScore) []*model.RankingScore {
	seen := make(map[model.Call]bool, len(scores))
	result := make([]*model.RankingScore, 0, len(scores))
	for _, s := range scores {
		if seen[s.Call] {
			continue
		}
		seen[s.Call] = true
		result = append(result, s)
	}
	return result
}

// AppendUnreached adds a sentinel score for every call without a score.
func AppendUnreached(scores []*model.RankingScore, calls []model.Call) []*model.RankingScore {
	scored := make(map[model.Call]bool, len(scores))
	for _, s := range scores {
		scored[s.Call] = true
	}
	for _, call := range calls {
		if !scored[call] {
			scored[call] = true
			scores = append(scores, model.NewRankingScore(call, model.UnreachedScore))
		}
	}
	return scores
}

// Complexity is the summed annotated value of the roots.
func Complexity(forest *tree.Forest) float64 {
	total := 0.0
	for _, root := range forest.Roots {
		total += root.State.Value
	}
	return total
}
