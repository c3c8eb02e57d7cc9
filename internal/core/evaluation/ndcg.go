package evaluation

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"

	"github.com/agenthands/callrank/internal/core/model"
	"github.com/agenthands/callrank/internal/core/ranking"
	"github.com/agenthands/callrank/internal/core/strategy"
	"github.com/agenthands/callrank/internal/core/weights"
)

// Entry is one ranked call, identified by its endpoint strings.
type Entry struct {
	Source string
	Target string
	Score  float64
}

// Entries converts ranking scores, keeping their order.
func Entries(scores []*model.RankingScore) []Entry {
	entries := make([]Entry, len(scores))
	for i, s := range scores {
		entries[i] = Entry{
			Source: s.Call.Source().String(),
			Target: s.Call.Target().String(),
			Score:  s.Score,
		}
	}
	return entries
}

// DCG is the discounted cumulative gain of the first n entries, or all of them
// for n = 0. Tied entries all get the mean relevance of their tie group.
func DCG(ranking []Entry, rel Relevance, n int) (float64, error) {
	sums := make(map[float64]float64)
	counts := make(map[float64]int)
	for _, e := range ranking {
		grade, ok := rel.Grade(e.Source, e.Target)
		if !ok {
			return 0, fmt.Errorf("%w: %s ==> %s", ErrMissingRelevance, e.Source, e.Target)
		}
		sums[e.Score] += grade
		counts[e.Score]++
	}

	m := len(ranking)
	if n > 0 && n < m {
		m = n
	}

	dcg := 0.0
	for i := 0; i < m; i++ {
		score := ranking[i].Score
		gain := sums[score] / float64(counts[score])
		dcg += gain / math.Log2(float64(i+2))
	}
	return dcg, nil
}

// NDCG normalizes the DCG of ranking by the DCG of the ideal ranking. It is 0
// when no call is relevant.
func NDCG(ranking []Entry, rel Relevance, n int) (float64, error) {
	dcg, err := DCG(ranking, rel, n)
	if err != nil {
		return 0, err
	}
	ideal, err := DCG(IdealRanking(rel), rel, n)
	if err != nil {
		return 0, err
	}
	if ideal == 0 {
		return 0, nil
	}
	return dcg / ideal, nil
}

type Result struct {
	Strategy strategy.Kind `json:"strategy"`
	N        int           `json:"n"`
	NDCG     float64       `json:"ndcg"`
}

// Compare ranks graph with every strategy and scores each ranking at every
// cutoff. An empty cutoff list evaluates whole rankings.
func Compare(graph *model.Graph, target string, rel Relevance, cutoffs []int, table weights.Table, logger *slog.Logger) ([]Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cutoffs) == 0 {
		cutoffs = []int{0}
	}

	var results []Result
	for _, kind := range strategy.All() {
		scores, err := ranking.NewRanker(kind, table, logger).Rank(graph, target)
		if err != nil {
			return nil, fmt.Errorf("failed to rank with %s: %w", kind, err)
		}
		entries := Entries(scores)

		for _, n := range cutoffs {
			ndcg, err := NDCG(entries, rel, n)
			if err != nil {
				return nil, fmt.Errorf("failed to evaluate %s: %w", kind, err)
			}
			results = append(results, Result{Strategy: kind, N: n, NDCG: ndcg})
		}
	}

	logger.Info("evaluated strategies",
		"target", target,
		"strategies", len(strategy.All()),
		"graded", rel.Len())
	return results, nil
}

// WriteResults writes results as CSV with the header strategy,n,ndcg.
func WriteResults(out io.Writer, results []Result) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"strategy", "n", "ndcg"}); err != nil {
		return err
	}
	for _, r := range results {
		record := []string{
			r.Strategy.String(),
			strconv.Itoa(r.N),
			strconv.FormatFloat(r.NDCG, 'f', 6, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
