package evaluation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

var ErrMissingRelevance = errors.New("no relevance grade for call")

// Relevance holds the expert grade of every call, keyed by source then
// target endpoint string.
type Relevance map[string]map[string]float64

func (r Relevance) Set(source, target string, grade float64) {
	targets, ok := r[source]
	if !ok {
		targets = make(map[string]float64)
		r[source] = targets
	}
	targets[target] = grade
}

func (r Relevance) Grade(source, target string) (float64, bool) {
	grade, ok := r[source][target]
	return grade, ok
}

// Len is the number of graded calls.
func (r Relevance) Len() int {
	n := 0
	for _, targets := range r {
		n += len(targets)
	}
	return n
}

// ReadRelevance parses a CSV file with the header source,target,relevance.
func ReadRelevance(in io.Reader) (Relevance, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = 3
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read relevance csv: %w", err)
	}
	if len(records) == 0 {
		return Relevance{}, nil
	}

	rel := make(Relevance)
	for i, row := range records[1:] {
		grade, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid relevance on line %d: %w", i+2, err)
		}
		rel.Set(row[0], row[1], grade)
	}
	return rel, nil
}

// IdealRanking orders every graded call by grade, highest first.
func IdealRanking(rel Relevance) []Entry {
	var entries []Entry
	for source, targets := range rel {
		for target, grade := range targets {
			entries = append(entries, Entry{Source: source, Target: target, Score: grade})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if entries[i].Source != entries[j].Source {
			return entries[i].Source < entries[j].Source
		}
		return entries[i].Target < entries[j].Target
	})
	return entries
}
