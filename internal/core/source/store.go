package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/agenthands/callrank/internal/core/model"
	"github.com/agenthands/callrank/internal/driver"
)

var ErrScenarioNotFound = errors.New("scenario not found")

// Store keeps scenario graphs in Memgraph as :Endpoint nodes linked by :CALLS
// relationships. Saving a scenario replaces any previous version of it.
type Store struct {
	Driver driver.GraphDriver
	Logger *slog.Logger
	Now    func() time.Time
}

func NewStore(d driver.GraphDriver, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{Driver: d, Logger: logger, Now: time.Now}
}

func (s *Store) Save(ctx context.Context, scenario string, doc *Document) error {
	if scenario == "" {
		return fmt.Errorf("%w: empty scenario name", ErrInvalidDocument)
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := doc.CheckEndpoints(); err != nil {
		return err
	}

	if _, err := s.Driver.ExecuteQuery(ctx, driver.DeleteScenarioQuery, map[string]interface{}{"scenario": scenario}); err != nil {
		return fmt.Errorf("failed to clear scenario %s: %w", scenario, err)
	}

	savedAt := s.Now().UTC().Format(time.RFC3339)
	for i, ep := range doc.Endpoints {
		params := map[string]interface{}{
			"scenario": scenario,
			"service":  ep.Service,
			"version":  ep.Version,
			"endpoint": ep.Endpoint,
			"idx":      i,
			"saved_at": savedAt,
		}
		if _, err := s.Driver.ExecuteQuery(ctx, driver.SaveEndpointQuery, params); err != nil {
			return fmt.Errorf("failed to save endpoint %s: %w", ep, err)
		}
	}

	calls := doc.Calls()
	for seq, c := range calls {
		if _, err := s.Driver.ExecuteQuery(ctx, driver.SaveCallQuery, callParams(scenario, seq, c)); err != nil {
			return fmt.Errorf("failed to save call %s -> %s: %w", c.Source, c.Target, err)
		}
	}

	s.Logger.Info("saved scenario",
		"scenario", scenario,
		"endpoints", len(doc.Endpoints),
		"calls", len(calls))
	return nil
}

func callParams(scenario string, seq int, c CallDoc) map[string]interface{} {
	params := map[string]interface{}{
		"scenario":           scenario,
		"seq":                seq,
		"source_service":     c.Source.Service,
		"source_version":     c.Source.Version,
		"source_endpoint":    c.Source.Endpoint,
		"target_service":     c.Target.Service,
		"target_version":     c.Target.Version,
		"target_endpoint":    c.Target.Endpoint,
		"kind":               string(c.Kind),
		"diff_type":          string(c.Type),
		"old_source_version": c.OldSourceVersion,
		"old_target_version": c.OldTargetVersion,
		"has_stats":          c.Stats != nil,
		"critical":           false,
		"max_deviation":      0.0,
		"call_count":         0,
	}
	if c.Stats != nil {
		params["critical"] = c.Stats.Critical
		params["max_deviation"] = c.Stats.MaxDeviation
		params["call_count"] = c.Stats.CallCount
	}
	return params
}

// Load reads a scenario back with endpoints and calls in their saved order.
func (s *Store) Load(ctx context.Context, scenario string) (*Document, error) {
	params := map[string]interface{}{"scenario": scenario}

	res, err := s.Driver.ExecuteQuery(ctx, driver.GetScenarioEndpointsQuery, params)
	if err != nil {
		return nil, fmt.Errorf("failed to load endpoints of %s: %w", scenario, err)
	}
	if len(res.Records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrScenarioNotFound, scenario)
	}

	doc := &Document{}
	for _, rec := range res.Records {
		doc.Endpoints = append(doc.Endpoints, endpointOf(rec, ""))
	}

	res, err = s.Driver.ExecuteQuery(ctx, driver.GetScenarioCallsQuery, params)
	if err != nil {
		return nil, fmt.Errorf("failed to load calls of %s: %w", scenario, err)
	}

	edges := make(map[[2]string]int)
	for _, rec := range res.Records {
		c := CallDoc{
			Kind:             model.CallKind(stringOf(rec, "kind")),
			Type:             model.DiffType(stringOf(rec, "diff_type")),
			Source:           endpointOf(rec, "source_"),
			Target:           endpointOf(rec, "target_"),
			OldSourceVersion: stringOf(rec, "old_source_version"),
			OldTargetVersion: stringOf(rec, "old_target_version"),
		}
		if boolOf(rec, "has_stats") {
			c.Stats = &StatsDoc{
				Critical:     boolOf(rec, "critical"),
				MaxDeviation: floatOf(rec, "max_deviation"),
				CallCount:    int(intOf(rec, "call_count")),
			}
		}

		key := [2]string{c.Source.Service, c.Target.Service}
		idx, ok := edges[key]
		if !ok {
			idx = len(doc.Edges)
			edges[key] = idx
			doc.Edges = append(doc.Edges, EdgeDoc{Source: key[0], Target: key[1]})
		}
		doc.Edges[idx].Calls = append(doc.Edges[idx].Calls, c)
	}

	s.Logger.Debug("loaded scenario",
		"scenario", scenario,
		"endpoints", len(doc.Endpoints),
		"calls", len(res.Records))
	return doc, nil
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	res, err := s.Driver.ExecuteQuery(ctx, driver.ListScenariosQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	scenarios := make([]string, 0, len(res.Records))
	for _, rec := range res.Records {
		scenarios = append(scenarios, stringOf(rec, "scenario"))
	}
	return scenarios, nil
}

func endpointOf(rec *neo4j.Record, prefix string) model.Endpoint {
	return model.Endpoint{
		Service:  stringOf(rec, prefix+"service"),
		Version:  stringOf(rec, prefix+"version"),
		Endpoint: stringOf(rec, prefix+"endpoint"),
	}
}

func stringOf(rec *neo4j.Record, key string) string {
	v, _ := rec.Get(key)
	s, _ := v.(string)
	return s
}

func boolOf(rec *neo4j.Record, key string) bool {
	v, _ := rec.Get(key)
	b, _ := v.(bool)
	return b
}

func intOf(rec *neo4j.Record, key string) int64 {
	v, _ := rec.Get(key)
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func floatOf(rec *neo4j.Record, key string) float64 {
	v, _ := rec.Get(key)
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}
