package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/agenthands/callrank/internal/core/model"
)

var ErrInvalidDocument = errors.New("invalid graph document")

// Document is the JSON form of a diffed call graph.
type Document struct {
	Endpoints []model.Endpoint `json:"endpoints"`
	Edges     []EdgeDoc        `json:"edges"`
}

type EdgeDoc struct {
	Source string    `json:"source"`
	Target string    `json:"target"`
	Calls  []CallDoc `json:"calls"`
}

type CallDoc struct {
	Kind             model.CallKind `json:"kind"`
	Type             model.DiffType `json:"type,omitempty"`
	Source           model.Endpoint `json:"source"`
	Target           model.Endpoint `json:"target"`
	OldSourceVersion string         `json:"old_source_version,omitempty"`
	OldTargetVersion string         `json:"old_target_version,omitempty"`
	Stats            *StatsDoc      `json:"stats,omitempty"`
}

// StatsDoc carries precomputed statistics. Critical and MaxDeviation apply to
// calls present in both versions, CallCount to diff calls.
type StatsDoc struct {
	Critical     bool    `json:"critical,omitempty"`
	MaxDeviation float64 `json:"max_deviation,omitempty"`
	CallCount    int     `json:"call_count,omitempty"`
}

func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return &doc, nil
}

func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

func (d *Document) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// Validate checks every call against its kind and its edge.
func (d *Document) Validate() error {
	for _, edge := range d.Edges {
		for i, call := range edge.Calls {
			if call.Source.Service != edge.Source || call.Target.Service != edge.Target {
				return fmt.Errorf("%w: call %d of edge %s -> %s connects %s -> %s",
					ErrInvalidDocument, i, edge.Source, edge.Target, call.Source.Service, call.Target.Service)
			}
			if err := call.validate(); err != nil {
				return fmt.Errorf("%w: call %d of edge %s -> %s: %v", ErrInvalidDocument, i, edge.Source, edge.Target, err)
			}
		}
	}
	return nil
}

func (c CallDoc) validate() error {
	switch c.Kind {
	case model.KindDiff:
		if !c.Type.Valid() {
			return fmt.Errorf("unknown diff type %q", c.Type)
		}
	case model.KindCommon:
	case model.KindUpdatedSourceVersion:
		if c.OldSourceVersion == "" {
			return errors.New("missing old_source_version")
		}
	case model.KindUpdatedTargetVersion:
		if c.OldTargetVersion == "" {
			return errors.New("missing old_target_version")
		}
	case model.KindUpdatedVersion:
		if c.OldSourceVersion == "" || c.OldTargetVersion == "" {
			return errors.New("missing old_source_version or old_target_version")
		}
	default:
		return fmt.Errorf("unknown call kind %q", c.Kind)
	}
	return nil
}

// Graph validates the document and builds the call graph. Every call becomes
// a distinct model.Call.
func (d *Document) Graph() (*model.Graph, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	g := model.NewGraph()
	g.Endpoints = append([]model.Endpoint(nil), d.Endpoints...)
	for _, edge := range d.Edges {
		for _, c := range edge.Calls {
			g.Edges.Add(c.call())
		}
	}
	return g, nil
}

func (c CallDoc) call() model.Call {
	switch c.Kind {
	case model.KindDiff:
		var stats model.SimpleStatistics
		if c.Stats != nil {
			stats = model.SimulatedSimpleStatistics{Count: c.Stats.CallCount}
		}
		return model.NewDiffCall(c.Source, c.Target, c.Type, stats)
	case model.KindUpdatedSourceVersion:
		return model.NewUpdatedSourceVersion(c.Source, c.Target, c.OldSourceVersion, c.comparison())
	case model.KindUpdatedTargetVersion:
		return model.NewUpdatedTargetVersion(c.Source, c.Target, c.OldTargetVersion, c.comparison())
	case model.KindUpdatedVersion:
		return model.NewUpdatedVersion(c.Source, c.Target, c.OldSourceVersion, c.OldTargetVersion, c.comparison())
	default:
		return model.NewCommonCall(c.Source, c.Target, c.comparison())
	}
}

func (c CallDoc) comparison() model.ComparableStatistics {
	if c.Stats == nil {
		return nil
	}
	return model.SimulatedComparison{Critical: c.Stats.Critical, MaxDeviation: c.Stats.MaxDeviation}
}

// FromGraph renders a call graph as a document, edges in EdgeSet order.
func FromGraph(g *model.Graph) *Document {
	doc := &Document{Endpoints: append([]model.Endpoint(nil), g.Endpoints...)}
	for _, edge := range g.Edges.Edges() {
		ed := EdgeDoc{Source: edge.SourceService, Target: edge.TargetService}
		for _, call := range edge.Calls {
			ed.Calls = append(ed.Calls, callDoc(call))
		}
		doc.Edges = append(doc.Edges, ed)
	}
	return doc
}

func callDoc(call model.Call) CallDoc {
	doc := CallDoc{Kind: call.Kind(), Source: call.Source(), Target: call.Target()}

	switch c := call.(type) {
	case *model.DiffCall:
		doc.Type = c.Type
		if c.Stats != nil {
			doc.Stats = &StatsDoc{CallCount: c.Stats.CallCount()}
		}
		return doc
	case *model.CommonCall:
		doc.Stats = statsDoc(c.Stats)
	case *model.UpdatedSourceVersion:
		doc.OldSourceVersion = c.OldSourceVersion
		doc.Stats = statsDoc(c.Stats)
	case *model.UpdatedTargetVersion:
		doc.OldTargetVersion = c.OldTargetVersion
		doc.Stats = statsDoc(c.Stats)
	case *model.UpdatedVersion:
		doc.OldSourceVersion = c.OldSourceVersion
		doc.OldTargetVersion = c.OldTargetVersion
		doc.Stats = statsDoc(c.Stats)
	}
	return doc
}

func statsDoc(stats model.ComparableStatistics) *StatsDoc {
	if stats == nil {
		return nil
	}
	return &StatsDoc{Critical: stats.HasCriticalResponseTime(), MaxDeviation: stats.MaxNegativeDeviation()}
}

// Calls returns every call of the document in edge order.
func (d *Document) Calls() []CallDoc {
	var calls []CallDoc
	for _, edge := range d.Edges {
		calls = append(calls, edge.Calls...)
	}
	return calls
}

// CheckEndpoints reports the first call endpoint missing from the endpoint
// list.
func (d *Document) CheckEndpoints() error {
	known := make(map[model.Endpoint]bool, len(d.Endpoints))
	for _, ep := range d.Endpoints {
		known[ep] = true
	}
	for _, c := range d.Calls() {
		for _, ep := range []model.Endpoint{c.Source, c.Target} {
			if !known[ep] {
				return fmt.Errorf("%w: endpoint %s is not listed", ErrInvalidDocument, ep)
			}
		}
	}
	return nil
}
