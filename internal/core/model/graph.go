package model

import "sort"

// Edge groups every call from one source service to one target service.
type Edge struct {
	SourceService string
	TargetService string
	Calls         []Call
}

func NewEdge(source, target string) *Edge {
	return &Edge{SourceService: source, TargetService: target}
}

func (e *Edge) AddCall(call Call) {
	e.Calls = append(e.Calls, call)
}

// EdgeSet maps source service -> target service -> edge.
type EdgeSet map[string]map[string]*Edge

// Add appends a call to the edge between its source and target services,
// creating the edge if needed.
func (s EdgeSet) Add(call Call) {
	src, dst := call.Source().Service, call.Target().Service
	targets, ok := s[src]
	if !ok {
		targets = make(map[string]*Edge)
		s[src] = targets
	}
	edge, ok := targets[dst]
	if !ok {
		edge = NewEdge(src, dst)
		targets[dst] = edge
	}
	edge.AddCall(call)
}

// Edges returns the edges ordered by source then target service name so that
// traversal order does not depend on map iteration.
func (s EdgeSet) Edges() []*Edge {
	sources := make([]string, 0, len(s))
	for src := range s {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	var edges []*Edge
	for _, src := range sources {
		targets := make([]string, 0, len(s[src]))
		for dst := range s[src] {
			targets = append(targets, dst)
		}
		sort.Strings(targets)
		for _, dst := range targets {
			edges = append(edges, s[src][dst])
		}
	}
	return edges
}

// Calls returns every call of the set in Edges order.
func (s EdgeSet) Calls() []Call {
	var calls []Call
	for _, e := range s.Edges() {
		calls = append(calls, e.Calls...)
	}
	return calls
}

// Graph is the diffed call graph handed over by the diff engine.
type Graph struct {
	Edges     EdgeSet
	Endpoints []Endpoint
}

func NewGraph() *Graph {
	return &Graph{Edges: make(EdgeSet)}
}

// Services lists the distinct services of the known endpoints in first-seen order.
func (g *Graph) Services() []string {
	seen := make(map[string]bool)
	var services []string
	for _, ep := range g.Endpoints {
		if !seen[ep.Service] {
			seen[ep.Service] = true
			services = append(services, ep.Service)
		}
	}
	return services
}
