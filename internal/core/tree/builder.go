package tree

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/agenthands/callrank/internal/core/model"
)

var ErrUnknownEndpoint = errors.New("endpoint missing from topology")

// Forest holds the call trees of one target service. Nodes are shared between
// trees: an endpoint is expanded once per build.
type Forest struct {
	Roots []*Node

	// Calls left out because their destination was already visited during
	// the walk.
	Cycles []model.Call

	nodes map[model.Endpoint]*Node
}

func (f *Forest) Node(ep model.Endpoint) (*Node, bool) {
	n, ok := f.nodes[ep]
	return n, ok
}

// Len is the number of distinct nodes.
func (f *Forest) Len() int {
	return len(f.nodes)
}

type builder struct {
	logger   *slog.Logger
	topology map[model.Endpoint][]model.Call
	nodes    map[model.Endpoint]*Node
	cycles   []model.Call
}

// Build creates one root node per (version, endpoint) of targetService, in the
// order the endpoints are listed in the graph.
func Build(graph *model.Graph, targetService string, logger *slog.Logger) (*Forest, error) {
	if logger == nil {
		logger = slog.Default()
	}

	topology, err := index(graph)
	if err != nil {
		return nil, err
	}

	b := &builder{
		logger:   logger,
		topology: topology,
		nodes:    make(map[model.Endpoint]*Node),
	}

	forest := &Forest{}
	seen := make(map[model.Endpoint]bool)
	for _, ep := range graph.Endpoints {
		if ep.Service != targetService || seen[ep] {
			continue
		}
		seen[ep] = true

		// endpoints visited during this root's walk, used to detect cycles;
		// they should already be resolved upstream
		visited := map[model.Endpoint]bool{ep: true}
		root, err := b.walk(ep, visited)
		if err != nil {
			return nil, err
		}
		forest.Roots = append(forest.Roots, root)
	}

	forest.nodes = b.nodes
	forest.Cycles = b.cycles
	return forest, nil
}

// index maps every known endpoint to its outgoing calls.
func index(graph *model.Graph) (map[model.Endpoint][]model.Call, error) {
	topology := make(map[model.Endpoint][]model.Call, len(graph.Endpoints))
	for _, ep := range graph.Endpoints {
		if _, ok := topology[ep]; !ok {
			topology[ep] = nil
		}
	}

	calls := graph.Edges.Calls()
	for _, call := range calls {
		src := call.Source()
		if _, ok := topology[src]; !ok {
			return nil, fmt.Errorf("%w: source of %s", ErrUnknownEndpoint, call)
		}
		topology[src] = append(topology[src], call)
	}

	// every referenced endpoint must be known, reached or not
	for _, call := range calls {
		if _, ok := topology[call.Target()]; !ok {
			return nil, fmt.Errorf("%w: target of %s", ErrUnknownEndpoint, call)
		}
		if old, migrated := model.MigrationTarget(call); migrated {
			if _, ok := topology[old]; !ok {
				return nil, fmt.Errorf("%w: prior endpoint %s of %s", ErrUnknownEndpoint, old, call)
			}
		}
	}
	return topology, nil
}

func (b *builder) walk(ep model.Endpoint, visited map[model.Endpoint]bool) (*Node, error) {
	if node, ok := b.nodes[ep]; ok {
		return node, nil
	}

	calls, ok := b.topology[ep]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEndpoint, ep)
	}

	node := &Node{Endpoint: ep}
	for _, call := range calls {
		old, migrated := model.MigrationTarget(call)
		if visited[call.Target()] || (migrated && visited[old]) {
			b.logger.Warn("cycle in call graph, call not traversed",
				"call", call.String(),
				"endpoint", ep.String())
			b.cycles = append(b.cycles, call)
			continue
		}

		visited[call.Target()] = true
		child, err := b.walk(call.Target(), visited)
		if err != nil {
			return nil, err
		}
		children := []*Node{child}

		// keep the pre-migration destination so old and new behaviour can be compared
		if migrated {
			visited[old] = true
			oldChild, err := b.walk(old, visited)
			if err != nil {
				return nil, err
			}
			children = append(children, oldChild)
		}

		node.Calls = append(node.Calls, call)
		node.Children = append(node.Children, children)
	}

	b.nodes[ep] = node
	return node, nil
}

// Walk visits every node reachable from the roots once, children before
// parents. All children of a node are visited before any of its calls, not
// interleaved call by call.
func (f *Forest) Walk(visit func(*Node)) {
	done := make(map[*Node]bool, len(f.nodes))
	var post func(*Node)
	post = func(n *Node) {
		if done[n] {
			return
		}
		done[n] = true
		for _, children := range n.Children {
			for _, child := range children {
				post(child)
			}
		}
		visit(n)
	}
	for _, root := range f.Roots {
		post(root)
	}
}
