package dag

import (
	"errors"
	"maps"
	"slices"
)

// Reserved node identifiers bounding every workflow graph.
const (
	Start  = "A"
	Finish = "B"
)

// Attribute keys understood by the engine.
const (
	AttrTitle    = "title"
	AttrSubgraph = "subgraph"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] and [Graph.AddEdge] when
	// an identifier is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID is already declared, and reported by [Graph.Validate] when the
	// parsed text declares a node twice.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrReservedNode is returned when a mutation targets the start or finish node.
	ErrReservedNode = errors.New("reserved node")

	// ErrUnknownNode is returned when a mutation targets a node that is not declared.
	ErrUnknownNode = errors.New("unknown node")
)

// Attrs holds the attributes of a node statement. Values are stored without
// surrounding quotes.
type Attrs map[string]string

// Clone returns an independent copy of the attribute map. The copy of a nil
// map is an empty map.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return Attrs{}
	}
	return maps.Clone(a)
}

// Keys returns the attribute keys in sorted order.
func (a Attrs) Keys() []string {
	return slices.Sorted(maps.Keys(a))
}

// Node is a declared vertex: a workflow step.
type Node struct {
	ID    string
	Attrs Attrs // never nil after AddNode or DeclareNode
}

// Edge is a directed connection between two steps. Edges carry no attributes.
type Edge struct {
	From string
	To   string
}

// Statement is one entry of the graph body in declaration order. Exactly one
// of Node and Edge is set.
type Statement struct {
	Node *Node
	Edge *Edge
}

// Graph is a directed graph of workflow steps. It keeps every statement in
// insertion order so that serialization is stable, and it tolerates the
// defects a hand-edited text may contain (duplicate declarations, edges to
// undeclared nodes, cycles) so that [Graph.Validate] can report them.
//
// The zero value is not usable - use New to create a Graph.
// Graph is not safe for concurrent use.
type Graph struct {
	stmts    []Statement
	nodes    map[string]*Node // first declaration of each ID
	decls    map[string]int   // number of declarations per ID
	outgoing map[string][]string
	incoming map[string][]string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		decls:    make(map[string]int),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// AddNode declares a node. Returns ErrInvalidNodeID for an empty ID and
// ErrDuplicateNodeID if the ID is already declared. Nil attributes are
// replaced with an empty map.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	g.declare(n)
	return nil
}

// DeclareNode appends a node statement even when the ID is already declared.
// Parsers use it to keep duplicate declarations visible to the validator;
// lookups keep returning the first declaration.
func (g *Graph) DeclareNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	g.declare(n)
	return nil
}

func (g *Graph) declare(n Node) {
	if n.Attrs == nil {
		n.Attrs = Attrs{}
	}
	node := &n
	if _, exists := g.nodes[n.ID]; !exists {
		g.nodes[n.ID] = node
	}
	g.decls[n.ID]++
	g.stmts = append(g.stmts, Statement{Node: node})
}

// AddEdge appends a directed edge. Endpoints do not have to be declared;
// undeclared endpoints are an invariant violation reported by Validate.
// Parallel edges are kept as written.
func (g *Graph) AddEdge(e Edge) error {
	if e.From == "" || e.To == "" {
		return ErrInvalidNodeID
	}
	edge := e
	g.stmts = append(g.stmts, Statement{Edge: &edge})
	g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
	g.incoming[e.To] = append(g.incoming[e.To], e.From)
	return nil
}

// HasEdge reports whether at least one edge from→to exists.
func (g *Graph) HasEdge(from, to string) bool {
	return slices.Contains(g.outgoing[from], to)
}

// RemoveEdge removes every edge from→to. No error is returned if none exists.
func (g *Graph) RemoveEdge(from, to string) {
	g.stmts = slices.DeleteFunc(g.stmts, func(s Statement) bool {
		return s.Edge != nil && s.Edge.From == from && s.Edge.To == to
	})
	g.outgoing[from] = slices.DeleteFunc(g.outgoing[from], func(s string) bool { return s == to })
	g.incoming[to] = slices.DeleteFunc(g.incoming[to], func(s string) bool { return s == from })
}

// RemoveNode removes every declaration of the node and every edge touching
// it. It does nothing if the ID appears nowhere in the graph.
func (g *Graph) RemoveNode(id string) {
	g.stmts = slices.DeleteFunc(g.stmts, func(s Statement) bool {
		if s.Node != nil {
			return s.Node.ID == id
		}
		return s.Edge.From == id || s.Edge.To == id
	})
	delete(g.nodes, id)
	delete(g.decls, id)

	for _, child := range g.outgoing[id] {
		g.incoming[child] = slices.DeleteFunc(g.incoming[child], func(s string) bool { return s == id })
	}
	for _, parent := range g.incoming[id] {
		g.outgoing[parent] = slices.DeleteFunc(g.outgoing[parent], func(s string) bool { return s == id })
	}
	delete(g.outgoing, id)
	delete(g.incoming, id)
}

// Node returns the first declaration of id and true, or nil and false if the
// node is not declared. The returned pointer refers to the graph's node, so
// attribute changes affect the graph.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// HasNode reports whether id is declared.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns the declared nodes in declaration order, one entry per ID.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, s := range g.stmts {
		if s.Node != nil && g.nodes[s.Node.ID] == s.Node {
			nodes = append(nodes, s.Node)
		}
	}
	return nodes
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, s := range g.stmts {
		if s.Edge != nil {
			edges = append(edges, *s.Edge)
		}
	}
	return edges
}

// Statements returns the node and edge statements in insertion order.
// The slice is a copy; the pointed-to nodes and edges belong to the graph.
func (g *Graph) Statements() []Statement { return slices.Clone(g.stmts) }

// NodeCount returns the number of distinct declared node IDs.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges, parallel edges included.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, targets := range g.outgoing {
		n += len(targets)
	}
	return n
}

// Children returns the targets of edges leaving id, in insertion order.
// The returned slice should not be modified.
func (g *Graph) Children(id string) []string { return g.outgoing[id] }

// Parents returns the sources of edges entering id, in insertion order.
// The returned slice should not be modified.
func (g *Graph) Parents(id string) []string { return g.incoming[id] }

// Duplicates returns the IDs declared more than once, in order of first
// declaration.
func (g *Graph) Duplicates() []string {
	var dups []string
	for _, n := range g.Nodes() {
		if g.decls[n.ID] > 1 {
			dups = append(dups, n.ID)
		}
	}
	return dups
}

// Reachable returns the set of node IDs reachable from id by following
// edges, id itself included. Undeclared edge endpoints are followed too.
func (g *Graph) Reachable(id string) map[string]bool {
	seen := map[string]bool{id: true}
	queue := []string{id}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, child := range g.outgoing[curr] {
			if !seen[child] {
				seen[child] = true
				queue = append(queue, child)
			}
		}
	}
	return seen
}

// Referenced returns every ID that is declared or appears as an edge
// endpoint, in order of first appearance.
func (g *Graph) Referenced() []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, s := range g.stmts {
		if s.Node != nil {
			add(s.Node.ID)
			continue
		}
		add(s.Edge.From)
		add(s.Edge.To)
	}
	return ids
}

// Unique returns ids without repeats, keeping first occurrences in order.
func Unique(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
