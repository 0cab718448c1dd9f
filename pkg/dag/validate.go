package dag

import (
	"errors"

	"go.uber.org/multierr"

	apperr "github.com/AnastasiaP261/sci-activity-doc/pkg/errors"
)

var (
	// ErrMissingTerminal is reported when the start or finish node is not declared.
	ErrMissingTerminal = errors.New("start or finish node is missing")

	// ErrCycle is reported when a cycle is reachable from the start node.
	ErrCycle = errors.New("graph contains a cycle")

	// ErrUnreachable is reported when a node cannot be reached from the start node.
	ErrUnreachable = errors.New("node is not reachable from start")

	// ErrUndeclaredEndpoint is reported when an edge references an undeclared node.
	ErrUndeclaredEndpoint = errors.New("edge references an undeclared node")
)

// check is a single structural invariant. It returns nil when the graph
// satisfies it.
type check func(g *Graph) error

// checks are ordered cheapest-first so Validate can stop early.
var checks = []check{
	(*Graph).checkTerminals,
	(*Graph).checkAcyclic,
	(*Graph).checkDuplicates,
	(*Graph).checkConnected,
	(*Graph).checkEndpoints,
}

// Validate checks the five structural invariants and returns the first
// violation as a VALIDATION_ERROR wrapping one of ErrMissingTerminal,
// ErrCycle, ErrDuplicateNodeID, ErrUnreachable or ErrUndeclaredEndpoint:
//
//  1. Start and finish nodes are declared
//  2. No cycle is reachable from start
//  3. No node ID is declared twice
//  4. Every node is reachable from start
//  5. Every edge endpoint is declared
//
// Cycle detection walks from start with white/gray/black coloring on an
// explicit stack.
func (g *Graph) Validate() error {
	for _, c := range checks {
		if err := c(g); err != nil {
			return err
		}
	}
	return nil
}

// IsValid reports whether Validate returns nil.
func (g *Graph) IsValid() bool { return g.Validate() == nil }

// ValidateAll runs every check and combines all violations into one error.
// It is meant for diagnostics; save paths use Validate.
func (g *Graph) ValidateAll() error {
	var err error
	for _, c := range checks {
		err = multierr.Append(err, c(g))
	}
	return err
}

func (g *Graph) checkTerminals() error {
	for _, id := range []string{Start, Finish} {
		if !g.HasNode(id) {
			return apperr.ValidationError(ErrMissingTerminal, "node %q is not declared", id)
		}
	}
	return nil
}

func (g *Graph) checkAcyclic() error {
	if id, ok := g.findCycle(Start); ok {
		return apperr.ValidationError(ErrCycle, "node %q is revisited while in progress", id)
	}
	return nil
}

// findCycle walks depth-first from root and returns the first node found
// gray (still on the walk stack), which closes a cycle.
func (g *Graph) findCycle(root string) (string, bool) {
	const (
		white = iota
		gray
		black
	)

	type frame struct {
		id   string
		next int // index of the next child to visit
	}

	color := map[string]int{root: gray}
	stack := []frame{{id: root}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		children := g.outgoing[top.id]
		if top.next == len(children) {
			color[top.id] = black
			stack = stack[:len(stack)-1]
			continue
		}

		child := children[top.next]
		top.next++

		switch color[child] {
		case white:
			color[child] = gray
			stack = append(stack, frame{id: child})
		case gray:
			return child, true
		}
	}
	return "", false
}

func (g *Graph) checkDuplicates() error {
	if dups := g.Duplicates(); len(dups) > 0 {
		return apperr.ValidationError(ErrDuplicateNodeID, "node %q is declared more than once", dups[0])
	}
	return nil
}

func (g *Graph) checkConnected() error {
	reach := g.Reachable(Start)
	for _, id := range g.Referenced() {
		if !reach[id] {
			return apperr.ValidationError(ErrUnreachable, "node %q", id)
		}
	}
	return nil
}

func (g *Graph) checkEndpoints() error {
	for _, e := range g.Edges() {
		for _, id := range []string{e.From, e.To} {
			if !g.HasNode(id) {
				return apperr.ValidationError(ErrUndeclaredEndpoint, "edge %s->%s references %q", e.From, e.To, id)
			}
		}
	}
	return nil
}
