package transform

import (
	"github.com/AnastasiaP261/sci-activity-doc/pkg/dag"
	apperr "github.com/AnastasiaP261/sci-activity-doc/pkg/errors"
)

// Rewrite builds a new graph from an externally edited level structure.
//
// Levels are visited in ascending order and the nodes of a level in sorted
// order. Each node is declared when first seen, carrying over a copy of its
// attributes if prev declares it. Then each listed parent is declared if it
// is not yet present (with empty attributes) and the edge parent→node is
// added unless it already exists. No other edges are created, so edges of
// prev that levels does not mention are dropped.
//
// prev may be nil. The result is not validated; callers validate before
// persisting. Returns a BAD_REQUEST error if levels contains an ID, as a
// node or as a parent, that could not survive serialization: empty, with
// whitespace, or with DOT punctuation.
func Rewrite(prev *dag.Graph, levels Levels) (*dag.Graph, error) {
	out := dag.New()

	ensure := func(id string, carry bool) error {
		if err := apperr.ValidateNodeID(id); err != nil {
			return apperr.BadRequest(dag.ErrInvalidNodeID, "levels reference node %q: %s", id, apperr.UserMessage(err))
		}
		if out.HasNode(id) {
			return nil
		}
		attrs := dag.Attrs{}
		if carry && prev != nil {
			if n, ok := prev.Node(id); ok {
				attrs = n.Attrs.Clone()
			}
		}
		return out.AddNode(dag.Node{ID: id, Attrs: attrs})
	}

	for _, level := range levels.Order() {
		for _, id := range levels.IDs(level) {
			if err := ensure(id, true); err != nil {
				return nil, err
			}
			for _, p := range levels[level][id] {
				if err := ensure(p, false); err != nil {
					return nil, err
				}
				if out.HasEdge(p, id) {
					continue
				}
				if err := out.AddEdge(dag.Edge{From: p, To: id}); err != nil {
					return nil, err
				}
			}
		}
	}
	return out, nil
}
