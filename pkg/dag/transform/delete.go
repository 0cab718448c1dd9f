package transform

import (
	"github.com/AnastasiaP261/sci-activity-doc/pkg/dag"
	apperr "github.com/AnastasiaP261/sci-activity-doc/pkg/errors"
)

// DeleteNode removes a step from g and reattaches its neighbors.
//
// Every declaration of id and every edge touching it are removed, then each
// former parent is connected to each former child. Edges that already exist
// are not duplicated and self-loops are never introduced, so a chain
// A→1→B becomes A→B.
//
// The start and finish nodes cannot be deleted. Both that and an unknown id
// are BAD_REQUEST errors wrapping [dag.ErrReservedNode] or
// [dag.ErrUnknownNode]; g is left unchanged in either case.
func DeleteNode(g *dag.Graph, id string) error {
	if id == dag.Start || id == dag.Finish {
		return apperr.BadRequest(dag.ErrReservedNode, "node %q cannot be deleted", id)
	}
	if !g.HasNode(id) {
		return apperr.BadRequest(dag.ErrUnknownNode, "node %q does not exist", id)
	}

	parents := dag.Unique(g.Parents(id))
	children := dag.Unique(g.Children(id))

	g.RemoveNode(id)

	for _, p := range parents {
		for _, c := range children {
			if p == id || c == id || p == c || g.HasEdge(p, c) {
				continue
			}
			if err := g.AddEdge(dag.Edge{From: p, To: c}); err != nil {
				return err
			}
		}
	}
	return nil
}
