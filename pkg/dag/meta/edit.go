package meta

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"github.com/AnastasiaP261/sci-activity-doc/pkg/dag"
	apperr "github.com/AnastasiaP261/sci-activity-doc/pkg/errors"
)

var (
	// ErrNotesAttached is returned when a step that already has notes is
	// turned into a sub-graph link.
	ErrNotesAttached = errors.New("node has attached notes")

	// ErrInvalidLink is returned when a sub-graph link id is not positive.
	ErrInvalidLink = errors.New("sub-graph id must be positive")

	// ErrNoChange is returned when a request matches no transition.
	ErrNoChange = errors.New("request changes nothing")
)

// Request is an edit of a step's metadata.
type Request struct {
	IsSubgraph bool    // the step should link to another graph
	SubgraphID int64   // id of the linked graph when IsSubgraph is set
	NotesIDs   []int64 // notes currently attached to the step
	Title      string  // requested display title, spaces allowed
}

// Change names the transition an [Edit] applied.
type Change string

const (
	ChangeRelink  Change = "relink"
	ChangeLink    Change = "link"
	ChangeUnlink  Change = "unlink"
	ChangeRetitle Change = "retitle"
)

// state is the part of a node's metadata the decision table looks at.
type state struct {
	link  int64 // 0 when the step is not a sub-graph link
	title string
}

func (s state) linked() bool { return s.link != 0 }

type transition struct {
	change Change
	match  func(s state, req Request) bool
	apply  func(n *dag.Node, req Request) error
}

// transitions is evaluated top to bottom; the first matching row wins.
var transitions = []transition{
	{
		change: ChangeRelink,
		match: func(s state, req Request) bool {
			return s.linked() && req.IsSubgraph && req.SubgraphID > 0 && req.SubgraphID != s.link
		},
		apply: setLink,
	},
	{
		change: ChangeLink,
		match: func(s state, req Request) bool {
			return !s.linked() && req.IsSubgraph
		},
		apply: func(n *dag.Node, req Request) error {
			if len(req.NotesIDs) > 0 {
				return apperr.BadRequest(ErrNotesAttached, "node %q has %d notes and cannot link a sub-graph", n.ID, len(req.NotesIDs))
			}
			if req.SubgraphID <= 0 {
				return apperr.BadRequest(ErrInvalidLink, "sub-graph id %d", req.SubgraphID)
			}
			return setLink(n, req)
		},
	},
	{
		change: ChangeUnlink,
		match: func(s state, req Request) bool {
			return s.linked() && !req.IsSubgraph
		},
		apply: func(n *dag.Node, _ Request) error {
			delete(n.Attrs, dag.AttrSubgraph)
			return nil
		},
	},
	{
		change: ChangeRetitle,
		match: func(s state, req Request) bool {
			return strings.TrimSpace(req.Title) != s.title
		},
		apply: func(n *dag.Node, req Request) error {
			title := EncodeTitle(req.Title)
			if title == "" {
				delete(n.Attrs, dag.AttrTitle)
				return nil
			}
			n.Attrs[dag.AttrTitle] = title
			return nil
		},
	},
}

func setLink(n *dag.Node, req Request) error {
	n.Attrs[dag.AttrSubgraph] = strconv.FormatInt(req.SubgraphID, 10)
	return nil
}

// Edit applies req to the metadata of node id in place and reports which
// transition was taken. The rows are checked in order:
//
//  1. relink: the step is linked and a different positive id is requested
//  2. link: the step is not linked and a link is requested; fails if notes
//     are attached or the id is not positive
//  3. unlink: the step is linked and no link is requested
//  4. retitle: the trimmed title differs from the stored one in display
//     form, so a request spelled with underscores or quotes is a retitle
//
// A request matching no row, or naming an unknown node, is a BAD_REQUEST.
// g is unchanged on error.
func Edit(g *dag.Graph, id string, req Request) (Change, error) {
	n, ok := g.Node(id)
	if !ok {
		return "", apperr.BadRequest(dag.ErrUnknownNode, "node %q does not exist", id)
	}

	s := state{link: SubgraphID(n), title: DecodeTitle(n.Attrs[dag.AttrTitle])}
	for _, t := range transitions {
		if !t.match(s, req) {
			continue
		}
		if err := t.apply(n, req); err != nil {
			return "", err
		}
		return t.change, nil
	}
	return "", apperr.BadRequest(ErrNoChange, "metadata of node %q already matches the request", id)
}

// SubgraphID returns the id of the graph n links to, or 0 if it links to
// none. Values that are not integers count as no link.
func SubgraphID(n *dag.Node) int64 {
	id, err := strconv.ParseInt(n.Attrs[dag.AttrSubgraph], 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// EncodeTitle converts a display title to its stored form: surrounding
// whitespace and quotes trimmed, inner whitespace replaced by underscores.
func EncodeTitle(title string) string {
	title = strings.Trim(strings.TrimSpace(title), `"`)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(title))
}

// DecodeTitle converts a stored title back to display form.
func DecodeTitle(stored string) string {
	return strings.ReplaceAll(strings.ReplaceAll(stored, "_", " "), `"`, "")
}
