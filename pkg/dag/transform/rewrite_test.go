package transform_test

import (
	"errors"
	"testing"

	"github.com/AnastasiaP261/sci-activity-doc/pkg/dag"
	"github.com/AnastasiaP261/sci-activity-doc/pkg/dag/transform"
	"github.com/AnastasiaP261/sci-activity-doc/pkg/dot"
	apperr "github.com/AnastasiaP261/sci-activity-doc/pkg/errors"
)

func TestRewrite(t *testing.T) {
	tests := []struct {
		name   string
		prev   string
		levels transform.Levels
		want   string
	}{
		{
			name: "add node between",
			prev: dot.Default,
			levels: transform.Levels{
				0: {"A": {}},
				1: {"1": {"A"}},
				2: {"B": {"1"}},
			},
			want: "digraph{A;1;A->1;B;1->B;}",
		},
		{
			name: "add dead end node",
			prev: dot.Default,
			levels: transform.Levels{
				0: {"A": {}},
				1: {"1": {"A"}},
				2: {"B": {"A"}},
			},
			want: "digraph{A;1;A->1;B;A->B;}",
		},
		{
			name: "drop node with several parents",
			prev: `digraph {
				A; B; 1; 2; 3; 4;
				A -> 1; A -> 2; A -> 3; 1 -> 4; 2 -> 4; 3 -> 4; 4 -> B;
			}`,
			levels: transform.Levels{
				0: {"A": {}},
				1: {"1": {"A"}, "2": {"A"}, "3": {"A"}},
				2: {"B": {"1", "2", "3"}},
			},
			want: "digraph{A;1;A->1;2;A->2;3;A->3;B;1->B;2->B;3->B;}",
		},
		{
			name: "attributes carried over",
			prev: `digraph {
				A [title="NODE_A"]; B; 1 [subgraph=123]; 2;
				A -> 1; 1 -> B; A -> 2; 2 -> B;
			}`,
			levels: transform.Levels{
				0: {"A": {}},
				1: {"1": {"A"}},
				2: {"B": {"1"}},
			},
			want: `digraph{A[title="NODE_A"];1[subgraph=123];A->1;B;1->B;}`,
		},
		{
			name: "start title kept",
			prev: `digraph{A[title="Start"];B;A->B;}`,
			levels: transform.Levels{
				0: {"A": {}},
				1: {"1": {"A"}},
				2: {"B": {"1"}},
			},
			want: `digraph{A[title="Start"];1;A->1;B;1->B;}`,
		},
		{
			name: "parent created on demand",
			prev: `digraph{A;7[title="x"];B;A->7;7->B;}`,
			levels: transform.Levels{
				0: {"A": {}},
				2: {"B": {"7"}},
			},
			want: "digraph{A;B;7;7->B;}",
		},
		{
			name: "repeated parent",
			prev: dot.Default,
			levels: transform.Levels{
				0: {"A": {}},
				1: {"B": {"A", "A"}},
			},
			want: dot.Default,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := transform.Rewrite(mustParse(t, tt.prev), tt.levels)
			if err != nil {
				t.Fatalf("Rewrite: %v", err)
			}
			if text := dot.Serialize(got); text != tt.want {
				t.Errorf("Rewrite() =\n%s\nwant\n%s", text, tt.want)
			}
		})
	}
}

func TestRewriteDoesNotShareAttrs(t *testing.T) {
	prev := mustParse(t, `digraph{A[title="x"];B;A->B;}`)
	out, err := transform.Rewrite(prev, transform.Levels{0: {"A": {}}, 1: {"B": {"A"}}})
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}

	n, _ := out.Node(dag.Start)
	n.Attrs[dag.AttrTitle] = "changed"

	orig, _ := prev.Node(dag.Start)
	if got := orig.Attrs[dag.AttrTitle]; got != "x" {
		t.Errorf("prev title = %q, want x", got)
	}
}

func TestRewriteNilPrev(t *testing.T) {
	out, err := transform.Rewrite(nil, transform.Levels{0: {"A": {}}, 1: {"B": {"A"}}})
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if got := dot.Serialize(out); got != dot.Default {
		t.Errorf("Rewrite() = %s, want %s", got, dot.Default)
	}
}

func TestRewriteInvalidIDs(t *testing.T) {
	tests := []struct {
		name   string
		levels transform.Levels
	}{
		{"empty parent", transform.Levels{0: {"A": {}}, 1: {"B": {""}}}},
		{"empty node", transform.Levels{0: {"A": {}}, 1: {"": {"A"}}, 2: {"B": {""}}}},
		{"space in node", transform.Levels{0: {"A": {}}, 1: {"step 1": {"A"}}, 2: {"B": {"step 1"}}}},
		{"space in parent", transform.Levels{0: {"A": {}}, 1: {"B": {"A", "step 1"}}}},
		{"tab", transform.Levels{0: {"A": {}}, 1: {"a\tb": {"A"}}, 2: {"B": {"a\tb"}}}},
		{"quote", transform.Levels{0: {"A": {}}, 1: {`x"y`: {"A"}}, 2: {"B": {`x"y`}}}},
		{"statement separator", transform.Levels{0: {"A": {}}, 1: {"1;2": {"A"}}, 2: {"B": {"1;2"}}}},
		{"edge operator", transform.Levels{0: {"A": {}}, 1: {"1->2": {"A"}}, 2: {"B": {"1->2"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := transform.Rewrite(nil, tt.levels)
			if !apperr.Is(err, apperr.ErrCodeBadRequest) {
				t.Fatalf("Rewrite() = %v, want BAD_REQUEST", err)
			}
			if !errors.Is(err, dag.ErrInvalidNodeID) {
				t.Errorf("error does not wrap %v", dag.ErrInvalidNodeID)
			}
		})
	}
}

func TestRewriteRoundTrip(t *testing.T) {
	// Rewriting a graph with its own levels reproduces every edge.
	g := mustParse(t, `digraph {
		A; 1; 2; 3; 4; 5; 6; 7; 8; 9; 10; B;
		A -> 1; 1 -> 2; 1 -> 3; 2 -> 4; 2 -> 5; 3 -> 6; 3 -> 8;
		4 -> 7; 5 -> 6; 6 -> 7; 6 -> 8; 7 -> B; 8 -> 9; 9 -> 10;
	}`)
	levels, err := transform.ToLevels(g)
	if err != nil {
		t.Fatalf("ToLevels: %v", err)
	}
	out, err := transform.Rewrite(g, levels)
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if out.NodeCount() != g.NodeCount() || out.EdgeCount() != g.EdgeCount() {
		t.Errorf("rewrite changed size: %d/%d nodes, %d/%d edges",
			out.NodeCount(), g.NodeCount(), out.EdgeCount(), g.EdgeCount())
	}
	for _, e := range g.Edges() {
		if !out.HasEdge(e.From, e.To) {
			t.Errorf("edge %s->%s lost", e.From, e.To)
		}
	}
	if err := out.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}
