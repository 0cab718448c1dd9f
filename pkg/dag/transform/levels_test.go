package transform_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"slices"
	"testing"

	"github.com/AnastasiaP261/sci-activity-doc/pkg/dag"
	"github.com/AnastasiaP261/sci-activity-doc/pkg/dag/transform"
	"github.com/AnastasiaP261/sci-activity-doc/pkg/dot"
	apperr "github.com/AnastasiaP261/sci-activity-doc/pkg/errors"
)

func mustParse(t *testing.T, text string) *dag.Graph {
	t.Helper()
	g, err := dot.Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q): %v", text, err)
	}
	return g
}

func TestToLevels(t *testing.T) {
	tests := []struct {
		name string
		text string
		want transform.Levels
	}{
		{
			name: "default graph",
			text: dot.Default,
			want: transform.Levels{
				0: {"A": {}},
				1: {"B": {"A"}},
			},
		},
		{
			name: "parallel branches",
			text: `digraph {
				A; 1; 2; 3; 4; 5; B;
				A -> 1; 1 -> 2; 2 -> 3; 2 -> 4; 2 -> 5; 3 -> B; 4 -> B; 5 -> B;
			}`,
			want: transform.Levels{
				0: {"A": {}},
				1: {"1": {"A"}},
				2: {"2": {"1"}},
				3: {"3": {"2"}, "4": {"2"}, "5": {"2"}},
				4: {"B": {"3", "4", "5"}},
			},
		},
		{
			name: "cross-level edge",
			text: `digraph {
				A; 1; 2; 3; 4; B;
				A -> B; A -> 1; 1 -> 2; 2 -> 3; 3 -> 4; 4 -> B;
			}`,
			want: transform.Levels{
				0: {"A": {}},
				1: {"1": {"A"}},
				2: {"2": {"1"}},
				3: {"3": {"2"}},
				4: {"4": {"3"}},
				5: {"B": {"4", "A"}},
			},
		},
		{
			name: "dead end",
			text: `digraph {
				A; 1; 2; 3; 4; 5; B;
				A -> 1; 1 -> 2; 2 -> 3; 3 -> 4; 3 -> 5; 5 -> B;
			}`,
			want: transform.Levels{
				0: {"A": {}},
				1: {"1": {"A"}},
				2: {"2": {"1"}},
				3: {"3": {"2"}},
				4: {"4": {"3"}, "5": {"3"}},
				5: {"B": {"5"}},
			},
		},
		{
			name: "dead end deeper than finish",
			text: `digraph {
				A; 1; 2; 3; B;
				A -> 1; 1 -> 2; 2 -> 3; A -> B;
			}`,
			want: transform.Levels{
				0: {"A": {}},
				1: {"1": {"A"}},
				2: {"2": {"1"}},
				3: {"3": {"2"}},
				4: {"B": {"A"}},
			},
		},
		{
			name: "hard graph",
			text: `digraph {
				A; 1; 2; 3; 4; 5; 6; 7; 8; 9; 10; B;
				A -> 1; 1 -> 2; 1 -> 3; 2 -> 4; 2 -> 5; 3 -> 6; 3 -> 8;
				4 -> 7; 5 -> 6; 6 -> 7; 6 -> 8; 7 -> B; 8 -> 9; 9 -> 10;
			}`,
			want: transform.Levels{
				0: {"A": {}},
				1: {"1": {"A"}},
				2: {"2": {"1"}, "3": {"1"}},
				3: {"4": {"2"}, "5": {"2"}},
				4: {"6": {"3", "5"}},
				5: {"7": {"4", "6"}, "8": {"3", "6"}},
				6: {"9": {"8"}},
				7: {"10": {"9"}},
				8: {"B": {"7"}},
			},
		},
		{
			name: "parallel edges",
			text: "digraph{A;1;B;A->1;A->1;1->B;}",
			want: transform.Levels{
				0: {"A": {}},
				1: {"1": {"A"}},
				2: {"B": {"1"}},
			},
		},
		{
			name: "unreachable finish",
			text: "digraph{A;1;B;A->1;}",
			want: transform.Levels{
				0: {"A": {}},
				1: {"1": {"A"}},
				2: {"B": {}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := transform.ToLevels(mustParse(t, tt.text))
			if err != nil {
				t.Fatalf("ToLevels: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ToLevels() =\n%v\nwant\n%v", got, tt.want)
			}
		})
	}
}

func TestToLevelsErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"missing start", "digraph{1;B;1->B;}", dag.ErrMissingTerminal},
		{"cycle", "digraph{A;1;2;3;B;A->1;1->2;2->3;3->1;3->B;}", dag.ErrCycle},
		{"cycle through start", "digraph{A;1;B;A->1;1->A;1->B;}", dag.ErrCycle},
		{"self loop", "digraph{A;1;B;A->1;1->1;}", dag.ErrCycle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := transform.ToLevels(mustParse(t, tt.text))
			if !errors.Is(err, tt.want) {
				t.Fatalf("ToLevels() = %v, want %v", err, tt.want)
			}
			if !apperr.Is(err, apperr.ErrCodeValidation) {
				t.Errorf("code = %q", apperr.GetCode(err))
			}
		})
	}
}

func TestToLevelsProperties(t *testing.T) {
	g := mustParse(t, `digraph {
		A; 1; 2; 3; 4; 5; 6; B;
		A -> 1; A -> 2; 1 -> 3; 2 -> 3; 3 -> 4; 2 -> 5; 5 -> 6; 4 -> B; 6 -> B; A -> B;
	}`)
	levels, err := transform.ToLevels(g)
	if err != nil {
		t.Fatalf("ToLevels: %v", err)
	}

	finish, ok := levels.LevelOf(dag.Finish)
	if !ok {
		t.Fatal("finish not assigned")
	}
	for _, level := range levels.Order() {
		for _, id := range levels.IDs(level) {
			if id != dag.Finish && level >= finish {
				t.Errorf("node %s at level %d, finish at %d", id, level, finish)
			}
			parents := levels[level][id]
			if !slices.IsSorted(parents) {
				t.Errorf("parents of %s not sorted: %v", id, parents)
			}
			for _, p := range parents {
				pl, _ := levels.LevelOf(p)
				if pl >= level {
					t.Errorf("parent %s (level %d) not above %s (level %d)", p, pl, id, level)
				}
			}
		}
	}
}

func TestLevelsJSON(t *testing.T) {
	levels, err := transform.ToLevels(mustParse(t, dot.Default))
	if err != nil {
		t.Fatalf("ToLevels: %v", err)
	}
	data, err := json.Marshal(levels)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if got, want := string(data), `{"0":{"A":[]},"1":{"B":["A"]}}`; got != want {
		t.Errorf("JSON = %s, want %s", got, want)
	}
}
