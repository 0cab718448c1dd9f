package dot_test

import (
	"fmt"
	"testing"

	"github.com/AnastasiaP261/sci-activity-doc/pkg/dot"
)

func Example() {
	g, err := dot.Parse(`digraph G {
		A;
		1 [title = "Collect_data"];
		B;
		A -> 1 -> B;
	}`)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(dot.Serialize(g))
	// Output:
	// digraph{A;1[title="Collect_data"];B;A->1;1->B;}
}

func TestCheckGraphviz(t *testing.T) {
	texts := []string{
		dot.Default,
		`digraph{A;1[subgraph=123,title="Cool_node"];"step two";B;A->1;1->B;}`,
	}
	for _, text := range texts {
		if err := dot.CheckGraphviz(text); err != nil {
			t.Errorf("CheckGraphviz(%q) = %v", text, err)
		}
	}
}
