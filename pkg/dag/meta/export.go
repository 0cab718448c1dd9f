package meta

import "github.com/AnastasiaP261/sci-activity-doc/pkg/dag"

// NodeMeta is the display metadata of one step.
type NodeMeta struct {
	Title    string `json:"title"`
	Subgraph int64  `json:"subgraph"` // 0 when the step links no graph
}

// Export returns the display metadata of every declared step, keyed by
// node ID. Titles are decoded; a missing title is empty.
func Export(g *dag.Graph) map[string]NodeMeta {
	out := make(map[string]NodeMeta, g.NodeCount())
	for _, n := range g.Nodes() {
		out[n.ID] = NodeMeta{
			Title:    DecodeTitle(n.Attrs[dag.AttrTitle]),
			Subgraph: SubgraphID(n),
		}
	}
	return out
}

// Exists reports whether g declares a step with the given id.
func Exists(g *dag.Graph, id string) bool { return g.HasNode(id) }
