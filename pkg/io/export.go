package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/AnastasiaP261/sci-activity-doc/pkg/dag"
	"github.com/AnastasiaP261/sci-activity-doc/pkg/dag/meta"
	"github.com/AnastasiaP261/sci-activity-doc/pkg/dag/transform"
)

type graph struct {
	Nodes []node `json:"nodes"`
	Edges []edge `json:"edges"`
}

type node struct {
	ID    string    `json:"id"`
	Attrs dag.Attrs `json:"attrs,omitempty"`
}

type edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// View is the presentation payload of a graph: its layered structure and
// the decoded metadata of each step.
type View struct {
	Levels   transform.Levels         `json:"levels"`
	Metadata map[string]meta.NodeMeta `json:"metadata"`
}

// WriteJSON encodes g as JSON and writes it to w. Each declared node is
// written once with its attributes, followed by every edge.
// The output can be re-imported with [ReadJSON].
func WriteJSON(g *dag.Graph, w io.Writer) error {
	nodes := g.Nodes()
	edges := g.Edges()
	out := graph{
		Nodes: make([]node, len(nodes)),
		Edges: make([]edge, len(edges)),
	}
	for i, n := range nodes {
		out.Nodes[i] = node{ID: n.ID, Attrs: n.Attrs}
	}
	for i, e := range edges {
		out.Edges[i] = edge{From: e.From, To: e.To}
	}
	return encode(w, out)
}

// ExportJSON writes g to a JSON file at path.
func ExportJSON(g *dag.Graph, path string) error {
	return toFile(path, func(w io.Writer) error { return WriteJSON(g, w) })
}

// WriteLevels encodes a level structure as JSON.
func WriteLevels(levels transform.Levels, w io.Writer) error {
	return encode(w, levels)
}

// ExportLevels writes a level structure to a JSON file at path, ready to be
// edited and passed back through [ImportLevels].
func ExportLevels(levels transform.Levels, path string) error {
	return toFile(path, func(w io.Writer) error { return WriteLevels(levels, w) })
}

// WriteView encodes the presentation payload of a graph as JSON.
func WriteView(v View, w io.Writer) error {
	return encode(w, v)
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func toFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
