package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/AnastasiaP261/sci-activity-doc/pkg/dag"
	"github.com/AnastasiaP261/sci-activity-doc/pkg/dag/transform"
)

// ReadJSON decodes a JSON graph from r.
//
// The input must be a JSON object with "nodes" and "edges" arrays:
//
//	{
//	  "nodes": [{"id": "A"}, {"id": "1", "attrs": {"title": "Collect_data"}}, {"id": "B"}],
//	  "edges": [{"from": "A", "to": "1"}, {"from": "1", "to": "B"}]
//	}
//
// Nodes are added in array order, then edges. ReadJSON returns an error if
// the JSON is malformed, a node ID is empty or repeated, or an edge has an
// empty endpoint. Edges to undeclared nodes are accepted; validating the
// graph is up to the caller. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*dag.Graph, error) {
	var data graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	g := dag.New()
	for _, n := range data.Nodes {
		if err := g.AddNode(dag.Node{ID: n.ID, Attrs: n.Attrs}); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}
	for _, e := range data.Edges {
		if err := g.AddEdge(dag.Edge{From: e.From, To: e.To}); err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
	}
	return g, nil
}

// ImportJSON reads a JSON graph file at path. See [ReadJSON].
func ImportJSON(path string) (*dag.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// ReadLevels decodes a level structure, as produced by [WriteLevels] or
// edited by a client, from r. Level keys are JSON strings holding integers.
// A null parent list decodes to an empty one.
func ReadLevels(r io.Reader) (transform.Levels, error) {
	var levels transform.Levels
	if err := json.NewDecoder(r).Decode(&levels); err != nil {
		return nil, fmt.Errorf("decode levels: %w", err)
	}
	for _, nodes := range levels {
		for id, parents := range nodes {
			if parents == nil {
				nodes[id] = []string{}
			}
		}
	}
	return levels, nil
}

// ImportLevels reads a level structure file at path. See [ReadLevels].
func ImportLevels(path string) (transform.Levels, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadLevels(f)
}
