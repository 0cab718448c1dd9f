// Package io provides JSON import and export for workflow graphs and their
// derived views.
//
// # Overview
//
// The DOT text (package dot) is the persisted form of a graph. JSON is the
// interchange form for clients and tooling:
//
//   - Graphs, as node and edge arrays, for tools that do not speak DOT
//   - Level structures, which clients edit and send back for a rewrite
//   - Views, the levels plus decoded step metadata, for rendering
//
// # Graph Format
//
//	{
//	  "nodes": [
//	    {"id": "A"},
//	    {"id": "1", "attrs": {"title": "Collect_data", "subgraph": "12"}},
//	    {"id": "B"}
//	  ],
//	  "edges": [
//	    {"from": "A", "to": "1"},
//	    {"from": "1", "to": "B"}
//	  ]
//	}
//
// Attribute values are strings exactly as stored in the DOT text.
//
// # Levels Format
//
// Level numbers become string keys; every node maps to its sorted parents:
//
//	{
//	  "0": {"A": []},
//	  "1": {"1": ["A"]},
//	  "2": {"B": ["1"]}
//	}
//
// # Round Trip
//
//	g, _ := dot.Parse(text)
//	io.ExportJSON(g, "graph.json")
//	g2, _ := io.ImportJSON("graph.json")
//
// g2 has the same nodes, attributes and edges as g. Node statements come
// before edge statements, so the serialized text may order them differently.
package io
