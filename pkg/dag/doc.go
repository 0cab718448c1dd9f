// Package dag provides the in-memory structure of a research workflow graph.
//
// # Overview
//
// Every study is annotated with directed graphs whose nodes are workflow
// steps. Each graph is bounded by two reserved nodes, [Start] ("A") and
// [Finish] ("B"). The persisted form is a DOT text (see package dot); this
// package is the owned representation that text is parsed into: a node table
// (ID → attributes) plus an ordered list of node and edge statements.
//
// # Basic Usage
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: dag.Start})
//	g.AddNode(dag.Node{ID: "1", Attrs: dag.Attrs{dag.AttrTitle: "Collect_data"}})
//	g.AddNode(dag.Node{ID: dag.Finish})
//	g.AddEdge(dag.Edge{From: dag.Start, To: "1"})
//	g.AddEdge(dag.Edge{From: "1", To: dag.Finish})
//
//	if err := g.Validate(); err != nil {
//	    // errors.Is(err, dag.ErrCycle), ...
//	}
//
// # Invariants
//
// [Graph.Validate] enforces, cheapest first:
//
//   - start and finish are declared ([ErrMissingTerminal])
//   - no cycle is reachable from start ([ErrCycle])
//   - no ID is declared twice ([ErrDuplicateNodeID])
//   - every node is reachable from start ([ErrUnreachable])
//   - every edge endpoint is declared ([ErrUndeclaredEndpoint])
//
// A Graph deliberately tolerates all of these defects while being built, so
// a parsed text can be inspected and reported on before it is rejected.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. The engine derives a
// fresh Graph from committed text for every operation and never shares one
// between requests.
//
// # Related Packages
//
// The [transform] subpackage computes the layered view and rewrites graphs;
// the [meta] subpackage edits per-node metadata.
//
// [transform]: github.com/AnastasiaP261/sci-activity-doc/pkg/dag/transform
// [meta]: github.com/AnastasiaP261/sci-activity-doc/pkg/dag/meta
package dag
