// Package dot reads and writes the DOT text encoding of workflow graphs.
//
// The text is the persisted form of a graph. Only the directed subset the
// engine needs is accepted: one digraph with node statements, optional node
// attribute lists and edge statements. Whitespace carries no meaning and is
// removed before parsing, which also means attribute values never contain
// spaces; titles encode spaces as underscores.
//
// # Round trip
//
//	g, err := dot.Parse(`digraph { A; 1 [title="Collect_data"]; B; A -> 1 -> B; }`)
//	if err != nil {
//	    // errors.Is(err, dot.ErrSyntax)
//	}
//	text := dot.Serialize(g) // digraph{A;1[title="Collect_data"];B;A->1;1->B;}
//
// Serialize is canonical: serializing a parsed canonical text returns the
// same text.
package dot
