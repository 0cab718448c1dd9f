// Package transform derives and rewrites the structure of workflow graphs.
//
// # Overview
//
// Workflow graphs are edited in two shapes. The layered view groups steps by
// their depth from start so a client can render them row by row and move
// them around; the graph itself is what gets persisted. This package converts
// between the two and implements the one structural mutation that operates
// on the graph directly.
//
// # Level Decomposition
//
// [ToLevels] assigns each step the length of the longest path from start and
// forces finish below everything else:
//
//	digraph{A;1;2;B;A->1;1->2;A->2;2->B;}
//
//	0: A []
//	1: 1 [A]
//	2: 2 [1 A]
//	3: B [2]
//
// # Schema Rewrite
//
// [Rewrite] is the inverse: given an edited [Levels] value and the previous
// graph, it rebuilds the node and edge set from the parent lists while
// keeping the attributes of steps that already existed.
//
// # Node Deletion
//
// [DeleteNode] removes a step and connects each of its parents to each of
// its children, so deleting a step never disconnects the workflow.
//
// None of these functions validate their result. The engine validates the
// serialized graph before it is saved.
package transform
