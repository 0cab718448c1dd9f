package transform

import (
	"maps"
	"slices"

	"github.com/AnastasiaP261/sci-activity-doc/pkg/dag"
	apperr "github.com/AnastasiaP261/sci-activity-doc/pkg/errors"
)

// Levels is the layered view of a graph: level → node ID → sorted IDs of the
// node's direct parents. A node without parents maps to an empty, non-nil
// slice so that it encodes as [] in JSON.
type Levels map[int]map[string][]string

// Order returns the level numbers in ascending order.
func (l Levels) Order() []int {
	return slices.Sorted(maps.Keys(l))
}

// IDs returns the node IDs of level in sorted order.
func (l Levels) IDs(level int) []string {
	return slices.Sorted(maps.Keys(l[level]))
}

// LevelOf returns the level a node is assigned to.
func (l Levels) LevelOf(id string) (int, bool) {
	for level, nodes := range l {
		if _, ok := nodes[id]; ok {
			return level, true
		}
	}
	return 0, false
}

// ToLevels assigns every node reachable from [dag.Start] to a level and
// records its direct parents.
//
// # Algorithm
//
// ToLevels computes longest-path depths with a topological traversal
// (Kahn's algorithm) restricted to the nodes reachable from start:
//  1. Count, for each reachable node, its incoming edges from reachable nodes
//  2. Start from [dag.Start] at level 0
//  3. Each dequeued node pushes its children to max(level + 1)
//  4. A child is enqueued once all of its reachable parents are processed
//
// A node's level is therefore the length of the longest path from start to
// it, not the shortest.
//
// [dag.Finish] is then placed strictly below everything else: its level is
// one plus the highest level of any other node. A dead-end branch that never
// reaches finish still ends above it.
//
// Parents are taken from every incoming edge, whether or not the parent is
// reachable, deduplicated and sorted.
//
// # Errors
//
// Returns a VALIDATION_ERROR wrapping [dag.ErrMissingTerminal] if start is
// not declared, or wrapping [dag.ErrCycle] if a cycle is reachable from start
// (the traversal never drains it).
//
// # Performance
//
// O(V + E) time over the reachable subgraph, plus sorting the parent lists.
func ToLevels(g *dag.Graph) (Levels, error) {
	if !g.HasNode(dag.Start) {
		return nil, apperr.ValidationError(dag.ErrMissingTerminal, "node %q is not declared", dag.Start)
	}

	reach := g.Reachable(dag.Start)
	inDegree := make(map[string]int, len(reach))
	for id := range reach {
		for _, p := range g.Parents(id) {
			if reach[p] {
				inDegree[id]++
			}
		}
	}
	if inDegree[dag.Start] > 0 {
		return nil, apperr.ValidationError(dag.ErrCycle, "node %q is on a cycle", dag.Start)
	}

	rows := map[string]int{dag.Start: 0}
	queue := []string{dag.Start}
	processed := 0

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		processed++

		for _, child := range g.Children(curr) {
			if row := rows[curr] + 1; row > rows[child] {
				rows[child] = row
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	if processed != len(reach) {
		return nil, apperr.ValidationError(dag.ErrCycle, "%d nodes are on or behind a cycle", len(reach)-processed)
	}

	if reach[dag.Finish] || g.HasNode(dag.Finish) {
		last := -1
		for id, row := range rows {
			if id != dag.Finish && row > last {
				last = row
			}
		}
		rows[dag.Finish] = last + 1
	}

	levels := make(Levels)
	for id, row := range rows {
		if levels[row] == nil {
			levels[row] = make(map[string][]string)
		}
		levels[row][id] = parentsOf(g, id)
	}
	return levels, nil
}

func parentsOf(g *dag.Graph, id string) []string {
	parents := dag.Unique(g.Parents(id))
	slices.Sort(parents)
	return parents
}
