// Package pkg provides the libraries behind sciactivity, a store of research
// workflow graphs.
//
// # Overview
//
// A research study is documented by directed graphs of workflow steps. Each
// graph runs from the reserved start node "A" to the reserved finish node
// "B" and is persisted as DOT text. The pkg directory is organized into:
//
//  1. [dot] - DOT parsing and canonical serialization
//  2. [dag] - The owned graph structure and its invariants
//  3. [dag/transform] - Level decomposition, schema rewrite, node deletion
//  4. [dag/meta] - Per-node metadata (titles, subgraph links)
//  5. [engine] - Load, change, validate and commit graphs in a [store]
//
// # Architecture
//
// The flow of every engine operation:
//
//	store.Record (DOT text)
//	         ↓
//	    [dot] Parse
//	         ↓
//	    [dag] Graph  →  [dag/transform] / [dag/meta]
//	         ↓
//	    [dot] Serialize  →  Parse again  →  [dag] Validate
//	         ↓
//	    store.Save
//
// A graph is never saved unless its serialized text parses back into a
// graph that passes every check.
//
// # Quick Start
//
//	s := store.NewMemoryStore()
//	eng := engine.New(s, nil)
//
//	rec, _ := eng.Create(ctx, "Survey", "rs-1")
//	levels := transform.Levels{
//	    0: {"A": {}},
//	    1: {"1": {"A"}, "2": {"A"}},
//	    2: {"B": {"1", "2"}},
//	}
//	_, err := eng.Rewrite(ctx, rec.ID, levels)
//	if apperr.Is(err, apperr.ErrCodeValidation) {
//	    // the new schema was rejected; the stored graph is unchanged
//	}
//
// # Main Packages
//
// [errors] - Coded errors shared by every layer, with user-facing messages.
//
// [io] - JSON forms of graphs and level decompositions for the CLI.
//
// [store] - The record store interface with memory and file backends.
// Subpackages add Badger, Redis and MongoDB.
//
// [observability] - Hooks around engine operations and store calls.
//
// [buildinfo] - Version information set at build time.
//
// # Testing
//
//	go test ./pkg/...                                 # All tests
//	SCIACTIVITY_REDIS_ADDR=localhost:6379 go test ./pkg/store/redis
//	SCIACTIVITY_MONGO_URI=mongodb://localhost go test ./pkg/store/mongo
//
// [dot]: https://pkg.go.dev/github.com/AnastasiaP261/sci-activity-doc/pkg/dot
// [dag]: https://pkg.go.dev/github.com/AnastasiaP261/sci-activity-doc/pkg/dag
// [dag/transform]: https://pkg.go.dev/github.com/AnastasiaP261/sci-activity-doc/pkg/dag/transform
// [dag/meta]: https://pkg.go.dev/github.com/AnastasiaP261/sci-activity-doc/pkg/dag/meta
// [engine]: https://pkg.go.dev/github.com/AnastasiaP261/sci-activity-doc/pkg/engine
// [store]: https://pkg.go.dev/github.com/AnastasiaP261/sci-activity-doc/pkg/store
// [errors]: https://pkg.go.dev/github.com/AnastasiaP261/sci-activity-doc/pkg/errors
// [io]: https://pkg.go.dev/github.com/AnastasiaP261/sci-activity-doc/pkg/io
// [observability]: https://pkg.go.dev/github.com/AnastasiaP261/sci-activity-doc/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/AnastasiaP261/sci-activity-doc/pkg/buildinfo
package pkg
