// Package engine runs request-scoped operations on persisted workflow graphs.
//
// The engine keeps no parsed graphs between calls. Every operation loads the
// record's DOT text from a [store.Store], parses it, applies one change,
// serializes the result, and saves it only after the serialized text parses
// back into a valid graph. A rejected write leaves the stored text untouched.
//
// # Usage
//
//	eng := engine.New(store.NewMemoryStore(), logger)
//
//	rec, err := eng.Create(ctx, "Sample preparation", "rs-1")
//	if err != nil {
//	    return err
//	}
//	view, err := eng.Get(ctx, rec.ID)
//	// view.Levels: level -> node -> parents
//	// view.Metadata: node -> {title, subgraph}
//
// Every error leaving the engine carries a code from pkg/errors.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/AnastasiaP261/sci-activity-doc/pkg/dag"
	"github.com/AnastasiaP261/sci-activity-doc/pkg/dag/meta"
	"github.com/AnastasiaP261/sci-activity-doc/pkg/dag/transform"
	"github.com/AnastasiaP261/sci-activity-doc/pkg/dot"
	apperr "github.com/AnastasiaP261/sci-activity-doc/pkg/errors"
	"github.com/AnastasiaP261/sci-activity-doc/pkg/observability"
	"github.com/AnastasiaP261/sci-activity-doc/pkg/store"
)

// ErrSelfLink is returned when a step is linked to the graph that contains it.
var ErrSelfLink = errors.New("graph cannot link to itself")

// Operation names passed to observability hooks and logs.
const (
	OpCreate        = "create"
	OpImport        = "import"
	OpGet           = "get"
	OpLevels        = "levels"
	OpNodesMetadata = "nodes_metadata"
	OpNodeExists    = "node_exists"
	OpRewrite       = "rewrite"
	OpEditNode      = "edit_node"
	OpDeleteNode    = "delete_node"
	OpRename        = "rename"
	OpDelete        = "delete"
	OpList          = "list"
)

// Engine executes graph operations against a store.
//
// An Engine holds no per-graph state, so one instance can serve concurrent
// callers as long as its store is safe for concurrent use.
type Engine struct {
	store  store.Store
	logger *log.Logger
}

// New creates an engine backed by s. A nil logger uses log.Default().
func New(s store.Store, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{store: s, logger: logger}
}

// Graph is the read model of one persisted graph.
type Graph struct {
	Record   store.Record             `json:"record"`
	Levels   transform.Levels         `json:"levels"`
	Metadata map[string]meta.NodeMeta `json:"metadata"`
}

// Create stores a new graph with the default A->B skeleton.
func (e *Engine) Create(ctx context.Context, title, studyID string) (*store.Record, error) {
	var rec *store.Record
	err := e.run(ctx, OpCreate, 0, func(l *log.Logger) error {
		if err := validateRecord(title, studyID); err != nil {
			return err
		}
		g, err := dot.Parse(dot.Default)
		if err != nil {
			return apperr.Wrap(apperr.ErrCodeInternal, err, "default graph")
		}
		rec = &store.Record{Title: title, StudyID: studyID}
		return e.commit(ctx, l, rec, g)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Import stores g as a new graph. g must satisfy every structural invariant.
func (e *Engine) Import(ctx context.Context, title, studyID string, g *dag.Graph) (*store.Record, error) {
	var rec *store.Record
	err := e.run(ctx, OpImport, 0, func(l *log.Logger) error {
		if err := validateRecord(title, studyID); err != nil {
			return err
		}
		if g == nil {
			return apperr.New(apperr.ErrCodeInvalidInput, "graph is required")
		}
		rec = &store.Record{Title: title, StudyID: studyID}
		return e.commit(ctx, l, rec, g)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Get returns the record of graph id with its level decomposition and node
// metadata.
func (e *Engine) Get(ctx context.Context, id int64) (*Graph, error) {
	var out *Graph
	err := e.run(ctx, OpGet, id, func(*log.Logger) error {
		rec, g, err := e.load(ctx, id)
		if err != nil {
			return err
		}
		levels, err := transform.ToLevels(g)
		if err != nil {
			return err
		}
		out = &Graph{Record: *rec, Levels: levels, Metadata: meta.Export(g)}
		return nil
	})
	return out, err
}

// Levels returns the level decomposition of graph id.
func (e *Engine) Levels(ctx context.Context, id int64) (transform.Levels, error) {
	var levels transform.Levels
	err := e.run(ctx, OpLevels, id, func(*log.Logger) error {
		_, g, err := e.load(ctx, id)
		if err != nil {
			return err
		}
		levels, err = transform.ToLevels(g)
		return err
	})
	return levels, err
}

// NodesMetadata returns the display metadata of every node of graph id.
func (e *Engine) NodesMetadata(ctx context.Context, id int64) (map[string]meta.NodeMeta, error) {
	var out map[string]meta.NodeMeta
	err := e.run(ctx, OpNodesMetadata, id, func(*log.Logger) error {
		_, g, err := e.load(ctx, id)
		if err != nil {
			return err
		}
		out = meta.Export(g)
		return nil
	})
	return out, err
}

// NodeExists reports whether graph id declares nodeID.
func (e *Engine) NodeExists(ctx context.Context, id int64, nodeID string) (bool, error) {
	var ok bool
	err := e.run(ctx, OpNodeExists, id, func(*log.Logger) error {
		_, g, err := e.load(ctx, id)
		if err != nil {
			return err
		}
		ok = meta.Exists(g, nodeID)
		return nil
	})
	return ok, err
}

// Rewrite replaces the structure of graph id with the one described by
// levels. Attributes of nodes kept by the rewrite are preserved.
func (e *Engine) Rewrite(ctx context.Context, id int64, levels transform.Levels) (*store.Record, error) {
	var rec *store.Record
	err := e.run(ctx, OpRewrite, id, func(l *log.Logger) error {
		prev, g, err := e.load(ctx, id)
		if err != nil {
			return err
		}
		next, err := transform.Rewrite(g, levels)
		if err != nil {
			return err
		}
		rec = prev
		return e.commit(ctx, l, rec, next)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// EditNode applies req to the metadata of nodeID in graph id. A newly linked
// sub-graph must exist and must not be graph id itself.
func (e *Engine) EditNode(ctx context.Context, id int64, nodeID string, req meta.Request) (meta.Change, error) {
	var change meta.Change
	err := e.run(ctx, OpEditNode, id, func(l *log.Logger) error {
		rec, g, err := e.load(ctx, id)
		if err != nil {
			return err
		}
		change, err = meta.Edit(g, nodeID, req)
		if err != nil {
			return err
		}
		if change == meta.ChangeLink || change == meta.ChangeRelink {
			if err := e.checkLink(ctx, id, req.SubgraphID); err != nil {
				return err
			}
		}
		l.Debug("node edited", "node", nodeID, "change", change)
		return e.commit(ctx, l, rec, g)
	})
	if err != nil {
		return "", err
	}
	return change, nil
}

func (e *Engine) checkLink(ctx context.Context, id, target int64) error {
	if target == id {
		return apperr.BadRequest(ErrSelfLink, "graph %d", id)
	}
	if _, err := e.store.Load(ctx, target); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound(err, "linked graph %d", target)
		}
		return apperr.Wrap(apperr.ErrCodeInternal, err, "load linked graph %d", target)
	}
	return nil
}

// DeleteNode removes nodeID from graph id and connects each of its parents
// to each of its children.
func (e *Engine) DeleteNode(ctx context.Context, id int64, nodeID string) error {
	return e.run(ctx, OpDeleteNode, id, func(l *log.Logger) error {
		rec, g, err := e.load(ctx, id)
		if err != nil {
			return err
		}
		if err := transform.DeleteNode(g, nodeID); err != nil {
			return err
		}
		return e.commit(ctx, l, rec, g)
	})
}

// Rename changes the title of graph id.
func (e *Engine) Rename(ctx context.Context, id int64, title string) error {
	return e.run(ctx, OpRename, id, func(l *log.Logger) error {
		if err := apperr.ValidateTitle(title); err != nil {
			return err
		}
		rec, g, err := e.load(ctx, id)
		if err != nil {
			return err
		}
		rec.Title = title
		return e.commit(ctx, l, rec, g)
	})
}

// Delete removes graph id.
func (e *Engine) Delete(ctx context.Context, id int64) error {
	return e.run(ctx, OpDelete, id, func(*log.Logger) error {
		if err := e.store.Delete(ctx, id); err != nil {
			return storeErr(err, id)
		}
		return nil
	})
}

// List returns the records of studyID ordered by id. An empty studyID lists
// every graph.
func (e *Engine) List(ctx context.Context, studyID string) ([]store.Record, error) {
	var recs []store.Record
	err := e.run(ctx, OpList, 0, func(*log.Logger) error {
		var err error
		recs, err = e.store.List(ctx, studyID)
		if err != nil {
			return apperr.Wrap(apperr.ErrCodeInternal, err, "list graphs")
		}
		return nil
	})
	return recs, err
}

// load fetches and parses graph id.
func (e *Engine) load(ctx context.Context, id int64) (*store.Record, *dag.Graph, error) {
	rec, err := e.store.Load(ctx, id)
	if err != nil {
		return nil, nil, storeErr(err, id)
	}
	g, err := dot.Parse(rec.Data)
	if err != nil {
		return nil, nil, err
	}
	return rec, g, nil
}

// commit serializes g into rec and saves it. The serialized text is parsed
// again and validated first, so only text that reloads into a valid graph
// is ever stored.
func (e *Engine) commit(ctx context.Context, l *log.Logger, rec *store.Record, g *dag.Graph) error {
	text := dot.Serialize(g)
	reparsed, err := dot.Parse(text)
	if err != nil {
		return apperr.Wrap(apperr.ErrCodeInternal, err, "serialized graph does not parse")
	}
	if err := reparsed.Validate(); err != nil {
		return err
	}

	rec.Data = text
	if err := e.store.Save(ctx, rec); err != nil {
		return apperr.Wrap(apperr.ErrCodeInternal, err, "save graph")
	}
	l.Debug("graph saved", "graph", rec.ID, "nodes", reparsed.NodeCount(), "edges", reparsed.EdgeCount())
	return nil
}

// run wraps one operation with an op id, logging and hooks.
func (e *Engine) run(ctx context.Context, op string, id int64, fn func(l *log.Logger) error) error {
	l := e.logger.With("op", op, "op_id", uuid.NewString())
	if id != 0 {
		l = l.With("graph", id)
	}

	hooks := observability.Engine()
	hooks.OnOperationStart(ctx, op, id)
	start := time.Now()

	err := fn(l)
	duration := time.Since(start)
	hooks.OnOperationComplete(ctx, op, id, duration, err)

	switch {
	case err == nil:
		l.Debug("done", "duration", duration)
	case rejected(err):
		hooks.OnRejected(ctx, op, id, err)
		l.Warn("rejected", "err", err)
	default:
		l.Debug("failed", "err", err)
	}
	return err
}

// rejected reports whether err is a refusal of the caller's request rather
// than a failure of the engine or its store.
func rejected(err error) bool {
	switch apperr.GetCode(err) {
	case apperr.ErrCodeValidation, apperr.ErrCodeBadRequest, apperr.ErrCodeInvalidInput, apperr.ErrCodeParse:
		return true
	}
	return false
}

func storeErr(err error, id int64) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(err, "graph %d", id)
	}
	return apperr.Wrap(apperr.ErrCodeInternal, err, "graph %d", id)
}

func validateRecord(title, studyID string) error {
	if err := apperr.ValidateTitle(title); err != nil {
		return err
	}
	return apperr.ValidateStudyID(studyID)
}
