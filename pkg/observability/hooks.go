// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about engine operations and graph storage.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the engine free of observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, logs)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEngineHooks(&myEngineHooks{})
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Engine().OnOperationStart(ctx, "rewrite", graphID)
//	// ... load, mutate, validate, save ...
//	observability.Engine().OnOperationComplete(ctx, "rewrite", graphID, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Engine Hooks
// =============================================================================

// EngineHooks receives events from graph engine operations.
type EngineHooks interface {
	// Operation events
	OnOperationStart(ctx context.Context, op string, graphID int64)
	OnOperationComplete(ctx context.Context, op string, graphID int64, duration time.Duration, err error)

	// OnRejected records a write refused because the resulting graph is invalid.
	OnRejected(ctx context.Context, op string, graphID int64, err error)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from graph record storage.
type StoreHooks interface {
	// OnLoad records a record read.
	OnLoad(ctx context.Context, backend string, id int64, duration time.Duration, err error)

	// OnSave records a record write; size is the length of the DOT text.
	OnSave(ctx context.Context, backend string, id int64, size int, duration time.Duration, err error)

	// OnDelete records a record removal.
	OnDelete(ctx context.Context, backend string, id int64, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEngineHooks is a no-op implementation of EngineHooks.
type NoopEngineHooks struct{}

func (NoopEngineHooks) OnOperationStart(context.Context, string, int64) {}
func (NoopEngineHooks) OnOperationComplete(context.Context, string, int64, time.Duration, error) {
}
func (NoopEngineHooks) OnRejected(context.Context, string, int64, error) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnLoad(context.Context, string, int64, time.Duration, error)      {}
func (NoopStoreHooks) OnSave(context.Context, string, int64, int, time.Duration, error) {}
func (NoopStoreHooks) OnDelete(context.Context, string, int64, error)                   {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	engineHooks EngineHooks = NoopEngineHooks{}
	storeHooks  StoreHooks  = NoopStoreHooks{}
	hooksMu     sync.RWMutex
)

// SetEngineHooks registers custom engine hooks.
// This should be called once at application startup before any engine operations.
func SetEngineHooks(h EngineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		engineHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any store operations.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Engine returns the registered engine hooks.
func Engine() EngineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return engineHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	engineHooks = NoopEngineHooks{}
	storeHooks = NoopStoreHooks{}
}
