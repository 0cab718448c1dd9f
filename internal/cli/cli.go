package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/AnastasiaP261/sci-activity-doc/pkg/engine"
	apperr "github.com/AnastasiaP261/sci-activity-doc/pkg/errors"
	"github.com/AnastasiaP261/sci-activity-doc/pkg/observability/prom"
	"github.com/AnastasiaP261/sci-activity-doc/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "sciactivity"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
	config     Config
	metrics    *prom.Hooks // nil unless [metrics] textfile is set

	// openStore is swapped out in tests.
	openStore func(ctx context.Context, cfg StoreConfig, logger *log.Logger) (store.Store, error)
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:    newLogger(w, level),
		config:    DefaultConfig(),
		openStore: openStore,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Engine Factory
// =============================================================================

// withEngine opens the configured store, runs fn with an engine on top of
// it, and closes the store again. Metrics are flushed last.
func (c *CLI) withEngine(ctx context.Context, fn func(*engine.Engine) error) error {
	defer c.flushMetrics()

	s, err := c.openStore(ctx, c.config.Store, c.Logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			c.Logger.Warn("close store", "err", err)
		}
	}()
	return fn(engine.New(s, c.Logger))
}

func (c *CLI) flushMetrics() {
	if c.metrics == nil {
		return
	}
	path := c.config.Metrics.Textfile
	if err := c.metrics.WriteTextfile(path); err != nil {
		c.Logger.Warn("write metrics", "path", path, "err", err)
		return
	}
	c.Logger.Debug("metrics written", "path", path)
}

// =============================================================================
// Argument Helpers
// =============================================================================

// parseGraphID parses a positional graph id.
func parseGraphID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.New(apperr.ErrCodeInvalidInput, "graph id must be a positive integer, got %q", arg)
	}
	return id, nil
}

// FormatError renders err for the terminal. Coded errors show their
// message and cause followed by the code.
func FormatError(err error) string {
	var e *apperr.Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return fmt.Sprintf("%s [%s]", msg, e.Code)
}
