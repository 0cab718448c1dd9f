package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	apperr "github.com/AnastasiaP261/sci-activity-doc/pkg/errors"
	"github.com/AnastasiaP261/sci-activity-doc/pkg/store"
	badgerstore "github.com/AnastasiaP261/sci-activity-doc/pkg/store/badger"
	mongostore "github.com/AnastasiaP261/sci-activity-doc/pkg/store/mongo"
	redisstore "github.com/AnastasiaP261/sci-activity-doc/pkg/store/redis"
)

// Network backends get connectAttempts tries within connectTimeout.
const (
	connectTimeout  = 20 * time.Second
	connectAttempts = 3
)

// connectDelay is the pause after the first failed dial; it doubles after
// each further failure.
var connectDelay = time.Second

// openStore opens the backend named by cfg and wraps it with store hooks.
func openStore(ctx context.Context, cfg StoreConfig, logger *log.Logger) (store.Store, error) {
	var (
		s   store.Store
		err error
	)

	switch cfg.Backend {
	case backendMemory:
		s = store.NewMemoryStore()
	case backendFile, "":
		s, err = store.NewFileStore(cfg.Path)
	case backendBadger:
		path := cfg.Path
		if path == "" {
			dir, derr := store.DefaultDataDir()
			if derr != nil {
				return nil, derr
			}
			path = filepath.Join(dir, "badger")
		}
		s, err = badgerstore.Open(badgerstore.Config{Path: path, Logger: logger})
	case backendRedis:
		s, err = connect(ctx, os.Stderr, "redis at "+cfg.RedisAddr, func(ctx context.Context) (store.Store, error) {
			return redisstore.NewStore(ctx, redisstore.Config{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			})
		})
	case backendMongo:
		s, err = connect(ctx, os.Stderr, "MongoDB", func(ctx context.Context) (store.Store, error) {
			return mongostore.NewStore(ctx, mongostore.Config{
				URI:      cfg.MongoURI,
				Database: cfg.MongoDatabase,
			})
		})
	default:
		return nil, apperr.New(apperr.ErrCodeInvalidInput, "unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}

	backend := cfg.Backend
	if backend == "" {
		backend = backendFile
	}
	logger.Debug("store opened", "backend", backend)
	return store.Instrument(s, backend), nil
}

// connect runs dial under a timeout with a progress line on w. Failed dials
// are retried; an expired context is not.
func connect(ctx context.Context, w io.Writer, target string, dial func(context.Context) (store.Store, error)) (store.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	spinner := newDialSpinner(ctx, w, target, connectAttempts)
	spinner.Start()

	var (
		s       store.Store
		attempt int
	)
	err := store.Retry(ctx, connectAttempts, connectDelay, func() error {
		attempt++
		spinner.Attempt(attempt)
		var err error
		if s, err = dial(ctx); err != nil && ctx.Err() == nil {
			return &store.TransientError{Err: err}
		}
		return err
	})
	spinner.Finish(err)
	return s, err
}
