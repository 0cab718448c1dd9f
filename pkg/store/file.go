package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FileStore is a file-based record store for CLI use.
// Each record is stored as <id>.json in a data directory; the highest id
// ever assigned is kept in a "seq" file beside them so deleted ids are
// never handed out again.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a new file-based store.
// If baseDir is empty, defaults to $XDG_DATA_HOME/sciactivity/graphs/
// (~/.local/share/sciactivity/graphs/ when XDG_DATA_HOME is unset).
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return nil, err
		}
		baseDir = filepath.Join(dir, "graphs")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create graph dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// DefaultDataDir returns the directory for persistent application data.
func DefaultDataDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "sciactivity"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "sciactivity"), nil
}

func (s *FileStore) recordPath(id int64) string {
	return filepath.Join(s.baseDir, strconv.FormatInt(id, 10)+".json")
}

func (s *FileStore) Load(ctx context.Context, id int64) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(s.recordPath(id))
}

func (s *FileStore) read(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read graph file: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse graph file %s: %w", filepath.Base(path), err)
	}
	return &rec, nil
}

func (s *FileStore) Save(ctx context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, err := s.lastID()
	if err != nil {
		return err
	}
	if rec.ID == 0 {
		rec.ID = last + 1
	}
	if rec.ID > last {
		if err := writeAtomic(s.seqPath(), []byte(strconv.FormatInt(rec.ID, 10))); err != nil {
			return fmt.Errorf("advance graph id: %w", err)
		}
	}
	rec.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal graph: %w", err)
	}
	if err := writeAtomic(s.recordPath(rec.ID), data); err != nil {
		return fmt.Errorf("write graph file: %w", err)
	}
	return nil
}

func (s *FileStore) seqPath() string {
	return filepath.Join(s.baseDir, "seq")
}

// lastID returns the highest id ever assigned. Directories written before
// the seq file existed fall back to the largest record file.
func (s *FileStore) lastID() (int64, error) {
	var last int64
	data, err := os.ReadFile(s.seqPath())
	switch {
	case err == nil:
		last, err = strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse graph id sequence: %w", err)
		}
	case !os.IsNotExist(err):
		return 0, fmt.Errorf("read graph id sequence: %w", err)
	}

	ids, err := s.ids()
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		last = max(last, id)
	}
	return last, nil
}

// writeAtomic writes to a temp file and renames it so readers never see a
// partial file.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.recordPath(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("remove graph file: %w", err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context, studyID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids, err := s.ids()
	if err != nil {
		return nil, err
	}

	var out []Record
	for _, id := range ids {
		rec, err := s.read(s.recordPath(id))
		if err != nil {
			return nil, err
		}
		if rec.Matches(studyID) {
			out = append(out, *rec)
		}
	}
	SortByID(out)
	return out, nil
}

// ids returns the ids of all record files in the directory.
func (s *FileStore) ids() ([]int64, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read graph dir: %w", err)
	}

	var ids []int64
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(name, ".json"), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for record files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
