// Package store persists query results as a single JSON document keyed by
// serial. The document is rewritten wholesale on every checkpoint; writes go
// to a temporary file and are swapped in atomically so a concurrent reader
// never observes a torn document.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/warrantylens/warrantylens/internal/core"
)

// DefaultPath is the store document location relative to the working
// directory.
const DefaultPath = "query_results.json"

// Store maps serials to their latest query result. All mutations arrive
// through the orchestrator's completion-handling path; readers take
// copy-on-read snapshots.
type Store struct {
	path   string
	logger *zap.Logger

	mu      sync.RWMutex
	results map[string]*core.QueryResult
}

// Open loads the store document at path. A missing or corrupt document
// yields an empty store, not an error; individual unreadable entries are
// skipped with a warning.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{
		path:    path,
		logger:  logger,
		results: make(map[string]*core.QueryResult),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("could not read store document, starting empty",
				zap.String("path", path), zap.Error(err))
		}
		return s, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Warn("store document is corrupt, starting empty",
			zap.String("path", path), zap.Error(err))
		return s, nil
	}

	for serial, entry := range raw {
		var result core.QueryResult
		if err := json.Unmarshal(entry, &result); err != nil {
			logger.Warn("skipping unreadable store entry",
				zap.String("serial", serial), zap.Error(err))
			continue
		}
		s.results[serial] = &result
	}

	return s, nil
}

// Path returns the store document location.
func (s *Store) Path() string {
	return s.path
}

// Put records the latest result for a serial, replacing any prior entry.
func (s *Store) Put(result *core.QueryResult) {
	if result == nil || result.Serial == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.Serial] = result
}

// Get returns the stored result for a serial, or nil.
func (s *Store) Get(serial string) *core.QueryResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results[serial]
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// Snapshot returns a consistent copy of the mapping, safe to read while a
// batch continues writing.
func (s *Store) Snapshot() map[string]*core.QueryResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(map[string]*core.QueryResult, len(s.results))
	for serial, result := range s.results {
		snapshot[serial] = result
	}
	return snapshot
}

// Serials returns the stored serials in sorted order.
func (s *Store) Serials() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	serials := make([]string, 0, len(s.results))
	for serial := range s.results {
		serials = append(serials, serial)
	}
	sort.Strings(serials)
	return serials
}

// Save rewrites the full document durably. The write lands in a temporary
// file first and replaces the document atomically.
func (s *Store) Save() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.results, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode store document: %w", err)
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create store directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp store document: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write store document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close store document: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace store document: %w", err)
	}

	return nil
}

// Clear drops every entry and deletes the durable document.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.results = make(map[string]*core.QueryResult)
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove store document: %w", err)
	}
	return nil
}
