// Package store persists and reloads the metadata snapshot. The snapshot
// file is the sole coordination point between pipeline phases: crawl and
// extraction write it, every later phase reloads it and never touches live
// pages again.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/offlinetalks/talkscraper/internal/catalog"
)

// ErrMissingSnapshot is returned by Load when no snapshot file exists.
// Phases other than the scrape phase must treat this as a fatal
// precondition failure and tell the user to run the scrape phase first.
var ErrMissingSnapshot = errors.New("metadata snapshot not found")

// Snapshot reads and writes the talk collection at a fixed path.
type Snapshot struct {
	path string
}

// New builds a Snapshot rooted at path.
func New(path string) *Snapshot {
	return &Snapshot{path: path}
}

// Path returns the snapshot file location.
func (s *Snapshot) Path() string {
	return s.path
}

// Save writes the whole collection as one pretty-printed JSON array,
// creating parent directories as needed. An existing file is overwritten;
// there is no merge.
func (s *Snapshot) Save(talks []catalog.Talk) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	payload, err := json.MarshalIndent(talks, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(s.path, payload, 0o600); err != nil {
		return fmt.Errorf("write snapshot %s: %w", s.path, err)
	}
	return nil
}

// Load reads the collection back, preserving order. A missing file yields
// ErrMissingSnapshot.
func (s *Snapshot) Load() ([]catalog.Talk, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s (run the scrape phase first)", ErrMissingSnapshot, s.path)
		}
		return nil, fmt.Errorf("read snapshot %s: %w", s.path, err)
	}
	var talks []catalog.Talk
	if err := json.Unmarshal(payload, &talks); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}
	return talks, nil
}
