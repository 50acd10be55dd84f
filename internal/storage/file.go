// Package storage provides durable implementations of the tour repository:
// a JSON file on disk, a Redis key, and a single-row Postgres table. All of
// them persist the same versioned state record; a load that cannot be
// decoded or carries an unknown schema version yields (nil, nil) so the
// store falls back to the initial empty state instead of crashing on
// corrupted data.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hearthside/tourplan/internal/tour"
)

// FileRepository persists the tour state as a JSON document on disk.
// Saves go through a temp file and rename so a crash mid-write never
// leaves a truncated record behind.
type FileRepository struct {
	path string
}

// NewFileRepository creates a repository writing to the given path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// Load reads the persisted state. A missing file, undecodable content, or
// unknown schema version all return (nil, nil).
func (r *FileRepository) Load(ctx context.Context) (*tour.State, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	return decodeState(data, json.Unmarshal)
}

// Save atomically replaces the persisted state.
func (r *FileRepository) Save(ctx context.Context, state *tour.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".tourplan-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// decodeState decodes a persisted record with the given unmarshal func
// and applies the schema-version fallback.
func decodeState(data []byte, unmarshal func([]byte, any) error) (*tour.State, error) {
	var state tour.State
	if err := unmarshal(data, &state); err != nil {
		slog.Warn("discarding undecodable persisted tour state", "error", err)
		return nil, nil
	}
	if state.SchemaVersion != tour.SchemaVersion {
		slog.Warn("discarding persisted tour state with unknown schema version",
			"version", state.SchemaVersion)
		return nil, nil
	}
	return &state, nil
}
