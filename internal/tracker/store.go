package tracker

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Store persists client-local state as one JSON file per key, the
// same shape as the browser storage it replaces. Loads are defensive:
// a missing or corrupt file yields the zero value, never an error.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Load(key string, v any) {
	path := filepath.Join(s.dir, key+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("failed to read local state, starting empty", "key", key, "error", err)
		}
		return
	}

	if err := json.Unmarshal(data, v); err != nil {
		slog.Warn("corrupt local state, starting empty", "key", key, "error", err)
	}
}

// Save is best-effort: a write failure is logged, not propagated.
func (s *Store) Save(key string, v any) {
	path := filepath.Join(s.dir, key+".json")

	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to encode local state", "key", key, "error", err)
		return
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		slog.Error("failed to write local state", "key", key, "error", err)
	}
}
