package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/snapmatch/client-engine/internal/core/ports"
)

// File persists the session record as a single JSON document on the client
// device. Writes go through a temp file and rename so readers never observe
// a partially written record, even across processes.
type File struct {
	path string
}

// NewFile returns a file-backed repository at path.
func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Save(_ context.Context, rec ports.SessionRecord) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("session dir: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}

func (f *File) Load(_ context.Context) (ports.SessionRecord, bool, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return ports.SessionRecord{}, false, nil
	}
	if err != nil {
		return ports.SessionRecord{}, false, fmt.Errorf("read session: %w", err)
	}

	var rec ports.SessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return ports.SessionRecord{}, false, fmt.Errorf("decode session: %w", err)
	}
	return rec, true, nil
}

// Clear removes the session file. Already-absent is not an error.
func (f *File) Clear(_ context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
