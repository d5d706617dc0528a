package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileName is the cache file created in the working directory.
const DefaultFileName = "cache.json"

// FileBackend keeps the record as a JSON object in a single file.
type FileBackend struct {
	Path string
}

// NewFileBackend returns a backend for path, or DefaultFileName when path is empty.
func NewFileBackend(path string) *FileBackend {
	if path == "" {
		path = DefaultFileName
	}
	return &FileBackend{Path: path}
}

func (b *FileBackend) Load(_ context.Context) (Record, error) {
	var record Record

	data, err := os.ReadFile(b.Path)
	if err != nil {
		return record, fmt.Errorf("failed to read cache file: %w", err)
	}

	if err := json.Unmarshal(data, &record); err != nil {
		return Record{}, fmt.Errorf("failed to parse cache file %s: %w", b.Path, err)
	}

	return record, nil
}

// Save replaces the whole file atomically: the record is written to a
// temporary file in the same directory and renamed over the old one. The
// session grants account access, so the file is only readable by the owner.
func (b *FileBackend) Save(_ context.Context, record Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(b.Path), filepath.Base(b.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	if err := os.Rename(tmp.Name(), b.Path); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}

	return nil
}
