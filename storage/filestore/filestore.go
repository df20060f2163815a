// Package filestore keeps the persisted session in a JSON file so that a terminal
// client keeps its login across runs.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	apperrors "github.com/jrsteele09/baysawarr-web/internal/errors"
	"github.com/jrsteele09/baysawarr-web/storage"
)

const (
	fileMode = 0o600
	dirMode  = 0o700
)

// Store is a storage.Store backed by a single JSON object on disk
type Store struct {
	mu   sync.Mutex
	path string
}

var _ storage.Store = (*Store)(nil)

// New returns a store writing to path. The file is created on first write.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return "", err
	}
	value, ok := values[key]
	if !ok {
		return "", apperrors.Wrapf(storage.ErrNotFound, "[filestore Get] %s", key)
	}
	return value, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	values[key] = value
	return s.write(values)
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return s.write(values)
}

func (s *Store) read() (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[filestore read] %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("[filestore read] decode %s: %w", s.path, err)
	}
	return values, nil
}

// write replaces the file atomically via a temp file in the same directory
func (s *Store) write(values map[string]string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("[filestore write] mkdir %s: %w", dir, err)
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("[filestore write] encode: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("[filestore write] temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("[filestore write] %w", err)
	}
	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("[filestore write] chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[filestore write] close: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("[filestore write] rename: %w", err)
	}
	return nil
}
