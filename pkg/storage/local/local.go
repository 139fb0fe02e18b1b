// Package local stores artifacts as files below a directory on disk.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"verifier/pkg/serrors"
	"verifier/pkg/storage"
)

// Options configure the local backend.
type Options struct {
	// Dir is the root directory artifacts are written below.
	Dir string
}

// Store implements storage.ArtifactStorage on the local filesystem.
type Store struct {
	dir string
}

var _ storage.ArtifactStorage = (*Store)(nil)

// New creates the root directory when needed and returns a Store over it.
func New(options Options) (*Store, error) {
	if options.Dir == "" {
		return nil, errors.New("local storage directory is not set")
	}

	if err := os.MkdirAll(options.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("could not create storage directory: %w", err)
	}

	return &Store{dir: options.Dir}, nil
}

func (s *Store) path(key string) (string, error) {
	if err := storage.ValidateKey(key); err != nil {
		return "", err
	}

	return filepath.Join(s.dir, filepath.FromSlash(key)), nil
}

// Put writes data to a temporary file next to its destination and renames it
// into place, so readers never observe a partially written artifact.
func (s *Store) Put(_ context.Context, key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	if err = os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("could not create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("could not create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("could not write artifact: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("could not close artifact: %w", err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("could not move artifact into place: %w", err)
	}

	return nil
}

// Open opens the artifact stored under key.
func (s *Store) Open(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, serrors.Wrap(serrors.ErrNotFound, err, "artifact %s not found", key)
		}

		return nil, fmt.Errorf("could not open artifact: %w", err)
	}

	return f, nil
}

// Delete removes the artifact stored under key.
func (s *Store) Delete(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	if err = os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("could not delete artifact: %w", err)
	}

	return nil
}
