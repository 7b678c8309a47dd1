// Package storage provides blob storage for uploaded documents behind a small
// Store interface keyed by relative path.
package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
)

// ErrBlobNotFound is returned when the backing blob is missing.
var ErrBlobNotFound = errors.New("blob not found")

// Store is the contract for blob storage backends.
type Store interface {
	Save(ctx context.Context, path string, content io.Reader) (int64, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Remove(ctx context.Context, path string) error
}

// DiskStore stores blobs as files under a base directory.
type DiskStore struct {
	baseDir string
}

var _ Store = (*DiskStore)(nil)

// NewDiskStore creates a disk-backed store rooted at baseDir.
func NewDiskStore(baseDir string) *DiskStore {
	return &DiskStore{baseDir: baseDir}
}

// Save writes content to path, creating parent directories as needed, and
// returns the number of bytes written.
func (s *DiskStore) Save(_ context.Context, path string, content io.Reader) (int64, error) {
	full := filepath.Join(s.baseDir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return 0, err
	}

	f, err := os.Create(full)
	if err != nil {
		return 0, err
	}

	written, err := io.Copy(f, content)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(full)
		return 0, err
	}
	return written, nil
}

// Open returns a reader over the blob at path.
func (s *DiskStore) Open(_ context.Context, path string) (io.ReadCloser, error) {
	full := filepath.Join(s.baseDir, filepath.FromSlash(path))
	f, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, err
	}
	return f, nil
}

// Remove deletes the blob at path. A missing blob yields ErrBlobNotFound so
// callers can decide whether the inconsistency is fatal.
func (s *DiskStore) Remove(_ context.Context, path string) error {
	full := filepath.Join(s.baseDir, filepath.FromSlash(path))
	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return ErrBlobNotFound
		}
		return err
	}
	return nil
}
