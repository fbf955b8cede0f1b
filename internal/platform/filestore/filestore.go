// Package filestore provides binary storage for uploaded files. The Store
// interface hides the medium; DiskStore writes to a local directory, which is
// assumed durable for the process lifetime.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Store is the contract for the upload binary medium.
type Store interface {
	// Save writes content under the given name and returns the storage path
	// and the number of bytes written.
	Save(ctx context.Context, name string, content io.Reader) (string, int64, error)
	// Open returns a reader over a previously saved binary.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Remove deletes a stored binary. A binary that is already gone is not
	// an error; removal is idempotent.
	Remove(ctx context.Context, path string) error
}

// DiskStore stores binaries as flat files in a single directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the storage directory if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Save(_ context.Context, name string, content io.Reader) (string, int64, error) {
	// Uploads never dictate directory structure.
	path := filepath.Join(s.dir, filepath.Base(name))

	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create file: %w", err)
	}

	n, err := io.Copy(f, content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("write file: %w", err)
	}
	return path, n, nil
}

func (s *DiskStore) Open(_ context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

func (s *DiskStore) Remove(_ context.Context, path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}
