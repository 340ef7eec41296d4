// internal/storage/local.go
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalBackend keeps product files on the local filesystem. Used in
// development and tests; production runs the S3 backend.
type LocalBackend struct {
	dir string
}

func NewLocalBackend(dir string) (*LocalBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %s: %w", dir, err)
	}
	return &LocalBackend{dir: dir}, nil
}

// path flattens the object name so a crafted name cannot escape the root dir.
func (b *LocalBackend) path(name string) string {
	return filepath.Join(b.dir, filepath.Base(name))
}

func (b *LocalBackend) Exists(_ context.Context, name string) (bool, error) {
	_, err := os.Stat(b.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", name, err)
	}
	return true, nil
}

func (b *LocalBackend) Open(_ context.Context, name string) (io.ReadCloser, int64, error) {
	f, err := os.Open(b.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("failed to open %s: %w", name, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("failed to stat %s: %w", name, err)
	}
	return f, info.Size(), nil
}

func (b *LocalBackend) Save(_ context.Context, name string, r io.Reader, size int64) error {
	f, err := os.Create(b.path(name))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(b.path(name))
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return f.Close()
}

func (b *LocalBackend) Delete(_ context.Context, name string) error {
	if err := os.Remove(b.path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return nil
}
