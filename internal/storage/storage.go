// internal/storage/storage.go
package storage

import (
	"context"
	"errors"
	"io"

	"github.com/horizonglow/marketplace-backend/internal/config"
)

// ErrNotFound is returned by Open when no object exists under the given name.
var ErrNotFound = errors.New("storage: object not found")

// Backend is the blob store holding product files. Object names are always
// produced by the storage namer; backends never interpret them.
type Backend interface {
	Exists(ctx context.Context, name string) (bool, error)
	Open(ctx context.Context, name string) (io.ReadCloser, int64, error)
	Save(ctx context.Context, name string, r io.Reader, size int64) error
	Delete(ctx context.Context, name string) error
}

// New builds the backend selected by configuration.
func New(cfg config.StorageConfig) (Backend, error) {
	switch cfg.Driver {
	case "s3":
		return NewS3Backend(cfg)
	case "local":
		return NewLocalBackend(cfg.LocalDir)
	}
	return nil, errors.New("storage: unknown driver " + cfg.Driver)
}
