// Package storage keeps generated export files. Production uses an S3
// compatible bucket (MinIO); development and tests use a local directory.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/ghuser/orderdesk/pkg/config"
	"github.com/ghuser/orderdesk/pkg/logger"
)

var (
	// ErrNotFound is returned by Open when no object exists under the name.
	ErrNotFound = errors.New("file not found")
	// ErrInvalidName rejects names that would escape the storage root.
	ErrInvalidName = errors.New("invalid file name")
)

// Store saves and opens named blobs. Names are slash separated relative paths.
type Store interface {
	Save(ctx context.Context, name string, body io.Reader, size int64, contentType string) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Ping(ctx context.Context) error
}

// New builds the backend selected by STORAGE_BACKEND.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (Store, error) {
	switch cfg.StorageBackend {
	case config.StorageMinio:
		return NewMinioStore(ctx, MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			Bucket:    cfg.MinioBucket,
			AccessKey: cfg.MinioRootUser,
			SecretKey: cfg.MinioRootPassword,
			UseSSL:    cfg.MinioUseSSL,
		}, log)
	case config.StorageLocal, "":
		return NewLocalStore(cfg.StorageDir)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.StorageBackend)
	}
}

// cleanName normalises name and rejects absolute or parent-relative paths.
func cleanName(name string) (string, error) {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, `\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	cleaned := path.Clean(name)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return cleaned, nil
}
