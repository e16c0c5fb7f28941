package services

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Transactor runs fn in one database transaction carried by ctx.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TaskQueue hands exports to the generation workers. When ctx carries a
// transaction the task is published only if it commits.
type TaskQueue interface {
	EnqueueGeneration(ctx context.Context, exportID uuid.UUID, orderIDs []uuid.UUID) error
}

// FileStore keeps generated files. storage.Store satisfies it.
type FileStore interface {
	Save(ctx context.Context, name string, body io.Reader, size int64, contentType string) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}
