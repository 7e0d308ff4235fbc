// Package filestore is the object storage abstraction behind catalog
// snapshots. Callers depend on Store; provider packages (minio, memstore)
// implement it.
package filestore

import (
	"context"
	"io"
)

// Store is implemented by every object storage provider. Provider errors
// are returned as *errs.Error.
type Store interface {
	Ping(ctx context.Context) error
	Close() error

	// EnsureBucket creates bucket unless it already exists.
	EnsureBucket(ctx context.Context, bucket string) error

	// PutObject stores size bytes from r under key, replacing any existing
	// object. size may be -1 when unknown.
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) (*ObjectInfo, error)

	ListObjects(ctx context.Context, bucket string, opts ListOptions) ([]ObjectInfo, error)

	// GetObject opens key for reading; ErrKindNotFound if it is absent.
	GetObject(ctx context.Context, bucket, key string) (Object, error)

	StatObject(ctx context.Context, bucket, key string) (*ObjectInfo, error)
}
