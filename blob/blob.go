// Package blob stores uploaded file bytes, addressed by key, separately from
// the relational metadata that references them.
package blob

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get and Head when no object exists at key.
var ErrNotFound = errors.New("blob: object not found")

// Metadata describes a stored object.
type Metadata struct {
	ContentType  string
	CacheControl string
	Size         int64
}

// Object is an open blob. Callers must close Body.
type Object struct {
	Metadata
	Body io.ReadCloser
}

// Store is the object-store contract the site depends on.
type Store interface {
	Put(ctx context.Context, key string, data []byte, meta Metadata) error
	Get(ctx context.Context, key string) (*Object, error)
	Head(ctx context.Context, key string) (Metadata, error)
	Delete(ctx context.Context, key string) error
}
