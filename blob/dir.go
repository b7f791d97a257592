package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// Dir is a Store on the local filesystem, used for development when no
// bucket is configured. Content type is derived from the key's extension.
type Dir struct {
	root         string
	cacheControl string
}

// NewDir creates root if needed.
func NewDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("blob: create %s: %w", root, err)
	}
	return &Dir{root: root, cacheControl: "public, max-age=31536000, immutable"}, nil
}

func (d *Dir) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("blob: invalid key %q", key)
	}
	return filepath.Join(d.root, filepath.FromSlash(clean)), nil
}

func (d *Dir) Put(_ context.Context, key string, data []byte, _ Metadata) error {
	p, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("blob: put %s: %w", key, err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("blob: put %s: %w", key, err)
	}
	return nil
}

func (d *Dir) Get(ctx context.Context, key string) (*Object, error) {
	meta, err := d.Head(ctx, key)
	if err != nil {
		return nil, err
	}
	p, _ := d.path(key)
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("blob: get %s: %w", key, err)
	}
	return &Object{Metadata: meta, Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (d *Dir) Head(_ context.Context, key string) (Metadata, error) {
	p, err := d.path(key)
	if err != nil {
		return Metadata{}, err
	}
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Metadata{}, ErrNotFound
		}
		return Metadata{}, fmt.Errorf("blob: head %s: %w", key, err)
	}
	return Metadata{
		ContentType:  mime.TypeByExtension(filepath.Ext(p)),
		CacheControl: d.cacheControl,
		Size:         info.Size(),
	}, nil
}

func (d *Dir) Delete(_ context.Context, key string) error {
	p, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("blob: delete %s: %w", key, err)
	}
	return nil
}
