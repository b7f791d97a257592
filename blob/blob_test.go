package blob

import (
	"context"
	"errors"
	"io"
	"testing"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	key := "media/1700000000000-abc.png"

	if _, err := s.Head(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Head before Put: got %v, want ErrNotFound", err)
	}
	if _, err := s.Get(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get before Put: got %v, want ErrNotFound", err)
	}

	data := []byte("not really a png")
	if err := s.Put(ctx, key, data, Metadata{ContentType: "image/png", CacheControl: "public, max-age=60"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	meta, err := s.Head(ctx, key)
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if meta.Size != int64(len(data)) {
		t.Errorf("Size = %d, want %d", meta.Size, len(data))
	}
	if meta.ContentType != "image/png" {
		t.Errorf("ContentType = %q, want image/png", meta.ContentType)
	}

	obj, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	got, _ := io.ReadAll(obj.Body)
	obj.Body.Close()
	if string(got) != string(data) {
		t.Errorf("Get body = %q, want %q", got, data)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Head(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Errorf("Head after Delete: got %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Errorf("Delete of missing key should succeed, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestDirStore(t *testing.T) {
	d, err := NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	exerciseStore(t, d)
}

func TestDirRejectsTraversal(t *testing.T) {
	d, err := NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	if err := d.Put(context.Background(), "../escape.txt", []byte("x"), Metadata{}); err == nil {
		t.Fatal("expected traversal key to be rejected")
	}
}
