package blob

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// Memory is an in-process Store for tests.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memObject
}

type memObject struct {
	data []byte
	meta Metadata
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memObject)}
}

func (m *Memory) Put(_ context.Context, key string, data []byte, meta Metadata) error {
	buf := append([]byte(nil), data...)
	meta.Size = int64(len(buf))
	m.mu.Lock()
	m.objects[key] = memObject{data: buf, meta: meta}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(_ context.Context, key string) (*Object, error) {
	m.mu.RLock()
	o, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return &Object{Metadata: o.meta, Body: io.NopCloser(bytes.NewReader(o.data))}, nil
}

func (m *Memory) Head(_ context.Context, key string) (Metadata, error) {
	m.mu.RLock()
	o, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return Metadata{}, ErrNotFound
	}
	return o.meta, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored objects.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
