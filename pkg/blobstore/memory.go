package blobstore

import (
	"context"
	"sync"
)

// MemoryBackend keeps objects in process memory.
type MemoryBackend struct {
	mu      sync.RWMutex
	objects map[string]Object
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{objects: make(map[string]Object)}
}

func (m *MemoryBackend) Put(_ context.Context, obj Object) error {
	obj.Data = append([]byte(nil), obj.Data...)
	m.mu.Lock()
	m.objects[obj.Name] = obj
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Get(_ context.Context, name string) ([]byte, error) {
	m.mu.RLock()
	obj, ok := m.objects[name]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), obj.Data...), nil
}

// Stat returns the stored object with its attributes.
func (m *MemoryBackend) Stat(name string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[name]
	return obj, ok
}
