package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryStorage keeps objects in process memory. It is used when no bucket is configured.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	contentType string
	body        []byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{objects: map[string]memoryObject{}}
}

func (m *MemoryStorage) PutObject(_ context.Context, objectKey string, contentType string, body []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectKey] = memoryObject{contentType: contentType, body: append([]byte(nil), body...)}
	return "memory://" + objectKey, nil
}

func (m *MemoryStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.objects[objectKey]; !ok {
		return "", ErrObjectNotFound
	}
	return "memory://" + objectKey, nil
}

func (m *MemoryStorage) DeleteObject(_ context.Context, objectKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[objectKey]; !ok {
		return ErrObjectNotFound
	}
	delete(m.objects, objectKey)
	return nil
}

// Has reports whether objectKey is stored.
func (m *MemoryStorage) Has(objectKey string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[objectKey]
	return ok
}
