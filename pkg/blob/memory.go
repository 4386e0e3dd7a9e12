package blob

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type object struct {
	data        []byte
	contentType string
}

// MemoryStore keeps objects in process memory. Used when no object store is configured and in
// tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]object
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]object)}
}

func (m *MemoryStore) Put(_ context.Context, bucket, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[bucket+"/"+key] = object{data: append([]byte(nil), data...), contentType: contentType}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, bucket, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, newError("get", bucket, key, ErrObjectNotFound)
	}
	return append([]byte(nil), obj.data...), nil
}

func (m *MemoryStore) URL(_ context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultURLExpiry
	}
	return fmt.Sprintf("memory://%s/%s?expires=%d", bucket, key, int(ttl.Seconds())), nil
}

func (m *MemoryStore) Copy(_ context.Context, bucket, src, dst string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	obj, ok := m.objects[bucket+"/"+src]
	if !ok {
		return newError("copy", bucket, src, ErrObjectNotFound)
	}
	m.objects[bucket+"/"+dst] = object{data: append([]byte(nil), obj.data...), contentType: obj.contentType}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.objects, bucket+"/"+key)
	return nil
}

// Exists reports whether the object is stored.
func (m *MemoryStore) Exists(bucket, key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.objects[bucket+"/"+key]
	return ok
}

// ContentType returns the content type the object was stored with.
func (m *MemoryStore) ContentType(bucket, key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.objects[bucket+"/"+key].contentType
}

// Len returns the number of objects in the bucket.
func (m *MemoryStore) Len(bucket string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	prefix := bucket + "/"
	for k := range m.objects {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}
