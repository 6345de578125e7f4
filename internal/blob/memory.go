package blob

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/paintsnap/server/internal/apperr"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryStore is an in-process Store used by tests and single-node
// deployments without object storage.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject)}
}

// Save writes the blob under a fresh key below the given prefix.
func (s *MemoryStore) Save(_ context.Context, prefix, contentType string, r io.Reader, _ int64) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", apperr.Dependency("storage failure: store image", err)
	}
	key := prefix + "/" + uuid.NewString()

	s.mu.Lock()
	s.objects[key] = memoryObject{data: data, contentType: contentType}
	s.mu.Unlock()
	return key, nil
}

// Open returns the blob contents and content type.
func (s *MemoryStore) Open(_ context.Context, key string) (io.ReadCloser, string, error) {
	s.mu.RLock()
	obj, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, "", apperr.NotFound("image not found")
	}
	return io.NopCloser(bytes.NewReader(obj.data)), obj.contentType, nil
}

// Remove deletes the blob; absent keys are treated as removed.
func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.objects, key)
	s.mu.Unlock()
	return nil
}

// Len reports the number of stored blobs. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
