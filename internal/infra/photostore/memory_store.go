package photostore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/lunarfit/coach-api/internal/domain/traininglog"
)

// MemoryStore keeps photos in memory. Useful for tests and local dev.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]storedBlob
}

type storedBlob struct {
	data     []byte
	mimeType string
}

// NewMemoryStore constructs storage.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]storedBlob)}
}

// Put stores the photo bytes.
func (s *MemoryStore) Put(_ context.Context, key string, data []byte, mimeType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = storedBlob{data: data, mimeType: mimeType}
	return nil
}

// Get returns a reader for the stored photo.
func (s *MemoryStore) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[key]
	if !ok {
		return nil, "", fmt.Errorf("photo not found")
	}
	return io.NopCloser(bytes.NewReader(blob.data)), blob.mimeType, nil
}

// Delete removes the photo.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

var _ traininglog.ObjectStorage = (*MemoryStore)(nil)
