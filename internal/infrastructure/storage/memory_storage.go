package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
)

var _ catalogapp.ImageStorage = (*MemoryObjectStorage)(nil)

// StoredObject is an object held by MemoryObjectStorage
type StoredObject struct {
	Data        []byte
	ContentType string
}

// MemoryObjectStorage keeps objects in a map. It backs local development
// without an S3 endpoint and the upload handler tests.
type MemoryObjectStorage struct {
	// BaseURL prefixes the URLs returned by PublicURL
	BaseURL string

	mu      sync.RWMutex
	objects map[string]StoredObject
}

// NewMemoryObjectStorage creates an empty MemoryObjectStorage
func NewMemoryObjectStorage(baseURL string) *MemoryObjectStorage {
	if baseURL == "" {
		baseURL = "/uploads"
	}
	return &MemoryObjectStorage{
		BaseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]StoredObject),
	}
}

// Upload implements catalog.ImageStorage
func (s *MemoryObjectStorage) Upload(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	if key == "" {
		return ErrEmptyKey
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = StoredObject{Data: buf.Bytes(), ContentType: contentType}
	return nil
}

// Delete implements catalog.ImageStorage
func (s *MemoryObjectStorage) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// PublicURL implements catalog.ImageStorage
func (s *MemoryObjectStorage) PublicURL(key string) string {
	return s.BaseURL + "/" + strings.TrimLeft(key, "/")
}

// Get returns a stored object
func (s *MemoryObjectStorage) Get(key string) (StoredObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj, ok
}

// Len returns the number of stored objects
func (s *MemoryObjectStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
