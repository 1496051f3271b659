package artifact

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/museworks/muse-api/internal/domain"
)

// MemoryStore is an in-process Store keeping artifacts in a map guarded
// by an RWMutex. Data is copied on save and retrieval to avoid external
// mutation of internal buffers. It enforces no retention or quota; a
// durable implementation should replace it for multi-process deployments.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]domain.Blob
}

// Ensure MemoryStore implements the Store interface
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory artifact store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]domain.Blob)}
}

// Save stores a copy of the blob under a fresh reference.
func (s *MemoryStore) Save(_ context.Context, blob *domain.Blob) (string, error) {
	ref := RefScheme + uuid.New().String()

	cp := make([]byte, len(blob.Data))
	copy(cp, blob.Data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[ref] = domain.Blob{Data: cp, MIMEType: blob.MIMEType}

	return ref, nil
}

// Get returns a copy of the stored blob or ErrNotFound. Both the full
// reference and the bare ID after the scheme prefix resolve.
func (s *MemoryStore) Get(_ context.Context, ref string) (*domain.Blob, error) {
	if !strings.HasPrefix(ref, RefScheme) {
		ref = RefScheme + ref
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[ref]
	if !ok {
		return nil, ErrNotFound
	}

	cp := make([]byte, len(blob.Data))
	copy(cp, blob.Data)
	return &domain.Blob{Data: cp, MIMEType: blob.MIMEType}, nil
}
