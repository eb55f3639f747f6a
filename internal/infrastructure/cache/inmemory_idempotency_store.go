package cache

import (
	"context"
	"sync"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
)

// DefaultCleanupInterval is how often expired keys are swept from the in-memory store
const DefaultCleanupInterval = 5 * time.Minute

// InMemoryIdempotencyStore keeps processed keys (payment capture IDs) in a map
// with per-key expiry. State is per process, so it only guards a single instance.
type InMemoryIdempotencyStore struct {
	mu        sync.Mutex
	expiry    map[string]time.Time
	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryIdempotencyStore creates the store and starts the sweeper
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return NewInMemoryIdempotencyStoreWithInterval(DefaultCleanupInterval)
}

// NewInMemoryIdempotencyStoreWithInterval creates the store with a custom sweep interval
func NewInMemoryIdempotencyStoreWithInterval(interval time.Duration) *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		expiry: make(map[string]time.Time),
		stop:   make(chan struct{}),
	}
	s.wg.Add(1)
	go s.sweep(interval)
	return s
}

// MarkProcessed records key until ttl elapses. It reports false when the key
// is already recorded and unexpired.
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if exp, ok := s.expiry[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.expiry[key] = now.Add(ttl)
	return true, nil
}

// IsProcessed reports whether key is recorded and unexpired
func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.expiry[key]
	return ok && time.Now().Before(exp), nil
}

// Release forgets key, used when the guarded operation failed
func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.expiry, key)
	s.mu.Unlock()
	return nil
}

// Close stops the sweeper. It is safe to call more than once.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
		s.wg.Wait()
	})
	return nil
}

// Len returns the number of recorded keys, expired or not
func (s *InMemoryIdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expiry)
}

func (s *InMemoryIdempotencyStore) sweep(interval time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.removeExpired()
		}
	}
}

func (s *InMemoryIdempotencyStore) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, exp := range s.expiry {
		if !now.Before(exp) {
			delete(s.expiry, key)
		}
	}
}

// Ensure InMemoryIdempotencyStore implements IdempotencyStore
var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
