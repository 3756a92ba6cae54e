package repository

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/go_cart/merchant-api/internal/domain"
)

const (
	// DefaultCleanupInterval is how often the background sweep runs
	DefaultCleanupInterval = time.Minute

	// MaxEvictionsPerSave caps how many expired carts a single Save removes
	MaxEvictionsPerSave = 16
)

// MemoryCartStore implements CartRepository with in-memory storage.
// Expired carts are never returned; they are removed on read, by Save in
// small batches and by a background sweep.
type MemoryCartStore struct {
	mu    sync.Mutex
	carts map[string]*domain.Cart
	now   func() time.Time

	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	closeOnce       sync.Once
	wg              sync.WaitGroup
}

type MemoryOption func(*MemoryCartStore)

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryCartStore) { s.now = now }
}

// WithCleanupInterval sets the sweep period; zero or less disables the sweep.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(s *MemoryCartStore) { s.cleanupInterval = d }
}

func NewMemoryCartStore(opts ...MemoryOption) *MemoryCartStore {
	s := &MemoryCartStore{
		carts:           make(map[string]*domain.Cart),
		now:             time.Now,
		cleanupInterval: DefaultCleanupInterval,
		stopCleanup:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.cleanupInterval > 0 {
		s.wg.Add(1)
		go s.cleanupLoop()
	}
	return s
}

func (s *MemoryCartStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.evictExpired(-1)
		case <-s.stopCleanup:
			return
		}
	}
}

// evictExpired removes up to limit expired carts, all of them when limit < 0.
// Caller must not hold the lock.
func (s *MemoryCartStore) evictExpired(limit int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictExpiredLocked(limit)
}

func (s *MemoryCartStore) evictExpiredLocked(limit int) int {
	now := s.now()
	removed := 0
	for id, cart := range s.carts {
		if limit >= 0 && removed >= limit {
			break
		}
		if cart.IsExpired(now) {
			delete(s.carts, id)
			removed++
		}
	}
	return removed
}

func (s *MemoryCartStore) Get(_ context.Context, cartID string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[cartID]
	if !ok {
		return nil, ErrCartNotFound
	}
	if cart.IsExpired(s.now()) {
		delete(s.carts, cartID)
		return nil, ErrCartNotFound
	}
	return cart.Clone(), nil
}

func (s *MemoryCartStore) Save(_ context.Context, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpiredLocked(MaxEvictionsPerSave)
	s.carts[cart.ID] = cart.Clone()
	return nil
}

func (s *MemoryCartStore) Delete(_ context.Context, cartID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[cartID]
	if !ok {
		return false, nil
	}
	delete(s.carts, cartID)
	return !cart.IsExpired(s.now()), nil
}

// Len counts stored carts, expired ones included.
func (s *MemoryCartStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}

// Close stops the background cleanup and waits for it to finish
func (s *MemoryCartStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopCleanup)
		s.wg.Wait()
	})
	return nil
}
