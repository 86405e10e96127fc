package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/weather-analytics/internal/weather"
)

var (
	// ErrNotFound is returned when no batch matches the request.
	ErrNotFound = errors.New("no weather batch available")
)

// MemoryStore is a concurrency-safe in-memory history of collection batches.
type MemoryStore struct {
	mu sync.RWMutex

	// ordered by CollectedAt ascending
	batches []weather.Batch

	// retention configuration
	maxHistory int           // max number of batches kept
	maxAge     time.Duration // optional max age for batches

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveBatch inserts a batch by CollectedAt and enforces retention. Concurrent
// collections may finish out of order, so a late older batch lands before newer ones.
func (s *MemoryStore) SaveBatch(batch weather.Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := sort.Search(len(s.batches), func(j int) bool {
		return s.batches[j].CollectedAt.After(batch.CollectedAt)
	})
	s.batches = append(s.batches, weather.Batch{})
	copy(s.batches[i+1:], s.batches[i:])
	s.batches[i] = batch

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.batches) > s.maxHistory {
		over := len(s.batches) - s.maxHistory
		s.batches = append([]weather.Batch(nil), s.batches[over:]...)
	}

	// Enforce retention by age; the newest batch is always kept.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.batches)-1; i++ {
			if !s.batches[i].CollectedAt.Before(cutoff) {
				break
			}
		}
		if i > 0 {
			s.batches = s.batches[i:]
		}
	}
}

// Latest returns the most recent batch.
func (s *MemoryStore) Latest() (weather.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.batches) == 0 {
		return weather.Batch{}, ErrNotFound
	}
	return s.batches[len(s.batches)-1], nil
}

// Range returns all batches collected between from and to (inclusive).
func (s *MemoryStore) Range(from, to time.Time) ([]weather.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []weather.Batch
	for _, b := range s.batches {
		if !b.CollectedAt.Before(from) && !b.CollectedAt.After(to) {
			result = append(result, b)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}

// Len reports how many batches are retained.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.batches)
}
