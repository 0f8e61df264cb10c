package reportstore

import (
	"context"
	"sync"
	"time"

	"github.com/lunarfit/coach-api/internal/domain/coach"
)

// MemoryStore caches reports in process memory for tests/dev.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[int64]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	report    coach.Report
	expiresAt time.Time
}

// NewMemoryStore constructs the cache.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[int64]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, userID int64) (coach.Report, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[userID]
	if !ok {
		return coach.Report{}, false, nil
	}
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		return coach.Report{}, false, nil
	}
	return entry.report, true, nil
}

func (s *MemoryStore) Save(_ context.Context, userID int64, report coach.Report, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := memoryEntry{report: report}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.entries[userID] = entry
	return nil
}

var _ coach.ReportCache = (*MemoryStore)(nil)
