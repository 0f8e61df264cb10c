package coachmem

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/lunarfit/coach-api/internal/domain/coach"
)

// MemoryStore keeps coach notes in process memory for tests/dev.
type MemoryStore struct {
	mu    sync.RWMutex
	notes []coach.Note
	seq   int64
}

// NewMemoryStore constructs the store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Upsert stores or refreshes a note keyed by user and content.
func (s *MemoryStore) Upsert(_ context.Context, note coach.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now()
	}
	for i, existing := range s.notes {
		if existing.UserID == note.UserID && existing.Content == note.Content {
			note.ID = existing.ID
			s.notes[i] = note
			return nil
		}
	}
	s.seq++
	note.ID = s.seq
	s.notes = append(s.notes, note)
	return nil
}

// Search ranks notes by L2 distance mapped into a (0, 1] score, matching
// the Postgres scoring.
func (s *MemoryStore) Search(_ context.Context, userID int64, embedding []float32, k int) ([]coach.RetrievedNote, error) {
	if len(embedding) == 0 {
		return nil, nil
	}
	limit := k
	if limit <= 0 {
		limit = 5
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]coach.RetrievedNote, 0)
	for _, note := range s.notes {
		if note.UserID != userID || len(note.Embedding) == 0 {
			continue
		}
		dist := l2Distance(embedding, note.Embedding)
		results = append(results, coach.RetrievedNote{Note: note, Score: 1.0 / (1.0 + dist)})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func l2Distance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

var _ coach.NoteStore = (*MemoryStore)(nil)
