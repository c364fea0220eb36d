// Package store persists verification attempts and organization settings.
//
// Attempts are append-only and keep only the raw provider payload; readers
// classify on load. Missing rows are reported with sentinel errors.
package store

import (
	"context"
	"slices"
	"sort"
	"sync"

	"bgv/internal/verification/models"
	id "bgv/pkg/domain"
	"bgv/pkg/platform/sentinel"
)

// InMemoryAttemptStore keeps attempts per candidate in insertion order.
type InMemoryAttemptStore struct {
	mu       sync.RWMutex
	attempts map[id.CandidateID][]models.AttemptRecord
	ids      map[id.AttemptID]struct{}
}

func NewInMemoryAttemptStore() *InMemoryAttemptStore {
	return &InMemoryAttemptStore{
		attempts: make(map[id.CandidateID][]models.AttemptRecord),
		ids:      make(map[id.AttemptID]struct{}),
	}
}

// Append stores rec. Reusing an attempt ID returns sentinel.ErrConflict.
func (s *InMemoryAttemptStore) Append(_ context.Context, rec models.AttemptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.ids[rec.ID]; exists {
		return sentinel.ErrConflict
	}
	rec.RawResponse = slices.Clone(rec.RawResponse)
	s.ids[rec.ID] = struct{}{}
	s.attempts[rec.CandidateID] = append(s.attempts[rec.CandidateID], rec)
	return nil
}

// ListByCandidate returns the candidate's attempts newest first. Attempts
// with equal timestamps are returned latest-appended first.
func (s *InMemoryAttemptStore) ListByCandidate(_ context.Context, candidateID id.CandidateID) ([]models.AttemptRecord, error) {
	s.mu.RLock()
	stored := s.attempts[candidateID]
	out := make([]models.AttemptRecord, len(stored))
	for i, rec := range stored {
		out[len(stored)-1-i] = rec
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
