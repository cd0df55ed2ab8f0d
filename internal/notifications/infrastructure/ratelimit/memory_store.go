package ratelimit

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/hearthhq/hearth/internal/notifications/domain"
)

// MemoryStore keeps rate-limit state in process memory. Used in
// development when no Redis URL is configured; state is lost on restart.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[uuid.UUID]domain.RateLimitState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[uuid.UUID]domain.RateLimitState)}
}

func (s *MemoryStore) Load(_ context.Context, userID uuid.UUID) (domain.RateLimitState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if state, ok := s.states[userID]; ok {
		return state, nil
	}
	return domain.NewRateLimitState(userID), nil
}

func (s *MemoryStore) Save(_ context.Context, state domain.RateLimitState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[state.UserID] = state
	return nil
}

func (s *MemoryStore) Reset(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, userID)
	return nil
}
