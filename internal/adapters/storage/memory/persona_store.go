package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/soulscript/persona-api/internal/domain"
)

// PersonaStore is an in-memory implementation of domain.PersonaStore.
type PersonaStore struct {
	mu       sync.RWMutex
	profiles map[domain.UserID]*domain.PersonaProfile
}

func NewPersonaStore() *PersonaStore {
	return &PersonaStore{
		profiles: make(map[domain.UserID]*domain.PersonaProfile),
	}
}

func (s *PersonaStore) GetPersona(ctx context.Context, userID domain.UserID) (*domain.PersonaProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("persona %s: %w", userID, domain.ErrNotFound)
	}

	clone := *profile
	return &clone, nil
}

func (s *PersonaStore) SavePersona(ctx context.Context, profile *domain.PersonaProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *profile
	s.profiles[profile.UserID] = &clone
	return nil
}
