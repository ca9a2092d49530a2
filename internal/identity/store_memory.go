package identity

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"shifttrust/internal/domain"
	"shifttrust/pkg/platform/sentinel"
)

// InMemoryStore is the fallback identity store. Phone uniqueness is checked
// and the insert applied under one lock, so concurrent registrations of the
// same phone see exactly one winner.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]domain.Identity
	byPhone map[string]uuid.UUID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[uuid.UUID]domain.Identity),
		byPhone: make(map[string]uuid.UUID),
	}
}

func (s *InMemoryStore) CreateIfPhoneAvailable(_ context.Context, ident domain.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byPhone[ident.Phone]; taken {
		return sentinel.ErrConflict
	}
	s.byID[ident.ID] = ident
	s.byPhone[ident.Phone] = ident.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (domain.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ident, ok := s.byID[id]; ok {
		return ident, nil
	}
	return domain.Identity{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindByPhone(_ context.Context, phone string) (domain.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.byPhone[phone]; ok {
		return s.byID[id], nil
	}
	return domain.Identity{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) AddPlatformLink(_ context.Context, id uuid.UUID, link string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ident, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	ident.PlatformLinks = append(append([]string{}, ident.PlatformLinks...), link)
	s.byID[id] = ident
	return nil
}
