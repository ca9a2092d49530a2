package shift

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"shifttrust/internal/domain"
	"shifttrust/pkg/platform/sentinel"
)

// InMemoryStore is the fallback shift store. One mutex guards every shift, so
// the check-then-insert in CreateIfNoneActive and the validate-then-mutate in
// Execute are trivially atomic.
type InMemoryStore struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*domain.Shift
	order  []uuid.UUID
	active map[uuid.UUID]uuid.UUID // workerID -> open shiftID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:   make(map[uuid.UUID]*domain.Shift),
		active: make(map[uuid.UUID]uuid.UUID),
	}
}

func (s *InMemoryStore) CreateIfNoneActive(_ context.Context, sh domain.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, open := s.active[sh.WorkerID]; open {
		return sentinel.ErrConflict
	}
	stored := sh
	s.byID[sh.ID] = &stored
	s.order = append(s.order, sh.ID)
	s.active[sh.WorkerID] = sh.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (domain.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sh, ok := s.byID[id]; ok {
		return *sh, nil
	}
	return domain.Shift{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) ActiveByWorker(_ context.Context, workerID uuid.UUID) (domain.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.active[workerID]; ok {
		return *s.byID[id], nil
	}
	return domain.Shift{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) Execute(_ context.Context, id uuid.UUID, validate func(*domain.Shift) error, mutate func(*domain.Shift)) (domain.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.byID[id]
	if !ok {
		return domain.Shift{}, sentinel.ErrNotFound
	}
	if err := validate(sh); err != nil {
		return domain.Shift{}, err
	}
	wasActive := sh.End == nil
	mutate(sh)
	if wasActive && sh.End != nil {
		delete(s.active, sh.WorkerID)
	}
	return *sh, nil
}

func (s *InMemoryStore) ListByWorker(_ context.Context, workerID uuid.UUID, limit int) ([]domain.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Shift
	for _, id := range s.order {
		if sh := s.byID[id]; sh.WorkerID == workerID {
			out = append(out, *sh)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.After(out[j].Start) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryStore) ListActive(_ context.Context) ([]domain.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Shift
	for _, id := range s.order {
		if sh := s.byID[id]; sh.End == nil {
			out = append(out, *sh)
		}
	}
	return out, nil
}

func (s *InMemoryStore) ListOverdue(_ context.Context, startedBefore time.Time) ([]domain.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Shift
	for _, id := range s.order {
		if sh := s.byID[id]; sh.End == nil && sh.Start.Before(startedBefore) {
			out = append(out, *sh)
		}
	}
	return out, nil
}
