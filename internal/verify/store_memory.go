package verify

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"shifttrust/internal/domain"
)

// InMemoryStore keeps records in insertion order behind one mutex.
type InMemoryStore struct {
	mu      sync.Mutex
	records []domain.VerificationRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, record domain.VerificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *InMemoryStore) ListByScanner(_ context.Context, scannerID uuid.UUID) ([]domain.VerificationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.VerificationRecord
	for _, r := range s.records {
		if r.ScannerID == scannerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *InMemoryStore) ListByWorker(_ context.Context, workerID uuid.UUID) ([]domain.VerificationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.VerificationRecord
	for _, r := range s.records {
		if r.WorkerID == workerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *InMemoryStore) CountByWorker(_ context.Context, workerID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, r := range s.records {
		if r.WorkerID == workerID {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryStore) Recent(_ context.Context, limit int) ([]domain.VerificationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > len(s.records) {
		limit = len(s.records)
	}
	out := make([]domain.VerificationRecord, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}
