package shift

import (
	"context"
	"time"

	"github.com/google/uuid"

	"shifttrust/internal/domain"
)

// Store persists shifts. Shifts are append-only history: rows gain an end
// timestamp once and are never deleted.
type Store interface {
	// CreateIfNoneActive inserts the shift unless the worker already has an
	// open one, in which case it fails with sentinel.ErrConflict. The check
	// and insert are atomic: of N concurrent starts for one worker, exactly
	// one succeeds.
	CreateIfNoneActive(ctx context.Context, sh domain.Shift) error
	FindByID(ctx context.Context, id uuid.UUID) (domain.Shift, error)
	// ActiveByWorker returns the worker's open shift or sentinel.ErrNotFound.
	ActiveByWorker(ctx context.Context, workerID uuid.UUID) (domain.Shift, error)
	// Execute atomically validates then mutates the shift identified by id.
	// The store holds its lock (mutex or SELECT ... FOR UPDATE) across both
	// callbacks, so validate's observations still hold when mutate runs.
	Execute(ctx context.Context, id uuid.UUID, validate func(*domain.Shift) error, mutate func(*domain.Shift)) (domain.Shift, error)
	// ListByWorker returns the worker's shifts, newest first, capped at
	// limit.
	ListByWorker(ctx context.Context, workerID uuid.UUID, limit int) ([]domain.Shift, error)
	// ListActive returns all open shifts.
	ListActive(ctx context.Context) ([]domain.Shift, error)
	// ListOverdue returns open shifts that started before the cutoff.
	ListOverdue(ctx context.Context, startedBefore time.Time) ([]domain.Shift, error)
}
