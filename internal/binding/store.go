package binding

import (
	"context"

	"github.com/google/uuid"

	"shifttrust/internal/domain"
)

// Store persists worker-workplace bindings.
type Store interface {
	// CreateIfNoneActive inserts the binding unless the worker already has an
	// active one, in which case it fails with sentinel.ErrConflict. The
	// check and insert are atomic: of N concurrent creates for one worker,
	// exactly one succeeds.
	CreateIfNoneActive(ctx context.Context, b domain.WorkplaceBinding) error
	// ActiveByWorker returns the worker's active binding or
	// sentinel.ErrNotFound.
	ActiveByWorker(ctx context.Context, workerID uuid.UUID) (domain.WorkplaceBinding, error)
	// ListBySupervisor returns all bindings created by a supervisor, in
	// insertion order.
	ListBySupervisor(ctx context.Context, supervisorID uuid.UUID) ([]domain.WorkplaceBinding, error)
}
