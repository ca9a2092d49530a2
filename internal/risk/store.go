package risk

import (
	"context"

	"github.com/google/uuid"
)

// ComplaintStore tracks complaints filed against workers. The count feeds the
// complaint sub-score at shift start.
type ComplaintStore interface {
	Report(ctx context.Context, workerID, reportedBy uuid.UUID) error
	CountByWorker(ctx context.Context, workerID uuid.UUID) (int, error)
}
