package verify

import (
	"context"

	"github.com/google/uuid"

	"shifttrust/internal/domain"
)

// Store persists verification records. Records are append-only; there is no
// update or delete path.
type Store interface {
	Append(ctx context.Context, record domain.VerificationRecord) error
	ListByScanner(ctx context.Context, scannerID uuid.UUID) ([]domain.VerificationRecord, error)
	ListByWorker(ctx context.Context, workerID uuid.UUID) ([]domain.VerificationRecord, error)
	CountByWorker(ctx context.Context, workerID uuid.UUID) (int, error)
	Recent(ctx context.Context, limit int) ([]domain.VerificationRecord, error)
}
