package risk

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"shifttrust/pkg/requestcontext"
)

// PostgresComplaintStore keeps one row per complaint so reports survive
// restarts under the Postgres primary. The count query is the hot path; the
// complaints_worker index covers it.
type PostgresComplaintStore struct {
	db *sql.DB
}

func NewPostgresComplaintStore(db *sql.DB) *PostgresComplaintStore {
	return &PostgresComplaintStore{db: db}
}

func (s *PostgresComplaintStore) Report(ctx context.Context, workerID, reportedBy uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO complaints (worker_id, reported_by, reported_at)
		VALUES ($1, $2, $3)`,
		workerID, reportedBy, requestcontext.Now(ctx),
	)
	if err != nil {
		return fmt.Errorf("report complaint: %w", err)
	}
	return nil
}

func (s *PostgresComplaintStore) CountByWorker(ctx context.Context, workerID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM complaints WHERE worker_id = $1`, workerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count complaints: %w", err)
	}
	return n, nil
}
