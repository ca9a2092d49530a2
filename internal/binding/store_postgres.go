package binding

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"shifttrust/internal/domain"
	"shifttrust/pkg/platform/sentinel"
)

// PostgresStore is the primary binding store. The workplace_bindings_one_active
// partial unique index arbitrates concurrent creates for one worker.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateIfNoneActive(ctx context.Context, b domain.WorkplaceBinding) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workplace_bindings (worker_id, workplace, location, supervisor_id, active, created_at)
		VALUES ($1, $2, $3, $4, TRUE, $5)`,
		b.WorkerID, b.Workplace, b.Location, b.SupervisorID, b.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create binding: %w", err)
	}
	return nil
}

func (s *PostgresStore) ActiveByWorker(ctx context.Context, workerID uuid.UUID) (domain.WorkplaceBinding, error) {
	var b domain.WorkplaceBinding
	err := s.db.QueryRowContext(ctx, `
		SELECT worker_id, workplace, location, supervisor_id, active, created_at
		FROM workplace_bindings WHERE worker_id = $1 AND active`, workerID,
	).Scan(&b.WorkerID, &b.Workplace, &b.Location, &b.SupervisorID, &b.Active, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.WorkplaceBinding{}, sentinel.ErrNotFound
	}
	if err != nil {
		return domain.WorkplaceBinding{}, fmt.Errorf("find active binding: %w", err)
	}
	return b, nil
}

func (s *PostgresStore) ListBySupervisor(ctx context.Context, supervisorID uuid.UUID) ([]domain.WorkplaceBinding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT worker_id, workplace, location, supervisor_id, active, created_at
		FROM workplace_bindings WHERE supervisor_id = $1 ORDER BY created_at`, supervisorID)
	if err != nil {
		return nil, fmt.Errorf("list bindings: %w", err)
	}
	defer rows.Close()

	var out []domain.WorkplaceBinding
	for rows.Next() {
		var b domain.WorkplaceBinding
		if err := rows.Scan(&b.WorkerID, &b.Workplace, &b.Location, &b.SupervisorID, &b.Active, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan binding: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
