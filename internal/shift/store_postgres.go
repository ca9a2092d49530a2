package shift

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"shifttrust/internal/domain"
	"shifttrust/pkg/platform/sentinel"
)

// PostgresStore is the primary shift store. The shifts_one_open partial
// unique index arbitrates concurrent starts; Execute runs its callbacks
// inside a transaction holding the row lock.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const shiftColumns = `id, worker_id, start_at, end_at, token, risk_score, risk_bucket, workplace, supervisor_id`

func (s *PostgresStore) CreateIfNoneActive(ctx context.Context, sh domain.Shift) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shifts (`+shiftColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		sh.ID, sh.WorkerID, sh.Start, sh.End, sh.Token,
		sh.RiskScore, string(sh.RiskBucket), sh.Workplace, sh.SupervisorID,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create shift: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (domain.Shift, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE id = $1`, id)
	return scanShift(row.Scan)
}

func (s *PostgresStore) ActiveByWorker(ctx context.Context, workerID uuid.UUID) (domain.Shift, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+shiftColumns+` FROM shifts WHERE worker_id = $1 AND end_at IS NULL`, workerID)
	return scanShift(row.Scan)
}

func (s *PostgresStore) Execute(ctx context.Context, id uuid.UUID, validate func(*domain.Shift) error, mutate func(*domain.Shift)) (domain.Shift, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Shift{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		SELECT `+shiftColumns+` FROM shifts WHERE id = $1 FOR UPDATE`, id)
	sh, err := scanShift(row.Scan)
	if err != nil {
		return domain.Shift{}, err
	}
	if err := validate(&sh); err != nil {
		return domain.Shift{}, err
	}
	mutate(&sh)

	_, err = tx.ExecContext(ctx, `
		UPDATE shifts SET end_at = $2, risk_score = $3, risk_bucket = $4 WHERE id = $1`,
		sh.ID, sh.End, sh.RiskScore, string(sh.RiskBucket),
	)
	if err != nil {
		return domain.Shift{}, fmt.Errorf("update shift: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Shift{}, fmt.Errorf("commit: %w", err)
	}
	return sh, nil
}

func (s *PostgresStore) ListByWorker(ctx context.Context, workerID uuid.UUID, limit int) ([]domain.Shift, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.list(ctx, `
		SELECT `+shiftColumns+` FROM shifts
		WHERE worker_id = $1 ORDER BY start_at DESC LIMIT $2`, workerID, limit)
}

func (s *PostgresStore) ListActive(ctx context.Context) ([]domain.Shift, error) {
	return s.list(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE end_at IS NULL ORDER BY start_at`)
}

func (s *PostgresStore) ListOverdue(ctx context.Context, startedBefore time.Time) ([]domain.Shift, error) {
	return s.list(ctx, `
		SELECT `+shiftColumns+` FROM shifts
		WHERE end_at IS NULL AND start_at < $1 ORDER BY start_at`, startedBefore)
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]domain.Shift, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	defer rows.Close()

	var out []domain.Shift
	for rows.Next() {
		sh, err := scanShift(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

func scanShift(scan func(...any) error) (domain.Shift, error) {
	var (
		sh     domain.Shift
		end    sql.NullTime
		bucket string
	)
	err := scan(&sh.ID, &sh.WorkerID, &sh.Start, &end, &sh.Token,
		&sh.RiskScore, &bucket, &sh.Workplace, &sh.SupervisorID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Shift{}, sentinel.ErrNotFound
	}
	if err != nil {
		return domain.Shift{}, fmt.Errorf("scan shift: %w", err)
	}
	if end.Valid {
		t := end.Time
		sh.End = &t
	}
	sh.RiskBucket = domain.RiskBucket(bucket)
	return sh, nil
}
