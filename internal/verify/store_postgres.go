package verify

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"shifttrust/internal/domain"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, record domain.VerificationRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO verifications (worker_id, scanner_id, scanned_at, location)
		VALUES ($1, $2, $3, $4)`,
		record.WorkerID, record.ScannerID, record.Time, record.Location,
	)
	if err != nil {
		return fmt.Errorf("append verification: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByScanner(ctx context.Context, scannerID uuid.UUID) ([]domain.VerificationRecord, error) {
	return s.list(ctx, `
		SELECT worker_id, scanner_id, scanned_at, location
		FROM verifications WHERE scanner_id = $1 ORDER BY scanned_at DESC`, scannerID)
}

func (s *PostgresStore) ListByWorker(ctx context.Context, workerID uuid.UUID) ([]domain.VerificationRecord, error) {
	return s.list(ctx, `
		SELECT worker_id, scanner_id, scanned_at, location
		FROM verifications WHERE worker_id = $1 ORDER BY scanned_at DESC`, workerID)
}

func (s *PostgresStore) CountByWorker(ctx context.Context, workerID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM verifications WHERE worker_id = $1`, workerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count verifications: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]domain.VerificationRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.list(ctx, `
		SELECT worker_id, scanner_id, scanned_at, location
		FROM verifications ORDER BY scanned_at DESC LIMIT $1`, limit)
}

func (s *PostgresStore) list(ctx context.Context, query string, arg any) ([]domain.VerificationRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	defer rows.Close()

	var out []domain.VerificationRecord
	for rows.Next() {
		var r domain.VerificationRecord
		if err := rows.Scan(&r.WorkerID, &r.ScannerID, &r.Time, &r.Location); err != nil {
			return nil, fmt.Errorf("scan verification: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
