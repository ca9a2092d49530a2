package identity

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"shifttrust/internal/domain"
	"shifttrust/pkg/platform/sentinel"
)

// PostgresStore is the primary identity store. Phone uniqueness rides on the
// identities_phone_key unique index; a violation maps to sentinel.ErrConflict.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateIfPhoneAvailable(ctx context.Context, ident domain.Identity) error {
	links, err := json.Marshal(ident.PlatformLinks)
	if err != nil {
		return fmt.Errorf("encode platform links: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO identities (id, role, name, phone, face_hash, id_hash, platform_links, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		ident.ID, ident.Role.String(), ident.Name, ident.Phone,
		ident.FaceHash, ident.IDHash, links, ident.CreatedAt,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("create identity: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (domain.Identity, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, role, name, phone, face_hash, id_hash, platform_links, created_at
		FROM identities WHERE id = $1`, id))
}

func (s *PostgresStore) FindByPhone(ctx context.Context, phone string) (domain.Identity, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, role, name, phone, face_hash, id_hash, platform_links, created_at
		FROM identities WHERE phone = $1`, phone))
}

func (s *PostgresStore) AddPlatformLink(ctx context.Context, id uuid.UUID, link string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE identities SET platform_links = platform_links || to_jsonb($2::text)
		WHERE id = $1`, id, link)
	if err != nil {
		return fmt.Errorf("add platform link: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) scanOne(row *sql.Row) (domain.Identity, error) {
	var (
		ident domain.Identity
		role  string
		links []byte
	)
	err := row.Scan(&ident.ID, &role, &ident.Name, &ident.Phone,
		&ident.FaceHash, &ident.IDHash, &links, &ident.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Identity{}, sentinel.ErrNotFound
	}
	if err != nil {
		return domain.Identity{}, fmt.Errorf("scan identity: %w", err)
	}
	ident.Role = domain.Role(role)
	if len(links) > 0 {
		if err := json.Unmarshal(links, &ident.PlatformLinks); err != nil {
			return domain.Identity{}, fmt.Errorf("decode platform links: %w", err)
		}
	}
	return ident, nil
}

// isUniqueViolation reports whether err is a Postgres 23505 unique violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
