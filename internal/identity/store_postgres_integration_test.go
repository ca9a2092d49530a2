//go:build integration

package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"shifttrust/internal/domain"
	"shifttrust/internal/identity"
	"shifttrust/internal/platform/postgres"
	"shifttrust/pkg/platform/sentinel"
	"shifttrust/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *identity.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.Require().NoError(postgres.EnsureSchema(context.Background(), s.postgres.DB))
	s.store = identity.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "identities")
	s.Require().NoError(err)
}

func newIdentity(phone string) domain.Identity {
	return domain.Identity{
		ID:        uuid.New(),
		Role:      domain.RoleWorker,
		Name:      "Asha Verma",
		Phone:     phone,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresStoreSuite) TestCreateIfPhoneAvailable() {
	ctx := context.Background()

	first := newIdentity("+15550001111")
	s.Require().NoError(s.store.CreateIfPhoneAvailable(ctx, first))

	dup := newIdentity("+15550001111")
	err := s.store.CreateIfPhoneAvailable(ctx, dup)
	s.ErrorIs(err, sentinel.ErrConflict)

	got, err := s.store.FindByID(ctx, first.ID)
	s.Require().NoError(err)
	s.Equal(first.Name, got.Name)
	s.Equal(first.Phone, got.Phone)
}

func (s *PostgresStoreSuite) TestFindByPhone() {
	ctx := context.Background()

	_, err := s.store.FindByPhone(ctx, "+15559999999")
	s.ErrorIs(err, sentinel.ErrNotFound)

	ident := newIdentity("+15550002222")
	s.Require().NoError(s.store.CreateIfPhoneAvailable(ctx, ident))

	got, err := s.store.FindByPhone(ctx, "+15550002222")
	s.Require().NoError(err)
	s.Equal(ident.ID, got.ID)
}

func (s *PostgresStoreSuite) TestAddPlatformLink() {
	ctx := context.Background()

	err := s.store.AddPlatformLink(ctx, uuid.New(), "https://gigs.example/x")
	s.ErrorIs(err, sentinel.ErrNotFound)

	ident := newIdentity("+15550003333")
	s.Require().NoError(s.store.CreateIfPhoneAvailable(ctx, ident))
	s.Require().NoError(s.store.AddPlatformLink(ctx, ident.ID, "https://gigs.example/a"))
	s.Require().NoError(s.store.AddPlatformLink(ctx, ident.ID, "https://gigs.example/b"))

	got, err := s.store.FindByID(ctx, ident.ID)
	s.Require().NoError(err)
	s.Equal([]string{"https://gigs.example/a", "https://gigs.example/b"}, got.PlatformLinks)
}
