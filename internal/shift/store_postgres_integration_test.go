//go:build integration

package shift_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"shifttrust/internal/domain"
	"shifttrust/internal/platform/postgres"
	"shifttrust/internal/shift"
	"shifttrust/pkg/platform/sentinel"
	"shifttrust/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *shift.PostgresStore
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
	s.store = shift.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "shifts")
	s.Require().NoError(err)
}

func newShift(workerID uuid.UUID) domain.Shift {
	return domain.Shift{
		ID:           uuid.New(),
		WorkerID:     workerID,
		Start:        time.Now().UTC().Truncate(time.Microsecond),
		Token:        "token-" + uuid.NewString(),
		RiskScore:    15,
		RiskBucket:   domain.RiskGreen,
		Workplace:    "Harbor Cafe",
		SupervisorID: uuid.New(),
	}
}

func (s *PostgresStoreSuite) TestCreateIfNoneActive() {
	ctx := context.Background()
	worker := uuid.New()

	s.Require().NoError(s.store.CreateIfNoneActive(ctx, newShift(worker)))
	err := s.store.CreateIfNoneActive(ctx, newShift(worker))
	s.ErrorIs(err, sentinel.ErrConflict, "partial unique index must reject a second open shift")

	other := uuid.New()
	s.NoError(s.store.CreateIfNoneActive(ctx, newShift(other)))
}

func (s *PostgresStoreSuite) TestConcurrentCreateOneWinner() {
	ctx := context.Background()
	worker := uuid.New()

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.store.CreateIfNoneActive(ctx, newShift(worker))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			s.ErrorIs(err, sentinel.ErrConflict)
		}
	}
	s.Equal(1, winners)
}

func (s *PostgresStoreSuite) TestExecuteEndOnce() {
	ctx := context.Background()
	sh := newShift(uuid.New())
	s.Require().NoError(s.store.CreateIfNoneActive(ctx, sh))

	end := time.Now().UTC().Truncate(time.Microsecond)
	ended, err := s.store.Execute(ctx, sh.ID,
		func(cur *domain.Shift) error { return cur.CanEnd(sh.SupervisorID) },
		func(cur *domain.Shift) { cur.ApplyEnd(end) },
	)
	s.Require().NoError(err)
	s.Require().NotNil(ended.End)
	s.True(ended.End.Equal(end))

	_, err = s.store.Execute(ctx, sh.ID,
		func(cur *domain.Shift) error { return cur.CanEnd(sh.SupervisorID) },
		func(cur *domain.Shift) { cur.ApplyEnd(end) },
	)
	s.Error(err, "second end must fail validation")

	_, err = s.store.ActiveByWorker(ctx, sh.WorkerID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.NoError(s.store.CreateIfNoneActive(ctx, newShift(sh.WorkerID)),
		"ending must free the worker for a new shift")
}

func (s *PostgresStoreSuite) TestListByWorker() {
	ctx := context.Background()
	worker := uuid.New()

	older := newShift(worker)
	older.Start = time.Now().UTC().Add(-6 * time.Hour).Truncate(time.Microsecond)
	end := older.Start.Add(4 * time.Hour)
	older.End = &end
	s.Require().NoError(s.store.CreateIfNoneActive(ctx, older))

	newer := newShift(worker)
	s.Require().NoError(s.store.CreateIfNoneActive(ctx, newer))

	s.Require().NoError(s.store.CreateIfNoneActive(ctx, newShift(uuid.New())))

	history, err := s.store.ListByWorker(ctx, worker, 10)
	s.Require().NoError(err)
	s.Require().Len(history, 2)
	s.Equal(newer.ID, history[0].ID, "newest shift comes first")
	s.Equal(older.ID, history[1].ID)
	s.Require().NotNil(history[1].End)

	history, err = s.store.ListByWorker(ctx, worker, 1)
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal(newer.ID, history[0].ID)
}

func (s *PostgresStoreSuite) TestListOverdue() {
	ctx := context.Background()

	old := newShift(uuid.New())
	old.Start = time.Now().UTC().Add(-10 * time.Hour).Truncate(time.Microsecond)
	s.Require().NoError(s.store.CreateIfNoneActive(ctx, old))

	fresh := newShift(uuid.New())
	s.Require().NoError(s.store.CreateIfNoneActive(ctx, fresh))

	overdue, err := s.store.ListOverdue(ctx, time.Now().UTC().Add(-8*time.Hour))
	s.Require().NoError(err)
	s.Require().Len(overdue, 1)
	s.Equal(old.ID, overdue[0].ID)
}
