//go:build integration

package risk_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"shifttrust/internal/risk"
	"shifttrust/pkg/testutil/containers"
)

type RedisComplaintStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *risk.RedisComplaintStore
}

func TestRedisComplaintStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisComplaintStoreSuite))
}

func (s *RedisComplaintStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = risk.NewRedisComplaintStore(s.redis.Client)
}

func (s *RedisComplaintStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisComplaintStoreSuite) TestReportAndCount() {
	ctx := context.Background()
	worker := uuid.New()
	reporter := uuid.New()

	count, err := s.store.CountByWorker(ctx, worker)
	s.Require().NoError(err)
	s.Zero(count, "missing key counts as zero")

	for i := 1; i <= 4; i++ {
		s.Require().NoError(s.store.Report(ctx, worker, reporter))
	}
	count, err = s.store.CountByWorker(ctx, worker)
	s.Require().NoError(err)
	s.Equal(4, count)
}

func (s *RedisComplaintStoreSuite) TestCountersAreIsolatedPerWorker() {
	ctx := context.Background()
	first := uuid.New()
	second := uuid.New()

	s.Require().NoError(s.store.Report(ctx, first, uuid.New()))

	count, err := s.store.CountByWorker(ctx, second)
	s.Require().NoError(err)
	s.Zero(count)
}
