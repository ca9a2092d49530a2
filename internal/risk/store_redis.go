package risk

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const complaintKeyPrefix = "complaints:worker:"

// RedisComplaintStore keeps complaint counters in Redis so multiple instances
// observe the same signal. Counters are plain INCR keys; no TTL, complaints
// don't age out in the current policy.
type RedisComplaintStore struct {
	client *redis.Client
}

func NewRedisComplaintStore(client *redis.Client) *RedisComplaintStore {
	return &RedisComplaintStore{client: client}
}

func (s *RedisComplaintStore) Report(ctx context.Context, workerID, _ uuid.UUID) error {
	if err := s.client.Incr(ctx, complaintKeyPrefix+workerID.String()).Err(); err != nil {
		return fmt.Errorf("report complaint: %w", err)
	}
	return nil
}

func (s *RedisComplaintStore) CountByWorker(ctx context.Context, workerID uuid.UUID) (int, error) {
	val, err := s.client.Get(ctx, complaintKeyPrefix+workerID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("count complaints: %w", err)
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("parse complaint count: %w", err)
	}
	return n, nil
}
