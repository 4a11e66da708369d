package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/precifica/backend/internal/domain"
)

// pollTimeout bounds each blocking pop so the worker loop can observe
// context cancellation between jobs.
const pollTimeout = 5 * time.Second

// RedisQueue is the XML ingestion transport: one redis list per queue, jobs
// pushed as JSON, failures parked on a companion list for inspection.
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue creates a queue over the given redis address and list key.
func NewRedisQueue(addr, key string) *RedisQueue {
	return &RedisQueue{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		key:    key,
	}
}

// NewJob wraps a raw XML document into an ingestion job.
func NewJob(xmlDocument string) domain.IngestJob {
	return domain.IngestJob{
		ID:         uuid.NewString(),
		XML:        xmlDocument,
		EnqueuedAt: time.Now().UTC(),
	}
}

// Enqueue pushes a job onto the queue.
func (q *RedisQueue) Enqueue(ctx context.Context, job domain.IngestJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrQueueUnavailable, err)
	}
	return nil
}

// Dequeue blocks up to the poll timeout and returns the next job, or
// (nil, nil) when none arrived in time.
func (q *RedisQueue) Dequeue(ctx context.Context) (*domain.IngestJob, error) {
	res, err := q.client.BRPop(ctx, pollTimeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrQueueUnavailable, err)
	}

	// BRPop returns [key, payload].
	var job domain.IngestJob
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, fmt.Errorf("decoding queued job: %w", err)
	}
	return &job, nil
}

// MarkFailed parks a job on the failed list together with the reason, so a
// malformed document fails its own job without stopping ingestion.
func (q *RedisQueue) MarkFailed(ctx context.Context, job domain.IngestJob, reason string) error {
	payload, err := json.Marshal(struct {
		domain.IngestJob
		Reason   string    `json:"reason"`
		FailedAt time.Time `json:"failedAt"`
	}{job, reason, time.Now().UTC()})
	if err != nil {
		return err
	}
	if err := q.client.LPush(ctx, q.key+":failed", payload).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrQueueUnavailable, err)
	}
	return nil
}

// Close releases the underlying redis connection.
func (q *RedisQueue) Close() error {
	return q.client.Close()
}
