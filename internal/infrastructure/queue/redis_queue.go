package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"shopify-ingest-layer/internal/domain"
	"shopify-ingest-layer/internal/infrastructure/metrics"
	"shopify-ingest-layer/internal/infrastructure/pubsub"
	"shopify-ingest-layer/internal/ports"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	pendingKey    = "webhook:jobs:pending"
	processingKey = "webhook:jobs:processing"
	retryKey      = "webhook:jobs:retry"
	deadKey       = "webhook:jobs:dead"

	popTimeout    = 5 * time.Second
	retryInterval = time.Second
	retryBatch    = 100
)

// RedisQueue is a durable job queue on Redis. Pending jobs live on a list;
// workers move a job to a processing list while handling it, so a crash
// leaves the job recoverable rather than lost. Failed jobs wait on a
// sorted set scored by their next attempt time; jobs that exhaust their
// attempts are parked on a dead-letter list and published as alerts.
//
// Delivery is at-least-once with no ordering guarantee across jobs; the
// materializer's transactional upserts absorb duplicates and races.
type RedisQueue struct {
	client      *redis.Client
	logger      zerolog.Logger
	metrics     *metrics.Metrics
	alerts      *pubsub.AlertPubSub
	retryPolicy RetryPolicy
	maxAttempts int
	workers     int

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// RedisQueueConfig configures a RedisQueue.
type RedisQueueConfig struct {
	Workers     int
	MaxAttempts int
	RetryPolicy RetryPolicy
}

// NewRedisQueue creates a new Redis-backed queue.
func NewRedisQueue(
	client *redis.Client,
	config RedisQueueConfig,
	alerts *pubsub.AlertPubSub,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *RedisQueue {
	if config.Workers <= 0 {
		config.Workers = 4
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 5
	}
	if config.RetryPolicy == nil {
		config.RetryPolicy = ExponentialBackoff{Initial: time.Second, Max: 30 * time.Second}
	}
	return &RedisQueue{
		client:      client,
		logger:      logger,
		metrics:     m,
		alerts:      alerts,
		retryPolicy: config.RetryPolicy,
		maxAttempts: config.MaxAttempts,
		workers:     config.Workers,
	}
}

// Enqueue durably pushes a job onto the pending list. On error the caller
// must fail the originating request so the sender redelivers.
func (q *RedisQueue) Enqueue(ctx context.Context, job *domain.WebhookJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}
	if err := q.client.LPush(ctx, pendingKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	return nil
}

// Start launches the worker pool and the retry mover.
func (q *RedisQueue) Start(ctx context.Context, handler ports.JobHandler) {
	runCtx, cancel := context.WithCancel(ctx)
	q.cancel = cancel

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(runCtx, handler)
	}

	q.wg.Add(1)
	go q.retryMover(runCtx)

	q.logger.Info().
		Int("workers", q.workers).
		Int("maxAttempts", q.maxAttempts).
		Msg("Redis queue workers started")
}

// Stop shuts the workers down and waits for in-flight jobs.
func (q *RedisQueue) Stop() {
	if q.cancel != nil {
		q.cancel()
	}
	q.wg.Wait()
}

func (q *RedisQueue) worker(ctx context.Context, handler ports.JobHandler) {
	defer q.wg.Done()

	for {
		data, err := q.client.BRPopLPush(ctx, pendingKey, processingKey, popTimeout).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			q.logger.Error().Err(err).Msg("Failed to pop job from queue")
			time.Sleep(time.Second)
			continue
		}

		q.handleDelivery(ctx, handler, data)
	}
}

func (q *RedisQueue) handleDelivery(ctx context.Context, handler ports.JobHandler, data string) {
	// The raw entry is always removed from the processing list once the
	// outcome is known; requeue and dead-letter use fresh encodings.
	defer q.client.LRem(context.WithoutCancel(ctx), processingKey, 1, data)

	var job domain.WebhookJob
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		q.logger.Error().Err(err).Msg("Dropping undecodable job")
		q.metrics.JobsDropped.Inc()
		return
	}
	job.Attempts++

	err := handler(ctx, &job)
	if err == nil {
		q.metrics.JobsProcessed.Inc()
		return
	}

	if domain.IsPermanent(err) {
		q.logger.Warn().
			Err(err).
			Str("jobId", job.ID).
			Str("topic", job.Topic).
			Str("tenantId", job.TenantID).
			Msg("Job failed permanently, acknowledging without retry")
		q.metrics.JobsDropped.Inc()
		return
	}

	if job.Attempts >= q.maxAttempts {
		q.deadLetter(ctx, &job, err)
		return
	}

	delay := q.retryPolicy.NextDelay(job.Attempts)
	q.logger.Warn().
		Err(err).
		Str("jobId", job.ID).
		Str("topic", job.Topic).
		Int("attempts", job.Attempts).
		Dur("retryIn", delay).
		Msg("Job failed, scheduling retry")

	encoded, merr := json.Marshal(&job)
	if merr != nil {
		q.logger.Error().Err(merr).Str("jobId", job.ID).Msg("Failed to encode job for retry")
		return
	}
	zerr := q.client.ZAdd(context.WithoutCancel(ctx), retryKey, redis.Z{
		Score:  float64(time.Now().Add(delay).UnixMilli()),
		Member: encoded,
	}).Err()
	if zerr != nil {
		q.logger.Error().Err(zerr).Str("jobId", job.ID).Msg("Failed to schedule job retry")
		return
	}
	q.metrics.JobsRetried.Inc()
}

func (q *RedisQueue) deadLetter(ctx context.Context, job *domain.WebhookJob, cause error) {
	q.logger.Error().
		Err(cause).
		Str("jobId", job.ID).
		Str("topic", job.Topic).
		Str("tenantId", job.TenantID).
		Int("attempts", job.Attempts).
		Msg("Job exhausted retries, parking on dead-letter list")

	encoded, err := json.Marshal(job)
	if err == nil {
		if perr := q.client.LPush(context.WithoutCancel(ctx), deadKey, encoded).Err(); perr != nil {
			q.logger.Error().Err(perr).Str("jobId", job.ID).Msg("Failed to park dead job")
		}
	}

	q.metrics.JobsDead.Inc()
	q.alerts.Publish(&pubsub.JobFailureAlert{
		Job:        job,
		Reason:     cause.Error(),
		OccurredAt: time.Now(),
	})
}

// retryMover promotes jobs whose retry time has come back onto the pending
// list.
func (q *RedisQueue) retryMover(ctx context.Context) {
	defer q.wg.Done()

	ticker := time.NewTicker(retryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.promoteDueRetries(ctx)
		}
	}
}

func (q *RedisQueue) promoteDueRetries(ctx context.Context) {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	due, err := q.client.ZRangeByScore(ctx, retryKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   now,
		Count: retryBatch,
	}).Result()
	if err != nil {
		if ctx.Err() == nil {
			q.logger.Error().Err(err).Msg("Failed to read retry set")
		}
		return
	}

	for _, member := range due {
		// ZRem guards against another instance promoting the same member.
		removed, err := q.client.ZRem(ctx, retryKey, member).Result()
		if err != nil || removed == 0 {
			continue
		}
		if err := q.client.LPush(ctx, pendingKey, member).Err(); err != nil {
			q.logger.Error().Err(err).Msg("Failed to requeue retryable job")
		}
	}
}
