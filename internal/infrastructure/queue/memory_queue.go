package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"shopify-ingest-layer/internal/domain"
	"shopify-ingest-layer/internal/infrastructure/metrics"
	"shopify-ingest-layer/internal/infrastructure/pubsub"
	"shopify-ingest-layer/internal/ports"

	"github.com/rs/zerolog"
)

// ErrQueueFull is returned when an in-memory enqueue would block.
var ErrQueueFull = errors.New("in-memory queue is full")

// MemoryQueue is an in-process queue with the same delivery contract as
// RedisQueue: at-least-once delivery, retry with backoff, dead-lettering
// with alerts. It backs tests and queue-less local development; it is not
// durable across restarts.
type MemoryQueue struct {
	jobs        chan *domain.WebhookJob
	logger      zerolog.Logger
	metrics     *metrics.Metrics
	alerts      *pubsub.AlertPubSub
	retryPolicy RetryPolicy
	maxAttempts int
	workers     int

	wg     sync.WaitGroup
	cancel context.CancelFunc

	mu   sync.Mutex
	dead []*domain.WebhookJob
}

// MemoryQueueConfig configures a MemoryQueue.
type MemoryQueueConfig struct {
	Workers     int
	MaxAttempts int
	RetryPolicy RetryPolicy
	Buffer      int
}

// NewMemoryQueue creates a new in-memory queue.
func NewMemoryQueue(
	config MemoryQueueConfig,
	alerts *pubsub.AlertPubSub,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *MemoryQueue {
	if config.Workers <= 0 {
		config.Workers = 2
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 5
	}
	if config.RetryPolicy == nil {
		config.RetryPolicy = ExponentialBackoff{Initial: time.Second, Max: 30 * time.Second}
	}
	if config.Buffer <= 0 {
		config.Buffer = 256
	}
	return &MemoryQueue{
		jobs:        make(chan *domain.WebhookJob, config.Buffer),
		logger:      logger,
		metrics:     m,
		alerts:      alerts,
		retryPolicy: config.RetryPolicy,
		maxAttempts: config.MaxAttempts,
		workers:     config.Workers,
	}
}

// Enqueue places a job on the queue without blocking.
func (q *MemoryQueue) Enqueue(ctx context.Context, job *domain.WebhookJob) error {
	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start launches the worker pool delivering jobs to handler.
func (q *MemoryQueue) Start(ctx context.Context, handler ports.JobHandler) {
	runCtx, cancel := context.WithCancel(ctx)
	q.cancel = cancel

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(runCtx, handler)
	}
}

// Stop shuts the workers down and waits for in-flight jobs.
func (q *MemoryQueue) Stop() {
	if q.cancel != nil {
		q.cancel()
	}
	q.wg.Wait()
}

// DeadJobs returns the jobs parked after exhausting retries.
func (q *MemoryQueue) DeadJobs() []*domain.WebhookJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	parked := make([]*domain.WebhookJob, len(q.dead))
	copy(parked, q.dead)
	return parked
}

func (q *MemoryQueue) worker(ctx context.Context, handler ports.JobHandler) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job := <-q.jobs:
			q.handleDelivery(ctx, handler, job)
		}
	}
}

func (q *MemoryQueue) handleDelivery(ctx context.Context, handler ports.JobHandler, job *domain.WebhookJob) {
	job.Attempts++

	err := handler(ctx, job)
	if err == nil {
		q.metrics.JobsProcessed.Inc()
		return
	}

	if domain.IsPermanent(err) {
		q.logger.Warn().
			Err(err).
			Str("jobId", job.ID).
			Str("topic", job.Topic).
			Msg("Job failed permanently, acknowledging without retry")
		q.metrics.JobsDropped.Inc()
		return
	}

	if job.Attempts >= q.maxAttempts {
		q.deadLetter(job, err)
		return
	}

	delay := q.retryPolicy.NextDelay(job.Attempts)
	q.metrics.JobsRetried.Inc()
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		select {
		case <-ctx.Done():
		case <-time.After(delay):
			select {
			case q.jobs <- job:
			default:
				q.deadLetter(job, ErrQueueFull)
			}
		}
	}()
}

func (q *MemoryQueue) deadLetter(job *domain.WebhookJob, cause error) {
	q.logger.Error().
		Err(cause).
		Str("jobId", job.ID).
		Str("topic", job.Topic).
		Str("tenantId", job.TenantID).
		Int("attempts", job.Attempts).
		Msg("Job exhausted retries, parking on dead-letter list")

	q.mu.Lock()
	q.dead = append(q.dead, job)
	q.mu.Unlock()

	q.metrics.JobsDead.Inc()
	q.alerts.Publish(&pubsub.JobFailureAlert{
		Job:        job,
		Reason:     cause.Error(),
		OccurredAt: time.Now(),
	})
}
