package ports

import (
	"context"

	"shopify-ingest-layer/internal/domain"
)

// JobHandler is the queue's delivery contract: it is invoked once per
// delivery attempt. Returning nil acknowledges the job. Returning an error
// triggers a retry, unless the error is marked permanent
// (domain.IsPermanent), in which case the job is acknowledged and dropped.
type JobHandler func(ctx context.Context, job *domain.WebhookJob) error

// Queue defines the durable job queue capability. Implementations must
// deliver each enqueued job to the registered handler at least once; the
// materializer is responsible for being safe against duplicates and
// out-of-order delivery.
type Queue interface {
	// Enqueue persists a job for asynchronous processing. An error means
	// the job was not durably stored and the caller must fail the request
	// so the upstream sender redelivers.
	Enqueue(ctx context.Context, job *domain.WebhookJob) error

	// Start launches the worker pool delivering jobs to handler. It
	// returns immediately; workers stop when Stop is called.
	Start(ctx context.Context, handler JobHandler)

	// Stop shuts the worker pool down and waits for in-flight jobs.
	Stop()
}
