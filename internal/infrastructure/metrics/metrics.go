package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the pipeline's operational counters. Materialization
// failures are invisible to the webhook sender once the HTTP call returns,
// so these counters are the way failures get caught.
type Metrics struct {
	WebhooksReceived *prometheus.CounterVec
	WebhooksRejected *prometheus.CounterVec
	JobsProcessed    prometheus.Counter
	JobsRetried      prometheus.Counter
	JobsDropped      prometheus.Counter
	JobsDead         prometheus.Counter
}

// New creates and registers the pipeline metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		WebhooksReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webhooks_received_total",
			Help: "Webhooks accepted and enqueued, by topic.",
		}, []string{"topic"}),
		WebhooksRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "webhooks_rejected_total",
			Help: "Webhooks rejected at intake, by reason.",
		}, []string{"reason"}),
		JobsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webhook_jobs_processed_total",
			Help: "Jobs materialized successfully.",
		}),
		JobsRetried: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webhook_jobs_retried_total",
			Help: "Job delivery attempts that failed and were scheduled for retry.",
		}),
		JobsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webhook_jobs_dropped_total",
			Help: "Jobs acknowledged without retry due to permanent payload errors.",
		}),
		JobsDead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "webhook_jobs_dead_total",
			Help: "Jobs parked on the dead-letter list after exhausting retries.",
		}),
	}

	reg.MustRegister(
		m.WebhooksReceived,
		m.WebhooksRejected,
		m.JobsProcessed,
		m.JobsRetried,
		m.JobsDropped,
		m.JobsDead,
	)
	return m
}
