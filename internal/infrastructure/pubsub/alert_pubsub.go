package pubsub

import (
	"context"
	"fmt"
	"sync"
	"time"

	"shopify-ingest-layer/internal/domain"

	"github.com/rs/zerolog"
)

// JobFailureAlert is raised when a job has exhausted its retries and been
// parked on the dead-letter list. Exhausted jobs are operational incidents:
// they must reach a subscriber, never be silently dropped.
type JobFailureAlert struct {
	Job        *domain.WebhookJob
	Reason     string
	OccurredAt time.Time
}

// AlertChannel represents one subscriber's delivery channel.
type AlertChannel struct {
	ID     string
	Alerts chan *JobFailureAlert
	ctx    context.Context
	cancel context.CancelFunc
}

// AlertPubSub fans job-failure alerts out to in-process subscribers, such
// as the logging subscriber wired at startup or an operator-facing feed.
type AlertPubSub struct {
	mu       sync.RWMutex
	channels map[string]*AlertChannel
	logger   zerolog.Logger
	nextID   int64
}

// NewAlertPubSub creates a new alert pub/sub system.
func NewAlertPubSub(logger zerolog.Logger) *AlertPubSub {
	return &AlertPubSub{
		channels: make(map[string]*AlertChannel),
		logger:   logger,
	}
}

// Subscribe creates a new subscription. The subscription is removed when
// ctx is cancelled.
func (ps *AlertPubSub) Subscribe(ctx context.Context) *AlertChannel {
	subCtx, cancel := context.WithCancel(ctx)

	ps.mu.Lock()
	ps.nextID++
	channel := &AlertChannel{
		ID:     fmt.Sprintf("alerts-%d", ps.nextID),
		Alerts: make(chan *JobFailureAlert, 16),
		ctx:    subCtx,
		cancel: cancel,
	}
	ps.channels[channel.ID] = channel
	ps.mu.Unlock()

	ps.logger.Info().
		Str("channelId", channel.ID).
		Msg("Alert subscription created")

	go func() {
		<-subCtx.Done()
		ps.Unsubscribe(channel.ID)
	}()

	return channel
}

// Unsubscribe removes a subscription channel.
func (ps *AlertPubSub) Unsubscribe(channelID string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	channel, exists := ps.channels[channelID]
	if !exists {
		return
	}

	close(channel.Alerts)
	channel.cancel()
	delete(ps.channels, channelID)

	ps.logger.Info().
		Str("channelId", channelID).
		Msg("Alert subscription removed")
}

// Publish broadcasts an alert to all subscribers. Delivery is non-blocking;
// a subscriber with a full buffer misses the alert, which is logged.
func (ps *AlertPubSub) Publish(alert *JobFailureAlert) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	for _, channel := range ps.channels {
		select {
		case channel.Alerts <- alert:
		case <-channel.ctx.Done():
		default:
			ps.logger.Warn().
				Str("channelId", channel.ID).
				Str("jobId", alert.Job.ID).
				Msg("Alert channel buffer full, dropping alert")
		}
	}
}

// SubscriberCount returns the number of active subscriptions.
func (ps *AlertPubSub) SubscriberCount() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.channels)
}
