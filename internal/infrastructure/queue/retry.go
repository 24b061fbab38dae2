package queue

import "time"

// RetryPolicy decides how long to wait before a failed job is redelivered.
type RetryPolicy interface {
	NextDelay(attempt int) time.Duration
}

// ExponentialBackoff doubles the delay on every attempt, capped at Max.
type ExponentialBackoff struct {
	Initial time.Duration
	Max     time.Duration
}

// NextDelay returns the delay before the given attempt (1-based).
func (p ExponentialBackoff) NextDelay(attempt int) time.Duration {
	initial := p.Initial
	if initial <= 0 {
		initial = time.Second
	}
	maximum := p.Max
	if maximum <= 0 {
		maximum = 30 * time.Second
	}

	delay := initial
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maximum {
			return maximum
		}
	}
	if delay > maximum {
		return maximum
	}
	return delay
}
