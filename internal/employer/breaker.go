package employer

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"github.com/skillconnect/jobcore/internal/ecode"
)

// breakerCounter stops calling a failing counter store for a while so that
// best-effort updates do not pile up behind it.
type breakerCounter struct {
	next Counter
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker guards next with a circuit breaker. The breaker trips after at
// least three calls with a failure ratio of 60% and probes again after
// openTimeout.
func WithBreaker(next Counter, openTimeout time.Duration) Counter {
	if openTimeout <= 0 {
		openTimeout = 30 * time.Second
	}
	return &breakerCounter{
		next: next,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "employer-counter",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     openTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
		}),
	}
}

func (b *breakerCounter) Increment(ctx context.Context, employerID string, delta int) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Increment(ctx, employerID, delta)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ecode.NewTransient("employer counter temporarily disabled", err)
	}
	return err
}
