package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/observatory/pkg/config"
	"github.com/sony/gobreaker/v2"
)

// ErrPublisherUnavailable is returned while the circuit breaker rejects calls.
var ErrPublisherUnavailable = errors.New("publisher unavailable")

// BreakerPublisher decorates a Publisher with retries and a circuit breaker.
// Each attempt is one breaker call, so a failing broker trips the breaker and later
// publishes fail fast instead of waiting for the full retry budget.
type BreakerPublisher struct {
	next    Publisher
	breaker *gobreaker.CircuitBreaker[struct{}]
	retry   config.RetryConfig
	logger  *slog.Logger
}

// NewBreakerPublisher wraps next using the retry and circuit breaker settings of cfg.
func NewBreakerPublisher(next Publisher, cfg config.ResilienceConfig, logger *slog.Logger) *BreakerPublisher {
	logger = logger.With("component", "breaker-publisher")
	cbCfg := cfg.CircuitBreaker
	st := gobreaker.Settings{
		Name:        "catalog-publisher-cb",
		MaxRequests: 3,
		Timeout:     cbCfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > cbCfg.ConsecutiveFailures ||
				(counts.Requests > cbCfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(counts.Requests)*100 > float64(cbCfg.ErrorRatePercent))
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return &BreakerPublisher{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[struct{}](st),
		retry:   cfg.Retry,
		logger:  logger,
	}
}

// Publish sends event, retrying with exponential backoff up to the configured number of attempts.
func (p *BreakerPublisher) Publish(ctx context.Context, event Event) error {
	backoff := p.retry.InitialBackoff
	var lastErr error
	for attempt := uint(1); attempt <= p.retry.MaxAttempts; attempt++ {
		_, err := p.breaker.Execute(func() (struct{}, error) {
			return struct{}{}, p.next.Publish(ctx, event)
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", ErrPublisherUnavailable, err)
		}
		lastErr = err
		if attempt == p.retry.MaxAttempts {
			break
		}
		p.logger.DebugContext(ctx, "publish failed, retrying", "subject", event.Subject(), "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return errors.Join(lastErr, ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return fmt.Errorf("publish %s failed after %d attempts: %w", event.Subject(), p.retry.MaxAttempts, lastErr)
}
