package breaker

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/noah-isme/acs-institute-api/pkg/config"
)

// New creates a circuit breaker named after the dependency it guards. The
// breaker opens after cfg.ConsecutiveFailures consecutive failures. Missing
// rows and caller cancellation are not failures.
func New(name string, cfg config.BreakerConfig, logger *zap.Logger) *gobreaker.CircuitBreaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	failures := cfg.ConsecutiveFailures
	if failures == 0 {
		failures = 3
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

func isSuccessful(err error) bool {
	return err == nil || errors.Is(err, sql.ErrNoRows) || errors.Is(err, context.Canceled)
}
