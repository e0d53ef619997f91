package breaker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/acs-institute-api/pkg/config"
)

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	cb := New("postgres", config.BreakerConfig{MaxRequests: 1, Timeout: time.Minute, ConsecutiveFailures: 2}, nil)
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		_, err := cb.Execute(func() (interface{}, error) { return nil, boom })
		assert.ErrorIs(t, err, boom)
	}

	assert.Equal(t, gobreaker.StateOpen, cb.State())
	_, err := cb.Execute(func() (interface{}, error) { return nil, nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestBreakerIgnoresMissingRowsAndCancellation(t *testing.T) {
	cb := New("postgres", config.BreakerConfig{MaxRequests: 1, Timeout: time.Minute, ConsecutiveFailures: 2}, nil)

	outcomes := []error{
		sql.ErrNoRows,
		fmt.Errorf("find enrollment: %w", sql.ErrNoRows),
		context.Canceled,
		sql.ErrNoRows,
	}
	for _, want := range outcomes {
		_, err := cb.Execute(func() (interface{}, error) { return nil, want })
		assert.ErrorIs(t, err, want)
	}

	assert.Equal(t, gobreaker.StateClosed, cb.State())
	_, err := cb.Execute(func() (interface{}, error) { return "ok", nil })
	assert.NoError(t, err)
}
