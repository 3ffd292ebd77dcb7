// Package retry is the single retry policy shared by pricing and usage calls.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/diillson/falcon-cost-estimator-go/internal/shared/types"
)

// Policy is an exponential backoff with jitter and a bounded number of attempts.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Jitter      float64

	// Retryable decide se um erro merece nova tentativa; nil usa DefaultRetryable.
	Retryable func(error) bool

	logger *zap.Logger
}

// DefaultPolicy: 3 tentativas, 500ms de base, teto de 10s, 20% de jitter.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond, MaxDelay: 10 * time.Second, Jitter: 0.2}
}

// FromConfig builds the policy from the run configuration.
func FromConfig(cfg types.Config) Policy {
	p := DefaultPolicy()
	if cfg.RetryMaxAttempts > 0 {
		p.MaxAttempts = cfg.RetryMaxAttempts
	}
	if cfg.RetryBaseDelayMs > 0 {
		p.BaseDelay = time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond
	}
	if cfg.RetryMaxDelayMs > 0 {
		p.MaxDelay = time.Duration(cfg.RetryMaxDelayMs) * time.Millisecond
	}
	if cfg.RetryJitter >= 0 && cfg.RetryJitter < 1 {
		p.Jitter = cfg.RetryJitter
	}
	return p
}

// WithLogger retorna uma cópia que registra cada nova tentativa em debug.
func (p Policy) WithLogger(logger *zap.Logger) Policy {
	p.logger = logger
	return p
}

// NoRetry tries exactly once.
func NoRetry() Policy {
	return Policy{MaxAttempts: 1}
}

// DefaultRetryable refuses to retry access errors, auth failures, missing
// prices and cancelled contexts.
func DefaultRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, types.ErrAuthFailure), errors.Is(err, types.ErrTierUnavailable), errors.Is(err, types.ErrPricingUnavailable):
		return false
	case types.IsUnitAccessError(err):
		return false
	}
	return true
}

// Do runs op until it succeeds, returns a non-retryable error, runs out of
// attempts or ctx is done. The last error is returned unwrapped.
func (p Policy) Do(ctx context.Context, operation string, op func(ctx context.Context) error) error {
	retryable := p.Retryable
	if retryable == nil {
		retryable = DefaultRetryable
	}

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.BaseDelay
	exp.MaxInterval = p.MaxDelay
	exp.RandomizationFactor = p.Jitter
	exp.Multiplier = 2
	exp.MaxElapsedTime = 0
	if exp.InitialInterval <= 0 {
		exp.InitialInterval = time.Millisecond
	}
	if exp.MaxInterval < exp.InitialInterval {
		exp.MaxInterval = exp.InitialInterval
	}
	exp.Reset()

	b := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)

	notify := func(err error, wait time.Duration) {
		if p.logger != nil {
			p.logger.Debug("retrying operation",
				zap.String("operation", operation),
				zap.Duration("wait", wait),
				zap.Error(err))
		}
	}

	return backoff.RetryNotify(func() error {
		err := op(ctx)
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b, notify)
}
