// Package retry is the resilience executor applied at every external-call
// boundary: inference, persistence, payment gateway, and delegate transport.
// A Policy is an immutable value passed explicitly into each call site; there
// is no process-wide shared retry state.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultMaxAttempts  = 3
	defaultInitialDelay = 200 * time.Millisecond
	defaultMultiplier   = 2
	defaultMaxDelay     = 2 * time.Second
)

// Policy bounds one retry boundary: at most MaxAttempts calls with
// exponential backoff growing from InitialDelay by Multiplier, capped at
// MaxDelay. Retryable decides whether an error is worth another attempt;
// errors it rejects fail on the spot.
type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Retryable    func(error) bool
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultMaxAttempts
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = defaultInitialDelay
	}
	if p.Multiplier < 1 {
		p.Multiplier = defaultMultiplier
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = defaultMaxDelay
	}
	return p
}

// Inference is the policy for LLM provider calls: transient provider errors
// (429/500/503/504, network) back off aggressively.
func Inference(retryable func(error) bool) Policy {
	return Policy{
		MaxAttempts:  5,
		InitialDelay: time.Second,
		Multiplier:   7,
		MaxDelay:     30 * time.Second,
		Retryable:    retryable,
	}
}

// Persistence is the policy for relational store calls.
func Persistence(retryable func(error) bool) Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: 200 * time.Millisecond,
		Multiplier:   2,
		MaxDelay:     2 * time.Second,
		Retryable:    retryable,
	}
}

// Gateway is the policy for payment-gateway calls. Declined or invalid
// requests must be rejected by the retryable classifier; only connector and
// transient gateway errors are worth repeating.
func Gateway(retryable func(error) bool) Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: 200 * time.Millisecond,
		Multiplier:   2,
		MaxDelay:     2 * time.Second,
		Retryable:    retryable,
	}
}

// Delegate is the policy for task dispatch to a remote agent.
func Delegate(retryable func(error) bool) Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		Multiplier:   2,
		MaxDelay:     5 * time.Second,
		Retryable:    retryable,
	}
}

// Do runs op under the policy and returns its last result. Retries stay
// strictly within this one logical call. On exhaustion the original error is
// returned unchanged so the boundary can convert it into a safe message.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	return DoNotify(ctx, p, op, nil)
}

// DoNotify is Do with a callback invoked before each sleep, carrying the
// failure and the upcoming delay. Used for logging and for tests asserting
// backoff growth.
func DoNotify[T any](ctx context.Context, p Policy, op func(context.Context) (T, error), notify func(err error, next time.Duration)) (T, error) {
	p = p.normalized()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.InitialDelay
	bo.RandomizationFactor = 0
	bo.Multiplier = p.Multiplier
	bo.MaxInterval = p.MaxDelay
	bo.MaxElapsedTime = 0

	wrapped := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(p.MaxAttempts-1)), ctx)

	operation := func() (T, error) {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			var zero T
			return zero, backoff.Permanent(err)
		}
		return v, err
	}

	if notify == nil {
		return backoff.RetryWithData(operation, wrapped)
	}
	return backoff.RetryNotifyWithData(operation, wrapped, notify)
}
