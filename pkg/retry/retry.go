// Package retry runs an operation with exponential backoff, retrying only
// errors a caller-supplied predicate marks as transient.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrExhausted is returned once every attempt failed with a retryable error
var ErrExhausted = errors.New("retry attempts exhausted")

// Policy configures Do. Zero values fall back to the defaults below.
type Policy struct {
	MaxAttempts     int           // total attempts including the first, default 3
	InitialInterval time.Duration // wait before the second attempt, default 1s
	Multiplier      float64       // growth factor between waits, default 2

	// Retryable decides whether a failed attempt is tried again. A nil
	// predicate retries nothing.
	Retryable func(error) bool

	// Notify is called before each wait with the error and the delay
	Notify func(err error, wait time.Duration)

	// Timer replaces the real timer, mainly in tests
	Timer backoff.Timer
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 3
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = time.Second
	}
	if p.Multiplier < 1 {
		p.Multiplier = 2
	}
	return p
}

// Do calls op until it succeeds, returns a non-retryable error, the context
// is done, or MaxAttempts is reached. Waits grow as InitialInterval *
// Multiplier^n with no jitter, and no wait follows the final attempt.
//
// Non-retryable errors are returned unchanged. Exhaustion returns an error
// wrapping both ErrExhausted and the last failure.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	p = p.withDefaults()

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.InitialInterval
	eb.Multiplier = p.Multiplier
	eb.RandomizationFactor = 0
	eb.MaxInterval = time.Duration(float64(p.InitialInterval) * math.Pow(p.Multiplier, float64(p.MaxAttempts)))
	eb.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(p.MaxAttempts-1)), ctx)

	permanent := false
	operation := func() error {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if p.Retryable == nil || !p.Retryable(err) {
			permanent = true
			return backoff.Permanent(err)
		}
		return err
	}

	var notify backoff.Notify
	if p.Notify != nil {
		notify = backoff.Notify(p.Notify)
	}

	err := backoff.RetryNotifyWithTimer(operation, b, notify, p.Timer)
	switch {
	case err == nil:
		return nil
	case permanent:
		return err
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return fmt.Errorf("%w: %w", ErrExhausted, err)
	}
}
