// Package wrap provides the cross-cutting operation wrappers (retry, logging,
// timing) as explicit function composition. Callers compose them at the call
// site; nothing is applied implicitly.
package wrap

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
)

// Operation is a single named unit of flow work.
type Operation func(ctx context.Context) error

// Wrapper transforms an operation into a decorated operation.
type Wrapper func(Operation) Operation

// Compose applies wrappers outside-in: Compose(op, a, b) runs a(b(op)).
func Compose(op Operation, wrappers ...Wrapper) Operation {
	for i := len(wrappers) - 1; i >= 0; i-- {
		op = wrappers[i](op)
	}
	return op
}

// WithRetry retries the operation up to attempts times, sleeping delay
// between attempts. Context cancellation stops the loop.
func WithRetry(attempts int, delay time.Duration) Wrapper {
	return func(op Operation) Operation {
		return func(ctx context.Context) error {
			var lastErr error
			for i := 0; i < attempts; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				if lastErr = op(ctx); lastErr == nil {
					return nil
				}
				if i < attempts-1 {
					select {
					case <-time.After(delay):
					case <-ctx.Done():
						return ctx.Err()
					}
				}
			}
			return fmt.Errorf("operation failed after %d attempts: %w", attempts, lastErr)
		}
	}
}

// WithLogging logs the operation start, outcome, and duration.
func WithLogging(logger arbor.ILogger, name string) Wrapper {
	return func(op Operation) Operation {
		return func(ctx context.Context) error {
			logger.Debug().Str("operation", name).Msg("Starting")
			start := time.Now()
			err := op(ctx)
			elapsed := time.Since(start)
			if err != nil {
				logger.Warn().
					Str("operation", name).
					Str("duration", elapsed.Round(time.Millisecond).String()).
					Err(err).
					Msg("Operation failed")
				return err
			}
			logger.Info().
				Str("operation", name).
				Str("duration", elapsed.Round(time.Millisecond).String()).
				Msg("Operation completed")
			return nil
		}
	}
}

// TimingSink receives one measurement per wrapped operation run.
type TimingSink interface {
	RecordTiming(name string, elapsed time.Duration, err error)
}

// TimingSinkFunc adapts a function to TimingSink.
type TimingSinkFunc func(name string, elapsed time.Duration, err error)

func (f TimingSinkFunc) RecordTiming(name string, elapsed time.Duration, err error) {
	f(name, elapsed, err)
}

// WithTiming reports the operation duration to the sink, pass or fail.
func WithTiming(sink TimingSink, name string) Wrapper {
	return func(op Operation) Operation {
		return func(ctx context.Context) error {
			start := time.Now()
			err := op(ctx)
			sink.RecordTiming(name, time.Since(start), err)
			return err
		}
	}
}
