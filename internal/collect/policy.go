package collect

import (
	"context"
	"errors"
	"time"

	"github.com/zhenliu/marketbrief/internal/contracts"
)

// Policy bounds one adapter invocation: at most MaxAttempts tries, each
// under its own PerAttemptTimeout, with no delay between tries. Every
// error is equally retryable; the only early exits are success, a partial
// payload, or cancellation of the whole run.
type Policy struct {
	Priority          contracts.Priority
	PerAttemptTimeout time.Duration
	MaxAttempts       int
}

// Run drives fetch under the policy and produces the category's terminal
// CollectionResult. It never returns an error: retry exhaustion is a
// failed result, and a TransientFetchError never surfaces past this
// function.
func (p Policy) Run(ctx context.Context, category contracts.Category, fetch func(context.Context) (contracts.Payload, error)) contracts.CollectionResult {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	start := time.Now()
	var lastErr error
	attempts := 0

	for attempts < maxAttempts {
		attempts++

		payload, err := p.attempt(ctx, category, fetch)
		if err == nil {
			return contracts.CollectionResult{
				Category: category,
				Status:   contracts.StatusOK,
				Payload:  payload,
				Attempts: attempts,
				Latency:  time.Since(start),
			}
		}

		if errors.Is(err, contracts.ErrPartialData) && !payload.IsEmpty() {
			// Terminal: retrying would discard the data already in hand.
			return contracts.CollectionResult{
				Category: category,
				Status:   contracts.StatusPartial,
				Payload:  payload,
				Attempts: attempts,
				Latency:  time.Since(start),
				Error:    err.Error(),
			}
		}

		lastErr = err

		if ctx.Err() != nil {
			// The run itself was cancelled; burning the remaining
			// attempts would only repeat the same context error.
			break
		}
	}

	return contracts.CollectionResult{
		Category: category,
		Status:   contracts.StatusFailed,
		Attempts: attempts,
		Latency:  time.Since(start),
		Error:    lastErr.Error(),
	}
}

// attempt runs one invocation under the per-attempt deadline. The fetch
// goroutine is abandoned when the deadline fires; adapters must tolerate
// abandonment, which is why they receive the attempt context.
func (p Policy) attempt(ctx context.Context, category contracts.Category, fetch func(context.Context) (contracts.Payload, error)) (contracts.Payload, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, p.PerAttemptTimeout)
	defer cancel()

	type outcome struct {
		payload contracts.Payload
		err     error
	}

	ch := make(chan outcome, 1)
	go func() {
		payload, err := fetch(attemptCtx)
		ch <- outcome{payload: payload, err: err}
	}()

	select {
	case o := <-ch:
		return o.payload, o.err
	case <-attemptCtx.Done():
		return contracts.Payload{}, &contracts.TransientFetchError{
			Source: string(category),
			Err:    attemptCtx.Err(),
		}
	}
}
