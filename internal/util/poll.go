package util

import (
	"context"
	"time"
)

// PollUntil calls fn every interval until fn reports done, the timeout
// elapses, or the context is cancelled. It returns nil when fn reported
// done, ctx.Err() on cancellation, and context.DeadlineExceeded when the
// window lapses first. fn is called once immediately before the first wait.
// Errors from fn end the poll early.
func PollUntil(ctx context.Context, timeout, interval time.Duration, fn func(ctx context.Context) (bool, error)) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		done, err := fn(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
