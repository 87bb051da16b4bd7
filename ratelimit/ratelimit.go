// Package ratelimit provides a floor-style limiter for outbound sends: the
// wrapped action and an interval timer run concurrently, and the call does
// not return before the interval has elapsed, even when the action finishes
// earlier. It bounds how fast a serial caller can issue successive sends;
// it is not a mutex and does not serialize overlapping callers.
package ratelimit

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultInterval bounds load on downstream relay and consensus components.
const DefaultInterval = 6 * time.Second

// Do runs action and an interval timer concurrently and returns action's
// result once both have completed. The timer aborts early if ctx is
// canceled; the action's result is returned either way.
func Do[T any](ctx context.Context, interval time.Duration, action func(context.Context) (T, error)) (T, error) {
	var (
		result    T
		actionErr error
	)

	g := new(errgroup.Group)
	g.Go(func() error {
		result, actionErr = action(ctx)
		return nil
	})
	g.Go(func() error {
		if interval <= 0 {
			return nil
		}
		timer := time.NewTimer(interval)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
		}
		return nil
	})
	_ = g.Wait()

	return result, actionErr
}
