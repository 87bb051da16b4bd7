package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_FastActionWaitsForInterval(t *testing.T) {
	const interval = 100 * time.Millisecond

	start := time.Now()
	got, err := Do(context.Background(), interval, func(context.Context) (int, error) {
		return 42, nil
	})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.GreaterOrEqual(t, elapsed, interval, "must not return before the interval elapses")
}

func TestDo_SlowActionDominates(t *testing.T) {
	const interval = 20 * time.Millisecond

	start := time.Now()
	got, err := Do(context.Background(), interval, func(context.Context) (string, error) {
		time.Sleep(80 * time.Millisecond)
		return "done", nil
	})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, "done", got)
	assert.GreaterOrEqual(t, elapsed, 80*time.Millisecond)
}

func TestDo_ActionErrorAfterInterval(t *testing.T) {
	const interval = 60 * time.Millisecond
	actionErr := errors.New("send failed")

	start := time.Now()
	_, err := Do(context.Background(), interval, func(context.Context) (int, error) {
		return 0, actionErr
	})
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, actionErr, "action errors surface unchanged")
	assert.GreaterOrEqual(t, elapsed, interval, "errors do not skip the floor")
}

func TestDo_SerialCallsFloorStartToStart(t *testing.T) {
	const interval = 50 * time.Millisecond
	ctx := context.Background()

	var starts []time.Time
	for i := 0; i < 2; i++ {
		starts = append(starts, time.Now())
		_, err := Do(ctx, interval, func(context.Context) (int, error) { return i, nil })
		require.NoError(t, err)
	}

	assert.GreaterOrEqual(t, starts[1].Sub(starts[0]), interval,
		"second call cannot start sooner than one interval after the first")
}

func TestDo_CanceledContextSkipsTimer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	got, err := Do(ctx, time.Hour, func(context.Context) (int, error) {
		return 7, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 7, got)
	assert.Less(t, time.Since(start), time.Second, "canceled caller is not held for the interval")
}

func TestDo_ZeroInterval(t *testing.T) {
	got, err := Do(context.Background(), 0, func(context.Context) (int, error) {
		return 1, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}
