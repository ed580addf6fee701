package session

import (
	"context"
	"testing"
	"time"

	apperrors "frontdesk-workers/internal/common/errors"
	"frontdesk-workers/internal/common/logger"
	"frontdesk-workers/internal/common/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestRuntime(t *testing.T, storeTTL time.Duration, opts ...RuntimeOption) (*Runtime, func(time.Duration)) {
	t.Helper()
	mr, client := setupRedis(t)
	store := NewRedisStore(client, "test:", storeTTL, 0)
	return NewRuntime(store, &fakeExecutor{result: companyResult()}, testGreeting, logger.NewTestLogger(t), opts...), mr.FastForward
}

func TestRuntime_OpenCalls_StartAndEnd(t *testing.T) {
	runtime, _ := newTestRuntime(t, time.Hour)
	ctx := context.Background()

	first, err := runtime.StartCall(ctx)
	require.NoError(t, err)
	_, err = runtime.StartCall(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, runtime.OpenCalls())
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.ActiveCalls))

	require.NoError(t, runtime.EndCall(ctx, first))
	assert.Equal(t, 1, runtime.OpenCalls())
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ActiveCalls))
}

func TestRuntime_OpenCalls_UnknownCallDoesNotChangeCount(t *testing.T) {
	runtime, _ := newTestRuntime(t, time.Hour)
	ctx := context.Background()

	_, err := runtime.StartCall(ctx)
	require.NoError(t, err)

	err = runtime.EndCall(ctx, "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSessionNotFound))
	_, err = runtime.HandleUtterance(ctx, "missing", "hello")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSessionNotFound))

	assert.Equal(t, 1, runtime.OpenCalls())
}

func TestRuntime_OpenCalls_ExpiredHistoryIsForgotten(t *testing.T) {
	runtime, fastForward := newTestRuntime(t, time.Minute)
	ctx := context.Background()

	ended, err := runtime.StartCall(ctx)
	require.NoError(t, err)
	spoken, err := runtime.StartCall(ctx)
	require.NoError(t, err)
	fastForward(2 * time.Minute)

	err = runtime.EndCall(ctx, ended)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSessionNotFound))
	_, err = runtime.HandleUtterance(ctx, spoken, "are you still there?")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSessionNotFound))

	assert.Equal(t, 0, runtime.OpenCalls())
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.ActiveCalls))
}

func TestRuntime_OpenCalls_IdleTimeout(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
	runtime, _ := newTestRuntime(t, time.Hour, WithIdleTimeout(time.Minute), WithRuntimeClock(clock.Now))
	ctx := context.Background()

	active, err := runtime.StartCall(ctx)
	require.NoError(t, err)
	_, err = runtime.StartCall(ctx)
	require.NoError(t, err)

	clock.Advance(50 * time.Second)
	_, err = runtime.HandleUtterance(ctx, active, "What are your working hours?")
	require.NoError(t, err)

	clock.Advance(50 * time.Second)
	assert.Equal(t, 1, runtime.OpenCalls(), "only the call with a recent turn stays open")

	clock.Advance(time.Minute)
	assert.Equal(t, 0, runtime.OpenCalls())
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.ActiveCalls))
}
