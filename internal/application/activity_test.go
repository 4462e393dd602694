package application_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/statpanel/internal/application"
	"github.com/ericfisherdev/statpanel/internal/domain/model"
)

func TestActivityClock_MarkActivityStoresMillis(t *testing.T) {
	f := newFixture()
	clock := application.NewActivityClock(f.sc)

	require.NoError(t, clock.MarkActivity(context.Background()))

	raw, ok := f.store.value(application.ActivityKey)
	require.True(t, ok)
	assert.Equal(t, strconv.FormatInt(f.clock.Now().UnixMilli(), 10), raw)
}

func TestActivityClock_IsExpiredWithoutRecord(t *testing.T) {
	f := newFixture()
	assert.True(t, application.NewActivityClock(f.sc).IsExpired(context.Background()))
}

func TestActivityClock_IsExpiredBoundary(t *testing.T) {
	f := newFixture()
	clock := application.NewActivityClock(f.sc)
	ctx := context.Background()
	require.NoError(t, clock.MarkActivity(ctx))

	f.clock.Advance(model.IdleThreshold - time.Millisecond)
	assert.False(t, clock.IsExpired(ctx), "15min - 1ms is still active")

	f.clock.Advance(time.Millisecond)
	assert.False(t, clock.IsExpired(ctx), "exactly 15min is still active")

	f.clock.Advance(time.Millisecond)
	assert.True(t, clock.IsExpired(ctx), "15min + 1ms is expired")
}

func TestActivityClock_IsExpiredFailsSafe(t *testing.T) {
	f := newFixture()
	clock := application.NewActivityClock(f.sc)
	ctx := context.Background()
	require.NoError(t, clock.MarkActivity(ctx))

	f.store.setDown(true)
	assert.True(t, clock.IsExpired(ctx), "unavailable store must never fail open")
}

func TestActivityClock_MalformedTimestampCountsAsNone(t *testing.T) {
	f := newFixture()
	clock := application.NewActivityClock(f.sc)
	ctx := context.Background()
	require.NoError(t, f.store.Set(ctx, application.ActivityKey, "not-a-number"))

	last, err := clock.LastActivity(ctx)
	require.NoError(t, err)
	assert.True(t, last.IsZero())
	assert.True(t, clock.IsExpired(ctx))
}

func TestActivityClock_Clear(t *testing.T) {
	f := newFixture()
	clock := application.NewActivityClock(f.sc)
	ctx := context.Background()
	require.NoError(t, clock.MarkActivity(ctx))

	require.NoError(t, clock.Clear(ctx))
	require.NoError(t, clock.Clear(ctx))

	_, ok := f.store.value(application.ActivityKey)
	assert.False(t, ok)
}
