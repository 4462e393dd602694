package application

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/ericfisherdev/statpanel/internal/domain/model"
	"github.com/ericfisherdev/statpanel/internal/domain/port/driven"
)

// ActivityClock records the last user interaction as milliseconds since the
// epoch under ActivityKey.
type ActivityClock struct {
	store  driven.KVStore
	now    func() time.Time
	logger *slog.Logger
}

// NewActivityClock creates an ActivityClock backed by the context's store.
func NewActivityClock(sc *SessionContext) *ActivityClock {
	return &ActivityClock{store: sc.store, now: sc.now, logger: sc.logger}
}

// MarkActivity overwrites the recorded activity time with now.
func (c *ActivityClock) MarkActivity(ctx context.Context) error {
	ms := strconv.FormatInt(c.now().UnixMilli(), 10)
	if err := c.store.Set(ctx, ActivityKey, ms); err != nil {
		return fmt.Errorf("mark activity: %w", err)
	}
	return nil
}

// LastActivity returns the recorded activity time, or the zero time when none
// is recorded or the stored value is unusable.
func (c *ActivityClock) LastActivity(ctx context.Context) (time.Time, error) {
	raw, found, err := c.store.Get(ctx, ActivityKey)
	if err != nil {
		return time.Time{}, fmt.Errorf("read activity: %w", err)
	}
	if !found {
		return time.Time{}, nil
	}

	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms <= 0 {
		c.logger.Warn("ignoring malformed activity timestamp", "value", raw)
		return time.Time{}, nil
	}
	return time.UnixMilli(ms), nil
}

// IsExpired reports whether the idle threshold has passed. It fails safe: an
// unreadable store counts as expired.
func (c *ActivityClock) IsExpired(ctx context.Context) bool {
	last, err := c.LastActivity(ctx)
	if err != nil {
		c.logger.Error("activity store unavailable, treating session as expired", "error", err)
		return true
	}
	return model.IsIdle(c.now(), last)
}

// Clear removes the activity record.
func (c *ActivityClock) Clear(ctx context.Context) error {
	if err := c.store.Delete(ctx, ActivityKey); err != nil {
		return fmt.Errorf("clear activity: %w", err)
	}
	return nil
}
