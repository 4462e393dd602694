package application

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/ericfisherdev/statpanel/internal/domain/model"
)

// ActivityListener turns high-frequency interaction events into throttled
// activity writes. Observe never blocks; the write happens on the listener's
// own goroutine.
type ActivityListener struct {
	clock   *ActivityClock
	limiter *rate.Limiter
	pending chan model.InteractionKind
	logger  *slog.Logger
}

func newActivityListener(clock *ActivityClock, throttle time.Duration, logger *slog.Logger) *ActivityListener {
	limit := rate.Inf
	if throttle > 0 {
		limit = rate.Every(throttle)
	}
	return &ActivityListener{
		clock:   clock,
		limiter: rate.NewLimiter(limit, 1),
		pending: make(chan model.InteractionKind, 1),
		logger:  logger,
	}
}

// Observe records that the user interacted. It returns false when the event
// was dropped because of throttling or because a write is already queued.
func (l *ActivityListener) Observe(kind model.InteractionKind) bool {
	if !l.limiter.Allow() {
		return false
	}
	select {
	case l.pending <- kind:
		return true
	default:
		return false
	}
}

// run drains queued events until ctx is canceled.
func (l *ActivityListener) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("activity listener stopped")
			return
		case kind := <-l.pending:
			if err := l.clock.MarkActivity(ctx); err != nil {
				l.logger.Error("record activity failed", "event", kind, "error", err)
			}
		}
	}
}
