// Package application contains use-case orchestration services.
package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/statpanel/internal/domain/port/driven"
)

// Storage keys. These are the only two persisted values.
const (
	CredentialKey = "token"
	ActivityKey   = "lastActivityAt"
)

// SessionContext owns the durable store, the clock source and the logger
// shared by every session component. Build one per process and pass it to
// each constructor.
type SessionContext struct {
	store  driven.KVStore
	now    func() time.Time
	logger *slog.Logger

	attachOnce sync.Once
	listener   *ActivityListener
}

// Option configures a SessionContext.
type Option func(*SessionContext)

// WithClock replaces time.Now as the clock source.
func WithClock(now func() time.Time) Option {
	return func(sc *SessionContext) { sc.now = now }
}

// WithLogger sets the logger used by all session components.
func WithLogger(logger *slog.Logger) Option {
	return func(sc *SessionContext) { sc.logger = logger }
}

// NewSessionContext creates a SessionContext over store.
func NewSessionContext(store driven.KVStore, opts ...Option) *SessionContext {
	sc := &SessionContext{
		store:  store,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc
}

// Attach installs the process-wide activity listener. Only the first call
// starts it; later calls return the same listener and ignore their arguments.
// The listener runs until ctx is canceled.
func (sc *SessionContext) Attach(ctx context.Context, throttle time.Duration) *ActivityListener {
	sc.attachOnce.Do(func() {
		sc.listener = newActivityListener(NewActivityClock(sc), throttle, sc.logger)
		go sc.listener.run(ctx)
		sc.logger.Info("activity listener attached", "throttle", throttle)
	})
	return sc.listener
}
