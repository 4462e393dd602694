package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ericfisherdev/statpanel/internal/domain/model"
)

// LoadResult is the outcome of EnforceOnLoad.
type LoadResult struct {
	State model.SessionState
	// RedirectToLogin is set when the session was just cleared for idleness
	// and the caller is not already on the login page.
	RedirectToLogin bool
}

// SessionGuard decides session validity and performs forced logout. The
// decision itself is model.EvaluateSession; the guard only adds the storage
// side effects around it.
type SessionGuard struct {
	creds  *CredentialStore
	clock  *ActivityClock
	now    func() time.Time
	logger *slog.Logger
}

// NewSessionGuard creates a SessionGuard over the context's store.
func NewSessionGuard(sc *SessionContext) *SessionGuard {
	return &SessionGuard{
		creds:  NewCredentialStore(sc),
		clock:  NewActivityClock(sc),
		now:    sc.now,
		logger: sc.logger,
	}
}

// State reports the current SessionState. Apart from Read clearing an
// unusable credential, nothing is mutated. An unreadable activity record
// counts as no activity.
func (g *SessionGuard) State(ctx context.Context) (model.SessionState, error) {
	_, hasCred, err := g.creds.Read(ctx)
	if err != nil {
		return model.SessionAbsent, err
	}
	last, err := g.clock.LastActivity(ctx)
	if err != nil {
		g.logger.Error("activity store unavailable", "error", err)
		last = time.Time{}
	}
	return model.EvaluateSession(g.now(), last, hasCred), nil
}

// EnforceOnLoad runs once per page load. An idle session is cleared, and the
// caller is told to redirect unless it is already on the login page. A live
// session has its idle window slid forward.
func (g *SessionGuard) EnforceOnLoad(ctx context.Context, onLoginPage bool) (LoadResult, error) {
	if g.clock.IsExpired(ctx) {
		state := model.SessionAbsent
		if _, hasCred, err := g.creds.Read(ctx); err == nil && hasCred {
			state = model.SessionExpired
		}
		err := g.ForceLogout(ctx, "idle on load")
		return LoadResult{State: state, RedirectToLogin: !onLoginPage}, err
	}

	if err := g.clock.MarkActivity(ctx); err != nil {
		return LoadResult{State: model.SessionAbsent}, err
	}

	_, hasCred, err := g.creds.Read(ctx)
	if err != nil {
		return LoadResult{State: model.SessionAbsent}, err
	}
	if !hasCred {
		return LoadResult{State: model.SessionAbsent}, nil
	}
	return LoadResult{State: model.SessionValid}, nil
}

// Precheck fails with SessionExpired, after clearing the credential and the
// activity record, when the session is idle.
func (g *SessionGuard) Precheck(ctx context.Context) error {
	if !g.clock.IsExpired(ctx) {
		return nil
	}
	return &model.Failure{
		Kind:    model.KindSessionExpired,
		Message: "session expired",
		Err:     g.ForceLogout(ctx, "idle before query"),
	}
}

// ForceLogout clears both the credential and the activity record.
func (g *SessionGuard) ForceLogout(ctx context.Context, reason string) error {
	g.logger.Info("forced logout", "reason", reason)
	return errors.Join(g.creds.Clear(ctx), g.clock.Clear(ctx))
}
