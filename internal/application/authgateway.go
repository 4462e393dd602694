package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/statpanel/internal/domain/model"
	"github.com/ericfisherdev/statpanel/internal/domain/port/driven"
)

// AuthGateway exchanges a username/password pair for a credential and
// performs user-initiated logout.
type AuthGateway struct {
	identity driven.IdentityTransport
	creds    *CredentialStore
	clock    *ActivityClock
	timeout  time.Duration
	logger   *slog.Logger
}

// NewAuthGateway creates an AuthGateway that signs in through identity.
func NewAuthGateway(sc *SessionContext, identity driven.IdentityTransport) *AuthGateway {
	return &AuthGateway{
		identity: identity,
		creds:    NewCredentialStore(sc),
		clock:    NewActivityClock(sc),
		timeout:  QueryTimeout,
		logger:   sc.logger,
	}
}

// signinError is the optional JSON body of a rejected signin.
type signinError struct {
	Message string `json:"message"`
}

// Login signs in and stores the returned credential. A rejected signin stores
// nothing and returns an AuthRejected failure carrying the HTTP status; use
// model.IsInvalidLogin to detect bad credentials.
func (a *AuthGateway) Login(ctx context.Context, username, password string) (model.Credential, error) {
	if username == "" || password == "" {
		return "", &model.Failure{Kind: model.KindInvalidInput, Message: "username and password are required"}
	}

	callCtx, cancel := context.WithTimeoutCause(ctx, a.timeout, errCallDeadline)
	defer cancel()

	a.logger.Info("signing in", "username", username)
	resp, err := a.identity.SignIn(callCtx, username, password)
	if err != nil {
		return "", classifyTransportError(callCtx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		a.logger.Warn("signin rejected", "username", username, "status", resp.StatusCode)
		return "", &model.Failure{
			Kind:    model.KindAuthRejected,
			Status:  resp.StatusCode,
			Message: rejectionMessage(resp),
		}
	}

	cred, ok := model.ParseCredential(string(resp.Body))
	if !ok {
		return "", &model.Failure{Kind: model.KindEmptyCredential, Message: "no credential received from server"}
	}

	if err := a.creds.Save(ctx, cred.String()); err != nil {
		return "", err
	}
	if err := a.clock.MarkActivity(ctx); err != nil {
		// A credential without an activity record would be expired on first use.
		if clearErr := a.creds.Clear(ctx); clearErr != nil {
			a.logger.Error("discard credential after activity failure", "error", clearErr)
		}
		return "", fmt.Errorf("record login activity: %w", err)
	}

	a.logger.Info("signed in", "username", username, "credential", cred.Redacted())
	return cred, nil
}

// Logout clears the stored credential. It is idempotent and leaves the
// activity record in place.
func (a *AuthGateway) Logout(ctx context.Context) error {
	a.logger.Info("logging out")
	return a.creds.Clear(ctx)
}

func rejectionMessage(resp *driven.Response) string {
	if resp.StatusCode == http.StatusUnauthorized {
		return "invalid username or password"
	}
	var body signinError
	if err := json.Unmarshal(resp.Body, &body); err == nil && body.Message != "" {
		return body.Message
	}
	return "login failed"
}
