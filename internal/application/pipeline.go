package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/statpanel/internal/domain/model"
	"github.com/ericfisherdev/statpanel/internal/domain/port/driven"
)

// QueryTimeout bounds every outbound call, including reading the response.
const QueryTimeout = 15 * time.Second

var errCallDeadline = fmt.Errorf("call deadline of %s elapsed", QueryTimeout)

// graphqlEnvelope is the response shape of the query endpoint.
type graphqlEnvelope struct {
	Data   json.RawMessage      `json:"data"`
	Errors []model.GraphQLError `json:"errors"`
}

// RequestPipeline is the single path for authenticated queries. Each gate
// short-circuits the rest: validation, session precheck, activity, credential,
// bounded network call, then status and payload classification.
type RequestPipeline struct {
	transport driven.QueryTransport
	guard     *SessionGuard
	creds     *CredentialStore
	clock     *ActivityClock
	timeout   time.Duration
	logger    *slog.Logger
}

// NewRequestPipeline creates a RequestPipeline that sends queries through
// transport.
func NewRequestPipeline(sc *SessionContext, transport driven.QueryTransport) *RequestPipeline {
	return &RequestPipeline{
		transport: transport,
		guard:     NewSessionGuard(sc),
		creds:     NewCredentialStore(sc),
		clock:     NewActivityClock(sc),
		timeout:   QueryTimeout,
		logger:    sc.logger,
	}
}

// Execute runs req and returns the response's data payload. Every failure is
// a *model.Failure. Concurrent calls are independent: each has its own
// deadline and cancellation.
func (p *RequestPipeline) Execute(ctx context.Context, req model.QueryRequest) (json.RawMessage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := p.guard.Precheck(ctx); err != nil {
		return nil, err
	}

	if err := p.clock.MarkActivity(ctx); err != nil {
		p.logger.Warn("query activity not recorded", "error", err)
	}

	cred, ok, err := p.creds.Read(ctx)
	if err != nil {
		return nil, &model.Failure{Kind: model.KindUnauthenticated, Message: "credential unreadable", Err: err}
	}
	if !ok {
		return nil, &model.Failure{Kind: model.KindUnauthenticated, Message: "no authentication credential"}
	}

	if req.Variables == nil {
		req.Variables = map[string]any{}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &model.Failure{Kind: model.KindInvalidQuery, Message: "variables not encodable", Err: err}
	}

	requestID := uuid.NewString()
	logger := p.logger.With("request_id", requestID)
	start := time.Now()

	data, err := p.roundTrip(ctx, cred, body)
	if err != nil {
		logger.Warn("graphql request failed",
			"kind", model.KindOf(err).String(),
			"duration", time.Since(start).Round(time.Millisecond),
			"error", err,
		)
		return nil, err
	}

	logger.Debug("graphql request complete", "duration", time.Since(start).Round(time.Millisecond))
	return data, nil
}

// ExecuteInto runs req and decodes the data payload into v.
func (p *RequestPipeline) ExecuteInto(ctx context.Context, req model.QueryRequest, v any) error {
	data, err := p.Execute(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding query data: %w", err)
	}
	return nil
}

// roundTrip performs the bounded network call and classifies its result. The
// deadline timer is released on every return path.
func (p *RequestPipeline) roundTrip(ctx context.Context, cred model.Credential, body []byte) (json.RawMessage, error) {
	callCtx, cancel := context.WithTimeoutCause(ctx, p.timeout, errCallDeadline)
	defer cancel()

	resp, err := p.transport.PostQuery(callCtx, cred.String(), body)
	if err != nil {
		return nil, classifyTransportError(callCtx, err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		if clearErr := p.creds.Clear(ctx); clearErr != nil {
			p.logger.Error("clear rejected credential", "error", clearErr)
		}
		p.logger.Info("forced logout", "reason", "authorization rejected", "status", resp.StatusCode)
		return nil, &model.Failure{
			Kind:    model.KindUnauthorized,
			Status:  resp.StatusCode,
			Message: "unauthorized, please sign in again",
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &model.Failure{Kind: model.KindHTTPError, Status: resp.StatusCode, Message: "http error"}
	}

	var env graphqlEnvelope
	if err := json.Unmarshal(resp.Body, &env); err != nil {
		return nil, &model.Failure{Kind: model.KindGraphFailure, Message: "malformed response", Err: err}
	}

	if len(env.Errors) > 0 {
		msg := env.Errors[0].Describe()
		if msg == "" {
			msg = "graphql error"
		}
		return nil, &model.Failure{Kind: model.KindGraphFailure, Message: msg}
	}

	return env.Data, nil
}

// classifyTransportError maps a failed call onto Timeout or NetworkError.
// Any elapsed deadline, ours or the caller's, is a Timeout; a caller cancel
// is a NetworkError wrapping context.Canceled.
func classifyTransportError(callCtx context.Context, err error) *model.Failure {
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return &model.Failure{Kind: model.KindTimeout, Message: "request timed out", Err: context.Cause(callCtx)}
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &model.Failure{Kind: model.KindTimeout, Message: "request timed out", Err: err}
	}
	return &model.Failure{Kind: model.KindNetworkError, Message: "network error", Err: err}
}
