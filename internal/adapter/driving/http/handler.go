// Package httphandler implements the JSON API driving adapter.
package httphandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/statpanel/internal/application"
	"github.com/ericfisherdev/statpanel/internal/domain/model"
)

// maxQueryBodyBytes caps the size of an incoming query request.
const maxQueryBodyBytes = 1 << 20

// Handler is the HTTP driving adapter that serves the JSON API.
type Handler struct {
	pipeline *application.RequestPipeline
	guard    *application.SessionGuard
	listener *application.ActivityListener
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	pipeline *application.RequestPipeline,
	guard *application.SessionGuard,
	listener *application.ActivityListener,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		pipeline: pipeline,
		guard:    guard,
		listener: listener,
		logger:   logger,
	}
}

// RegisterAPIRoutes registers all API routes on the provided mux.
// Query and activity are only accepted from this origin: both spend the stored
// credential's idle window.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	sameOrigin := sameOriginOnly()

	mux.Handle("POST /api/v1/query", sameOrigin.Handler(requireJSON(http.HandlerFunc(h.Query))))
	mux.HandleFunc("GET /api/v1/session", h.Session)
	mux.Handle("POST /api/v1/activity", sameOrigin.Handler(http.HandlerFunc(h.Activity)))
	mux.HandleFunc("GET /api/v1/health", h.Health)
}

// ApplyMiddleware wraps handler with recovery and request logging.
func ApplyMiddleware(handler http.Handler, logger *slog.Logger) http.Handler {
	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, handler)
	return loggingMiddleware(logger, wrapped)
}

// Query runs a GraphQL query through the request pipeline.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	var body QueryRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxQueryBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	data, err := h.pipeline.Execute(r.Context(), model.NewQueryRequest(body.Query, body.Variables))
	if err != nil {
		h.writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, QueryResponse{Data: data})
}

// Session reports the current session state.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	state, err := h.guard.State(r.Context())
	if err != nil {
		h.logger.Error("failed to read session state", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{
		State:                string(state),
		IdleThresholdSeconds: int(model.IdleThreshold / time.Second),
	})
}

// Activity receives interaction beacons from the browser.
func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	kind, ok := model.ParseInteractionKind(r.URL.Query().Get("event"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown interaction event")
		return
	}

	h.listener.Observe(kind)
	w.WriteHeader(http.StatusNoContent)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// writeFailure maps a pipeline failure onto an HTTP status.
func (h *Handler) writeFailure(w http.ResponseWriter, err error) {
	var failure *model.Failure
	if !errors.As(err, &failure) {
		h.logger.Error("unclassified query failure", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, statusForFailure(failure.Kind), failureResponse{
		Error: failure.Error(),
		Kind:  failure.Kind.String(),
	})
}

func statusForFailure(kind model.FailureKind) int {
	switch kind {
	case model.KindInvalidQuery, model.KindInvalidInput:
		return http.StatusBadRequest
	case model.KindSessionExpired, model.KindUnauthenticated, model.KindUnauthorized, model.KindAuthRejected, model.KindEmptyCredential:
		return http.StatusUnauthorized
	case model.KindGraphFailure:
		return http.StatusUnprocessableEntity
	case model.KindTimeout:
		return http.StatusGatewayTimeout
	case model.KindNetworkError, model.KindHTTPError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
