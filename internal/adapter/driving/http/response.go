package httphandler

import (
	"encoding/json"
	"net/http"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// failureResponse is the error body for classified query failures.
type failureResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// QueryRequest is the JSON body for the query endpoint.
type QueryRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// QueryResponse wraps the data payload of a successful query.
type QueryResponse struct {
	Data json.RawMessage `json:"data"`
}

// SessionResponse is the JSON representation of the session state.
type SessionResponse struct {
	State                string `json:"state"`
	IdleThresholdSeconds int    `json:"idle_threshold_seconds"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}
