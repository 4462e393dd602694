package model

import (
	"errors"
	"fmt"
	"net/http"
)

// FailureKind is the closed set of failure classes produced by the session
// core. Callers switch on it exhaustively; nothing here is retried.
type FailureKind int

const (
	KindInvalidInput FailureKind = iota + 1
	KindAuthRejected
	KindEmptyCredential
	KindInvalidQuery
	KindSessionExpired
	KindUnauthenticated
	KindTimeout
	KindNetworkError
	KindUnauthorized
	KindHTTPError
	KindGraphFailure
)

var kindNames = map[FailureKind]string{
	KindInvalidInput:    "invalid_input",
	KindAuthRejected:    "auth_rejected",
	KindEmptyCredential: "empty_credential",
	KindInvalidQuery:    "invalid_query",
	KindSessionExpired:  "session_expired",
	KindUnauthenticated: "unauthenticated",
	KindTimeout:         "timeout",
	KindNetworkError:    "network_error",
	KindUnauthorized:    "unauthorized",
	KindHTTPError:       "http_error",
	KindGraphFailure:    "graph_failure",
}

// String returns the snake_case name used in logs and JSON responses.
func (k FailureKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("failure_kind(%d)", int(k))
}

// Failure is a classified failure. Status is set for AuthRejected and
// HTTPError, Err for NetworkError and any failure with an underlying cause.
type Failure struct {
	Kind    FailureKind
	Status  int
	Message string
	Err     error
}

// Sentinels for errors.Is matching by kind.
var (
	ErrInvalidInput    = &Failure{Kind: KindInvalidInput}
	ErrAuthRejected    = &Failure{Kind: KindAuthRejected}
	ErrEmptyCredential = &Failure{Kind: KindEmptyCredential}
	ErrInvalidQuery    = &Failure{Kind: KindInvalidQuery}
	ErrSessionExpired  = &Failure{Kind: KindSessionExpired}
	ErrUnauthenticated = &Failure{Kind: KindUnauthenticated}
	ErrTimeout         = &Failure{Kind: KindTimeout}
	ErrNetwork         = &Failure{Kind: KindNetworkError}
	ErrUnauthorized    = &Failure{Kind: KindUnauthorized}
	ErrHTTP            = &Failure{Kind: KindHTTPError}
	ErrGraphFailure    = &Failure{Kind: KindGraphFailure}
)

func (f *Failure) Error() string {
	msg := f.Message
	if msg == "" {
		msg = f.Kind.String()
	}
	if f.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, f.Status)
	}
	if f.Err != nil {
		return msg + ": " + f.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause.
func (f *Failure) Unwrap() error {
	return f.Err
}

// Is matches any Failure of the same kind, so the package sentinels work with
// errors.Is regardless of status, message or cause.
func (f *Failure) Is(target error) bool {
	t, ok := target.(*Failure)
	return ok && t.Kind == f.Kind
}

// ClearsSession reports whether this failure forced the stored credential to
// be discarded.
func (f *Failure) ClearsSession() bool {
	return f.Kind == KindSessionExpired || f.Kind == KindUnauthorized
}

// KindOf returns the FailureKind of err, or 0 when err is not a Failure.
func KindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return 0
}

// IsInvalidLogin reports whether err is an AuthRejected failure with HTTP 401,
// meaning the username or password was wrong.
func IsInvalidLogin(err error) bool {
	var f *Failure
	return errors.As(err, &f) && f.Kind == KindAuthRejected && f.Status == http.StatusUnauthorized
}
