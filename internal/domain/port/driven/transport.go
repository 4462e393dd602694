package driven

import "context"

// Response is a fully read HTTP response from the remote API.
type Response struct {
	StatusCode int
	Body       []byte
}

// IdentityTransport exchanges a username/password pair with the signin
// endpoint using HTTP Basic authentication.
type IdentityTransport interface {
	// SignIn returns the response for any HTTP status. A non-nil error means
	// the request could not be completed at the transport level.
	SignIn(ctx context.Context, username, password string) (*Response, error)
}

// QueryTransport posts a JSON-encoded GraphQL request body with a bearer
// credential attached.
type QueryTransport interface {
	// PostQuery returns the response for any HTTP status. A non-nil error
	// means the request could not be completed, including context expiry.
	PostQuery(ctx context.Context, bearer string, body []byte) (*Response, error)
}
