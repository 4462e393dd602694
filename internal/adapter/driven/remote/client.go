// Package remote implements the identity and query transports against the
// dashboard's HTTP API.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ericfisherdev/statpanel/internal/domain/port/driven"
)

// maxBodyBytes caps how much of a response body is read into memory.
const maxBodyBytes = 16 << 20

// defaultHTTPClient enforces a 30-second timeout as a safety net alongside the
// per-call context deadline set by the application layer.
var defaultHTTPClient = &http.Client{Timeout: 30 * time.Second}

// Compile-time interface satisfaction checks.
var (
	_ driven.IdentityTransport = (*Client)(nil)
	_ driven.QueryTransport    = (*Client)(nil)
)

// Client talks to the signin and GraphQL endpoints.
type Client struct {
	http       *http.Client
	signinURL  string
	graphqlURL string
}

// NewClient creates a Client for the given endpoint URLs.
func NewClient(signinURL, graphqlURL string) (*Client, error) {
	return NewClientWithHTTPClient(defaultHTTPClient, signinURL, graphqlURL)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client. Tests use
// it to inject an httptest server's client.
func NewClientWithHTTPClient(httpClient *http.Client, signinURL, graphqlURL string) (*Client, error) {
	for name, raw := range map[string]string{"signin": signinURL, "graphql": graphqlURL} {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing %s URL: %w", name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, fmt.Errorf("%s URL %q must be http or https", name, raw)
		}
	}

	return &Client{
		http:       httpClient,
		signinURL:  signinURL,
		graphqlURL: graphqlURL,
	}, nil
}

// SignIn posts to the signin endpoint with HTTP Basic credentials.
func (c *Client) SignIn(ctx context.Context, username, password string) (*driven.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.signinURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating signin request: %w", err)
	}
	httpReq.SetBasicAuth(username, password)

	return c.do(httpReq, "signin")
}

// PostQuery posts a JSON GraphQL body with the bearer credential attached.
func (c *Client) PostQuery(ctx context.Context, bearer string, body []byte) (*driven.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating graphql request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+bearer)
	httpReq.Header.Set("Content-Type", "application/json")

	return c.do(httpReq, "graphql")
}

func (c *Client) do(httpReq *http.Request, op string) (*driven.Response, error) {
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", op, err)
	}

	return &driven.Response{StatusCode: resp.StatusCode, Body: body}, nil
}
