package model

import (
	"fmt"
	"strconv"
	"strings"
)

// QueryRequest is a GraphQL document plus its variables.
type QueryRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// NewQueryRequest builds a QueryRequest. A nil variables map is sent as an
// empty JSON object.
func NewQueryRequest(query string, variables map[string]any) QueryRequest {
	if variables == nil {
		variables = map[string]any{}
	}
	return QueryRequest{Query: query, Variables: variables}
}

// Validate returns an InvalidQuery failure when the query is blank.
func (q QueryRequest) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return &Failure{Kind: KindInvalidQuery, Message: "query must be a non-empty string"}
	}
	return nil
}

// GraphQLError is a single entry of a GraphQL response's errors list.
type GraphQLError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
	Path []any `json:"path"`
}

// Describe joins message, extension code and dotted field path with " | ",
// skipping whichever parts are absent.
func (e GraphQLError) Describe() string {
	parts := make([]string, 0, 3)
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Extensions.Code != "" {
		parts = append(parts, e.Extensions.Code)
	}
	if len(e.Path) > 0 {
		segs := make([]string, 0, len(e.Path))
		for _, p := range e.Path {
			segs = append(segs, formatPathSegment(p))
		}
		parts = append(parts, strings.Join(segs, "."))
	}
	return strings.Join(parts, " | ")
}

func formatPathSegment(p any) string {
	switch v := p.(type) {
	case string:
		return v
	case float64:
		// JSON numbers decode as float64; list indices are integral.
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
