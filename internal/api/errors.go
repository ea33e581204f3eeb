package api

import (
	"encoding/json"
	"fmt"

	cierrors "git.home.luguber.info/inful/cirrusrun/internal/errors"
)

// HTTPError is returned when the endpoint answers with a status other than 200.
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s\n%s", e.StatusCode, e.URL, e.Body)
}

// ErrorCategory implements errors.Categorized.
func (e *HTTPError) ErrorCategory() cierrors.ErrorCategory { return cierrors.CategoryHTTP }

// APIError is returned when a 200 response carries a non-empty GraphQL errors list.
type APIError struct {
	Errors []GraphQLError
}

func (e *APIError) Error() string {
	details, err := json.MarshalIndent(e.Errors, "", "  ")
	if err != nil {
		details = []byte(fmt.Sprintf("%+v", e.Errors))
	}
	return fmt.Sprintf("API returned %d error(s):\n%s", len(e.Errors), details)
}

// ErrorCategory implements errors.Categorized.
func (e *APIError) ErrorCategory() cierrors.ErrorCategory { return cierrors.CategoryAPI }

// Messages returns the message of every error entry.
func (e *APIError) Messages() []string {
	out := make([]string, 0, len(e.Errors))
	for _, ge := range e.Errors {
		out = append(out, ge.Message)
	}
	return out
}

// GraphQLError is one entry of a response's errors list.
type GraphQLError struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Location points into the query text.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// UnmarshalJSON accepts the standard object form as well as a bare string, which
// some gateways emit in place of an error object.
func (g *GraphQLError) UnmarshalJSON(data []byte) error {
	var msg string
	if err := json.Unmarshal(data, &msg); err == nil {
		*g = GraphQLError{Message: msg}
		return nil
	}
	type plain GraphQLError
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*g = GraphQLError(p)
	return nil
}
