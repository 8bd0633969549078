package rest

import (
	"fmt"
)

// APIError is a non-2xx response that maps to no more specific sentinel.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Body)
}

// ValidationError carries server-side field validation messages from a
// 400/422 response. Field-level messages belong to the forms layer; the
// core only transports them.
type ValidationError struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"errors"`
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return "validation failed: " + e.Message
	}
	return "validation failed"
}
