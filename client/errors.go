package client

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// APIError is a failure answered by the gateway.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway answered %d: %s", e.StatusCode, e.Message)
}

// Retryable tells whether the gateway reported a failure worth retrying
// rather than a request to fix.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusServiceUnavailable || e.StatusCode >= http.StatusInternalServerError
}

func IsRetryable(err error) bool {
	var apiErr *APIError
	return stderrors.As(err, &apiErr) && apiErr.Retryable()
}
