// Package errors provides standardized error handling for the analytics service.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	ErrCodeAnalyticsFetchFailed ErrorCode = "ANALYTICS_FETCH_FAILED"
	ErrCodeInvalidParameters    ErrorCode = "INVALID_PARAMETERS"
	ErrCodeRateLimitExceeded    ErrorCode = "RATE_LIMIT_EXCEEDED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(table string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("table: %s, error: %s", table, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(table string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("table: %s", table),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAnalyticsFetchFailedError wraps any upstream store failure surfaced to the
// API as the generic "failed to fetch analytics" condition. The core never
// retries these itself.
func NewAnalyticsFetchFailedError(query string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAnalyticsFetchFailed,
		Message:   "failed to fetch analytics",
		Details:   fmt.Sprintf("query: %s, error: %s", query, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidParametersError creates a non-retryable parameter validation error.
func NewInvalidParametersError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidParameters,
		Message:   "Invalid query parameters",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimitExceededError creates a non-retryable rate limit error.
func NewRateLimitExceededError(client string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimitExceeded,
		Message:   "Too many requests",
		Details:   fmt.Sprintf("client: %s", client),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Inspection Helpers
// ==========================

// AsStandardError unwraps err into a *StandardError if possible.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// IsFetchFailure reports whether err represents an upstream store failure.
func IsFetchFailure(err error) bool {
	stdErr, ok := AsStandardError(err)
	if !ok {
		return false
	}
	switch stdErr.Code {
	case ErrCodeDatabaseConnectionFailed, ErrCodeQueryExecutionFailed,
		ErrCodeQueryTimeout, ErrCodeAnalyticsFetchFailed:
		return true
	}
	return false
}
