package model

import (
	"fmt"
)

// User facing messages for the error taxonomy.
const (
	MsgEmptyText      = "Please enter some text to analyze"
	MsgAnalyzeFailed  = "Failed to analyze text"
	MsgGenericFailure = "An error occurred while analyzing the text"
)

// ValidationError is returned for input rejected before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// TransportError wraps a failure to reach the webhook at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil || e.Err.Error() == "" {
		return MsgGenericFailure
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ResponseError is a non-2xx reply. Its message is fixed; the status and any
// detail the server returned are kept for logs and verbose output.
type ResponseError struct {
	StatusCode int
	Detail     string
}

func (e *ResponseError) Error() string {
	return MsgAnalyzeFailed
}

// Verbose includes the status code and server detail.
func (e *ResponseError) Verbose() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s (status %d)", MsgAnalyzeFailed, e.StatusCode)
	}
	return fmt.Sprintf("%s (status %d): %s", MsgAnalyzeFailed, e.StatusCode, e.Detail)
}

// ParseError means the webhook replied 2xx with a body that is not valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid JSON in analysis response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
