// Copyright (C) 2026 Tanager ML (oss@tanagerml.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package labeling

import (
	"bytes"
	"errors"
	"fmt"
)

// Validation failures caught before dispatch. These never produce a network
// call; the UI surfaces them as disabled affordances with captions or as
// form errors.
var (
	// ErrEmptySelection is returned when a bulk operation is attempted
	// with nothing selected.
	ErrEmptySelection = errors.New("bulk apply requires a non-empty selection")

	// ErrNoTagsIncluded is returned when an iteration request includes no
	// target tags.
	ErrNoTagsIncluded = errors.New("iteration requires at least one included tag")

	// ErrSearchNotExecuted is returned when an iteration or deploy is
	// attempted before the initial search ran.
	ErrSearchNotExecuted = errors.New("execute the initial search first")

	// ErrDeployLocked is returned when deploy is attempted before at least
	// one training round has completed.
	ErrDeployLocked = errors.New("deploy requires at least one completed iteration")

	// ErrUnknownResult is returned when a mutation targets a result id not
	// present in the current page cache.
	ErrUnknownResult = errors.New("result not in current page")
)

// APIErrorType categorizes server/network failures for programmatic handling.
type APIErrorType int

const (
	// APIErrorConnectionFailed indicates the Tanager server is unreachable.
	APIErrorConnectionFailed APIErrorType = iota

	// APIErrorNotFound indicates the session or result does not exist.
	APIErrorNotFound

	// APIErrorRejected indicates the server refused the request (4xx/5xx).
	APIErrorRejected

	// APIErrorInvalidResponse indicates the server returned undecodable data.
	APIErrorInvalidResponse

	// APIErrorCancelled indicates the operation's context was cancelled.
	APIErrorCancelled
)

// String returns the error type as a string for logging.
func (t APIErrorType) String() string {
	switch t {
	case APIErrorConnectionFailed:
		return "CONNECTION_FAILED"
	case APIErrorNotFound:
		return "NOT_FOUND"
	case APIErrorRejected:
		return "REJECTED"
	case APIErrorInvalidResponse:
		return "INVALID_RESPONSE"
	case APIErrorCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// APIError provides structured error information for server operations.
type APIError struct {
	// Type categorizes the error for programmatic handling.
	Type APIErrorType

	// Op names the failed operation (e.g. "label result").
	Op string

	// Message is a human-readable error description.
	Message string

	// Detail provides technical information for debugging.
	Detail string

	// Remediation suggests how to fix the issue.
	Remediation string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// FullError returns a detailed error message including remediation.
func (e *APIError) FullError() string {
	var buf bytes.Buffer
	buf.WriteString(e.Error())
	if e.Detail != "" {
		buf.WriteString("\n\nDetails: ")
		buf.WriteString(e.Detail)
	}
	if e.Remediation != "" {
		buf.WriteString("\n\nTo fix:\n")
		buf.WriteString(e.Remediation)
	}
	return buf.String()
}

// AsAPIError unwraps err into an *APIError when possible.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
