// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "errors"

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the backend client.
type ClientError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Cause      error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors so callers can branch on kind
// rather than matching message strings.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota

	// ErrTypeValidation is a local input rejection; no request was sent.
	ErrTypeValidation

	// ErrTypeTransport is a network-level failure: connection refused,
	// timeout, DNS, or an unreadable response body.
	ErrTypeTransport

	// ErrTypeApplication is a well-formed server response with a
	// non-success status; Message carries the server's text verbatim.
	ErrTypeApplication

	// ErrTypeAuth is a credential failure (HTTP 401); the caller
	// should drop the session.
	ErrTypeAuth
)

// Sentinel errors for easy checking.
var (
	ErrTimeout      = &ClientError{Type: ErrTypeTransport, Message: "request timed out"}
	ErrUnavailable  = &ClientError{Type: ErrTypeTransport, Message: "server is unreachable"}
	ErrUnauthorized = &ClientError{Type: ErrTypeAuth, Message: "authentication required"}
)

// Kind extracts the error type, or ErrTypeUnknown for foreign errors.
func Kind(err error) ErrorType {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Type
	}
	return ErrTypeUnknown
}

// IsAuthError reports whether err is a credential failure.
func IsAuthError(err error) bool {
	return Kind(err) == ErrTypeAuth
}

// IsTransportError reports whether err is a network-level failure.
func IsTransportError(err error) bool {
	return Kind(err) == ErrTypeTransport
}

// IsValidationError reports whether err was rejected before any
// request was sent.
func IsValidationError(err error) bool {
	return Kind(err) == ErrTypeValidation
}

// UserMessage returns the text to surface in the UI. Application
// errors pass the server's message through; everything else falls back
// to a short generic string.
func UserMessage(err error) string {
	var ce *ClientError
	if !errors.As(err, &ce) {
		return "Something went wrong"
	}
	switch ce.Type {
	case ErrTypeValidation, ErrTypeApplication:
		if ce.Message != "" {
			return ce.Message
		}
	case ErrTypeTransport:
		return "Could not reach the server"
	case ErrTypeAuth:
		return "Session expired, please log in again"
	}
	return "Something went wrong"
}
