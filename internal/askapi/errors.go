// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package askapi

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"

	"github.com/jeranaias/toonchat/internal/model"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeTimeout
	ErrTypeCanceled
	ErrTypeConnection
	ErrTypeServer
	ErrTypeInvalidRequest
)

// String returns a short name for the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeCanceled:
		return "canceled"
	case ErrTypeConnection:
		return "connection"
	case ErrTypeServer:
		return "server"
	case ErrTypeInvalidRequest:
		return "invalid_request"
	default:
		return "unknown"
	}
}

// ClientError represents a failed request to the ask service.
type ClientError struct {
	Type ErrorType

	// Message is the transport-level description.
	Message string

	// Detail is the server-provided explanation, if the error body had one.
	Detail string

	// StatusCode is set for responses outside the 2xx range.
	StatusCode int

	Cause error
}

func (e *ClientError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// IsTimeout reports whether err is a request timeout.
func IsTimeout(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce) && ce.Type == ErrTypeTimeout
}

// FormatError returns the text shown to the user for a failed request. A
// server detail is shown as is. Timeouts, cancellations and HTTP errors show
// their transport message. Connection failures and unclassified errors show
// the generic failure string, with the underlying message in parentheses.
func FormatError(err error) string {
	if err == nil {
		return model.GenericErrorText
	}

	var ce *ClientError
	if !errors.As(err, &ce) {
		return withGeneric(err.Error())
	}
	if d := strings.TrimSpace(ce.Detail); d != "" {
		return d
	}
	switch ce.Type {
	case ErrTypeConnection, ErrTypeUnknown:
		return withGeneric(ce.Message)
	}
	if m := strings.TrimSpace(ce.Message); m != "" {
		return m
	}
	return model.GenericErrorText
}

func withGeneric(msg string) string {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return model.GenericErrorText
	}
	return model.GenericErrorText + " (" + msg + ")"
}

// classifyTransport maps an error returned before any response arrived.
func classifyTransport(err error, timeoutMsg string) *ClientError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return &ClientError{Type: ErrTypeTimeout, Message: timeoutMsg, Cause: err}
	case errors.Is(err, context.Canceled):
		return &ClientError{Type: ErrTypeCanceled, Message: "request canceled", Cause: err}
	default:
		return &ClientError{Type: ErrTypeConnection, Message: err.Error()}
	}
}

// =============================================================================
// SERVER ERROR BODIES
// =============================================================================

// parseDetail extracts the "detail" field of an error body. FastAPI sends a
// string for HTTPException and a list of {loc, msg, type} objects for
// validation failures.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}

	if string(envelope.Detail) == "null" {
		return ""
	}
	return string(envelope.Detail)
}
