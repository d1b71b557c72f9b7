// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorKind categorizes gateway failures for handling.
type ErrorKind int

const (
	KindUnknown   ErrorKind = iota
	KindTransport           // network or HTTP layer failure
	KindRejected            // non-success status, usually with a detail message
	KindMalformed           // response shape violates the expected schema
)

// String returns the name of the kind as used in logs.
func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport_failure"
	case KindRejected:
		return "server_rejected"
	case KindMalformed:
		return "malformed_payload"
	default:
		return "unknown"
	}
}

// Error is returned by every Client call that did not succeed.
type Error struct {
	Kind   ErrorKind
	Op     string // gateway operation, e.g. "infer"
	Status int    // HTTP status for KindRejected
	Detail string // server supplied detail text, if any
	Cause  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(" (%d)", e.Status)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors of the same kind, so errors.Is(err, ErrRejected) works
// for any rejected call regardless of status or detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Status == 0 && t.Detail == ""
}

// Sentinel errors for easy checking.
var (
	ErrTransport = &Error{Kind: KindTransport}
	ErrRejected  = &Error{Kind: KindRejected}
	ErrMalformed = &Error{Kind: KindMalformed}
)

// KindOf returns the kind of a gateway error, or KindUnknown.
func KindOf(err error) ErrorKind {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Kind
	}
	return KindUnknown
}

// Malformed builds a KindMalformed error for op with the given detail.
func Malformed(op, detail string, cause error) *Error {
	return &Error{Kind: KindMalformed, Op: op, Detail: detail, Cause: cause}
}

// UserMessage returns the text shown to the operator for a failed call.
// A server supplied detail is returned verbatim; otherwise a generic
// notice describing the failure class is used.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var gwErr *Error
	if !errors.As(err, &gwErr) {
		return "Request failed: " + err.Error()
	}
	if gwErr.Detail != "" && gwErr.Kind == KindRejected {
		return gwErr.Detail
	}
	switch gwErr.Kind {
	case KindTransport:
		if gwErr.Cause != nil {
			return "Could not reach the herder server: " + gwErr.Cause.Error()
		}
		return "Could not reach the herder server"
	case KindRejected:
		if gwErr.Status != 0 {
			return fmt.Sprintf("Request rejected: %d %s", gwErr.Status, http.StatusText(gwErr.Status))
		}
		return "Request rejected by the herder server"
	case KindMalformed:
		if gwErr.Detail != "" {
			return "Unexpected response from the herder server: " + gwErr.Detail
		}
		return "Unexpected response from the herder server"
	default:
		return "Request failed"
	}
}
