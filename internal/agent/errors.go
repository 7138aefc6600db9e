// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR KINDS
// =============================================================================

// Kind classifies a failed agent call. Every error returned by this
// package is an *Error carrying exactly one Kind.
type Kind int

const (
	// KindUnknown covers failures before a request could be attempted,
	// such as an unreadable credential store.
	KindUnknown Kind = iota
	// KindNetwork is a transport-level failure: dial, TLS, reset.
	KindNetwork
	// KindTimeout means the bounded per-call timeout expired.
	KindTimeout
	// KindCanceled means the caller's context was canceled.
	KindCanceled
	// KindRequest means the backend answered with a non-2xx status or
	// an undecodable body.
	KindRequest
	// KindApplication means a 2xx response carried success: false.
	KindApplication
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	case KindRequest:
		return "request"
	case KindApplication:
		return "application"
	default:
		return "unknown"
	}
}

// =============================================================================
// SENTINELS
// =============================================================================

var (
	// ErrAuthRequired indicates the backend rejected the call with 401.
	ErrAuthRequired = errors.New("authentication required")

	// ErrForbidden indicates the backend rejected the call with 403,
	// typically because the conversation belongs to another user.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates the backend rejected the call with 404.
	ErrNotFound = errors.New("not found")
)

// =============================================================================
// ERROR TYPE
// =============================================================================

// Error is the single error type returned by agent operations.
type Error struct {
	// Kind classifies the failure.
	Kind Kind
	// Op names the operation, e.g. "messages.send".
	Op string
	// Status is the HTTP status code when the backend answered.
	Status int
	// Detail is the backend-provided message when one was present.
	Detail string
	// Err is the underlying cause. 401/403/404 wrap the matching
	// sentinel here so errors.Is works.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("agent: %s: %s", e.Op, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.Status)
	}
	if e.Detail != "" {
		return msg + ": " + e.Detail
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// newError builds an *Error for op with the given classification.
func newError(op string, kind Kind, status int, detail string, err error) *Error {
	return &Error{Kind: kind, Op: op, Status: status, Detail: detail, Err: err}
}

// KindOf extracts the Kind from an agent error chain, KindUnknown for
// anything else.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}
