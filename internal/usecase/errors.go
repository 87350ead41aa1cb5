package usecase

import (
	"errors"
	"fmt"
)

// ErrClientGone reports that the caller disconnected before any output was
// produced. It is neither a client error nor an internal fault.
var ErrClientGone = errors.New("usecase: client disconnected")

type ErrorCode string

const (
	// ErrorInvalidRequest marks malformed input. Nothing has been attempted.
	ErrorInvalidRequest ErrorCode = "INVALID_REQUEST"
	// ErrorUpstreamDegraded marks a context or provider fault. The service
	// absorbs it by degrading; it only appears in logs and metrics.
	ErrorUpstreamDegraded ErrorCode = "UPSTREAM_DEGRADED"
	ErrorInternal         ErrorCode = "INTERNAL_ERROR"
)

type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}
