package domain

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeToolNotFound         ErrorCode = "TOOL_NOT_FOUND"
	CodeInvalidArguments     ErrorCode = "INVALID_ARGUMENTS"
	CodeBackendUnavailable   ErrorCode = "BACKEND_UNAVAILABLE"
	CodeBackendError         ErrorCode = "BACKEND_ERROR"
	CodeBackendProtocolError ErrorCode = "BACKEND_PROTOCOL_ERROR"
	CodeAmbiguousTarget      ErrorCode = "AMBIGUOUS_TARGET"
	CodeDiscoveryFailed      ErrorCode = "DISCOVERY_FAILED"
	CodeConfiguration        ErrorCode = "CONFIGURATION_ERROR"
)

// Error is the adapter-wide failure type. Every per-call failure a tool can
// produce carries one of the codes above; the dispatcher maps anything else
// to CodeBackendError.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
	// Candidates lists the possible targets of an ambiguous lookup.
	Candidates []string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Op == "" {
		if msg == "" {
			return string(e.Code)
		}
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	if msg == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func E(code ErrorCode, op, msg string, cause error) *Error {
	if msg == "" && cause != nil {
		msg = cause.Error()
	}
	return &Error{
		Code:    code,
		Op:      op,
		Message: msg,
		Cause:   cause,
	}
}

func Errorf(code ErrorCode, op, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap attaches a code and op to err unless it already carries one.
func Wrap(code ErrorCode, op string, err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		if existing.Op != "" || op == "" {
			return existing
		}
		clone := *existing
		clone.Op = op
		return &clone
	}
	return E(code, op, "", err)
}

// CodeFrom extracts the error code, defaulting to CodeBackendError for
// unclassified failures so callers always have something actionable.
func CodeFrom(err error) ErrorCode {
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr.Code != "" {
		return domainErr.Code
	}
	return CodeBackendError
}
