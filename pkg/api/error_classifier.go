package api

import (
	"context"
	"errors"
	"fmt"
)

// FailureKind says why a keyword tool request produced no data
type FailureKind int

const (
	FailureUnknown   FailureKind = iota
	FailureTransport             // network error or timeout
	FailureStatus                // non-200 response
	FailureDecode                // body could not be parsed
	FailureCanceled              // context ended before or during the request
	FailureInvalid               // request was not sent, bad input
)

func (k FailureKind) String() string {
	switch k {
	case FailureTransport:
		return "transport"
	case FailureStatus:
		return "status"
	case FailureDecode:
		return "decode"
	case FailureCanceled:
		return "canceled"
	case FailureInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// RequestError is returned by the keyword tool client for every failure
type RequestError struct {
	Kind       FailureKind
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.Kind == FailureStatus {
		return fmt.Sprintf("keyword tool returned status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("keyword tool %s failure: %v", e.Kind, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ClassifyError maps any error from a StatsClient onto a FailureKind
func ClassifyError(err error) FailureKind {
	if err == nil {
		return FailureUnknown
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return FailureCanceled
	}

	return FailureUnknown
}
