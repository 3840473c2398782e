// Package backend invokes the external code-generation engine through one
// of two interchangeable transports: the Codex CLI launched as a per-call
// subprocess, or an OpenAI-style HTTP completion API. Both are normalized
// into a single Invoker contract so the dispatch layer never cares which
// one is active.
package backend

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies an invocation failure. The dispatch layer retries
// transient kinds and treats the rest as terminal.
type ErrorKind string

const (
	// KindUnavailable means no transport is usable (binary missing, no
	// API key). Terminal — a configuration problem, not a flake.
	KindUnavailable ErrorKind = "backend_unavailable"

	// KindTimeout means an attempt exceeded its deadline. Transient.
	KindTimeout ErrorKind = "timeout"

	// KindRateLimited means the remote API throttled us. Transient.
	KindRateLimited ErrorKind = "rate_limited"

	// KindInvalidResponse means the backend produced output we could not
	// interpret (non-zero exit, malformed JSON, missing completion field).
	// Terminal — retrying the same prompt yields the same garbage.
	KindInvalidResponse ErrorKind = "invalid_response"

	// KindTransport covers generic I/O failures (connection reset,
	// unexpected HTTP status). Transient.
	KindTransport ErrorKind = "transport_error"
)

// Error is the normalized invocation failure returned by both transports.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Transient reports whether the failure is worth retrying.
func (e *Error) Transient() bool {
	switch e.Kind {
	case KindTimeout, KindRateLimited, KindTransport:
		return true
	}
	return false
}

// Errorf builds an *Error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error that carries its cause for errors.Is/As chains.
func Wrap(kind ErrorKind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// AsError coerces any invocation error into *Error. Unrecognized errors
// are classified as transport failures; context deadlines as timeouts.
func AsError(err error) *Error {
	var berr *Error
	if errors.As(err, &berr) {
		return berr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(KindTimeout, err, err.Error())
	}
	return Wrap(KindTransport, err, err.Error())
}

// Options carries per-call backend tuning. Zero values mean "use the
// model family's defaults".
type Options struct {
	// Temperature overrides the sampling temperature. Ignored by model
	// families that require a fixed temperature.
	Temperature *float64

	// MaxTokens caps the response length.
	MaxTokens int
}

// Invoker is the single contract both transports implement.
//
// Invoke sends prompt to the backend and returns the completion text.
// Implementations must honor ctx cancellation and deadlines, and must
// return *Error for every backend-originated failure.
type Invoker interface {
	Invoke(ctx context.Context, prompt, model string, opts Options) (string, error)

	// Name identifies the transport in log entries ("cli" or "http").
	Name() string
}
