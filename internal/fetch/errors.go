package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Kind categorizes fetch errors for retry and propagation decisions.
type Kind string

const (
	// KindNetwork indicates a transport-level failure. Retryable.
	KindNetwork Kind = "NETWORK"

	// KindTimeout indicates the upstream did not answer in time. Retryable.
	KindTimeout Kind = "TIMEOUT"

	// KindRateLimit indicates the upstream throttled the request. Retryable.
	KindRateLimit Kind = "RATE_LIMIT"

	// KindCancelled indicates the retrieval was superseded or its context
	// cancelled. Never surfaced to consumers as a user-visible error.
	KindCancelled Kind = "CANCELLED"

	// KindTerminal indicates a non-retryable failure. Propagates immediately,
	// skipping any remaining retry budget.
	KindTerminal Kind = "TERMINAL"
)

// Error is the structured error produced by the fetch layer.
type Error struct {
	// Kind identifies the error category.
	Kind Kind

	// Op names the failing operation ("execute", "load").
	Op string

	// Key is the cache key of the affected request, if any.
	Key string

	// Attempts is how many times the operation was invoked before failing.
	Attempts int

	// Err is the underlying upstream error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: %s %s: %v", e.Kind, e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

// Unwrap exposes the underlying error to errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the error category permits another attempt.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindNetwork, KindTimeout, KindRateLimit:
		return true
	default:
		return false
	}
}

// retryableMarkers are the message substrings that identify a transient
// upstream failure. Matching is case-insensitive.
var retryableMarkers = []string{"network", "timeout", "429", "rate limit", "5xx"}

// Classify maps an arbitrary upstream error onto a Kind using its message.
// Context cancellation and deadline errors are recognized structurally
// before any substring matching.
func Classify(err error) Kind {
	if err == nil {
		return KindTerminal
	}
	if errors.Is(err, context.Canceled) {
		return KindCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"):
		return KindTimeout
	case strings.Contains(msg, "429"), strings.Contains(msg, "rate limit"):
		return KindRateLimit
	case strings.Contains(msg, "network"), strings.Contains(msg, "5xx"):
		return KindNetwork
	default:
		return KindTerminal
	}
}

// Retryable reports whether err (possibly wrapped) permits a retry.
func Retryable(err error) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Retryable()
	}
	k := Classify(err)
	return k == KindNetwork || k == KindTimeout || k == KindRateLimit
}

// IsCancelled reports whether err is a swallowed cancellation signal.
// Consumers treat these as "nothing happened", never as failures.
func IsCancelled(err error) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind == KindCancelled
	}
	return errors.Is(err, context.Canceled)
}
