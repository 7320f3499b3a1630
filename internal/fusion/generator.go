package fusion

import (
	"context"
	"errors"
	"strings"
)

// Request is a provider-agnostic generation request: one system instruction and
// one user message.
type Request struct {
	System      string
	User        string
	Model       string
	MaxTokens   int
	Temperature float32
}

// Generator is a language-model backend that returns the raw text of its reply.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// Pinger is implemented by generators that can cheaply check reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }

func (e *transientError) Unwrap() error { return e.err }

// Transient marks err as a transport-level failure that may succeed on retry.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err is worth retrying: explicitly marked errors and
// rate-limit / overload responses.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var te *transientError
	if errors.As(err, &te) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "503")
}
