package fusion

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrGenerationFailed  = errors.New("generation failed")
	ErrGenerationTimeout = errors.New("generation timed out")
	ErrMalformedResponse = errors.New("malformed response")
	ErrSchemaViolation   = errors.New("schema violation")
	ErrDanglingEdge      = errors.New("dangling edge")
)

// snippetLen bounds how much of a bad payload is echoed back in errors.
const snippetLen = 200

type InputError struct {
	Arg string
}

func (e *InputError) Error() string { return fmt.Sprintf("%s cannot be empty", e.Arg) }

func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

// GenerationError is a failed or timed out call to the generation service.
type GenerationError struct {
	Provider string
	Timeout  bool
	Err      error
}

func (e *GenerationError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s generation timed out: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s generation failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool {
	if e.Timeout {
		return target == ErrGenerationTimeout
	}
	return target == ErrGenerationFailed
}

type MalformedResponseError struct {
	Snippet string
	Err     error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("failed to parse response as JSON: %v; response starts with: %q", e.Err, e.Snippet)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

func (e *MalformedResponseError) Is(target error) bool { return target == ErrMalformedResponse }

// SchemaError names the offending element as collection[index].field.
type SchemaError struct {
	Collection string
	Index      int
	Field      string
	Reason     string
}

func (e *SchemaError) Error() string {
	if e.Collection == "" {
		return fmt.Sprintf("schema violation: %s %s", e.Field, e.Reason)
	}
	if e.Field == "" {
		return fmt.Sprintf("schema violation: %s[%d] %s", e.Collection, e.Index, e.Reason)
	}
	return fmt.Sprintf("schema violation: %s[%d].%s %s", e.Collection, e.Index, e.Field, e.Reason)
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchemaViolation }

type DanglingEdgeError struct {
	Index   int
	Source  string
	Target  string
	Missing string
}

func (e *DanglingEdgeError) Error() string {
	return fmt.Sprintf("edges[%d] (%s -> %s) references unknown node %q", e.Index, e.Source, e.Target, e.Missing)
}

func (e *DanglingEdgeError) Is(target error) bool { return target == ErrDanglingEdge }

func snippet(s string) string {
	r := []rune(s)
	if len(r) <= snippetLen {
		return s
	}
	return string(r[:snippetLen])
}
