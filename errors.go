package reloop

import (
	"errors"
	"fmt"
)

var (
	// ErrBackend matches every [BackendError] via errors.Is.
	ErrBackend = errors.New("completion backend error")

	ErrUnknownTool       = errors.New("unknown tool")
	ErrInvalidToolArgs   = errors.New("invalid tool arguments")
	ErrMalformedToolCall = errors.New("malformed tool call")

	// ErrTurnLimitExceeded is returned when a conversation reaches [Limits.MaxTurns] without
	// producing a final answer.
	ErrTurnLimitExceeded = errors.New("turn limit exceeded")

	// ErrMaxDelegationDepthExceeded is returned when a delegated loop would start deeper than
	// [Limits.MaxDelegationDepth].
	ErrMaxDelegationDepthExceeded = errors.New("max delegation depth exceeded")
)

// BackendError is returned by a [Completer] when the completion service is unreachable or
// answers with a non-success status. When the service sent a body, the body is the error
// message verbatim.
type BackendError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *BackendError) Error() string {
	switch {
	case e.Body != "":
		return e.Body
	case e.Err != nil:
		return e.Err.Error()
	default:
		return fmt.Sprintf("completion backend returned status %d", e.StatusCode)
	}
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Is reports whether target is [ErrBackend].
func (e *BackendError) Is(target error) bool {
	return target == ErrBackend
}
