package extractor

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned when a subprocess exceeds its deadline and was killed.
var ErrTimeout = errors.New("extractor timed out")

// Error wraps a failed invocation together with the tail of its stderr.
// Stderr is for server logs only.
type Error struct {
	Op     string
	Err    error
	Stderr string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
