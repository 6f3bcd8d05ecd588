package services

import "fmt"

type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "Validation error"
}

// NoFormatsError is returned when a video exposes nothing downloadable.
type NoFormatsError struct{ VideoID string }

func (e *NoFormatsError) Error() string {
	return fmt.Sprintf("no downloadable formats for video %s", e.VideoID)
}

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

type RateLimitError struct{ Message string }

func (e *RateLimitError) Error() string { return e.Message }

// ExtractionError wraps a failure of the external extractor. The cause is
// for logs; clients only see a generic message.
type ExtractionError struct {
	Op  string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction %s failed: %v", e.Op, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
