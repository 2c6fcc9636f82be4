package ai

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when no API key has been set.
var ErrNotConfigured = errors.New("deepseek API key is not configured")

// UpstreamError describes a failed exchange with the completion service:
// a transport failure, a non-2xx status, an error payload or a response
// without completion text.
type UpstreamError struct {
	StatusCode int // zero for transport failures
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("deepseek API error (status %d): %s", e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("deepseek: %s: %v", e.Message, e.Err)
	default:
		return "deepseek: " + e.Message
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }
