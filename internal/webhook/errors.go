package webhook

import (
	"fmt"
	"time"
)

// TransportError means the webhook could not be reached, did not answer in
// time, or answered with a status other than 200
type TransportError struct {
	StatusCode int
	Reason     string
	Timeout    bool
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("Error contacting n8n webhook: timed out: %v", e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("Error contacting n8n webhook: HTTP %d - %s", e.StatusCode, e.Reason)
	default:
		return fmt.Sprintf("Error contacting n8n webhook: %v", e.Err)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func timeoutError(timeout time.Duration, err error) *TransportError {
	return &TransportError{
		Timeout: true,
		Err:     fmt.Errorf("no response within %s: %w", timeout, err),
	}
}

// ShapeError means the webhook answered 200 but the body is unusable
type ShapeError struct {
	Reason string
	Body   string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("Invalid n8n webhook response: %s: %s", e.Reason, e.Body)
}

const maxBodyInError = 512

func truncate(body []byte) string {
	if len(body) <= maxBodyInError {
		return string(body)
	}
	return string(body[:maxBodyInError]) + "..."
}
