package musicbrainz

import (
	"errors"
	"fmt"
)

// ErrRateLimitExceeded is returned when the client's named lock could not be
// acquired in time. Nothing was sent; the caller decides when to retry.
var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// UpstreamError is an HTTP error status returned by the provider.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s returned %d: %s", e.Service, e.StatusCode, e.Body)
}

// DecodeError means the provider answered with a body that is not valid JSON.
type DecodeError struct {
	Service string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s response: %v", e.Service, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
