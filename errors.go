package spaceweather

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredential is returned by New when the service rejects the API key.
	ErrInvalidCredential = errors.New("invalid SWS API key")

	// ErrRequestFailed wraps every transport failure and non-200 response.
	ErrRequestFailed = errors.New("SWS request failed")

	// ErrMalformedTimeRange is returned before any request is sent when a
	// start or end string is not in DateTimeLayout.
	ErrMalformedTimeRange = errors.New("malformed time range")

	// ErrMalformedResponse is returned when a timestamp in a response
	// element matches neither accepted layout.
	ErrMalformedResponse = errors.New("malformed SWS response")
)

// RequestError describes a non-200 response. Body holds the decoded JSON
// error payload when the response was JSON, otherwise the raw text.
type RequestError struct {
	Endpoint   string
	StatusCode int
	Body       any
}

func (e *RequestError) Error() string {
	if e.Body == nil {
		return fmt.Sprintf("%s: status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %v", e.Endpoint, e.StatusCode, e.Body)
}

// Unwrap lets errors.Is(err, ErrRequestFailed) match.
func (e *RequestError) Unwrap() error { return ErrRequestFailed }
