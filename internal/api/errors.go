package api

import (
	"errors"
	"fmt"
)

var (
	// ErrHTTPStatus matches every *StatusError.
	ErrHTTPStatus = errors.New("unexpected HTTP status")
	// ErrTransport wraps failures to reach the server at all.
	ErrTransport = errors.New("transport failure")
	// ErrDecode wraps response bodies that are not the expected JSON.
	ErrDecode = errors.New("malformed response")
)

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status=%d, body=%s", e.Method, e.URL, e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrHTTPStatus
}

// IsServerError reports whether err came from talking to the server, as
// opposed to a local failure.
func IsServerError(err error) bool {
	return errors.Is(err, ErrHTTPStatus) || errors.Is(err, ErrTransport) || errors.Is(err, ErrDecode)
}
