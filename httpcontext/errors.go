package httpcontext

import (
	"errors"
	"net/http"
)

// HTTPError is an error that knows which status and plain-text body it
// should be answered with.
type HTTPError struct {
	Status  int
	Message string
	Err     error
}

func NewHTTPError(status int, message string) *HTTPError {
	return &HTTPError{Status: status, Message: message}
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Status
}

// Is matches any HTTPError with the same status and message, so wrapped
// copies still compare equal to the sentinel they were made from.
func (e *HTTPError) Is(target error) bool {
	t, ok := target.(*HTTPError)
	if !ok {
		return false
	}
	return e.Status == t.Status && e.Message == t.Message
}

// Wrap returns a copy of e carrying cause.
func (e *HTTPError) Wrap(cause error) *HTTPError {
	return &HTTPError{Status: e.Status, Message: e.Message, Err: cause}
}

var (
	ErrHandled = errors.New("already handled")
)

// StatusOf returns the status a request will be answered with once handler
// returned err: the HTTPError status, 500 for any other error, otherwise
// whatever Run would write.
func StatusOf(ctx *Context, err error) int {
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			return httpErr.Status
		}
		return http.StatusInternalServerError
	}
	if status := ctx.StatusCode(); status > 0 {
		return status
	}
	if ctx.Body() != nil {
		return http.StatusOK
	}
	return http.StatusNotFound
}
