package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// RequestError is a failed gateway call. StatusCode is 0 when the request
// never got a response.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Body       []byte
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("%s %s: %s (status %d)", e.Method, e.Path, e.Message, e.StatusCode)
}

func (e *RequestError) Unwrap() error { return e.Err }

// HTTPStatus returns the response status code, or 0 for transport failures.
func (e *RequestError) HTTPStatus() int { return e.StatusCode }

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var re *RequestError
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}

// IsNotFound reports a 404 from the gateway.
func IsNotFound(err error) bool { return StatusOf(err) == http.StatusNotFound }

// IsUnprocessable reports a 422, which the gateway returns when creating a
// session that already exists.
func IsUnprocessable(err error) bool { return StatusOf(err) == http.StatusUnprocessableEntity }
