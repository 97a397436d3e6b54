package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/samcharles93/ffaudio/internal/session"
	"github.com/samcharles93/ffaudio/pkg/fastfile"
)

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrBusy           = errors.New("another job is running")
)

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string {
	return e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

// jobError classifies a failed job so clients can branch on Type.
func jobError(err error) *ResponseError {
	typ := "server_error"
	switch {
	case errors.Is(err, fastfile.ErrCancelled), errors.Is(err, context.Canceled):
		typ = "cancelled"
	case errors.Is(err, fastfile.ErrNotFound):
		typ = "not_found_error"
	case errors.Is(err, fastfile.ErrAccessDenied):
		typ = "access_denied_error"
	case errors.Is(err, fastfile.ErrUnsupportedContainer):
		typ = "unsupported_container_error"
	case errors.Is(err, fastfile.ErrDecodeFault):
		typ = "decode_error"
	case errors.Is(err, session.ErrNothingLoaded):
		typ = "invalid_request_error"
	}
	return &ResponseError{Message: err.Error(), Type: typ}
}

func isCancelled(err error) bool {
	return errors.Is(err, fastfile.ErrCancelled) || errors.Is(err, context.Canceled)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrBusy):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
