package fastfile

import "errors"

var (
	ErrUnsupportedContainer = errors.New("unsupported fast file")
	ErrNotFound             = errors.New("fast file not found")
	ErrAccessDenied         = errors.New("fast file access denied")
	ErrCancelled            = errors.New("operation cancelled")
	ErrDecodeFault          = errors.New("fast file decode failed")
	ErrSourceUnavailable    = errors.New("audio source unavailable")
	ErrOutOfBounds          = errors.New("audio data out of bounds")
)
