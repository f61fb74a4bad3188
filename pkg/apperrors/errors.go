package apperrors

import "errors"

var (
	ErrEmptySelection = errors.New("no scenes selected")
	ErrActionInFlight = errors.New("another action is already in flight")
	ErrStreamOpen     = errors.New("stream already open")
	ErrStreamClosed   = errors.New("stream closed")
)
