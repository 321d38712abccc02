package input

import "errors"

var (
	ErrUnknownBinding = errors.New("unknown input binding")
	ErrInvalidValue   = errors.New("axis value must be finite")
	ErrBadPayload     = errors.New("unexpected input event payload")
)
