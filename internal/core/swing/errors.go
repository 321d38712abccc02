package swing

import "errors"

var (
	ErrInvalidParams   = errors.New("invalid swing parameters")
	ErrAlreadySwinging = errors.New("already swinging")
	ErrNotSwinging     = errors.New("not swinging")
	ErrNilActor        = errors.New("actor context is nil")
)
