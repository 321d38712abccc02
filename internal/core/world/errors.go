package world

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid simulation configuration")
	ErrActorExists   = errors.New("actor already exists")
	ErrActorNotFound = errors.New("actor not found")
	ErrWorldFull     = errors.New("world is full")
	ErrWorldClosed   = errors.New("world is closed")
)
