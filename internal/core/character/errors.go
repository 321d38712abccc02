package character

import "errors"

var ErrNonFiniteState = errors.New("character state is not finite")
