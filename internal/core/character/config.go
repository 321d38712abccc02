package character

import (
	"errors"

	"github.com/zeusync/webswing/internal/core/input"
	"github.com/zeusync/webswing/internal/core/locomotion"
	"github.com/zeusync/webswing/internal/core/swing"
)

// Config bundles everything a character is built from.
type Config struct {
	Swing    swing.Params
	Anchor   swing.AnchorParams
	Movement locomotion.Config
	Input    input.Bindings
}

func DefaultConfig() Config {
	return Config{
		Swing:    swing.DefaultParams(),
		Anchor:   swing.DefaultAnchorParams(),
		Movement: locomotion.DefaultConfig(),
		Input:    input.DefaultBindings(),
	}
}

func (c Config) Validate() error {
	return errors.Join(
		c.Swing.Validate(),
		c.Anchor.Validate(),
		c.Movement.Validate(),
		c.Input.Validate(),
	)
}
