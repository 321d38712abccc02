package input

import (
	"errors"
	"fmt"
)

// Action and axis names of the default third-person scheme.
const (
	ActionJump  = "Jump"
	ActionSwing = "Swing"

	AxisMoveForward = "MoveForward"
	AxisMoveRight   = "MoveRight"
	AxisTurn        = "Turn"
	AxisTurnRate    = "TurnRate"
	AxisLookUp      = "LookUp"
	AxisLookUpRate  = "LookUpRate"
)

// AxisBinding declares an axis. Delta axes accumulate between ticks and reset
// after each dispatch (mouse motion); the others hold their last value
// (sticks, keys).
type AxisBinding struct {
	Name  string `yaml:"name" json:"name"`
	Delta bool   `yaml:"delta" json:"delta"`
}

// Bindings is the set of names a client may send.
type Bindings struct {
	Actions []string   `yaml:"actions" json:"actions"`
	Axes    []AxisBinding `yaml:"axes" json:"axes"`
}

func DefaultBindings() Bindings {
	return Bindings{
		Actions: []string{ActionJump, ActionSwing},
		Axes: []AxisBinding{
			{Name: AxisMoveForward},
			{Name: AxisMoveRight},
			{Name: AxisTurn, Delta: true},
			{Name: AxisTurnRate},
			{Name: AxisLookUp, Delta: true},
			{Name: AxisLookUpRate},
		},
	}
}

func (b Bindings) Validate() error {
	var errs []error
	seen := make(map[string]struct{}, len(b.Actions)+len(b.Axes))
	check := func(kind, name string) {
		if name == "" {
			errs = append(errs, fmt.Errorf("empty %s name", kind))
			return
		}
		if _, dup := seen[name]; dup {
			errs = append(errs, fmt.Errorf("duplicate binding %q", name))
		}
		seen[name] = struct{}{}
	}
	for _, a := range b.Actions {
		check("action", a)
	}
	for _, a := range b.Axes {
		check("axis", a.Name)
	}
	return errors.Join(errs...)
}
