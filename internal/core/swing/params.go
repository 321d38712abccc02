package swing

import (
	"errors"
	"fmt"
)

// Params tunes the arc force. It is set once from configuration and only
// read while swinging.
type Params struct {
	// VelocityClampMin is the slowest speed fed into the force formula;
	// slower (non-zero) velocities are scaled up to it.
	VelocityClampMin float64 `yaml:"velocity_clamp_min" json:"velocity_clamp_min"`
	// VelocityClampMax caps the speed fed into the force formula.
	VelocityClampMax float64 `yaml:"velocity_clamp_max" json:"velocity_clamp_max"`
	// ForceReductionFactor divides the final force.
	ForceReductionFactor float64 `yaml:"force_reduction_factor" json:"force_reduction_factor"`
}

func DefaultParams() Params {
	return Params{
		VelocityClampMin:     400,
		VelocityClampMax:     2000,
		ForceReductionFactor: 4,
	}
}

func (p Params) Validate() error {
	var errs []error
	if p.VelocityClampMin < 0 {
		errs = append(errs, fmt.Errorf("%w: velocity_clamp_min %v is negative", ErrInvalidParams, p.VelocityClampMin))
	}
	if p.VelocityClampMin > p.VelocityClampMax {
		errs = append(errs, fmt.Errorf("%w: velocity_clamp_min %v exceeds velocity_clamp_max %v",
			ErrInvalidParams, p.VelocityClampMin, p.VelocityClampMax))
	}
	if p.ForceReductionFactor <= 0 {
		errs = append(errs, fmt.Errorf("%w: force_reduction_factor must be positive, got %v",
			ErrInvalidParams, p.ForceReductionFactor))
	}
	return errors.Join(errs...)
}

// AnchorParams places the web anchor relative to the character.
type AnchorParams struct {
	// Distance along the camera forward vector.
	Distance float64 `yaml:"distance" json:"distance"`
	// Height added straight up.
	Height float64 `yaml:"height" json:"height"`
	// ReachScale, ReachMin and ReachMax shape VerticalReach.
	ReachScale float64 `yaml:"reach_scale" json:"reach_scale"`
	ReachMin   float64 `yaml:"reach_min" json:"reach_min"`
	ReachMax   float64 `yaml:"reach_max" json:"reach_max"`
}

func DefaultAnchorParams() AnchorParams {
	return AnchorParams{
		Distance:   1500,
		Height:     1200,
		ReachScale: 1.2,
		ReachMin:   1000,
		ReachMax:   3000,
	}
}

func (a AnchorParams) Validate() error {
	var errs []error
	if a.Distance < 0 {
		errs = append(errs, fmt.Errorf("%w: anchor distance %v is negative", ErrInvalidParams, a.Distance))
	}
	if a.ReachMin > a.ReachMax {
		errs = append(errs, fmt.Errorf("%w: reach_min %v exceeds reach_max %v", ErrInvalidParams, a.ReachMin, a.ReachMax))
	}
	return errors.Join(errs...)
}
