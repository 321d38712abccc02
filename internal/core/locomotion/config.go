package locomotion

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("invalid movement configuration")

// Config carries the character movement tuning. Units are centimetres,
// seconds and degrees.
type Config struct {
	BaseTurnRate   float64 `yaml:"base_turn_rate"`
	BaseLookUpRate float64 `yaml:"base_look_up_rate"`

	OrientRotationToMovement bool    `yaml:"orient_rotation_to_movement"`
	RotationRateYaw          float64 `yaml:"rotation_rate_yaw"`

	JumpZVelocity       float64 `yaml:"jump_z_velocity"`
	AirControl          float64 `yaml:"air_control"`
	MaxWalkSpeed        float64 `yaml:"max_walk_speed"`
	MaxAcceleration     float64 `yaml:"max_acceleration"`
	BrakingDeceleration float64 `yaml:"braking_deceleration"`
	GravityZ            float64 `yaml:"gravity_z"`
	Mass                float64 `yaml:"mass"`
	GroundHeight        float64 `yaml:"ground_height"`

	CapsuleRadius     float64 `yaml:"capsule_radius"`
	CapsuleHalfHeight float64 `yaml:"capsule_half_height"`
	CameraBoomLength  float64 `yaml:"camera_boom_length"`

	PitchMin float64 `yaml:"pitch_min"`
	PitchMax float64 `yaml:"pitch_max"`
}

func DefaultConfig() Config {
	return Config{
		BaseTurnRate:             45,
		BaseLookUpRate:           45,
		OrientRotationToMovement: true,
		RotationRateYaw:          540,
		JumpZVelocity:            600,
		AirControl:               0.2,
		MaxWalkSpeed:             600,
		MaxAcceleration:          2048,
		BrakingDeceleration:      2048,
		GravityZ:                 -980,
		Mass:                     100,
		CapsuleRadius:            42,
		CapsuleHalfHeight:        96,
		CameraBoomLength:         300,
		PitchMin:                 -89,
		PitchMax:                 89,
	}
}

func (c Config) Validate() error {
	var errs []error
	positive := map[string]float64{
		"max_walk_speed":      c.MaxWalkSpeed,
		"max_acceleration":    c.MaxAcceleration,
		"mass":                c.Mass,
		"capsule_radius":      c.CapsuleRadius,
		"capsule_half_height": c.CapsuleHalfHeight,
	}
	for name, v := range positive {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidConfig, name, v))
		}
	}
	nonNegative := map[string]float64{
		"base_turn_rate":       c.BaseTurnRate,
		"base_look_up_rate":    c.BaseLookUpRate,
		"rotation_rate_yaw":    c.RotationRateYaw,
		"jump_z_velocity":      c.JumpZVelocity,
		"braking_deceleration": c.BrakingDeceleration,
		"camera_boom_length":   c.CameraBoomLength,
	}
	for name, v := range nonNegative {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%w: %s must not be negative, got %v", ErrInvalidConfig, name, v))
		}
	}
	if c.AirControl < 0 || c.AirControl > 1 {
		errs = append(errs, fmt.Errorf("%w: air_control must be within [0, 1], got %v", ErrInvalidConfig, c.AirControl))
	}
	if c.PitchMin > c.PitchMax || c.PitchMin < -90 || c.PitchMax > 90 {
		errs = append(errs, fmt.Errorf("%w: pitch limits [%v, %v] must be ordered within [-90, 90]",
			ErrInvalidConfig, c.PitchMin, c.PitchMax))
	}
	return errors.Join(errs...)
}
