package world

import (
	"errors"
	"fmt"
	"time"
)

// Config controls the fixed-step simulation loop.
type Config struct {
	TickRate  float64 `yaml:"tick_rate"`
	Workers   int     `yaml:"workers"`
	Shards    int     `yaml:"shards"`
	MaxActors int     `yaml:"max_actors"`
}

func DefaultConfig() Config {
	return Config{
		TickRate:  60,
		Workers:   4,
		Shards:    16,
		MaxActors: 256,
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.TickRate <= 0 || c.TickRate > 1000 {
		errs = append(errs, fmt.Errorf("%w: tick_rate must be within (0, 1000], got %v", ErrInvalidConfig, c.TickRate))
	}
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers))
	}
	if c.Shards <= 0 {
		errs = append(errs, fmt.Errorf("%w: shards must be positive, got %d", ErrInvalidConfig, c.Shards))
	}
	if c.MaxActors < 0 {
		errs = append(errs, fmt.Errorf("%w: max_actors must not be negative, got %d", ErrInvalidConfig, c.MaxActors))
	}
	return errors.Join(errs...)
}

// FixedDeltaTime is the simulated length of one tick in seconds.
func (c Config) FixedDeltaTime() float64 { return 1 / c.TickRate }

// Interval is the wall-clock period of one tick.
func (c Config) Interval() time.Duration {
	return time.Duration(float64(time.Second) / c.TickRate)
}
