package server

import (
	"errors"
	"fmt"
	"time"
)

// Config holds server configuration
type Config struct {
	// Network settings
	ListenAddr string `yaml:"listen_addr"`
	MaxClients int    `yaml:"max_clients"`

	// Snapshots go out every SnapshotEvery simulation frames.
	SnapshotEvery int `yaml:"snapshot_every"`

	// Per-client input throttling, messages per second.
	InputRate  float64 `yaml:"input_rate"`
	InputBurst int     `yaml:"input_burst"`

	// Message settings
	MaxMessageSize int64         `yaml:"max_message_size"`
	SendBuffer     int           `yaml:"send_buffer"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`

	// Health monitoring; a zero ClientTimeout never drops idle clients.
	HealthCheckInterval time.Duration `yaml:"health_check_interval"`
	ClientTimeout       time.Duration `yaml:"client_timeout"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() Config {
	return Config{
		ListenAddr:          "127.0.0.1:8080",
		MaxClients:          64,
		SnapshotEvery:       3,
		InputRate:           120,
		InputBurst:          60,
		MaxMessageSize:      4 * 1024,
		SendBuffer:          64,
		WriteTimeout:        5 * time.Second,
		HealthCheckInterval: 10 * time.Second,
		ClientTimeout:       time.Minute,
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.ListenAddr == "" {
		errs = append(errs, fmt.Errorf("%w: listen_addr is empty", ErrInvalidConfig))
	}
	if c.MaxClients <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_clients must be positive, got %d", ErrInvalidConfig, c.MaxClients))
	}
	if c.SnapshotEvery <= 0 {
		errs = append(errs, fmt.Errorf("%w: snapshot_every must be positive, got %d", ErrInvalidConfig, c.SnapshotEvery))
	}
	if c.InputRate <= 0 || c.InputBurst <= 0 {
		errs = append(errs, fmt.Errorf("%w: input_rate and input_burst must be positive", ErrInvalidConfig))
	}
	if c.MaxMessageSize <= 0 || c.SendBuffer <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_message_size and send_buffer must be positive", ErrInvalidConfig))
	}
	if c.WriteTimeout <= 0 || c.HealthCheckInterval <= 0 {
		errs = append(errs, fmt.Errorf("%w: write_timeout and health_check_interval must be positive", ErrInvalidConfig))
	}
	if c.ClientTimeout < 0 {
		errs = append(errs, fmt.Errorf("%w: client_timeout must not be negative", ErrInvalidConfig))
	}
	return errors.Join(errs...)
}
