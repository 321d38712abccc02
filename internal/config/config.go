// Package config loads the webswing configuration from a single YAML
// document. Missing keys keep their defaults; unknown keys are rejected.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/webswing/internal/core/character"
	"github.com/zeusync/webswing/internal/core/input"
	"github.com/zeusync/webswing/internal/core/locomotion"
	"github.com/zeusync/webswing/internal/core/observability/log"
	"github.com/zeusync/webswing/internal/core/swing"
	"github.com/zeusync/webswing/internal/core/world"
	"github.com/zeusync/webswing/internal/server"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Log        log.Config        `yaml:"log"`
	Simulation world.Config      `yaml:"simulation"`
	Swing      Swing             `yaml:"swing"`
	Movement   locomotion.Config `yaml:"movement"`
	Input      input.Bindings    `yaml:"input"`
	Server     server.Config     `yaml:"server"`
}

// Swing groups the force parameters with the anchor placement.
type Swing struct {
	swing.Params `yaml:",inline"`
	Anchor       swing.AnchorParams `yaml:"anchor"`
}

func Default() Config {
	return Config{
		Log:        log.DefaultConfig(),
		Simulation: world.DefaultConfig(),
		Swing: Swing{
			Params: swing.DefaultParams(),
			Anchor: swing.DefaultAnchorParams(),
		},
		Movement: locomotion.DefaultConfig(),
		Input:    input.DefaultBindings(),
		Server:   server.DefaultServerConfig(),
	}
}

// Load reads path on top of Default. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := LoadYAML(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadYAML decodes one document from r on top of Default and validates it.
func LoadYAML(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section and joins the failures.
func (c Config) Validate() error {
	var errs []error
	add := func(section string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, section, err))
		}
	}
	add("log", c.Log.Validate())
	add("simulation", c.Simulation.Validate())
	add("swing", c.Swing.Params.Validate())
	add("swing.anchor", c.Swing.Anchor.Validate())
	add("movement", c.Movement.Validate())
	add("input", c.Input.Validate())
	add("server", c.Server.Validate())
	return errors.Join(errs...)
}

// Character extracts the per-actor configuration.
func (c Config) Character() character.Config {
	return character.Config{
		Swing:    c.Swing.Params,
		Anchor:   c.Swing.Anchor,
		Movement: c.Movement,
		Input:    c.Input,
	}
}

// Marshal renders the configuration as YAML, e.g. for a starter file.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
