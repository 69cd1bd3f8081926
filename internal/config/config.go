// Package config loads the recorder configuration from an optional YAML file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config names the console commands written into recorded scripts.
type Config struct {
	ForwardSpeedCommand string `yaml:"forward_speed_command" env:"HLTAS_RECORD_FORWARD_SPEED_COMMAND"`
	BackSpeedCommand    string `yaml:"back_speed_command" env:"HLTAS_RECORD_BACK_SPEED_COMMAND"`
	SideSpeedCommand    string `yaml:"side_speed_command" env:"HLTAS_RECORD_SIDE_SPEED_COMMAND"`
	RemainderCommand    string `yaml:"remainder_command" env:"HLTAS_RECORD_REMAINDER_COMMAND"`
	CommandSeparator    string `yaml:"command_separator" env:"HLTAS_RECORD_COMMAND_SEPARATOR"`

	// FileMode is the octal permission of written scripts.
	FileMode string `yaml:"file_mode" env:"HLTAS_RECORD_FILE_MODE"`
}

// Default returns the configuration matching the engine's own cvar names.
func Default() Config {
	return Config{
		ForwardSpeedCommand: "cl_forwardspeed",
		BackSpeedCommand:    "cl_backspeed",
		SideSpeedCommand:    "cl_sidespeed",
		RemainderCommand:    "_bxt_set_frametime_remainder",
		CommandSeparator:    ";",
		FileMode:            "0644",
	}
}

// Validate checks that every command name is usable inside a script line.
func (c *Config) Validate() error {
	names := []struct {
		field string
		value string
	}{
		{"forward_speed_command", c.ForwardSpeedCommand},
		{"back_speed_command", c.BackSpeedCommand},
		{"side_speed_command", c.SideSpeedCommand},
		{"remainder_command", c.RemainderCommand},
	}
	for _, n := range names {
		if strings.TrimSpace(n.value) == "" {
			return fmt.Errorf("%s must be non-empty", n.field)
		}
		if strings.ContainsAny(n.value, "|;\r\n") {
			return fmt.Errorf("%s must not contain '|', ';' or line breaks", n.field)
		}
	}
	if c.CommandSeparator == "" {
		return errors.New("command_separator must be non-empty")
	}
	if strings.ContainsAny(c.CommandSeparator, "|\r\n") {
		return errors.New("command_separator must not contain '|' or line breaks")
	}
	if _, err := c.Perm(); err != nil {
		return err
	}
	return nil
}

// Perm parses FileMode.
func (c *Config) Perm() (os.FileMode, error) {
	mode, err := strconv.ParseUint(c.FileMode, 8, 32)
	if err != nil || mode > 0o777 {
		return 0, fmt.Errorf("file_mode must be an octal permission, got %q", c.FileMode)
	}
	return os.FileMode(mode), nil
}

// Decode reads YAML on top of the defaults. Unknown fields are rejected.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty), then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path) //nolint:gosec // config path comes from the user
		if err != nil {
			return Config{}, fmt.Errorf("failed to open config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if cfg, err = Decode(f); err != nil {
			return Config{}, err
		}
	}

	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ParseEnv overrides fields of target from the environment.
func ParseEnv(target *Config) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
