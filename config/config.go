// Package config holds the runtime configuration for the monitor, loaded
// from a YAML file and filled in from command line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// Probe driver selectors for Ping.Mode.
const (
	ModeExec = "exec"
	ModeICMP = "icmp"
)

// Config represents configuration for the monitor
type Config struct {
	Target string `yaml:"target"`

	Ping struct {
		Interval duration `yaml:"interval"`
		Timeout  duration `yaml:"timeout"`
		Mode     string   `yaml:"mode"`
	} `yaml:"ping"`

	Alerts struct {
		LossThreshold float64  `yaml:"loss-threshold"`
		RTTThreshold  duration `yaml:"rtt-threshold"`
	} `yaml:"alerts"`

	Web struct {
		ListenAddress string `yaml:"listen-address"`
	} `yaml:"web"`

	Record struct {
		Path string `yaml:"path"`
	} `yaml:"record"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

type duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler interface.
func (d *duration) UnmarshalYAML(unmashal func(interface{}) error) error {
	var s string
	if err := unmashal(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = duration(dur)
	return nil
}

// Duration is a convenience getter.
func (d duration) Duration() time.Duration {
	return time.Duration(d)
}

// Set updates the underlying duration.
func (d *duration) Set(dur time.Duration) {
	*d = duration(dur)
}

// FromYAML reads YAML from reader and unmarshals it to Config
func FromYAML(r io.Reader) (*Config, error) {
	c := &Config{}
	err := yaml.NewDecoder(r).Decode(c)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks for values that would break the monitor at runtime. It is
// called once after flags and file are merged, and again on hot reloads.
func (c *Config) Validate() error {
	if c.Target == "" {
		return errors.New("target is required (set --target or TARGET_HOST)")
	}
	if c.Ping.Interval.Duration() <= 0 {
		return errors.New("ping interval must be positive")
	}
	if c.Ping.Timeout.Duration() <= 0 {
		return errors.New("ping timeout must be positive")
	}

	switch c.Ping.Mode {
	case ModeExec, ModeICMP:
	default:
		return fmt.Errorf("unknown ping mode %q (valid: %s, %s)", c.Ping.Mode, ModeExec, ModeICMP)
	}

	if c.Alerts.LossThreshold < 0 || c.Alerts.LossThreshold > 100 {
		return fmt.Errorf("loss threshold must be within [0, 100], got %v", c.Alerts.LossThreshold)
	}
	if c.Alerts.RTTThreshold.Duration() < 0 {
		return errors.New("rtt threshold must not be negative")
	}

	return nil
}
