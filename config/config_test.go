package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestParseConfig(t *testing.T) {
	f, err := os.Open("testdata/config_test.yml")
	if err != nil {
		t.Error("failed to open file", err)
		t.FailNow()
	}

	c, err := FromYAML(f)
	f.Close()
	if err != nil {
		t.Error("failed to parse", err)
		t.FailNow()
	}

	if expected := "example.com"; c.Target != expected {
		t.Errorf("expected target to be %q, got %q", expected, c.Target)
	}

	if expected := 250 * time.Millisecond; c.Ping.Interval.Duration() != expected {
		t.Errorf("expected ping.interval to be %v, got %v", expected, c.Ping.Interval.Duration())
	}
	if expected := 2 * time.Second; c.Ping.Timeout.Duration() != expected {
		t.Errorf("expected ping.timeout to be %v, got %v", expected, c.Ping.Timeout.Duration())
	}
	if expected := ModeICMP; c.Ping.Mode != expected {
		t.Errorf("expected ping.mode to be %q, got %q", expected, c.Ping.Mode)
	}

	if expected := 12.5; c.Alerts.LossThreshold != expected {
		t.Errorf("expected alerts.loss-threshold to be %v, got %v", expected, c.Alerts.LossThreshold)
	}
	if expected := 150 * time.Millisecond; c.Alerts.RTTThreshold.Duration() != expected {
		t.Errorf("expected alerts.rtt-threshold to be %v, got %v", expected, c.Alerts.RTTThreshold.Duration())
	}

	if expected := "127.0.0.1:9427"; c.Web.ListenAddress != expected {
		t.Errorf("expected web.listen-address to be %q, got %q", expected, c.Web.ListenAddress)
	}
	if expected := "/var/lib/pingmon/sessions.db"; c.Record.Path != expected {
		t.Errorf("expected record.path to be %q, got %q", expected, c.Record.Path)
	}
	if expected := "debug"; c.Log.Level != expected {
		t.Errorf("expected log.level to be %q, got %q", expected, c.Log.Level)
	}
}

func TestParseConfigRejectsBadDuration(t *testing.T) {
	_, err := FromYAML(strings.NewReader("ping:\n  interval: not-a-duration\n"))
	if err == nil {
		t.Error("expected a parse error for a malformed duration")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{Target: "example.com"}
		c.Ping.Interval.Set(100 * time.Millisecond)
		c.Ping.Timeout.Set(time.Second)
		c.Ping.Mode = ModeExec
		return c
	}

	if err := valid().Validate(); err != nil {
		t.Errorf("expected valid config to pass, got %v", err)
	}

	tests := []struct {
		name   string
		mangle func(*Config)
	}{
		{"missing target", func(c *Config) { c.Target = "" }},
		{"zero interval", func(c *Config) { c.Ping.Interval.Set(0) }},
		{"negative interval", func(c *Config) { c.Ping.Interval.Set(-time.Second) }},
		{"zero timeout", func(c *Config) { c.Ping.Timeout.Set(0) }},
		{"unknown mode", func(c *Config) { c.Ping.Mode = "carrier-pigeon" }},
		{"loss threshold above 100", func(c *Config) { c.Alerts.LossThreshold = 150 }},
		{"negative loss threshold", func(c *Config) { c.Alerts.LossThreshold = -1 }},
		{"negative rtt threshold", func(c *Config) { c.Alerts.RTTThreshold.Set(-time.Second) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mangle(c)
			if err := c.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}
