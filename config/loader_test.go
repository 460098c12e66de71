package config

import (
	"testing"
	"time"
)

func TestLoadFromEnv_Host(t *testing.T) {
	t.Setenv("MODEMCONN_HOST", "broker.example.com")
	cfg := &Config{}
	LoadFromEnv(cfg)
	if cfg.Host != "broker.example.com" {
		t.Errorf("Host = %q, want %q", cfg.Host, "broker.example.com")
	}
}

func TestLoadFromEnv_Port(t *testing.T) {
	t.Setenv("MODEMCONN_PORT", "8883")
	cfg := &Config{}
	LoadFromEnv(cfg)
	if cfg.Port != 8883 {
		t.Errorf("Port = %d, want 8883", cfg.Port)
	}
}

func TestLoadFromEnv_Booleans(t *testing.T) {
	tests := []struct {
		key    string
		values []string
		get    func(*Config) bool
	}{
		{"MODEMCONN_STATS", []string{"1", "true", "yes", "TRUE", "Yes"}, func(c *Config) bool { return c.Stats }},
		{"MODEMCONN_TIMESTAMPS", []string{"1", "true"}, func(c *Config) bool { return c.Timestamps }},
	}

	for _, tt := range tests {
		for _, v := range tt.values {
			t.Run(tt.key+"="+v, func(t *testing.T) {
				t.Setenv(tt.key, v)
				cfg := &Config{}
				LoadFromEnv(cfg)
				if !tt.get(cfg) {
					t.Errorf("%s=%s should enable the option", tt.key, v)
				}
			})
		}
	}
}

func TestLoadFromEnv_BooleanFalse(t *testing.T) {
	t.Setenv("MODEMCONN_STATS", "no")
	cfg := &Config{}
	LoadFromEnv(cfg)
	if cfg.Stats {
		t.Error("Stats should stay false")
	}
}

func TestLoadFromEnv_Timeout(t *testing.T) {
	t.Setenv("MODEMCONN_TIMEOUT", "10")
	cfg := &Config{}
	LoadFromEnv(cfg)
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Timeout)
	}
}

func TestLoadFromEnv_NoOverrideWhenEmpty(t *testing.T) {
	for _, k := range []string{"HOST", "PORT", "TIMEOUT", "VERBOSE", "STATS", "TIMESTAMPS"} {
		t.Setenv(EnvPrefix+k, "")
	}

	cfg := &Config{Host: "original", Port: 1234, Timeout: time.Second}
	LoadFromEnv(cfg)

	if cfg.Host != "original" {
		t.Errorf("Host was overridden: %q", cfg.Host)
	}
	if cfg.Port != 1234 {
		t.Errorf("Port was overridden: %d", cfg.Port)
	}
	if cfg.Timeout != time.Second {
		t.Errorf("Timeout was overridden: %v", cfg.Timeout)
	}
}

func TestLoadFromEnv_InvalidIntIgnored(t *testing.T) {
	t.Setenv("MODEMCONN_PORT", "not-a-number")
	cfg := &Config{}
	LoadFromEnv(cfg)
	if cfg.Port != 0 {
		t.Errorf("Port should be 0 for invalid input, got %d", cfg.Port)
	}
}

func TestLoadFromEnv_Verbose(t *testing.T) {
	t.Setenv("MODEMCONN_VERBOSE", "3")
	cfg := &Config{}
	LoadFromEnv(cfg)
	if cfg.Verbose != 3 {
		t.Errorf("Verbose = %d, want 3", cfg.Verbose)
	}
}
