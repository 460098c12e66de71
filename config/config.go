// Package config defines the runtime configuration for modemconn and the
// helpers that parse and validate it.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	ncerr "modemconn/internal/errors"
	"modemconn/internal/resolver"
)

// Config holds every tuneable for a single connect run.
type Config struct {
	// ── Connection ───────────────────────────────────────────────────
	Host    string
	Port    int
	Timeout time.Duration // per candidate; rounded up to whole seconds

	// ── Output ───────────────────────────────────────────────────────
	Verbose    int
	Timestamps bool
	Stats      bool // print the metrics snapshot after the run
	DryRun     bool // validate and exit without touching the network
}

// ConnectTimeout returns Timeout, or DefaultConnTimeout when unset.
func (c *Config) ConnectTimeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultConnTimeout
	}
	return c.Timeout
}

// ── Port helpers ─────────────────────────────────────────────────────

// ParsePort accepts a decimal port in 1-65535.
func ParsePort(arg string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", arg)
	}
	if port < MinPort || port > MaxPort {
		return 0, fmt.Errorf("port %d out of range %d-%d", port, MinPort, MaxPort)
	}
	return port, nil
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration describes a connect the stack
// can attempt.
func (c *Config) Validate() error {
	if c.Host == "" {
		return &ncerr.ConfigError{
			Field:   "host",
			Message: "hostname is required",
			Hint:    "modemconn [options] <host> <port>, or set MODEMCONN_HOST",
		}
	}
	if len(c.Host) > resolver.MaxHostnameLen {
		return &ncerr.ConfigError{
			Field:   "host",
			Value:   c.Host,
			Message: fmt.Sprintf("hostname is %d bytes, the stack accepts at most %d", len(c.Host), resolver.MaxHostnameLen),
			Hint:    "use a shorter alias or a numeric address",
		}
	}
	if c.Port < MinPort || c.Port > MaxPort {
		return &ncerr.ConfigError{
			Field:   "port",
			Value:   c.Port,
			Message: fmt.Sprintf("port must be in %d-%d", MinPort, MaxPort),
		}
	}
	if c.Timeout < 0 {
		return &ncerr.ConfigError{
			Field:   "timeout",
			Value:   c.Timeout,
			Message: "timeout cannot be negative",
			Hint:    "omit -w to use the default of " + DefaultConnTimeout.String(),
		}
	}
	if c.Timeout > MaxConnTimeout {
		return &ncerr.ConfigError{
			Field:   "timeout",
			Value:   c.Timeout,
			Message: "timeout exceeds " + MaxConnTimeout.String(),
		}
	}
	return nil
}
