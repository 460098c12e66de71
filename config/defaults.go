package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags and environment variable loading.

const (
	// DefaultConnTimeout is the per-candidate connect timeout.
	DefaultConnTimeout = 30 * time.Second

	// MaxConnTimeout caps the per-candidate timeout; longer waits only
	// hold a modem socket that the network has long given up on.
	MaxConnTimeout = 10 * time.Minute

	// MinPort and MaxPort bound a destination port.
	MinPort = 1
	MaxPort = 65535

	// EnvPrefix is prepended to every environment variable name.
	EnvPrefix = "MODEMCONN_"
)
