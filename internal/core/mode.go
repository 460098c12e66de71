// Package core is the orchestration layer.  It composes a socket stack,
// the TCP connect path and its metrics into a runnable mode, and
// provides a builder that produces that mode from a Config.
//
// Architecture layers (bottom → top):
//
//	stack  →  resolver  →  socket  →  core  →  cmd (CLI)
package core

import "context"

// Mode is a complete operation of modemconn.  Each mode owns its full
// lifecycle from socket creation to teardown.
type Mode interface {
	Run(ctx context.Context) error
}
