// Package lasterr holds the mirrored "last error" register of the socket
// stack.
//
// The stack is the only writer: every time one of its own calls fails it
// overwrites the register with the failure code.  Everything above the
// stack only reads it, and only to decorate a classified error.  The value
// is a snapshot: when several sockets fail concurrently a later failure can
// overwrite the register before an earlier caller reads it, so callers must
// copy the value immediately after the failing call and never re-read it.
package lasterr

import "sync/atomic"

// Reader is the read-only view handed to the connect layer.
type Reader interface {
	Load() int32
}

// Register is a single process-wide integer slot.  The zero value is
// ready to use and reads 0.
type Register struct {
	v atomic.Int32
}

// Default is the register written by the host stack backend.
var Default = &Register{} //nolint:gochecknoglobals

// Store overwrites the register.  Only stack implementations call this.
func (r *Register) Store(code int32) { r.v.Store(code) }

// Load returns the most recent code stored.
func (r *Register) Load() int32 { return r.v.Load() }

// Snapshot reads r, treating a nil reader as an empty register.
func Snapshot(r Reader) int32 {
	if r == nil {
		return 0
	}
	return r.Load()
}
