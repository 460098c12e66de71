// Package socket owns descriptors on the modem's socket stack and
// implements the blocking TCP connect on top of the stack's
// non-blocking primitives.
//
// A Socket is not safe for concurrent use.
package socket

import (
	"fmt"

	ncerr "modemconn/internal/errors"
	"modemconn/internal/stack"
	"modemconn/util"
)

// Socket is an open descriptor with its creation parameters.  Once
// closed, FD reports -1 and the descriptor is never handed out again.
type Socket struct {
	st       stack.Stack
	fd       int
	domain   int
	typ      int
	protocol int

	// Logger receives connect diagnostics (discarded by default).
	Logger *util.Logger
}

// Open creates a socket on st.
func Open(st stack.Stack, domain, typ, protocol int) (*Socket, error) {
	fd, err := st.Socket(domain, typ, protocol)
	if err != nil {
		return nil, fmt.Errorf("socket: %w", err)
	}
	return &Socket{
		st:       st,
		fd:       fd,
		domain:   domain,
		typ:      typ,
		protocol: protocol,
		Logger:   util.Discard(),
	}, nil
}

// FD returns the native descriptor, for building readiness sets.
func (s *Socket) FD() int { return s.fd }

func (s *Socket) Domain() int   { return s.domain }
func (s *Socket) Type() int     { return s.typ }
func (s *Socket) Protocol() int { return s.protocol }

// Closed reports whether Close has been called.
func (s *Socket) Closed() bool { return s.fd < 0 }

// Close releases the descriptor.  The handle is unusable afterwards even
// if the stack reports an error.
func (s *Socket) Close() error {
	if s.fd < 0 {
		return ncerr.ErrSocketClosed
	}
	fd := s.fd
	s.fd = -1
	if err := s.st.Close(fd); err != nil {
		return fmt.Errorf("close fd %d: %w", fd, err)
	}
	return nil
}

func (s *Socket) logger() *util.Logger {
	if s.Logger == nil {
		s.Logger = util.Discard()
	}
	return s.Logger
}
