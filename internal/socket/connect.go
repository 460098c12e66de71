package socket

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"

	ncerr "modemconn/internal/errors"
	"modemconn/internal/lasterr"
	"modemconn/internal/stack"
)

// State is the result of one candidate attempt.
type State int

const (
	Failed State = iota
	Connected
	TimedOut
)

func (s State) String() string {
	switch s {
	case Connected:
		return "connected"
	case TimedOut:
		return "timed out"
	default:
		return "failed"
	}
}

// Outcome pairs a State with the native code behind it (0 when
// connected).  LastErr is the register as it stood right after the
// deciding call, before the flags were restored.
type Outcome struct {
	State   State
	Code    int
	LastErr int32
}

func failed(err error) Outcome {
	return Outcome{State: Failed, Code: ncerr.NativeCode(err)}
}

// enterNonblocking switches the descriptor to non-blocking mode and
// returns the function that puts the original flags back.
func (s *Socket) enterNonblocking() (restore func() error, err error) {
	flags, err := s.st.GetFlags(s.fd)
	if err != nil {
		return nil, err
	}
	if err := s.st.SetFlags(s.fd, flags|stack.FlagNonblock); err != nil {
		return nil, err
	}
	return func() error { return s.st.SetFlags(s.fd, flags) }, nil
}

// connectCandidate runs one non-blocking connect to sa and waits up to
// timeout seconds for the descriptor to become writable.  The
// descriptor's flags are back to their original value on return.
func (s *Socket) connectCandidate(sa *stack.SockaddrIn, timeout uint32, reg lasterr.Reader) (out Outcome) {
	switch {
	case s.fd < 0:
		return Outcome{State: Failed, Code: int(unix.EBADF), LastErr: lasterr.Snapshot(reg)}
	case s.fd >= stack.FdSetSize:
		return Outcome{State: Failed, Code: int(unix.EINVAL), LastErr: lasterr.Snapshot(reg)}
	}

	restore, err := s.enterNonblocking()
	if err != nil {
		out = failed(err)
		out.LastErr = lasterr.Snapshot(reg)
		return out
	}
	defer func() {
		if err := restore(); err != nil {
			s.logger().Warn("restoring flags on fd %d: %v", s.fd, err)
		}
	}()
	// Runs before the restore above.
	defer func() {
		if out.State != Connected {
			out.LastErr = lasterr.Snapshot(reg)
		}
	}()

	err = s.st.Connect(s.fd, sa)
	if err != nil && !inProgress(err) {
		return failed(err)
	}
	code := ncerr.NativeCode(err)

	var ws stack.FdSet
	ws.Set(s.fd)
	n, err := s.st.Select(s.fd+1, nil, &ws, nil, time.Duration(timeout)*time.Second)
	switch {
	case err != nil:
		return failed(err)

	case n == 0:
		if code == 0 {
			code = int(unix.ETIMEDOUT)
		}
		return Outcome{State: TimedOut, Code: code}

	case n == 1 && ws.IsSet(s.fd):
		soErr, err := s.st.SocketError(s.fd)
		if err != nil {
			return failed(err)
		}
		if soErr != 0 {
			return Outcome{State: Failed, Code: int(soErr)}
		}
		return Outcome{State: Connected}

	default:
		s.logger().Warn("select on fd %d reported %d ready descriptors", s.fd, n)
		if code == 0 {
			code = int(unix.EIO)
		}
		return Outcome{State: Failed, Code: code}
	}
}

// inProgress reports whether a connect error only means "not finished
// yet" on a non-blocking descriptor.  EALREADY is not among them: it
// belongs to a connect issued by an earlier call, possibly to another
// address.
func inProgress(err error) bool {
	return errors.Is(err, unix.EINPROGRESS) ||
		errors.Is(err, unix.EINTR) ||
		errors.Is(err, unix.EAGAIN)
}
