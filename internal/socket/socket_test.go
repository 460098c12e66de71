package socket

import (
	"testing"

	"golang.org/x/sys/unix"

	ncerr "modemconn/internal/errors"
	"modemconn/internal/stack"
	"modemconn/internal/stack/stacktest"
)

func TestOpenClose(t *testing.T) {
	f := &stacktest.Fake{}
	s, err := Open(f, stack.AFInet, stack.SockStream, stack.ProtoTCP)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Domain() != stack.AFInet || s.Type() != stack.SockStream || s.Protocol() != stack.ProtoTCP {
		t.Errorf("parameters = %d/%d/%d", s.Domain(), s.Type(), s.Protocol())
	}

	fd := s.FD()
	if !f.IsOpen(fd) {
		t.Fatalf("fd %d should be open", fd)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if f.IsOpen(fd) {
		t.Error("fd should be closed on the stack")
	}
	if s.FD() != -1 || !s.Closed() {
		t.Errorf("closed socket exposes fd %d", s.FD())
	}
	if err := s.Close(); !ncerr.Is(err, ncerr.ErrSocketClosed) {
		t.Errorf("second Close = %v, want ErrSocketClosed", err)
	}
}

func TestConnectCandidate_States(t *testing.T) {
	tests := []struct {
		name      string
		cand      stacktest.Candidate
		wantState State
		wantCode  int
	}{
		{"connected", stacktest.Candidate{Addr: addrA}, Connected, 0},
		{"refused", stacktest.Candidate{Addr: addrA, SoError: uint16(unix.ECONNREFUSED)}, Failed, int(unix.ECONNREFUSED)},
		{"timed out", stacktest.Candidate{Addr: addrA, Ready: stacktest.Int(0)}, TimedOut, int(unix.EINPROGRESS)},
		{"select error", stacktest.Candidate{Addr: addrA, SelectErr: unix.EINVAL}, Failed, int(unix.EINVAL)},
		{"anomaly", stacktest.Candidate{Addr: addrA, Ready: stacktest.Int(3)}, Failed, int(unix.EINPROGRESS)},
		{"immediate", stacktest.Candidate{Addr: addrA, ConnectErr: stacktest.NoError}, Connected, 0},
		{"already pending", stacktest.Candidate{Addr: addrA, ConnectErr: unix.EALREADY}, Failed, int(unix.EALREADY)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFake(tt.cand)
			s := newTestSocket(t, f)

			out := s.connectCandidate(stack.NewSockaddrIn(addrA, 80), 1, f.Register)
			if out.State != tt.wantState || out.Code != tt.wantCode {
				t.Errorf("outcome = %v/%d, want %v/%d", out.State, out.Code, tt.wantState, tt.wantCode)
			}
			assertFlagsRestored(t, f, s)
		})
	}
}

func TestConnectCandidate_ClosedSocket(t *testing.T) {
	f := newFake(stacktest.Candidate{Addr: addrA})
	s := newTestSocket(t, f)
	s.Close() //nolint:errcheck

	out := s.connectCandidate(stack.NewSockaddrIn(addrA, 80), 1, f.Register)
	if out.State != Failed || out.Code != int(unix.EBADF) {
		t.Errorf("outcome = %+v, want Failed/EBADF", out)
	}
}

func TestState_String(t *testing.T) {
	for s, want := range map[State]string{Connected: "connected", TimedOut: "timed out", Failed: "failed"} {
		if got := s.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", s, got, want)
		}
	}
}

func TestConnectCandidate_DescriptorBeyondSet(t *testing.T) {
	f := newFake(stacktest.Candidate{Addr: addrA})
	f.FirstFd = stack.FdSetSize
	s := newTestSocket(t, f)

	out := s.connectCandidate(stack.NewSockaddrIn(addrA, 80), 1, f.Register)
	if out.State != Failed || out.Code != int(unix.EINVAL) {
		t.Errorf("outcome = %+v, want Failed/EINVAL", out)
	}
	if f.SetFlagsCalls != 0 || f.Selects != 0 || len(f.Attempts()) != 0 {
		t.Error("descriptor outside the select set must not be touched")
	}
}

func TestConnectCandidate_SnapshotBeforeRestore(t *testing.T) {
	f := newFake(stacktest.Candidate{Addr: addrA, SoError: uint16(unix.ECONNREFUSED)})
	f.RestoreErr = unix.EINVAL
	s := newTestSocket(t, f)

	out := s.connectCandidate(stack.NewSockaddrIn(addrA, 80), 1, f.Register)
	if out.State != Failed || out.Code != int(unix.ECONNREFUSED) {
		t.Fatalf("outcome = %+v, want Failed/ECONNREFUSED", out)
	}
	if out.LastErr != int32(unix.ECONNREFUSED) {
		t.Errorf("LastErr = %d, want %d from the deciding call", out.LastErr, unix.ECONNREFUSED)
	}
	if f.Register.Load() != int32(unix.EINVAL) {
		t.Errorf("register = %d, the failed restore should have overwritten it", f.Register.Load())
	}
}
