package stack

import (
	"errors"
	"strings"
	"testing"
)

func TestHtonsRoundTrip(t *testing.T) {
	for _, p := range []uint16{0, 1, 80, 443, 8080, 65535} {
		if got := Ntohs(Htons(p)); got != p {
			t.Errorf("Ntohs(Htons(%d)) = %d", p, got)
		}
	}
}

func TestNewSockaddrIn(t *testing.T) {
	sa := NewSockaddrIn([4]byte{192, 0, 2, 7}, 8883)
	if sa.Len != SizeofSockaddrIn {
		t.Errorf("Len = %d, want %d", sa.Len, SizeofSockaddrIn)
	}
	if sa.Family != AFInet {
		t.Errorf("Family = %d, want AF_INET", sa.Family)
	}
	if sa.HostPort() != 8883 {
		t.Errorf("HostPort() = %d, want 8883", sa.HostPort())
	}
	if got := sa.String(); got != "192.0.2.7:8883" {
		t.Errorf("String() = %q", got)
	}
}

func TestFdSet(t *testing.T) {
	var s FdSet
	s.Set(3)
	s.Set(64)
	s.Set(FdSetSize) // ignored
	s.Set(-1)        // ignored

	tests := []struct {
		fd   int
		want bool
	}{
		{3, true},
		{64, true},
		{4, false},
		{FdSetSize, false},
		{-1, false},
	}
	for _, tt := range tests {
		if got := s.IsSet(tt.fd); got != tt.want {
			t.Errorf("IsSet(%d) = %v, want %v", tt.fd, got, tt.want)
		}
	}

	s.Clear(3)
	if s.IsSet(3) {
		t.Error("3 should be cleared")
	}
	s.Zero()
	if s.IsSet(64) {
		t.Error("Zero should empty the set")
	}
}

func TestEAIError(t *testing.T) {
	var err error = EAINoName
	var eai EAIError
	if !errors.As(err, &eai) {
		t.Fatal("EAIError should satisfy errors.As")
	}
	if eai.Code() != -2 {
		t.Errorf("Code() = %d, want -2", eai.Code())
	}
	if !strings.Contains(EAIError(-99).Error(), "-99") {
		t.Errorf("unknown code should be printed, got %q", EAIError(-99).Error())
	}
}
