// Package stack describes the socket stack the connect layer drives.
//
// On the device this is the modem's offloaded TCP/IP stack; on a
// development host it is the kernel's, reached through the Linux backend
// in this package.  The contract is deliberately narrow: descriptor
// lifecycle, descriptor flags, a non-blocking connect, a select-style
// readiness wait, the pending socket error, and name resolution.
//
// Every implementation is the single writer of a last-error register
// (see package lasterr) and mirrors each of its own failures into it.
package stack

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// ── Constants ────────────────────────────────────────────────────────

const (
	AFUnspec     = unix.AF_UNSPEC
	AFInet       = unix.AF_INET
	SockStream   = unix.SOCK_STREAM
	ProtoTCP     = unix.IPPROTO_TCP
	FlagNonblock = unix.O_NONBLOCK
)

// SizeofSockaddrIn is the length tag carried by IPv4 socket addresses.
const SizeofSockaddrIn = 16

// FdSetSize is the number of descriptors an FdSet can hold.
const FdSetSize = 1024

// ErrUnsupported is returned by Host on platforms without a backend.
var ErrUnsupported = errors.New("stack: no host backend for this platform")

// ── Stack ────────────────────────────────────────────────────────────

// Stack is the socket stack consumed by the connect layer.  Failing
// calls return syscall.Errno values (or EAIError for GetAddrInfo) so
// that callers can recover the native code.
type Stack interface {
	Socket(domain, typ, proto int) (int, error)
	Close(fd int) error

	GetFlags(fd int) (int, error)
	SetFlags(fd, flags int) error

	// Connect starts a connection.  On a non-blocking descriptor it
	// usually reports unix.EINPROGRESS.
	Connect(fd int, sa *SockaddrIn) error

	// Select waits until a descriptor in one of the sets is ready or
	// timeout elapses, and returns the number of ready descriptors.
	// The sets are rewritten to hold only the ready descriptors.
	Select(nfd int, r, w, e *FdSet, timeout time.Duration) (int, error)

	// SocketError reads and clears the pending error (SO_ERROR).
	SocketError(fd int) (uint16, error)

	Resolver
}

// Resolver is the name-resolution half of a Stack.
type Resolver interface {
	// GetAddrInfo resolves node.  The returned chain is owned by the
	// caller until it is handed back to FreeAddrInfo.
	GetAddrInfo(node, service string, hints *AddrInfo) (*AddrInfo, error)
	FreeAddrInfo(res *AddrInfo)
}

// ── Addresses ────────────────────────────────────────────────────────

// SockaddrIn is an IPv4 socket address as the stack sees it.  Port is
// stored in network byte order.
type SockaddrIn struct {
	Len    uint8
	Family int
	Port   uint16
	Addr   [4]byte
}

// NewSockaddrIn builds an AF_INET address for addr:port, converting the
// port to network byte order.
func NewSockaddrIn(addr [4]byte, port uint16) *SockaddrIn {
	return &SockaddrIn{
		Len:    SizeofSockaddrIn,
		Family: AFInet,
		Port:   Htons(port),
		Addr:   addr,
	}
}

// HostPort returns the port in host byte order.
func (sa *SockaddrIn) HostPort() uint16 { return Ntohs(sa.Port) }

func (sa *SockaddrIn) String() string {
	return fmt.Sprintf("%d.%d.%d.%d:%d",
		sa.Addr[0], sa.Addr[1], sa.Addr[2], sa.Addr[3], sa.HostPort())
}

// AddrInfo is one record of a resolved address chain.
type AddrInfo struct {
	Flags     int
	Family    int
	SockType  int
	Protocol  int
	AddrLen   uint32
	Addr      *SockaddrIn
	CanonName string
	Next      *AddrInfo
}

// Htons converts a host-order port to network byte order.
func Htons(v uint16) uint16 {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return binary.NativeEndian.Uint16(b[:])
}

// Ntohs converts a network-order port to host byte order.
func Ntohs(v uint16) uint16 {
	var b [2]byte
	binary.NativeEndian.PutUint16(b[:], v)
	return binary.BigEndian.Uint16(b[:])
}

// ── Descriptor sets ──────────────────────────────────────────────────

// FdSet is a fixed-size descriptor bitmap for Select.
type FdSet struct {
	bits [FdSetSize / 64]uint64
}

// Set adds fd.  Descriptors outside [0, FdSetSize) are ignored.
func (s *FdSet) Set(fd int) {
	if fd < 0 || fd >= FdSetSize {
		return
	}
	s.bits[fd/64] |= 1 << (uint(fd) % 64)
}

// Clear removes fd.
func (s *FdSet) Clear(fd int) {
	if fd < 0 || fd >= FdSetSize {
		return
	}
	s.bits[fd/64] &^= 1 << (uint(fd) % 64)
}

// IsSet reports whether fd is in the set.
func (s *FdSet) IsSet(fd int) bool {
	if fd < 0 || fd >= FdSetSize {
		return false
	}
	return s.bits[fd/64]&(1<<(uint(fd)%64)) != 0
}

// Zero empties the set.
func (s *FdSet) Zero() { s.bits = [FdSetSize / 64]uint64{} }

// ── Resolver errors ──────────────────────────────────────────────────

// EAIError is a getaddrinfo-style failure code.
type EAIError int

const (
	EAIBadFlags EAIError = -1
	EAINoName   EAIError = -2
	EAIAgain    EAIError = -3
	EAIFail     EAIError = -4
	EAIFamily   EAIError = -6
	EAISockType EAIError = -7
	EAIService  EAIError = -8
)

func (e EAIError) Error() string {
	switch e {
	case EAIBadFlags:
		return "bad value for ai_flags"
	case EAINoName:
		return "name or service not known"
	case EAIAgain:
		return "temporary failure in name resolution"
	case EAIFail:
		return "non-recoverable failure in name resolution"
	case EAIFamily:
		return "ai_family not supported"
	case EAISockType:
		return "ai_socktype not supported"
	case EAIService:
		return "service not supported for ai_socktype"
	default:
		return fmt.Sprintf("resolver error %d", int(e))
	}
}

// Code returns the native resolver code.
func (e EAIError) Code() int { return int(e) }
