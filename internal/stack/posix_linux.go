//go:build linux

package stack

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	"golang.org/x/sys/unix"

	"modemconn/internal/lasterr"
)

// DefaultLookupTimeout bounds a single GetAddrInfo call on the host.
const DefaultLookupTimeout = 10 * time.Second

// POSIX drives the host kernel's socket API.  It stands in for the
// modem's offloaded stack during development and in integration tests.
type POSIX struct {
	// Register receives every failure code; defaults to lasterr.Default.
	Register *lasterr.Register
	// Resolver performs name lookups; defaults to net.DefaultResolver.
	Resolver *net.Resolver
	// LookupTimeout bounds one resolution (default DefaultLookupTimeout).
	LookupTimeout time.Duration
}

// NewPOSIX returns a backend wired to the process-wide register.
func NewPOSIX() *POSIX {
	return &POSIX{
		Register:      lasterr.Default,
		Resolver:      net.DefaultResolver,
		LookupTimeout: DefaultLookupTimeout,
	}
}

// Host returns the backend for the running platform.
func Host() (Stack, error) { return NewPOSIX(), nil }

// mirror stores err's native code in the register and returns err.
func (p *POSIX) mirror(err error) error {
	if err == nil || p.Register == nil {
		return err
	}
	var errno unix.Errno
	var eai EAIError
	switch {
	case errors.As(err, &errno):
		p.Register.Store(int32(errno))
	case errors.As(err, &eai):
		p.Register.Store(int32(eai))
	}
	return err
}

// Socket opens a close-on-exec descriptor.
func (p *POSIX) Socket(domain, typ, proto int) (int, error) {
	fd, err := unix.Socket(domain, typ|unix.SOCK_CLOEXEC, proto)
	if err != nil {
		return -1, p.mirror(err)
	}
	return fd, nil
}

func (p *POSIX) Close(fd int) error {
	return p.mirror(unix.Close(fd))
}

func (p *POSIX) GetFlags(fd int) (int, error) {
	flags, err := unix.FcntlInt(uintptr(fd), unix.F_GETFL, 0)
	if err != nil {
		return 0, p.mirror(err)
	}
	return flags, nil
}

func (p *POSIX) SetFlags(fd, flags int) error {
	_, err := unix.FcntlInt(uintptr(fd), unix.F_SETFL, flags)
	return p.mirror(err)
}

func (p *POSIX) Connect(fd int, sa *SockaddrIn) error {
	if sa == nil || sa.Family != AFInet {
		return p.mirror(unix.EAFNOSUPPORT)
	}
	return p.mirror(unix.Connect(fd, &unix.SockaddrInet4{
		Port: int(sa.HostPort()),
		Addr: sa.Addr,
	}))
}

// Select restarts on EINTR with whatever time is left.
func (p *POSIX) Select(nfd int, r, w, e *FdSet, timeout time.Duration) (int, error) {
	deadline := time.Now().Add(timeout)
	for {
		rs, ws, es := toUnix(r, nfd), toUnix(w, nfd), toUnix(e, nfd)
		tv := unix.NsecToTimeval(timeout.Nanoseconds())

		n, err := unix.Select(nfd, rs, ws, es, &tv)
		if errors.Is(err, unix.EINTR) {
			if timeout = time.Until(deadline); timeout < 0 {
				timeout = 0
			}
			continue
		}
		if err != nil {
			return -1, p.mirror(err)
		}
		fromUnix(r, rs, nfd)
		fromUnix(w, ws, nfd)
		fromUnix(e, es, nfd)
		return n, nil
	}
}

func (p *POSIX) SocketError(fd int) (uint16, error) {
	v, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return 0, p.mirror(err)
	}
	if v != 0 {
		p.mirror(unix.Errno(v)) //nolint:errcheck
	}
	return uint16(v), nil
}

// GetAddrInfo resolves node to IPv4 stream records, in resolver order.
// Only AF_INET (or AF_UNSPEC, treated as AF_INET) and SOCK_STREAM hints
// are honoured; service must be empty or numeric.
func (p *POSIX) GetAddrInfo(node, service string, hints *AddrInfo) (*AddrInfo, error) {
	family, sotype := AFInet, SockStream
	if hints != nil {
		if hints.Flags != 0 {
			return nil, p.mirror(EAIBadFlags)
		}
		if hints.Family != AFInet && hints.Family != AFUnspec {
			return nil, p.mirror(EAIFamily)
		}
		if hints.SockType != 0 && hints.SockType != SockStream {
			return nil, p.mirror(EAISockType)
		}
	}

	var port uint16
	if service != "" {
		n, err := strconv.ParseUint(service, 10, 16)
		if err != nil {
			return nil, p.mirror(EAIService)
		}
		port = uint16(n)
	}

	timeout := p.LookupTimeout
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resolver := p.Resolver
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	addrs, err := resolver.LookupIPAddr(ctx, node)
	if err != nil {
		return nil, p.mirror(classifyDNS(err))
	}

	var head, tail *AddrInfo
	for _, a := range addrs {
		ip4 := a.IP.To4()
		if ip4 == nil {
			continue
		}
		var raw [4]byte
		copy(raw[:], ip4)
		rec := &AddrInfo{
			Family:   family,
			SockType: sotype,
			Protocol: ProtoTCP,
			AddrLen:  SizeofSockaddrIn,
			Addr:     NewSockaddrIn(raw, port),
		}
		if head == nil {
			head = rec
		} else {
			tail.Next = rec
		}
		tail = rec
	}
	if head == nil {
		return nil, p.mirror(EAINoName)
	}
	head.CanonName = node
	return head, nil
}

// FreeAddrInfo unlinks the chain so no record outlives the release.
func (p *POSIX) FreeAddrInfo(res *AddrInfo) {
	for res != nil {
		next := res.Next
		res.Next = nil
		res.Addr = nil
		res = next
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func classifyDNS(err error) EAIError {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		switch {
		case dnsErr.IsNotFound:
			return EAINoName
		case dnsErr.IsTimeout, dnsErr.IsTemporary:
			return EAIAgain
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return EAIAgain
	}
	return EAIFail
}

func toUnix(s *FdSet, nfd int) *unix.FdSet {
	if s == nil {
		return nil
	}
	out := &unix.FdSet{}
	for fd := 0; fd < nfd && fd < FdSetSize; fd++ {
		if s.IsSet(fd) {
			out.Set(fd)
		}
	}
	return out
}

func fromUnix(dst *FdSet, src *unix.FdSet, nfd int) {
	if dst == nil || src == nil {
		return
	}
	dst.Zero()
	for fd := 0; fd < nfd && fd < FdSetSize; fd++ {
		if src.IsSet(fd) {
			dst.Set(fd)
		}
	}
}
