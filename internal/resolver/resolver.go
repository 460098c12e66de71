// Package resolver adapts the stack's name resolution into an owned
// address chain.
//
// A Chain is a resource handle: whoever resolves owns it and must call
// Release exactly once.  Iteration never transfers ownership of the
// records; All yields copies and can be restarted until the chain is
// released.
package resolver

import (
	"iter"

	ncerr "modemconn/internal/errors"
	"modemconn/internal/stack"
)

// MaxHostnameLen is the longest hostname accepted.  The modem copies the
// name into a 64-byte buffer that must also hold the terminating NUL.
const MaxHostnameLen = hostnameBufSize - 1

const hostnameBufSize = 64

// Record is a read-only copy of one resolved address.
type Record struct {
	Family  int
	AddrLen uint32
	Addr    [4]byte
}

// Candidate builds the address to connect to: the record's address bytes
// and length tag with the requested port in network byte order.
func (r Record) Candidate(port uint16) *stack.SockaddrIn {
	sa := stack.NewSockaddrIn(r.Addr, port)
	if r.AddrLen != 0 && r.AddrLen <= 0xff {
		sa.Len = uint8(r.AddrLen)
	}
	return sa
}

// Chain owns the records returned by one resolution.
type Chain struct {
	st       stack.Resolver
	head     *stack.AddrInfo
	released bool
}

// Hints returns the lookup hints used for TCP connects: IPv4 stream
// sockets, no flags.
func Hints() *stack.AddrInfo {
	return &stack.AddrInfo{Family: stack.AFInet, SockType: stack.SockStream}
}

// ValidateHostname rejects names that do not fit the resolver buffer.
func ValidateHostname(hostname string) error {
	if len(hostname) > MaxHostnameLen {
		return ncerr.HostnameTooLong(len(hostname), MaxHostnameLen)
	}
	return nil
}

// Resolve looks up hostname through st.  A successful call returns a
// non-empty Chain; a nil-chain success is reported as stack.EAINoName.
// Over-long names fail before st is consulted.
func Resolve(st stack.Resolver, hostname string) (*Chain, error) {
	if err := ValidateHostname(hostname); err != nil {
		return nil, err
	}

	head, err := st.GetAddrInfo(hostname, "", Hints())
	if err != nil {
		if head != nil {
			st.FreeAddrInfo(head)
		}
		return nil, err
	}
	if head == nil {
		return nil, stack.EAINoName
	}
	return &Chain{st: st, head: head}, nil
}

// All yields every record head to tail.  After Release it yields nothing.
func (c *Chain) All() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		if c == nil || c.released {
			return
		}
		for ai := c.head; ai != nil; ai = ai.Next {
			rec := Record{Family: ai.Family, AddrLen: ai.AddrLen}
			if ai.Addr != nil {
				rec.Addr = ai.Addr.Addr
			}
			if !yield(rec) {
				return
			}
		}
	}
}

// Len counts the records.
func (c *Chain) Len() int {
	n := 0
	for range c.All() {
		n++
	}
	return n
}

// Release hands the chain back to the stack.  Further calls are no-ops.
func (c *Chain) Release() {
	if c == nil || c.released {
		return
	}
	c.released = true
	c.st.FreeAddrInfo(c.head)
	c.head = nil
}
