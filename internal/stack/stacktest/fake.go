// Package stacktest provides a scriptable in-memory socket stack for
// exercising the connect layer without a network.
package stacktest

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"modemconn/internal/lasterr"
	"modemconn/internal/stack"
)

// Candidate scripts what happens when the fake connects to one address.
type Candidate struct {
	Addr [4]byte

	// ConnectErr is returned by Connect (default unix.EINPROGRESS).
	// Use NoError for a connect that completes immediately.
	ConnectErr error
	// Ready is the Select result: 1 = writable (default), 0 = timed out.
	// Any other value simulates a descriptor anomaly.
	Ready *int
	// SelectErr, when set, makes Select fail.
	SelectErr error
	// SoError is reported through SocketError once writable.
	SoError uint16
}

// NoError marks a Candidate whose Connect returns nil.
var NoError = &noError{} //nolint:gochecknoglobals

type noError struct{}

func (*noError) Error() string { return "no error" }

// Int returns a pointer to v, for Candidate.Ready.
func Int(v int) *int { return &v }

// Fake implements stack.Stack.  All counters are safe to read after the
// call under test returns.
type Fake struct {
	// Register receives mirrored failures (a private one if nil).
	Register *lasterr.Register

	// Candidates is the resolution result, in order.  Empty means the
	// lookup fails with ResolveErr (default stack.EAINoName).
	Candidates []Candidate
	ResolveErr error
	// EmptyChain makes GetAddrInfo succeed with a nil chain.
	EmptyChain bool

	// GetFlagsErr / SetFlagsErr make the flag calls fail.
	GetFlagsErr error
	SetFlagsErr error
	// RestoreErr fails only the SetFlags call that clears O_NONBLOCK.
	RestoreErr error

	// InitialFlags is the flag word of every new descriptor.
	InitialFlags int
	// FirstFd is the first descriptor handed out (default 3).
	FirstFd int

	mu       sync.Mutex
	nextFd   int
	open     map[int]bool
	flags    map[int]int
	target   map[int]int // fd → candidate index
	chains   map[*stack.AddrInfo]bool
	attempts []Attempt

	Resolves      int
	Frees         int
	DoubleFrees   int
	SetFlagsCalls int
	Selects       int
	LastHints     stack.AddrInfo
	LastNode      string
	LastTimeout   time.Duration
}

// Attempt records one Connect call.
type Attempt struct {
	Fd          int
	Addr        stack.SockaddrIn
	Nonblocking bool
}

var _ stack.Stack = (*Fake)(nil)

func (f *Fake) init() {
	if f.open == nil {
		f.open = make(map[int]bool)
		f.flags = make(map[int]int)
		f.target = make(map[int]int)
		f.chains = make(map[*stack.AddrInfo]bool)
		f.nextFd = 3
		if f.FirstFd > 0 {
			f.nextFd = f.FirstFd
		}
	}
	if f.Register == nil {
		f.Register = &lasterr.Register{}
	}
}

func (f *Fake) fail(err error) error {
	switch e := err.(type) {
	case unix.Errno:
		f.Register.Store(int32(e))
	case stack.EAIError:
		f.Register.Store(int32(e))
	}
	return err
}

// Socket hands out increasing descriptors starting at FirstFd.
func (f *Fake) Socket(_, _, _ int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	fd := f.nextFd
	f.nextFd++
	f.open[fd] = true
	f.flags[fd] = f.InitialFlags
	f.target[fd] = -1
	return fd, nil
}

func (f *Fake) Close(fd int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	if !f.open[fd] {
		return f.fail(unix.EBADF)
	}
	delete(f.open, fd)
	return nil
}

func (f *Fake) GetFlags(fd int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	if f.GetFlagsErr != nil {
		return 0, f.fail(f.GetFlagsErr)
	}
	if !f.open[fd] {
		return 0, f.fail(unix.EBADF)
	}
	return f.flags[fd], nil
}

func (f *Fake) SetFlags(fd, flags int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	f.SetFlagsCalls++
	if f.SetFlagsErr != nil {
		return f.fail(f.SetFlagsErr)
	}
	if !f.open[fd] {
		return f.fail(unix.EBADF)
	}
	if f.RestoreErr != nil && f.flags[fd]&stack.FlagNonblock != 0 && flags&stack.FlagNonblock == 0 {
		return f.fail(f.RestoreErr)
	}
	f.flags[fd] = flags
	return nil
}

// Connect matches sa against the scripted candidates by address.
func (f *Fake) Connect(fd int, sa *stack.SockaddrIn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	if !f.open[fd] {
		return f.fail(unix.EBADF)
	}
	f.attempts = append(f.attempts, Attempt{
		Fd:          fd,
		Addr:        *sa,
		Nonblocking: f.flags[fd]&stack.FlagNonblock != 0,
	})
	f.target[fd] = -1
	for i, c := range f.Candidates {
		if c.Addr == sa.Addr {
			f.target[fd] = i
			switch {
			case c.ConnectErr == NoError:
				return nil
			case c.ConnectErr != nil:
				return f.fail(c.ConnectErr)
			default:
				return f.fail(unix.EINPROGRESS)
			}
		}
	}
	return f.fail(unix.ENETUNREACH)
}

// Select reports the scripted readiness of the first descriptor in w.
func (f *Fake) Select(nfd int, r, w, e *stack.FdSet, timeout time.Duration) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	f.Selects++
	f.LastTimeout = timeout

	fd := -1
	for i := 0; i < nfd && w != nil; i++ {
		if w.IsSet(i) {
			fd = i
			break
		}
	}
	if fd < 0 || !f.open[fd] {
		return -1, f.fail(unix.EBADF)
	}
	if r != nil {
		r.Zero()
	}
	if e != nil {
		e.Zero()
	}

	idx := f.target[fd]
	if idx < 0 {
		w.Zero()
		return 0, nil
	}
	c := f.Candidates[idx]
	if c.SelectErr != nil {
		return -1, f.fail(c.SelectErr)
	}
	ready := 1
	if c.Ready != nil {
		ready = *c.Ready
	}
	if ready == 0 {
		w.Zero()
	}
	return ready, nil
}

func (f *Fake) SocketError(fd int) (uint16, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	if !f.open[fd] {
		return 0, f.fail(unix.EBADF)
	}
	idx := f.target[fd]
	if idx < 0 {
		return uint16(unix.ENETUNREACH), nil
	}
	so := f.Candidates[idx].SoError
	if so != 0 {
		f.Register.Store(int32(so))
	}
	return so, nil
}

func (f *Fake) GetAddrInfo(node, _ string, hints *stack.AddrInfo) (*stack.AddrInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	f.Resolves++
	f.LastNode = node
	if hints != nil {
		f.LastHints = *hints
	}
	if f.EmptyChain {
		return nil, nil
	}
	if len(f.Candidates) == 0 {
		err := f.ResolveErr
		if err == nil {
			err = stack.EAINoName
		}
		return nil, f.fail(err)
	}

	var head, tail *stack.AddrInfo
	for _, c := range f.Candidates {
		rec := &stack.AddrInfo{
			Family:   stack.AFInet,
			SockType: stack.SockStream,
			AddrLen:  stack.SizeofSockaddrIn,
			// Port placeholder, as returned without a service.
			Addr: stack.NewSockaddrIn(c.Addr, 0),
		}
		if head == nil {
			head = rec
		} else {
			tail.Next = rec
		}
		tail = rec
	}
	f.chains[head] = true
	return head, nil
}

func (f *Fake) FreeAddrInfo(res *stack.AddrInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.init()
	if !f.chains[res] {
		f.DoubleFrees++
		return
	}
	delete(f.chains, res)
	f.Frees++
}

// ── inspection ───────────────────────────────────────────────────────

// Attempts returns a copy of every Connect call so far.
func (f *Fake) Attempts() []Attempt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Attempt(nil), f.attempts...)
}

// Flags returns the current flag word of fd.
func (f *Fake) Flags(fd int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flags[fd]
}

// Outstanding is the number of resolved chains not yet freed.
func (f *Fake) Outstanding() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.chains)
}

// IsOpen reports whether fd is an open descriptor.
func (f *Fake) IsOpen(fd int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open[fd]
}
