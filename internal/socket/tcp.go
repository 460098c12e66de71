package socket

import (
	"fmt"

	ncerr "modemconn/internal/errors"
	"modemconn/internal/lasterr"
	"modemconn/internal/metrics"
	"modemconn/internal/resolver"
	"modemconn/internal/stack"
	"modemconn/util"
)

const opTCPConnect = "tcp_connect"

// TCPSocket is a stream socket that connects by hostname.
type TCPSocket struct {
	*Socket

	// LastErr is the register mirrored by the stack (lasterr.Default
	// unless overridden).
	LastErr lasterr.Reader
	// Metrics counts resolutions and attempts; nil disables counting.
	Metrics *metrics.Collector
}

// NewTCPSocket opens an IPv4 stream socket on st.
func NewTCPSocket(st stack.Stack) (*TCPSocket, error) {
	s, err := Open(st, stack.AFInet, stack.SockStream, stack.ProtoTCP)
	if err != nil {
		return nil, err
	}
	return &TCPSocket{Socket: s, LastErr: lasterr.Default}, nil
}

// Connect resolves hostname and tries each IPv4 address in resolver
// order until one accepts a connection on port.  Every candidate gets
// the full timeout (in seconds); the first candidate that times out ends
// the whole call.
//
// The returned error is a *errors.HostnameTooLongError or a
// *errors.NativeError of kind KindResolution or KindConnect.  After a
// resolution failure, or when every candidate was refused, the socket
// may be used for another Connect.  After a timeout the handshake may
// still be pending on the descriptor: close the socket instead of
// reusing it; a later Connect on it fails with EALREADY or EISCONN.
func (t *TCPSocket) Connect(hostname string, port uint16, timeout uint32) error {
	log := t.logger()
	if t.Closed() {
		return fmt.Errorf("%s: %w", opTCPConnect, ncerr.ErrSocketClosed)
	}

	log.Debug("connecting via TCP to %s", util.FormatAddr(hostname, int(port)))

	if err := resolver.ValidateHostname(hostname); err != nil {
		t.Metrics.RecordError(err.Error())
		return err
	}

	chain, err := resolver.Resolve(t.st, hostname)
	if err != nil {
		last := lasterr.Snapshot(t.LastErr)
		t.Metrics.Resolved(false)
		cerr := ncerr.Classify(ncerr.KindResolution, opTCPConnect, ncerr.NativeCode(err), last)
		log.Verbose("resolving %s: %v", hostname, err)
		t.Metrics.RecordError(cerr.Error())
		return cerr
	}
	t.Metrics.Resolved(true)

	code, last := t.connectChain(chain, port, timeout)
	if code != 0 {
		cerr := ncerr.Classify(ncerr.KindConnect, opTCPConnect, code, last)
		t.Metrics.RecordError(cerr.Error())
		return cerr
	}
	return nil
}

// connectChain walks chain and releases it before returning.  It returns
// the code of the last attempt and the register snapshot taken right
// after it failed.
func (t *TCPSocket) connectChain(chain *resolver.Chain, port uint16, timeout uint32) (code int, last int32) {
	defer chain.Release()

	log := t.logger()
	code = -1
	for rec := range chain.All() {
		sa := rec.Candidate(port)
		log.Debug("trying IP address %s", sa)

		t.Metrics.AttemptStarted()
		out := t.connectCandidate(sa, timeout, t.LastErr)
		code = out.Code

		switch out.State {
		case Connected:
			t.Metrics.Connected()
			log.Verbose("connected to %s", sa)
			return 0, 0
		case TimedOut:
			last = out.LastErr
			t.Metrics.TimedOut()
			log.Verbose("%s: no answer within %ds, not trying further addresses", sa, timeout)
			return code, last
		default:
			last = out.LastErr
			t.Metrics.AttemptFailed()
			log.Verbose("%s: failed (code %d)", sa, code)
		}
	}
	return code, last
}
