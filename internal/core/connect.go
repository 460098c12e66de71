package core

import (
	"context"
	"fmt"
	"io"
	"os"

	"modemconn/internal/lasterr"
	"modemconn/internal/metrics"
	"modemconn/internal/socket"
	"modemconn/internal/stack"
	"modemconn/util"
)

// ConnectMode opens a TCP socket on Stack, connects it to Host:Port and
// reports the outcome.  The socket is closed when Run returns.
type ConnectMode struct {
	Stack   stack.Stack
	Host    string
	Port    uint16
	Timeout uint32 // seconds, per candidate
	Logger  *util.Logger
	Metrics *metrics.Collector

	// LastErr overrides the register read after failures; nil keeps
	// lasterr.Default.
	LastErr lasterr.Reader

	// Stdout defaults to os.Stdout when nil.
	Stdout io.Writer
}

func (m *ConnectMode) stdout() io.Writer {
	if m.Stdout != nil {
		return m.Stdout
	}
	return os.Stdout
}

func (m *ConnectMode) logger() *util.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return util.Discard()
}

// Run performs one blocking connect.  The context is only consulted
// before the socket is opened: an in-flight connect is bounded by
// Timeout, not by cancellation.
func (m *ConnectMode) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	log := m.logger()
	address := util.FormatAddr(m.Host, int(m.Port))

	sock, err := socket.NewTCPSocket(m.Stack)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", address, err)
	}
	defer func() {
		if err := sock.Close(); err != nil {
			log.Warn("closing socket: %v", err)
		}
	}()

	sock.Logger = log.Named("tcp")
	sock.Metrics = m.Metrics
	if m.LastErr != nil {
		sock.LastErr = m.LastErr
	}

	log.Verbose("connecting to %s (timeout %ds per address)", address, m.Timeout)
	if err := sock.Connect(m.Host, m.Port, m.Timeout); err != nil {
		return fmt.Errorf("connect to %s: %w", address, err)
	}

	fmt.Fprintf(m.stdout(), "connected to %s\n", address)
	return nil
}
