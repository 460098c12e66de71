// Package errors provides the classified error types returned by the
// connect layer.
//
// Every failure a caller sees is one of three kinds: the hostname was
// rejected locally, name resolution failed, or no candidate address
// could be connected.  The latter two carry the stack's native result
// code and a snapshot of the mirrored last-error register taken right
// after the failing call.
package errors

import (
	"errors"
	"fmt"
	"syscall"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	ErrHostnameTooLong  = errors.New("hostname too long")
	ErrResolutionFailed = errors.New("name resolution failed")
	ErrConnectFailed    = errors.New("connect failed")
	ErrSocketClosed     = errors.New("socket is closed")
)

// ── Structured error types ───────────────────────────────────────────

// Kind classifies a NativeError.
type Kind int

const (
	KindResolution Kind = iota + 1
	KindConnect
)

func (k Kind) String() string {
	switch k {
	case KindResolution:
		return "resolution failed"
	case KindConnect:
		return "connect failed"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindResolution:
		return ErrResolutionFailed
	case KindConnect:
		return ErrConnectFailed
	}
	return nil
}

// NativeError is a failure reported by the socket stack.
type NativeError struct {
	Kind    Kind
	Op      string // operation, e.g. "tcp_connect"
	Code    int    // native result code of the failing call
	LastErr int32  // last-error register snapshot
}

func (e *NativeError) Error() string {
	return fmt.Sprintf("%s: %s (code %d, last error %d)", e.Op, e.Kind, e.Code, e.LastErr)
}

// Is matches the sentinel of e's kind.
func (e *NativeError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// HostnameTooLongError is produced by local length validation; it never
// involves the stack or the register.
type HostnameTooLongError struct {
	Length int
	Max    int
}

func (e *HostnameTooLongError) Error() string {
	return fmt.Sprintf("hostname too long: %d bytes (max %d)", e.Length, e.Max)
}

func (e *HostnameTooLongError) Is(target error) bool { return target == ErrHostnameTooLong }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// Classify builds the error for a non-zero native result.  It is a pure
// transformation: the register value must already be snapshotted.
func Classify(kind Kind, op string, code int, lastErr int32) *NativeError {
	return &NativeError{Kind: kind, Op: op, Code: code, LastErr: lastErr}
}

// HostnameTooLong builds the local validation error.
func HostnameTooLong(length, max int) *HostnameTooLongError {
	return &HostnameTooLongError{Length: length, Max: max}
}

// ── Classification helpers ───────────────────────────────────────────

// NativeCode extracts the stack's integer result code from err: 0 for
// nil, the errno for syscall errors, Code() for coded errors (resolver
// failures, NativeError) and -1 for anything else.
func NativeCode(err error) int {
	if err == nil {
		return 0
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return int(errno)
	}
	var ne *NativeError
	if errors.As(err, &ne) {
		return ne.Code
	}
	var c interface{ Code() int }
	if errors.As(err, &c) {
		return c.Code()
	}
	return -1
}

// IsHostnameTooLong reports whether err is a local hostname rejection.
func IsHostnameTooLong(err error) bool { return errors.Is(err, ErrHostnameTooLong) }

// IsResolutionFailed reports whether err is a resolution failure.
func IsResolutionFailed(err error) bool { return errors.Is(err, ErrResolutionFailed) }

// IsConnectFailed reports whether err means no candidate connected.
func IsConnectFailed(err error) bool { return errors.Is(err, ErrConnectFailed) }

// ── Re-exports for convenience ───────────────────────────────────────
//
// These allow callers to use modemconn/internal/errors as a drop-in
// replacement for the standard library in common operations.

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error { return errors.Unwrap(err) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
