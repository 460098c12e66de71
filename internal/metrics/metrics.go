// Package metrics provides lightweight, lock-free counters for the
// connect layer: resolutions, candidate attempts and their outcomes.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks connect-layer statistics.
// A nil Collector is safe to use — all methods become no-ops.
type Collector struct {
	resolutions     atomic.Int64
	resolveFailures atomic.Int64
	attempts        atomic.Int64
	connected       atomic.Int64
	refused         atomic.Int64
	timeouts        atomic.Int64
	errorsTotal     atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastConnect  time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Resolution ───────────────────────────────────────────────────────

// Resolved records one resolver call and whether it produced records.
func (c *Collector) Resolved(ok bool) {
	if c == nil {
		return
	}
	c.resolutions.Add(1)
	if !ok {
		c.resolveFailures.Add(1)
	}
}

// Resolutions returns the number of resolver calls.
func (c *Collector) Resolutions() int64 {
	if c == nil {
		return 0
	}
	return c.resolutions.Load()
}

// ResolveFailures returns the number of failed resolver calls.
func (c *Collector) ResolveFailures() int64 {
	if c == nil {
		return 0
	}
	return c.resolveFailures.Load()
}

// ── Candidate attempts ───────────────────────────────────────────────

// AttemptStarted counts one candidate connect.
func (c *Collector) AttemptStarted() {
	if c == nil {
		return
	}
	c.attempts.Add(1)
}

// Connected records a successful candidate.
func (c *Collector) Connected() {
	if c == nil {
		return
	}
	c.connected.Add(1)
	c.mu.Lock()
	c.lastConnect = time.Now()
	c.mu.Unlock()
}

// AttemptFailed records a candidate that reported a socket error.
func (c *Collector) AttemptFailed() {
	if c == nil {
		return
	}
	c.refused.Add(1)
}

// TimedOut records a candidate whose readiness wait expired.
func (c *Collector) TimedOut() {
	if c == nil {
		return
	}
	c.timeouts.Add(1)
}

// Attempts returns the total number of candidate connects.
func (c *Collector) Attempts() int64 {
	if c == nil {
		return 0
	}
	return c.attempts.Load()
}

// Connects returns the number of successful candidates.
func (c *Collector) Connects() int64 {
	if c == nil {
		return 0
	}
	return c.connected.Load()
}

// Failures returns the number of candidates that failed outright.
func (c *Collector) Failures() int64 {
	if c == nil {
		return 0
	}
	return c.refused.Load()
}

// Timeouts returns the number of timed-out candidates.
func (c *Collector) Timeouts() int64 {
	if c == nil {
		return 0
	}
	return c.timeouts.Load()
}

// ── Error metrics ────────────────────────────────────────────────────

// RecordError increments the error counter and stores the message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.errorsTotal.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ErrorCount returns the total number of errors recorded.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.errorsTotal.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime           string `json:"uptime"`
	Resolutions      int64  `json:"resolutions"`
	ResolveFailures  int64  `json:"resolve_failures"`
	Attempts         int64  `json:"attempts"`
	Connected        int64  `json:"connected"`
	Failed           int64  `json:"failed"`
	TimedOut         int64  `json:"timed_out"`
	ErrorsTotal      int64  `json:"errors_total"`
	LastConnect      string `json:"last_connect,omitempty"`
	LastError        string `json:"last_error,omitempty"`
	LastErrorMessage string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:          time.Since(c.startTime).Truncate(time.Second).String(),
		Resolutions:     c.resolutions.Load(),
		ResolveFailures: c.resolveFailures.Load(),
		Attempts:        c.attempts.Load(),
		Connected:       c.connected.Load(),
		Failed:          c.refused.Load(),
		TimedOut:        c.timeouts.Load(),
		ErrorsTotal:     c.errorsTotal.Load(),
	}
	if !c.lastConnect.IsZero() {
		s.LastConnect = c.lastConnect.Format(time.RFC3339)
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as JSON, indented when indent is true.
func (c *Collector) JSON(indent bool) string {
	s := c.Snapshot()
	var data []byte
	if indent {
		data, _ = json.MarshalIndent(s, "", "  ")
	} else {
		data, _ = json.Marshal(s)
	}
	return string(data)
}
