package util

import (
	"math"
	"net"
	"strconv"
	"time"
)

// FormatAddr returns "host:port".
func FormatAddr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// SecondsCeil converts a duration to whole seconds, rounding any
// fraction up so a non-zero duration never becomes a zero timeout.
func SecondsCeil(d time.Duration) uint32 {
	if d <= 0 {
		return 0
	}
	s := (d + time.Second - 1) / time.Second
	if s > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(s)
}
