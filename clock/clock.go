// Package clock defines the two time domains the control plane is built
// on: a monotonic microsecond clock for local durations, and an epoch
// microsecond clock aligned with exchange-reported timestamps.
//
// The two domains are distinct Go types rather than plain int64 so that
// drift arithmetic — which is only meaningful between two EpochUs values —
// cannot accidentally be computed against a MonotonicUs reading. Mixing
// the domains is a compile error, not a runtime one.
package clock

import "time"

// MonotonicUs is a local monotonic timestamp in microseconds, relative to
// process start. It is never comparable to, or derived from, an exchange
// timestamp.
type MonotonicUs int64

// EpochUs is a wall-clock timestamp in microseconds since the Unix epoch,
// in the same domain as exchange-reported timestamps.
type EpochUs int64

// Sub returns the duration in microseconds between two MonotonicUs
// readings (a - b). Negative if b is after a.
func (a MonotonicUs) Sub(b MonotonicUs) int64 { return int64(a) - int64(b) }

// processStart anchors MonotonicUs to Go's internal monotonic clock
// reading (time.Now() carries a monotonic component until an arithmetic
// operation strips it; time.Since always uses it). This avoids exposing
// a raw OS monotonic counter, which the standard library deliberately
// does not provide outside of time.Time's internal representation.
var processStart = timeNow()

// NowMonotonic returns the current local monotonic time in microseconds,
// measured since process start. Use this, never NowEpoch, for measuring
// local durations (token bucket refill).
func NowMonotonic() MonotonicUs {
	return MonotonicUs(timeNow().Sub(processStart).Microseconds())
}

// NowEpoch returns the current wall-clock time in microseconds since the
// Unix epoch. Use this, never NowMonotonic, for anything compared against
// an exchange timestamp (drift, journal ordering).
func NowEpoch() EpochUs {
	return EpochUs(timeNow().UnixMicro())
}

// Drift computes exchange - local, both required to be EpochUs so the
// domains cannot be mixed. A positive drift means the exchange clock is
// ahead of the local clock.
func Drift(exchangeTs, localTs EpochUs) int64 {
	return int64(exchangeTs) - int64(localTs)
}

// timeNow is indirected so tests can substitute a fake, monotonically
// advancing clock without relying on real wall-clock sleeps.
var timeNow = time.Now
