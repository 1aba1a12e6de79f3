package observer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceTrackerFirstObservationNotGap(t *testing.T) {
	tr := NewSequenceTracker()
	r := tr.Observe("binance:BTC-USDT", 1)
	assert.False(t, r.IsGap)
	assert.False(t, r.IsStale)
}

func TestSequenceTrackerDetectsGap(t *testing.T) {
	tr := NewSequenceTracker()
	tr.Observe("binance:BTC-USDT", 1)
	r := tr.Observe("binance:BTC-USDT", 5)
	assert.True(t, r.IsGap)
	assert.EqualValues(t, 2, r.Expected)
	assert.EqualValues(t, 3, r.GapSize)
}

func TestSequenceTrackerDetectsStale(t *testing.T) {
	tr := NewSequenceTracker()
	tr.Observe("binance:BTC-USDT", 5)
	r := tr.Observe("binance:BTC-USDT", 3)
	assert.True(t, r.IsStale)
}

func TestSequenceTrackerDetectsDuplicate(t *testing.T) {
	tr := NewSequenceTracker()
	tr.Observe("binance:BTC-USDT", 5)
	r := tr.Observe("binance:BTC-USDT", 5)
	assert.True(t, r.IsDuplicate)
	assert.False(t, r.IsGap)
	assert.False(t, r.IsStale)
}

// TestSequenceTrackerStaleArrivalDoesNotRewind guards spec.md §4.3.1's
// explicit "do NOT rewind the tracker" rule: a stale arrival after a gap
// must never reset `last`, or a later in-order packet would recompute a
// phantom gap against the stale value instead of the true last-seen id.
func TestSequenceTrackerStaleArrivalDoesNotRewind(t *testing.T) {
	tr := NewSequenceTracker()
	tr.Observe("k", 1)
	tr.Observe("k", 2)
	gap := tr.Observe("k", 5) // gap: expected 3, got 5
	assert.True(t, gap.IsGap)
	assert.EqualValues(t, 5, gap.Got)

	stale := tr.Observe("k", 3) // arrives late, after the gap was already flagged
	assert.True(t, stale.IsStale)

	next := tr.Observe("k", 6)
	assert.False(t, next.IsGap, "a stale arrival must not rewind last, or 6 would wrongly re-gap against 3")
}

func TestSequenceTrackerDuplicateDoesNotRewind(t *testing.T) {
	tr := NewSequenceTracker()
	tr.Observe("k", 1)
	tr.Observe("k", 2)
	dup := tr.Observe("k", 2)
	assert.True(t, dup.IsDuplicate)

	next := tr.Observe("k", 3)
	assert.False(t, next.IsGap)
}

func TestSequenceTrackerSequentialIsClean(t *testing.T) {
	tr := NewSequenceTracker()
	tr.Observe("k", 1)
	r := tr.Observe("k", 2)
	assert.False(t, r.IsGap)
	assert.False(t, r.IsStale)
}

func TestSequenceTrackerKeysIndependent(t *testing.T) {
	tr := NewSequenceTracker()
	tr.Observe("a", 10)
	r := tr.Observe("b", 1)
	assert.False(t, r.IsGap)
}
