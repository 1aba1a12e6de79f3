package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNowMonotonicIsMonotonic(t *testing.T) {
	t1 := NowMonotonic()
	time.Sleep(time.Millisecond)
	t2 := NowMonotonic()
	require.Greater(t, int64(t2), int64(t1))
}

func TestDrift(t *testing.T) {
	var local EpochUs = 1000
	var exchange EpochUs = 1500
	assert.Equal(t, int64(500), Drift(exchange, local))
	assert.Equal(t, int64(-500), Drift(local, exchange))
}

func TestMonotonicUsSub(t *testing.T) {
	a := MonotonicUs(1_500_000)
	b := MonotonicUs(1_000_000)
	assert.Equal(t, int64(500_000), a.Sub(b))
}
