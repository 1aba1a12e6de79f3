package observer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDriftWindowMean(t *testing.T) {
	w := NewDriftWindow()
	var stats DriftStats
	for _, v := range []int64{100, 200, 300} {
		stats = w.Update(v)
	}
	assert.Equal(t, 3, stats.SampleCount)
	assert.InDelta(t, 200.0, stats.MeanUs, 0.001)
}

func TestDriftWindowEvictsOldest(t *testing.T) {
	w := NewDriftWindow()
	for i := 0; i < driftWindowSize+10; i++ {
		w.Update(int64(i))
	}
	stats := w.Update(0)
	assert.Equal(t, driftWindowSize, stats.SampleCount)
}

func TestDriftWindowHaltThreshold(t *testing.T) {
	w := NewDriftWindow()
	stats := w.Update(600_000)
	assert.True(t, stats.Halted)

	w2 := NewDriftWindow()
	stats2 := w2.Update(100)
	assert.False(t, stats2.Halted)
}

func TestDriftWindowCustomThreshold(t *testing.T) {
	w := NewDriftWindowWithThreshold(1_000)
	stats := w.Update(1_500)
	assert.True(t, stats.Halted)

	w2 := NewDriftWindow()
	w2.SetHaltThreshold(1_000)
	stats2 := w2.Update(1_500)
	assert.True(t, stats2.Halted)
}

func TestDriftWindowSlopeIncreasing(t *testing.T) {
	w := NewDriftWindow()
	var stats DriftStats
	for i := int64(0); i < 5; i++ {
		stats = w.Update(i * 100)
	}
	assert.Greater(t, stats.Slope, 0.0)
}
