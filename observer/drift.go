package observer

import "golang.org/x/exp/constraints"

// driftWindowSize is the fixed ring buffer capacity: the last 50 drift
// samples are retained, matching original_source's max_drift_samples.
const driftWindowSize = 50

// haltMeanDriftUs is the absolute mean-drift threshold, in microseconds,
// beyond which the system must HALT.
const haltMeanDriftUs = 500_000

// ring is a fixed-capacity circular buffer of ordered samples. Shaped
// after catrate's ringBuffer: read/write cursors mod capacity, oldest
// sample evicted once the buffer is full. Unlike catrate's generic,
// growable ring (power-of-2 sized, used for a sliding rate-limit window),
// this ring never grows past driftWindowSize — eviction, not resize, is
// the correct behavior for a rolling statistics window.
type ring[E constraints.Integer | constraints.Float] struct {
	buf  [driftWindowSize]E
	len  int
	next int // index the next Push writes to
}

func (r *ring[E]) Push(v E) {
	r.buf[r.next] = v
	r.next = (r.next + 1) % driftWindowSize
	if r.len < driftWindowSize {
		r.len++
	}
}

func (r *ring[E]) Len() int { return r.len }

// Get returns the i-th oldest sample currently retained, 0 <= i < Len().
func (r *ring[E]) Get(i int) E {
	start := r.next - r.len
	if start < 0 {
		start += driftWindowSize
	}
	return r.buf[(start+i)%driftWindowSize]
}

// DriftStats is a snapshot of the rolling drift window: sample mean,
// OLS slope against sample index, the count the stats were computed
// over, and whether the mean already crosses the window's HALT
// threshold.
type DriftStats struct {
	MeanUs      float64
	Slope       float64
	SampleCount int
	Halted      bool
}

// DriftWindow maintains a rolling window of per-packet clock drift
// (exchange_ts - local_epoch_ts, in microseconds) and computes mean and
// linear-regression slope over it, grounded on original_source's
// ObserverState.update_drift.
type DriftWindow struct {
	samples         ring[int64]
	haltThresholdUs int64
}

// NewDriftWindow returns an empty DriftWindow halting at the spec
// default of 500,000us mean drift.
func NewDriftWindow() *DriftWindow { return &DriftWindow{haltThresholdUs: haltMeanDriftUs} }

// NewDriftWindowWithThreshold returns an empty DriftWindow halting at a
// caller-supplied mean-drift threshold, for deployments that configure
// observer.drift_halt_threshold_us away from the spec default.
func NewDriftWindowWithThreshold(thresholdUs int64) *DriftWindow {
	return &DriftWindow{haltThresholdUs: thresholdUs}
}

// SetHaltThreshold overrides the window's halt threshold in place.
func (d *DriftWindow) SetHaltThreshold(thresholdUs int64) { d.haltThresholdUs = thresholdUs }

// Update pushes a new drift sample and returns the updated statistics.
func (d *DriftWindow) Update(driftUs int64) DriftStats {
	d.samples.Push(driftUs)
	n := d.samples.Len()

	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(d.samples.Get(i))
	}
	mean := 0.0
	if n > 0 {
		mean = sum / float64(n)
	}

	var slope float64
	if n > 1 {
		slope = olsSlope(d.samples, n)
	}

	absMean := mean
	if absMean < 0 {
		absMean = -absMean
	}
	threshold := d.haltThresholdUs
	if threshold == 0 {
		threshold = haltMeanDriftUs
	}

	return DriftStats{MeanUs: mean, Slope: slope, SampleCount: n, Halted: absMean > float64(threshold)}
}

// olsSlope computes the ordinary-least-squares slope of samples[i]
// against x=i, the same "index as x, drift as y" regression
// original_source performs via statistics.linear_regression.
func olsSlope(samples ring[int64], n int) float64 {
	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += float64(i)
		sumY += float64(samples.Get(i))
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var num, den float64
	for i := 0; i < n; i++ {
		dx := float64(i) - meanX
		dy := float64(samples.Get(i)) - meanY
		num += dx * dy
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}
