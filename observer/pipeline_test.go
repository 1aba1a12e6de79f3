package observer

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shiva-129/OmniTrade-system/clock"
	"github.com/Shiva-129/OmniTrade-system/journal"
	"github.com/Shiva-129/OmniTrade-system/store"
)

// fakeIngestor replays a fixed slice of packets, then blocks until the
// context is canceled — mirroring a real Ingestor whose stream simply has
// no more data but stays connected.
type fakeIngestor struct {
	name    string
	packets []Packet
}

func (f *fakeIngestor) Name() string                    { return f.name }
func (f *fakeIngestor) Connect(ctx context.Context) error { return nil }
func (f *fakeIngestor) Close(ctx context.Context) error   { return nil }

func (f *fakeIngestor) Listen(ctx context.Context) (<-chan Packet, <-chan error) {
	packets := make(chan Packet, len(f.packets))
	errc := make(chan error, 1)
	go func() {
		for _, p := range f.packets {
			select {
			case packets <- p:
			case <-ctx.Done():
				return
			}
		}
	}()
	return packets, errc
}

func seqPtr(n int64) *int64 { return &n }

func newTestPipeline(t *testing.T, packets []Packet) (*Pipeline, store.Store) {
	t.Helper()
	journalPath := filepath.Join(t.TempDir(), "journal.jsonl")
	w, err := journal.NewWriter(journalPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	st := store.NewMemoryStore()
	ing := &fakeIngestor{name: "ws:test", packets: packets}
	return NewPipeline([]Ingestor{ing}, w, st, 16), st
}

// TestSequenceGapPromotesDegraded exercises spec.md §8 scenario 3:
// packets with sequence ids [1, 2, 5] on the same (source, topic) key
// produce one GAP with expected=3, got=5, gap=2, and the system status
// moves to DEGRADED.
//
// Run's shutdown task forces a HALT transition on any context
// cancellation (spec.md §5), so this test must observe DEGRADED directly
// off the running pipeline before it cancels the context — reading the
// store only after Run returns would always see the post-shutdown HALT,
// not the DEGRADED transition this test exists to verify.
func TestSequenceGapPromotesDegraded(t *testing.T) {
	packets := []Packet{
		{Source: "ws:test", Topic: "trades", SequenceID: seqPtr(1), LocalEpochTs: clock.NowEpoch()},
		{Source: "ws:test", Topic: "trades", SequenceID: seqPtr(2), LocalEpochTs: clock.NowEpoch()},
		{Source: "ws:test", Topic: "trades", SequenceID: seqPtr(5), LocalEpochTs: clock.NowEpoch()},
	}
	pipeline, st := newTestPipeline(t, packets)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- pipeline.Run(ctx) }()

	require.Eventually(t, func() bool {
		return pipeline.Status() == StatusDegraded
	}, time.Second, 5*time.Millisecond, "expected pipeline to reach DEGRADED")
	assert.Equal(t, StatusDegraded, pipeline.Status())

	gapCount, err := st.IncrInt(context.Background(), store.KeyObserverGapCount, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, gapCount)

	cancel()
	<-done
}

// TestDriftHaltsAfterSustainedOffset exercises spec.md §8 scenario 4: 50
// packets each with drift = 600,000us push the rolling mean past the
// 500,000us threshold and the system transitions to HALT.
//
// Like the gap test above, this asserts HALT by polling the pipeline
// directly and canceling only once it has already transitioned — since
// Run also forces HALT on shutdown regardless of drift, asserting
// post-cancellation would pass even with drift-halt detection deleted.
func TestDriftHaltsAfterSustainedOffset(t *testing.T) {
	packets := make([]Packet, 50)
	for i := range packets {
		packets[i] = Packet{
			Source:       "ws:test",
			Topic:        "trades",
			DriftUs:      600_000,
			LocalEpochTs: clock.NowEpoch(),
		}
	}
	pipeline, _ := newTestPipeline(t, packets)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- pipeline.Run(ctx) }()

	require.Eventually(t, func() bool {
		return pipeline.Status() == StatusHalt
	}, time.Second, 5*time.Millisecond, "expected pipeline to reach HALT from drift detection")
	assert.Equal(t, StatusHalt, pipeline.Status())

	cancel()
	<-done
}
