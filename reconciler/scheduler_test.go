package reconciler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shiva-129/OmniTrade-system/decimal"
	"github.com/Shiva-129/OmniTrade-system/gatekeeper"
	"github.com/Shiva-129/OmniTrade-system/store"
)

func TestSchedulerTicksRepeatedly(t *testing.T) {
	st := store.NewMemoryStore()
	stateController := gatekeeper.NewStateController(st)
	guard := gatekeeper.NewExecutionGuard(st)
	engine := gatekeeper.NewReconciliationEngine(stateController, guard)

	var calls int
	snapshot := func(context.Context) (map[string]*decimal.Decimal, error) {
		calls++
		return map[string]*decimal.Decimal{"X": decimal.Zero()}, nil
	}

	sched := NewScheduler(engine, snapshot, decimal.Zero(), 10*time.Millisecond)
	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sched.Run(runCtx) }()

	require.Eventually(t, func() bool { return calls >= 3 }, time.Second, 5*time.Millisecond,
		"expected scheduler to tick at least 3 times")

	cancel()
	require.NoError(t, <-done)
	assert.False(t, guard.InSafeMode())
}

func TestSchedulerStopsOnCancel(t *testing.T) {
	st := store.NewMemoryStore()
	stateController := gatekeeper.NewStateController(st)
	guard := gatekeeper.NewExecutionGuard(st)
	engine := gatekeeper.NewReconciliationEngine(stateController, guard)

	snapshot := func(context.Context) (map[string]*decimal.Decimal, error) {
		return map[string]*decimal.Decimal{}, nil
	}

	sched := NewScheduler(engine, snapshot, decimal.Zero(), time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sched.Run(ctx)
	require.NoError(t, err)
}
