package gatekeeper

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shiva-129/OmniTrade-system/clock"
	"github.com/Shiva-129/OmniTrade-system/decimal"
	"github.com/Shiva-129/OmniTrade-system/store"
)

func connectedStore(t *testing.T) store.Store {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.SetString(ctx, store.KeyObserverStatus, "CONNECTED"))
	require.NoError(t, st.SetString(ctx, store.KeyObserverLastUpdate, strconv.FormatInt(int64(clock.NowEpoch()), 10)))
	return st
}

func TestIdempotentSubmit(t *testing.T) {
	ctx := context.Background()
	gk := NewGatekeeper(connectedStore(t), NewMemoryRegistry())

	intent := OrderIntent{ClientOrderID: "A", Side: SideBuy, Symbol: "X", Quantity: decimal.MustParse("1.0"), Price: decimal.MustParse("100")}

	r1, err := gk.SubmitIntent(ctx, intent)
	require.NoError(t, err)
	assert.Equal(t, SubmitAccepted, r1)

	r2, err := gk.SubmitIntent(ctx, intent)
	require.NoError(t, err)
	assert.Equal(t, SubmitDuplicate, r2)
}

func TestFillAccumulation(t *testing.T) {
	ctx := context.Background()
	gk := NewGatekeeper(connectedStore(t), NewMemoryRegistry())

	require.NoError(t, gk.ProcessExecutionReport(ctx, ExecutionReport{
		ClientOrderID: "A", Symbol: "X", Side: SideBuy, Status: ReportPartialFill,
		FilledQuantity: decimal.MustParse("0.4"),
	}))
	require.NoError(t, gk.ProcessExecutionReport(ctx, ExecutionReport{
		ClientOrderID: "A", Symbol: "X", Side: SideBuy, Status: ReportFilled,
		FilledQuantity: decimal.MustParse("0.6"),
	}))

	pos, err := gk.StateController.GetPosition(ctx, "X")
	require.NoError(t, err)
	assert.Equal(t, "1.0", decimal.String(pos))
}

func TestSellReducesPosition(t *testing.T) {
	ctx := context.Background()
	gk := NewGatekeeper(connectedStore(t), NewMemoryRegistry())

	require.NoError(t, gk.ProcessExecutionReport(ctx, ExecutionReport{
		ClientOrderID: "A", Symbol: "Y", Side: SideBuy, Status: ReportFilled,
		FilledQuantity: decimal.MustParse("5"),
	}))
	require.NoError(t, gk.ProcessExecutionReport(ctx, ExecutionReport{
		ClientOrderID: "B", Symbol: "Y", Side: SideSell, Status: ReportFilled,
		FilledQuantity: decimal.MustParse("2"),
	}))

	pos, err := gk.StateController.GetPosition(ctx, "Y")
	require.NoError(t, err)
	assert.Equal(t, "3", decimal.String(pos))
}

func TestGuardRejectsWhenObserverNotConnected(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.SetString(ctx, store.KeyObserverStatus, "DEGRADED"))
	require.NoError(t, st.SetString(ctx, store.KeyObserverLastUpdate, "0"))
	gk := NewGatekeeper(st, NewMemoryRegistry())

	_, err := gk.SubmitIntent(ctx, OrderIntent{ClientOrderID: "A", Quantity: decimal.MustParse("1")})
	require.Error(t, err)
}

func TestGuardRateLimitRejectsAfterBurst(t *testing.T) {
	ctx := context.Background()
	gk := NewGatekeeper(connectedStore(t), NewMemoryRegistry())
	gk.Guard.rateLimiter = NewTokenBucket(0, 2)

	for i := 0; i < 2; i++ {
		_, err := gk.SubmitIntent(ctx, OrderIntent{ClientOrderID: string(rune('A' + i)), Quantity: decimal.MustParse("1")})
		require.NoError(t, err)
	}
	_, err := gk.SubmitIntent(ctx, OrderIntent{ClientOrderID: "Z", Quantity: decimal.MustParse("1")})
	require.Error(t, err)
}

func TestReconciliationActivatesSafeModeOnDrift(t *testing.T) {
	ctx := context.Background()
	gk := NewGatekeeper(connectedStore(t), NewMemoryRegistry())

	require.NoError(t, gk.ProcessExecutionReport(ctx, ExecutionReport{
		ClientOrderID: "A", Symbol: "X", Side: SideBuy, Status: ReportFilled,
		FilledQuantity: decimal.MustParse("1.0"),
	}))

	err := gk.Reconciliation.Reconcile(ctx, map[string]*decimal.Decimal{"X": decimal.MustParse("2.0")}, decimal.Zero())
	require.Error(t, err)
	assert.True(t, gk.Guard.InSafeMode())

	_, submitErr := gk.SubmitIntent(ctx, OrderIntent{ClientOrderID: "B", Quantity: decimal.MustParse("1")})
	require.Error(t, submitErr)
}

func TestReconciliationPassesWithinTolerance(t *testing.T) {
	ctx := context.Background()
	gk := NewGatekeeper(connectedStore(t), NewMemoryRegistry())

	require.NoError(t, gk.ProcessExecutionReport(ctx, ExecutionReport{
		ClientOrderID: "A", Symbol: "X", Side: SideBuy, Status: ReportFilled,
		FilledQuantity: decimal.MustParse("1.0"),
	}))

	err := gk.Reconciliation.Reconcile(ctx, map[string]*decimal.Decimal{"X": decimal.MustParse("1.0")}, decimal.Zero())
	require.NoError(t, err)
	assert.False(t, gk.Guard.InSafeMode())
}
