package gatekeeper

import (
	"context"
	"sort"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/Shiva-129/OmniTrade-system/decimal"
	"github.com/Shiva-129/OmniTrade-system/errs"
)

// ReconciliationEngine compares the internal positions ledger against an
// authoritative exchange snapshot and latches safe mode on any drift
// beyond tolerance, grounded on reconciliation.py's reconcile: iterate
// symbols, first mismatch wins and stops the cycle for forensic clarity
// (no point reporting ten drifted symbols when the first already demands
// a halt).
type ReconciliationEngine struct {
	state *StateController
	guard *ExecutionGuard
}

func NewReconciliationEngine(state *StateController, guard *ExecutionGuard) *ReconciliationEngine {
	return &ReconciliationEngine{state: state, guard: guard}
}

// Reconcile checks snapshot (symbol -> exchange-reported position)
// against internal state. tolerance is the fixed-precision epsilon;
// zero is appropriate for integer-scaled instruments. Symbols are
// checked in sorted order so the "first mismatch" in a given run is
// deterministic rather than map-iteration-order dependent.
func (e *ReconciliationEngine) Reconcile(ctx context.Context, snapshot map[string]*decimal.Decimal, tolerance *decimal.Decimal) error {
	runID := uuid.Must(uuid.NewV7()).String()
	log.WithField("run_id", runID).Info("starting_reconciliation")

	symbols := make([]string, 0, len(snapshot))
	for s := range snapshot {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	for _, symbol := range symbols {
		exchangeQty := snapshot[symbol]
		internalQty, err := e.state.GetPosition(ctx, symbol)
		if err != nil {
			return err
		}

		diff, err := decimal.AbsDiff(internalQty, exchangeQty)
		if err != nil {
			return err
		}
		if diff.Cmp(tolerance) > 0 {
			log.WithFields(log.Fields{
				"run_id":   runID,
				"symbol":   symbol,
				"internal": decimal.String(internalQty),
				"exchange": decimal.String(exchangeQty),
			}).Error("CRITICAL_STATE_DRIFT")

			e.guard.EnterSafeMode("Drift detected for " + symbol)
			return errs.NewCriticalDrift(symbol, decimal.String(internalQty), decimal.String(exchangeQty))
		}
	}

	log.WithField("run_id", runID).Info("reconciliation_passed")
	return nil
}
