package gatekeeper

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/Shiva-129/OmniTrade-system/store"
)

// Gatekeeper is the single authority integrating the Registry, Guard,
// State Controller, and Reconciliation Engine, grounded on engine.py's
// Gatekeeper facade. It is the only component in the system permitted to
// mutate orders-state or positions-state.
type Gatekeeper struct {
	Registry         Registry
	Guard            *ExecutionGuard
	StateController  *StateController
	Reconciliation   *ReconciliationEngine
}

// NewGatekeeper wires a Gatekeeper against a shared store, using the
// given Registry implementation (MemoryRegistry by default; pass an
// EtcdRegistry for restart-durable idempotency) and the spec-default
// guard limits.
func NewGatekeeper(st store.Store, registry Registry) *Gatekeeper {
	return newGatekeeper(st, registry, NewExecutionGuard(st))
}

// NewGatekeeperWithGuardLimits wires a Gatekeeper the same way as
// NewGatekeeper, but with the Guard's rate limit, burst capacity, and
// heartbeat tolerance taken from config.GuardConfig instead of the
// compiled-in spec defaults.
func NewGatekeeperWithGuardLimits(st store.Store, registry Registry, ratePerSec, burstCapacity float64, heartbeatToleranceUs int64) *Gatekeeper {
	guard := NewExecutionGuardWithLimits(st, ratePerSec, burstCapacity, heartbeatToleranceUs)
	return newGatekeeper(st, registry, guard)
}

func newGatekeeper(st store.Store, registry Registry, guard *ExecutionGuard) *Gatekeeper {
	stateController := NewStateController(st)
	return &Gatekeeper{
		Registry:        registry,
		Guard:           guard,
		StateController: stateController,
		Reconciliation:  NewReconciliationEngine(stateController, guard),
	}
}

// SubmitIntent is the entry point for a strategy engine: idempotency
// check, then Guard pre-flight validation. Never mutates positions or
// orders — those are mutated only by ProcessExecutionReport.
func (g *Gatekeeper) SubmitIntent(ctx context.Context, intent OrderIntent) (SubmitResult, error) {
	_, isNew, err := g.Registry.Register(ctx, intent)
	if err != nil {
		return "", err
	}
	if !isNew {
		log.WithField("cloid", intent.ClientOrderID).Info("duplicate_intent_ignored")
		return SubmitDuplicate, nil
	}

	if err := g.Guard.ValidateIntent(ctx); err != nil {
		return "", err
	}

	log.WithField("cloid", intent.ClientOrderID).Info("intent_accepted")
	return SubmitAccepted, nil
}

// ProcessExecutionReport is the entry point for exchange adapters.
func (g *Gatekeeper) ProcessExecutionReport(ctx context.Context, report ExecutionReport) error {
	return g.StateController.ProcessExecutionReport(ctx, report)
}
