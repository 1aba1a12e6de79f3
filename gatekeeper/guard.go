package gatekeeper

import (
	"context"
	"strconv"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/Shiva-129/OmniTrade-system/clock"
	"github.com/Shiva-129/OmniTrade-system/errs"
	"github.com/Shiva-129/OmniTrade-system/store"
)

const (
	defaultRateLimit      = 10.0
	defaultBurstCapacity  = 50.0
	heartbeatToleranceUs  = 2_000_000
)

// ExecutionGuard is the Level-0 pre-flight gate every OrderIntent must
// clear before acceptance, grounded on guard.py's validate_intent: safe
// mode, Observer connectivity, heartbeat freshness, then rate limit, in
// that order, first failure wins.
type ExecutionGuard struct {
	store                store.Store
	rateLimiter          *TokenBucket
	heartbeatToleranceUs int64

	mu         sync.Mutex
	inSafeMode bool
}

// NewExecutionGuard returns a guard reading Observer liveness from st and
// rate-limiting at the spec default of 10/s with a 50-token burst.
func NewExecutionGuard(st store.Store) *ExecutionGuard {
	return NewExecutionGuardWithLimits(st, defaultRateLimit, defaultBurstCapacity, heartbeatToleranceUs)
}

// NewExecutionGuardWithLimits returns a guard using caller-supplied rate,
// burst, and heartbeat-freshness limits, wiring config.yaml's guard
// section (rate_limit_per_sec, burst_capacity,
// heartbeat_tolerance_us) instead of the compiled-in spec defaults.
func NewExecutionGuardWithLimits(st store.Store, ratePerSec, burstCapacity float64, heartbeatToleranceUsOverride int64) *ExecutionGuard {
	return &ExecutionGuard{
		store:                st,
		rateLimiter:          NewTokenBucket(ratePerSec, burstCapacity),
		heartbeatToleranceUs: heartbeatToleranceUsOverride,
	}
}

// ValidateIntent runs every pre-flight check in order, returning a
// HARD_BLOCK error on the first failure.
func (g *ExecutionGuard) ValidateIntent(ctx context.Context) error {
	g.mu.Lock()
	safe := g.inSafeMode
	g.mu.Unlock()
	if safe {
		return errs.NewHardBlock("system in SAFE_MODE")
	}

	status, ok, err := g.store.GetString(ctx, store.KeyObserverStatus)
	if err != nil {
		return err
	}
	if !ok || status != "CONNECTED" {
		return errs.NewHardBlock("observer status is " + orUnknown(status, ok))
	}

	lastSeenStr, ok, err := g.store.GetString(ctx, store.KeyObserverLastUpdate)
	if err != nil {
		return err
	}
	var lastSeen int64
	if ok {
		lastSeen, _ = strconv.ParseInt(lastSeenStr, 10, 64)
	}
	now := int64(clock.NowEpoch())
	if now-lastSeen > g.heartbeatToleranceUs {
		return errs.NewHardBlock("observer heartbeat stale (>" + strconv.FormatInt(g.heartbeatToleranceUs, 10) + "us)")
	}

	if !g.rateLimiter.Consume(1.0) {
		return errs.NewHardBlock("rate limit exceeded")
	}
	return nil
}

// EnterSafeMode latches safe mode on. Once set it remains set until
// ClearSafeMode is called explicitly — spec.md requires an explicit
// operator action, never an automatic clear.
func (g *ExecutionGuard) EnterSafeMode(reason string) {
	g.mu.Lock()
	g.inSafeMode = true
	g.mu.Unlock()
	log.WithField("reason", reason).Error("safe_mode_activated")
}

// ClearSafeMode releases the latch. Intended for explicit operator
// clearance only.
func (g *ExecutionGuard) ClearSafeMode() {
	g.mu.Lock()
	g.inSafeMode = false
	g.mu.Unlock()
	log.Info("safe_mode_cleared")
}

// InSafeMode reports the current latch state.
func (g *ExecutionGuard) InSafeMode() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inSafeMode
}

func orUnknown(status string, ok bool) string {
	if !ok {
		return "UNKNOWN"
	}
	return status
}
