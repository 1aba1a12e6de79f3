package simulator

import (
	"fmt"

	"github.com/Shiva-129/OmniTrade-system/decimal"
	"github.com/Shiva-129/OmniTrade-system/journal"
)

// gapDegradedThreshold is the gap count beyond which replay promotes the
// simulated system to DEGRADED, per spec.md §4.5.3.
const gapDegradedThreshold = 5

// maxCausalChain bounds the number of preceding event indices reported
// alongside a DivergencePoint.
const maxCausalChain = 10

// Engine is the deterministic replay engine, grounded on
// replay_engine.py's ReplayEngine: one event in, one state change out,
// persist its hash, then the next event — strictly synchronous, no
// concurrency anywhere in Run.
type Engine struct {
	config          Config
	rng             *RNG
	state           *State
	referenceHashes map[int]string
	hashLog         map[int]string
}

// NewEngine returns an Engine configured for cfg. referenceHashes may be
// nil if this run has nothing to verify against (a hash-generation run).
func NewEngine(cfg Config, referenceHashes map[int]string) *Engine {
	return &Engine{
		config:          cfg,
		rng:             NewRNG(cfg.RngSeed),
		state:           NewState(),
		referenceHashes: referenceHashes,
		hashLog:         make(map[int]string),
	}
}

// HashLog returns the event-index -> hex SHA-256 map computed during Run,
// suitable for persisting as a reference for a future run.
func (e *Engine) HashLog() map[int]string { return e.hashLog }

// Run executes the replay over records (already loaded from a journal)
// and returns the final Verdict. No I/O happens inside this loop beyond
// what the caller already performed loading records — Run itself never
// touches the filesystem, a clock, or any external store.
func (e *Engine) Run(records []journal.Record) Verdict {
	events := BuildOrderedEvents(records)
	total := len(events)
	processed := 0

	for _, ev := range events {
		if err := e.processSingleEvent(ev); err != nil {
			return Verdict{
				Status:          VerdictError,
				EventsProcessed: processed,
				EventsTotal:     total,
				ConfigHash:      e.config.ConfigHash,
				RngSeed:         e.config.RngSeed,
				ErrorMessage:    fmt.Sprintf("event %d failed: %v", ev.Index, err),
			}
		}

		hash := HashState(e.state)
		e.hashLog[ev.Index] = hash

		if expected, ok := e.referenceHashes[ev.Index]; ok && expected != hash {
			return Verdict{
				Status:          VerdictFail,
				EventsProcessed: processed,
				EventsTotal:     total,
				ConfigHash:      e.config.ConfigHash,
				RngSeed:         e.config.RngSeed,
				Divergence: &DivergencePoint{
					EventIndex:   ev.Index,
					ExpectedHash: expected,
					ActualHash:   hash,
					EventData:    ev.Record.Data,
					CausalChain:  buildCausalChain(ev.Index),
				},
			}
		}

		processed++
	}

	return Verdict{
		Status:          VerdictPass,
		EventsProcessed: processed,
		EventsTotal:     total,
		ConfigHash:      e.config.ConfigHash,
		RngSeed:         e.config.RngSeed,
	}
}

func (e *Engine) processSingleEvent(ev OrderedEvent) error {
	switch ev.Record.EventType {
	case journal.EventPacket:
		if err := e.handlePacket(ev.Record.Data); err != nil {
			return err
		}
	case journal.EventStatusChange:
		e.handleStatusChange(ev.Record.Data)
	case journal.EventGap:
		e.handleGap()
	case journal.EventError:
		e.handleError(ev.Record.Data)
	}
	e.state.LastSeenTs = int64(ev.Record.Timestamp)
	return nil
}

func (e *Engine) handlePacket(data map[string]any) error {
	if source, _ := data["source"].(string); source == "execution_report" {
		return e.handleExecutionReport(data)
	}
	return nil
}

func (e *Engine) handleExecutionReport(data map[string]any) error {
	status, _ := data["status"].(string)
	symbol, _ := data["symbol"].(string)
	clientOrderID, _ := data["client_order_id"].(string)
	side, _ := data["side"].(string)
	if side == "" {
		side = "BUY"
	}

	filledQty, err := decodeDecimalField(data["filled_quantity"])
	if err != nil {
		return err
	}

	e.state.SetOrder(clientOrderID, data)

	if status == "PARTIAL_FILL" || status == "FILLED" {
		delta := decimal.Signed(filledQty, side)
		if err := e.state.UpdatePosition(symbol, delta); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) handleStatusChange(data map[string]any) {
	status, ok := data["status"].(string)
	if !ok {
		status = "CONNECTED"
	}
	e.state.SetStatus(status)
}

func (e *Engine) handleGap() {
	e.state.IncrementGapCount()
	if e.state.GapCount > gapDegradedThreshold {
		e.state.SetStatus("DEGRADED")
	}
}

func (e *Engine) handleError(data map[string]any) {
	if errorType, _ := data["error_type"].(string); errorType == "CRITICAL" {
		e.state.SetStatus("HALT")
	}
}

// buildCausalChain walks backward from index-1 collecting up to
// maxCausalChain preceding indices, returned in ascending order —
// grounded on replay_engine.py's _build_causal_chain.
func buildCausalChain(index int) []int {
	var chain []int
	for i := index - 1; i >= 0 && len(chain) < maxCausalChain; i-- {
		chain = append(chain, i)
	}
	for l, r := 0, len(chain)-1; l < r; l, r = l+1, r-1 {
		chain[l], chain[r] = chain[r], chain[l]
	}
	return chain
}

func decodeDecimalField(v any) (*decimal.Decimal, error) {
	switch x := v.(type) {
	case string:
		return decimal.Parse(x)
	case float64:
		return decimal.Parse(fmt.Sprintf("%v", x))
	case nil:
		return decimal.Zero(), nil
	default:
		return decimal.Parse(fmt.Sprintf("%v", x))
	}
}
