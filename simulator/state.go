package simulator

import (
	"github.com/Shiva-129/OmniTrade-system/decimal"
)

// State is the in-memory replay state, grounded on state_store.py's
// SimulatedStateStore: it mirrors the Gatekeeper/Observer's authoritative
// state shape (positions, orders, system status, gap count) without any
// external store dependency, since replay must be reproducible with
// nothing but the journal and a seed.
type State struct {
	Positions    map[string]*decimal.Decimal
	Orders       map[string]map[string]any
	SystemStatus string
	GapCount     int64
	LastSeenTs   int64
}

// NewState returns a fresh replay state starting CONNECTED.
func NewState() *State {
	return &State{
		Positions:    make(map[string]*decimal.Decimal),
		Orders:       make(map[string]map[string]any),
		SystemStatus: "CONNECTED",
	}
}

// UpdatePosition folds delta into symbol's running position, exactly —
// same decimal context as production.
func (s *State) UpdatePosition(symbol string, delta *decimal.Decimal) error {
	cur, ok := s.Positions[symbol]
	if !ok {
		cur = decimal.Zero()
	}
	next, err := decimal.Add(cur, delta)
	if err != nil {
		return err
	}
	s.Positions[symbol] = next
	return nil
}

func (s *State) GetPosition(symbol string) *decimal.Decimal {
	if v, ok := s.Positions[symbol]; ok {
		return v
	}
	return decimal.Zero()
}

func (s *State) SetOrder(clientOrderID string, data map[string]any) {
	s.Orders[clientOrderID] = data
}

func (s *State) SetStatus(status string) { s.SystemStatus = status }

func (s *State) IncrementGapCount() { s.GapCount++ }
