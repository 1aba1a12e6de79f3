package simulator

import "fmt"

// VerdictStatus is the final classification of a replay run.
type VerdictStatus string

const (
	VerdictPass  VerdictStatus = "PASS"
	VerdictFail  VerdictStatus = "FAIL"
	VerdictError VerdictStatus = "ERROR"
)

// DivergencePoint captures the first event where the replay's state hash
// disagreed with the reference hash log.
type DivergencePoint struct {
	EventIndex   int
	ExpectedHash string
	ActualHash   string
	EventData    map[string]any
	CausalChain  []int
}

// Verdict is the outcome of a replay run, grounded on verdict.py's
// ReplayVerdict.
type Verdict struct {
	Status          VerdictStatus
	EventsProcessed int
	EventsTotal     int
	ConfigHash      string
	RngSeed         int64
	Divergence      *DivergencePoint
	ErrorMessage    string
}

func (v Verdict) IsPass() bool { return v.Status == VerdictPass }

// Summary renders the one-line CLI summary spec.md §6 requires.
func (v Verdict) Summary() string {
	switch v.Status {
	case VerdictPass:
		return fmt.Sprintf("PASS: %d/%d events replayed identically", v.EventsProcessed, v.EventsTotal)
	case VerdictFail:
		return fmt.Sprintf("FAIL: Divergence at event %d", v.Divergence.EventIndex)
	default:
		return fmt.Sprintf("ERROR: %s", v.ErrorMessage)
	}
}
