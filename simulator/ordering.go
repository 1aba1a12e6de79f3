package simulator

import (
	"sort"
	"strings"

	"github.com/Shiva-129/OmniTrade-system/journal"
)

// Source priority classes, grounded on journal_reader.py's
// SOURCE_PRIORITY map, generalized per spec.md §4.5.2 from an explicit
// per-exchange-adapter table to a classification by name substring: any
// source name naming a streaming transport sorts first, a REST/snapshot
// source sorts second, everything else last.
const (
	priorityWS      = 1
	priorityREST    = 2
	priorityDefault = 3
)

func sourcePriority(source string) int {
	lower := strings.ToLower(source)
	switch {
	case strings.Contains(lower, "ws"):
		return priorityWS
	case strings.Contains(lower, "rest"):
		return priorityREST
	default:
		return priorityDefault
	}
}

// OrderedEvent pairs a journal.Record with the ordering metadata needed
// to establish the total replay order, grounded on journal_reader.py's
// OrderedEvent/ordering_key.
type OrderedEvent struct {
	Index          int
	LocalArrivalTs int64
	SequenceID     *int64
	SourcePriority int
	Record         journal.Record
}

// orderingKey returns (local_arrival_ts, sequence_id_or_max, priority),
// the triple spec.md §4.5.2 sorts by. A missing sequence id sorts last
// within its timestamp/priority group, mirroring Python's 2**63 sentinel.
func (e OrderedEvent) orderingKey() (int64, int64, int) {
	seq := int64(1<<62 - 1)
	if e.SequenceID != nil {
		seq = *e.SequenceID
	}
	return e.LocalArrivalTs, seq, e.SourcePriority
}

// BuildOrderedEvents wraps raw journal records with ordering metadata and
// sorts them per spec.md §4.5.2. The sort is stable, so two events tying
// on every component of the ordering key retain their journal file order.
func BuildOrderedEvents(records []journal.Record) []OrderedEvent {
	events := make([]OrderedEvent, len(records))
	for i, rec := range records {
		source, _ := rec.Data["source"].(string)
		events[i] = OrderedEvent{
			Index:          i,
			LocalArrivalTs: int64(rec.Timestamp),
			SequenceID:     extractSequenceID(rec),
			SourcePriority: sourcePriority(source),
			Record:         rec,
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		ti, si, pi := events[i].orderingKey()
		tj, sj, pj := events[j].orderingKey()
		if ti != tj {
			return ti < tj
		}
		if si != sj {
			return si < sj
		}
		return pi < pj
	})
	return events
}

func extractSequenceID(rec journal.Record) *int64 {
	v, ok := rec.Data["sequence_id"]
	if !ok {
		return nil
	}
	switch n := v.(type) {
	case float64:
		seq := int64(n)
		return &seq
	case int64:
		return &n
	}
	return nil
}
