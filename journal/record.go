package journal

import "github.com/Shiva-129/OmniTrade-system/clock"

// EventType is the sum-type discriminant of a journal Record.
type EventType string

const (
	EventPacket       EventType = "PACKET"
	EventStatusChange EventType = "STATUS_CHANGE"
	EventError        EventType = "ERROR"
	EventGap          EventType = "GAP"
)

// Record is a single append-only journal entry. Records are never
// mutated once appended, and each is self-contained: replay never needs
// to cross-reference another record to interpret this one.
type Record struct {
	EventType EventType      `json:"event_type"`
	Timestamp clock.EpochUs  `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// NewPacketRecord builds a PACKET record from a Packet-shaped payload.
func NewPacketRecord(ts clock.EpochUs, data map[string]any) Record {
	return Record{EventType: EventPacket, Timestamp: ts, Data: data}
}

// NewStatusChangeRecord builds a STATUS_CHANGE record.
func NewStatusChangeRecord(ts clock.EpochUs, status, reason string, payload map[string]any) Record {
	data := map[string]any{"status": status, "reason": reason}
	if payload != nil {
		data["payload"] = payload
	}
	return Record{EventType: EventStatusChange, Timestamp: ts, Data: data}
}

// NewGapRecord builds a GAP record.
func NewGapRecord(ts clock.EpochUs, source string, expected, got int64) Record {
	return Record{
		EventType: EventGap,
		Timestamp: ts,
		Data: map[string]any{
			"source":   source,
			"expected": expected,
			"got":      got,
			"gap":      got - expected,
		},
	}
}

// NewErrorRecord builds an ERROR record.
func NewErrorRecord(ts clock.EpochUs, errorType, message string) Record {
	return Record{
		EventType: EventError,
		Timestamp: ts,
		Data:      map[string]any{"error_type": errorType, "message": message},
	}
}
