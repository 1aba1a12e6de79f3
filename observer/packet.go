// Package observer implements the ingestion pipeline: it pulls packets
// off one or more market-data sources, journals each one before it is
// queued (write-ahead, never the reverse), tracks per-source sequence
// continuity, maintains the rolling clock-drift window, and drives the
// system status machine from CONNECTED down to HALT.
package observer

import "github.com/Shiva-129/OmniTrade-system/clock"

// Packet is a single normalized market-data event as received from an
// Ingestor, before it has been journaled or processed.
type Packet struct {
	ID             string
	Source         string
	Topic          string
	SequenceID     *int64
	LocalArrivalTs clock.MonotonicUs
	ExchangeTs     clock.EpochUs
	LocalEpochTs   clock.EpochUs
	DriftUs        int64
	Payload        map[string]any
}

// ToJournalData flattens the packet into the map shape the journal
// stores a PACKET record's data as.
func (p Packet) ToJournalData() map[string]any {
	data := map[string]any{
		"packet_id":        p.ID,
		"source":           p.Source,
		"topic":            p.Topic,
		"local_arrival_ts": int64(p.LocalArrivalTs),
		"exchange_ts":      int64(p.ExchangeTs),
		"local_epoch_ts":   int64(p.LocalEpochTs),
		"drift_us":         p.DriftUs,
	}
	if p.SequenceID != nil {
		data["sequence_id"] = *p.SequenceID
	}
	if p.Payload != nil {
		data["payload"] = p.Payload
	}
	return data
}
