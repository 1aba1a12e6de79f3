package observer

import "context"

// Ingestor is a single market-data source. Grounded on
// markets/exchange_interface.py's connect/listen/close trio: Connect
// establishes the upstream session, Listen streams normalized Packets
// until the context is canceled or the source fails, and Close releases
// any held resources. A failing Listen (a non-nil error received on its
// error channel) is treated as a producer failure and propagates to a
// system HALT, mirroring the original's "fail loudly, never swallow a
// producer death" behavior.
type Ingestor interface {
	Name() string
	Connect(ctx context.Context) error
	Listen(ctx context.Context) (<-chan Packet, <-chan error)
	Close(ctx context.Context) error
}
