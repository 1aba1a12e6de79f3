// Package store defines the shared key-value state store that the
// Observer (observer:* keys) and the Gatekeeper (gk:* keys) read and
// write, per spec.md §5/§6. The reference deployment uses an external
// key-value service (Redis or Etcd); an embedded single-process store is
// an equally valid substitute provided the atomic-increment-by-decimal
// semantics and the key namespacing are preserved — this package offers
// both as interchangeable Store implementations.
package store

import (
	"context"

	"github.com/Shiva-129/OmniTrade-system/decimal"
)

// Namespace prefixes. Every key passed to a Store method must begin with
// one of these; ValidateKey enforces it at the boundary rather than
// trusting callers.
const (
	NamespaceObserver = "observer:"
	NamespaceGK       = "gk:"
)

// Store is the minimal key-value contract the control plane needs:
// string get/set for status-shaped values, and atomic numeric increments
// for counters (gap_count) and decimals (positions) so concurrent
// writers never race on a read-modify-write cycle.
type Store interface {
	// GetString returns the current value of key, or ("", false, nil) if
	// unset.
	GetString(ctx context.Context, key string) (string, bool, error)
	// SetString unconditionally sets key to value.
	SetString(ctx context.Context, key string, value string) error
	// IncrInt atomically adds delta to the integer at key (default 0)
	// and returns the new value.
	IncrInt(ctx context.Context, key string, delta int64) (int64, error)
	// IncrDecimal atomically adds delta to the fixed-precision decimal at
	// key (default 0) and returns the new value. This is the sole
	// mutation path for gk:positions:<symbol>, satisfying spec.md §4.4.4's
	// "no float accumulation" requirement.
	IncrDecimal(ctx context.Context, key string, delta *decimal.Decimal) (*decimal.Decimal, error)
	// GetDecimal returns the current decimal value at key, or zero if
	// unset.
	GetDecimal(ctx context.Context, key string) (*decimal.Decimal, error)
}

// ValidateKey returns an error if key does not begin with one of the
// recognized namespace prefixes. Grounded on consumer/key_space.go's
// decoder, which enforces that an Etcd key's embedded identifier matches
// the key itself; here the invariant is namespace ownership rather than
// identifier equality, but the "fail the write rather than let a bad key
// land" posture is the same.
func ValidateKey(key string) error {
	if hasPrefix(key, NamespaceObserver) || hasPrefix(key, NamespaceGK) {
		return nil
	}
	return &InvalidKeyError{Key: key}
}

// InvalidKeyError is returned by ValidateKey (and by Store
// implementations that choose to call it) for a key outside the
// observer:*/gk:* namespaces.
type InvalidKeyError struct{ Key string }

func (e *InvalidKeyError) Error() string {
	return "store: key " + e.Key + " does not match a recognized namespace (observer:*, gk:*)"
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// Observer key helpers (spec.md §6 state-store key table).
const (
	KeyObserverStatus     = NamespaceObserver + "status"
	KeyObserverLastUpdate = NamespaceObserver + "last_update"
	KeyObserverGapCount   = NamespaceObserver + "gap_count"
)

// KeyGKOrder returns the gk:orders:<client_order_id> key.
func KeyGKOrder(clientOrderID string) string { return NamespaceGK + "orders:" + clientOrderID }

// KeyGKPosition returns the gk:positions:<symbol> key.
func KeyGKPosition(symbol string) string { return NamespaceGK + "positions:" + symbol }

// KeyGKRegistry returns the gk:registry:<client_order_id> key, used by
// the optional persistent EtcdRegistry.
func KeyGKRegistry(clientOrderID string) string { return NamespaceGK + "registry:" + clientOrderID }
