package store

import (
	"context"
	"strconv"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/Shiva-129/OmniTrade-system/decimal"
)

// EtcdStore is a Store backed by Etcd, giving the control plane a
// persistent, linearizable source of truth that survives a restart of
// every process reading and writing it — the deployment choice for
// running the Gatekeeper's Registry durably (spec.md's Open Question on
// restart idempotency, resolved in SPEC_FULL.md by making this store's
// use optional rather than load-bearing for a single-process run).
//
// Every increment (IncrInt, IncrDecimal) goes through an Etcd transaction
// comparing the key's current ModRevision against the value last
// observed (SetString is a plain, unconditional Put), the same
// compare-and-swap discipline the teacher's allocator.Decoder family
// uses to guarantee an Etcd-stored spec's identity never diverges from
// its key — here the invariant being preserved across a CAS retry loop
// is numeric correctness of an accumulating decimal, not a spec's
// embedded ID, but the "don't trust a stale read" posture is the same.
type EtcdStore struct {
	client *clientv3.Client
}

// NewEtcdStore wraps an existing etcd client.
func NewEtcdStore(client *clientv3.Client) *EtcdStore {
	return &EtcdStore{client: client}
}

func (s *EtcdStore) GetString(ctx context.Context, key string) (string, bool, error) {
	if err := ValidateKey(key); err != nil {
		return "", false, err
	}
	resp, err := s.client.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	if len(resp.Kvs) == 0 {
		return "", false, nil
	}
	return string(resp.Kvs[0].Value), true, nil
}

func (s *EtcdStore) SetString(ctx context.Context, key string, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	_, err := s.client.Put(ctx, key, value)
	return err
}

func (s *EtcdStore) IncrInt(ctx context.Context, key string, delta int64) (int64, error) {
	if err := ValidateKey(key); err != nil {
		return 0, err
	}
	for {
		resp, err := s.client.Get(ctx, key)
		if err != nil {
			return 0, err
		}
		var cur int64
		var modRev int64
		if len(resp.Kvs) > 0 {
			n, err := strconv.ParseInt(string(resp.Kvs[0].Value), 10, 64)
			if err != nil {
				return 0, err
			}
			cur = n
			modRev = resp.Kvs[0].ModRevision
		}
		next := cur + delta

		txn := s.client.Txn(ctx).
			If(clientv3.Compare(clientv3.ModRevision(key), "=", modRev)).
			Then(clientv3.OpPut(key, strconv.FormatInt(next, 10)))
		tresp, err := txn.Commit()
		if err != nil {
			return 0, err
		}
		if tresp.Succeeded {
			return next, nil
		}
	}
}

// IncrDecimal performs a read-compute-CAS loop identical in shape to
// IncrInt, but over the exact apd.Context arithmetic in the decimal
// package rather than machine integers.
func (s *EtcdStore) IncrDecimal(ctx context.Context, key string, delta *decimal.Decimal) (*decimal.Decimal, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	for {
		resp, err := s.client.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		cur := decimal.Zero()
		var modRev int64
		if len(resp.Kvs) > 0 {
			cur, err = decimal.Parse(string(resp.Kvs[0].Value))
			if err != nil {
				return nil, err
			}
			modRev = resp.Kvs[0].ModRevision
		}
		next, err := decimal.Add(cur, delta)
		if err != nil {
			return nil, err
		}

		txn := s.client.Txn(ctx).
			If(clientv3.Compare(clientv3.ModRevision(key), "=", modRev)).
			Then(clientv3.OpPut(key, decimal.String(next)))
		tresp, err := txn.Commit()
		if err != nil {
			return nil, err
		}
		if tresp.Succeeded {
			return next, nil
		}
	}
}

func (s *EtcdStore) GetDecimal(ctx context.Context, key string) (*decimal.Decimal, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	v, ok, err := s.GetString(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return decimal.Zero(), nil
	}
	return decimal.Parse(v)
}
