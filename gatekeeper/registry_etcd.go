package gatekeeper

import (
	"context"
	"encoding/json"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/Shiva-129/OmniTrade-system/clock"
	"github.com/Shiva-129/OmniTrade-system/decimal"
	"github.com/Shiva-129/OmniTrade-system/store"
)

// EtcdRegistry persists the command registry to Etcd so idempotency
// survives a process restart — the deployment's answer to the restart
// Open Question left open by spec.md: persistence across restarts is
// optional, and this is the opt-in path. Register uses a CreateRevision
// == 0 transaction guard (the key has never been written) rather than a
// plain Put, so two processes racing to register the same client order
// id can never both observe "first registration".
type EtcdRegistry struct {
	client *clientv3.Client
}

func NewEtcdRegistry(client *clientv3.Client) *EtcdRegistry {
	return &EtcdRegistry{client: client}
}

type wireIntent struct {
	ClientOrderID string  `json:"client_order_id"`
	Symbol        string  `json:"symbol"`
	Side          Side    `json:"side"`
	OrderType     OrderType `json:"order_type"`
	Quantity      string  `json:"quantity"`
	Price         *string `json:"price,omitempty"`
	TimeInForce   TimeInForce `json:"time_in_force"`
	CreatedAt     int64   `json:"created_at"`
}

func (r *EtcdRegistry) Register(ctx context.Context, intent OrderIntent) (OrderIntent, bool, error) {
	key := store.KeyGKRegistry(intent.ClientOrderID)
	payload, err := encodeIntent(intent)
	if err != nil {
		return OrderIntent{}, false, err
	}

	txn := r.client.Txn(ctx).
		If(clientv3.Compare(clientv3.CreateRevision(key), "=", 0)).
		Then(clientv3.OpPut(key, payload)).
		Else(clientv3.OpGet(key))
	resp, err := txn.Commit()
	if err != nil {
		return OrderIntent{}, false, err
	}
	if resp.Succeeded {
		return intent, true, nil
	}

	getResp := resp.Responses[0].GetResponseRange()
	existing, err := decodeIntent(getResp.Kvs[0].Value)
	if err != nil {
		return OrderIntent{}, false, err
	}
	return existing, false, nil
}

func (r *EtcdRegistry) Get(ctx context.Context, clientOrderID string) (OrderIntent, bool, error) {
	key := store.KeyGKRegistry(clientOrderID)
	resp, err := r.client.Get(ctx, key)
	if err != nil {
		return OrderIntent{}, false, err
	}
	if len(resp.Kvs) == 0 {
		return OrderIntent{}, false, nil
	}
	intent, err := decodeIntent(resp.Kvs[0].Value)
	return intent, true, err
}

func encodeIntent(intent OrderIntent) (string, error) {
	w := wireIntent{
		ClientOrderID: intent.ClientOrderID,
		Symbol:        intent.Symbol,
		Side:          intent.Side,
		OrderType:     intent.OrderType,
		Quantity:      decimal.String(intent.Quantity),
		TimeInForce:   intent.TimeInForce,
		CreatedAt:     int64(intent.CreatedAt),
	}
	if intent.Price != nil {
		p := decimal.String(intent.Price)
		w.Price = &p
	}
	b, err := json.Marshal(w)
	return string(b), err
}

func decodeIntent(b []byte) (OrderIntent, error) {
	var w wireIntent
	if err := json.Unmarshal(b, &w); err != nil {
		return OrderIntent{}, err
	}
	intent := OrderIntent{
		ClientOrderID: w.ClientOrderID,
		Symbol:        w.Symbol,
		Side:          w.Side,
		OrderType:     w.OrderType,
		TimeInForce:   w.TimeInForce,
		CreatedAt:     clock.EpochUs(w.CreatedAt),
	}
	qty, err := decimal.Parse(w.Quantity)
	if err != nil {
		return OrderIntent{}, err
	}
	intent.Quantity = qty
	if w.Price != nil {
		price, err := decimal.Parse(*w.Price)
		if err != nil {
			return OrderIntent{}, err
		}
		intent.Price = price
	}
	return intent, nil
}
