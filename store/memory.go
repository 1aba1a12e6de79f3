package store

import (
	"context"
	"sync"

	"github.com/Shiva-129/OmniTrade-system/decimal"
)

// MemoryStore is an in-process Store backed by a mutex-guarded map. It is
// the default backend for a single-process deployment (spec.md §5's
// "either an embedded or external store is acceptable"). The Simulator
// does not use a Store at all: replay keeps its state in simulator.State.
type MemoryStore struct {
	mu      sync.Mutex
	strings map[string]string
	ints    map[string]int64
	decs    map[string]*decimal.Decimal
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		strings: make(map[string]string),
		ints:    make(map[string]int64),
		decs:    make(map[string]*decimal.Decimal),
	}
}

func (s *MemoryStore) GetString(_ context.Context, key string) (string, bool, error) {
	if err := ValidateKey(key); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.strings[key]
	return v, ok, nil
}

func (s *MemoryStore) SetString(_ context.Context, key string, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strings[key] = value
	return nil
}

func (s *MemoryStore) IncrInt(_ context.Context, key string, delta int64) (int64, error) {
	if err := ValidateKey(key); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ints[key] += delta
	return s.ints[key], nil
}

func (s *MemoryStore) IncrDecimal(_ context.Context, key string, delta *decimal.Decimal) (*decimal.Decimal, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.decs[key]
	if !ok {
		cur = decimal.Zero()
	}
	next, err := decimal.Add(cur, delta)
	if err != nil {
		return nil, err
	}
	s.decs[key] = next
	return next, nil
}

func (s *MemoryStore) GetDecimal(_ context.Context, key string) (*decimal.Decimal, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.decs[key]; ok {
		return v, nil
	}
	return decimal.Zero(), nil
}
