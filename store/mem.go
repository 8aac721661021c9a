package store

import "sync"

// NewMem returns an initialized Store backed by in memory storage.
func NewMem() Store {
	return &memStore{}
}

type memStore struct {
	mu sync.RWMutex
	// held in insertion order; List order depends on it
	holdings []Holding
}

func (ms *memStore) Insert(holding Holding) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for _, h := range ms.holdings {
		if h.Symbol == holding.Symbol {
			return ErrDuplicateSymbol
		}
	}
	ms.holdings = append(ms.holdings, holding)
	return nil
}

func (ms *memStore) List(filter Filter) ([]Holding, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	holdings := make([]Holding, 0, len(ms.holdings))
	for _, h := range ms.holdings {
		if filter.Matches(h) {
			holdings = append(holdings, h)
		}
	}
	if len(holdings) == 0 && len(filter) > 0 {
		return nil, ErrNoMatch
	}
	return holdings, nil
}

func (ms *memStore) Get(id string) (Holding, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	for _, h := range ms.holdings {
		if h.ID == id {
			return h, nil
		}
	}
	return Holding{}, ErrNotFound
}

func (ms *memStore) Update(id string, holding Holding) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for i, h := range ms.holdings {
		if h.ID == id {
			ms.holdings[i] = holding
			return nil
		}
	}
	return ErrNotFound
}

func (ms *memStore) Delete(id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for i, h := range ms.holdings {
		if h.ID == id {
			ms.holdings = append(ms.holdings[:i], ms.holdings[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
