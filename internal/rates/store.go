// Package rates keeps the reference ARS/USD exchange rate offered to the web
// form. The rate is only a prefill; schedules use whatever rate the form sends.
package rates

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
)

// ErrInvalidRate is returned when storing a rate that is not positive.
var ErrInvalidRate = errors.New("exchange rate must be positive")

// Store reads and writes the reference exchange rate.
type Store interface {
	Get(ctx context.Context) (decimal.Decimal, bool, error)
	Set(ctx context.Context, rate decimal.Decimal) error
}

// MemoryStore keeps the rate in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	rate decimal.Decimal
	set  bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns the stored rate and whether one has been set.
func (m *MemoryStore) Get(ctx context.Context) (decimal.Decimal, bool, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rate, m.set, nil
}

// Set replaces the stored rate.
func (m *MemoryStore) Set(ctx context.Context, rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return ErrInvalidRate
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rate = rate
	m.set = true
	return nil
}
