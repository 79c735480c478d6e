package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound is returned when a booking ID is not in the ledger.
var ErrNotFound = errors.New("booking: not found")

// Ledger is an append-only store of finalized bookings.
type Ledger interface {
	Create(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id string) (*Booking, error)
}

// InMemoryLedger keeps bookings in a process-local map. Used in tests and
// as the default backend when Postgres is not configured.
type InMemoryLedger struct {
	mu       sync.RWMutex
	bookings map[string]Booking
}

// NewInMemoryLedger creates an empty in-memory ledger.
func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{bookings: make(map[string]Booking)}
}

// Create appends a booking. Rewriting an existing ID is an error since
// ledger entries are immutable.
func (l *InMemoryLedger) Create(_ context.Context, b *Booking) error {
	if b == nil || b.ID == "" {
		return errors.New("booking: cannot store booking without an id")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.bookings[b.ID]; exists {
		return fmt.Errorf("booking: %s already exists", b.ID)
	}
	l.bookings[b.ID] = *b
	return nil
}

// Get returns a copy of the stored booking or ErrNotFound.
func (l *InMemoryLedger) Get(_ context.Context, id string) (*Booking, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	b, ok := l.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

// Len reports how many bookings have been finalized.
func (l *InMemoryLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.bookings)
}
