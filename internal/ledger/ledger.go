// Package ledger tracks how much has already been spent per card and
// category within the current billing cycle. The recommendation engine only
// ever reads a Snapshot; all mutation and monthly reset goes through a
// Store, owned by the caller.
package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// Key identifies one accumulator: a (card, category) pair.
type Key struct {
	CardID   string
	Category string
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.CardID, k.Category)
}

// Snapshot is an immutable view of a user's accumulated spend, taken at
// call time. Concurrent recommendation requests must each receive their own
// Snapshot; serializing mutations between a recommendation and the caller
// acting on it is the Store owner's responsibility.
type Snapshot map[Key]decimal.Decimal

// Get returns the accumulated spend for the key, zero when absent.
func (s Snapshot) Get(cardID, category string) decimal.Decimal {
	if amount, ok := s[Key{CardID: cardID, Category: category}]; ok {
		return amount
	}
	return decimal.Zero
}

// Store persists per-user monthly spend accumulators.
type Store interface {
	// Snapshot returns an immutable copy of the user's current accumulators.
	Snapshot(ctx context.Context, userID string) (Snapshot, error)
	// Record adds amount to the user's accumulator for key. Called by the
	// owner after the user commits to a recommended card.
	Record(ctx context.Context, userID string, key Key, amount decimal.Decimal) error
	// Reset clears all accumulators for the user, typically at the start of
	// a new billing cycle.
	Reset(ctx context.Context, userID string) error
}

// MemoryStore is an in-process Store guarded by a mutex. Suitable for the
// CLI and for tests.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]Snapshot
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]Snapshot)}
}

// Snapshot returns a copy of the user's accumulators, so later Record calls
// cannot race with a recommendation computed from the snapshot.
func (s *MemoryStore) Snapshot(_ context.Context, userID string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(Snapshot, len(s.users[userID]))
	for k, v := range s.users[userID] {
		snap[k] = v
	}
	return snap, nil
}

// Record adds amount to the user's accumulator for key.
func (s *MemoryStore) Record(_ context.Context, userID string, key Key, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("ledger: cannot record negative amount %s", amount)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users[userID] == nil {
		s.users[userID] = make(Snapshot)
	}
	s.users[userID][key] = s.users[userID][key].Add(amount)
	return nil
}

// Reset clears all accumulators for the user.
func (s *MemoryStore) Reset(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
	return nil
}
