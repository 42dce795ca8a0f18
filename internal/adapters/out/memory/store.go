// Package memory provides in-process implementations of the repositories and
// the unit of work. It backs the service when no database is configured and is
// used by component tests.
package memory

import (
	"sync"

	"fulfillment/internal/core/domain/model/earnings"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/notification"
	"fulfillment/internal/core/domain/model/order"
)

// Store holds the committed state shared by every unit of work created from it.
//
// Transactions are serialized. Reads outside a transaction see the last commit.
// Writes outside a transaction commit at once, after waiting for any open
// transaction to finish, so a commit never overwrites them. A goroutine holding
// a transaction must therefore write through that transaction's repositories.
type Store struct {
	mu    sync.Mutex
	state *state

	// txMu is held from Begin until Commit or Rollback.
	txMu sync.Mutex
}

type state struct {
	orders        map[kernel.UUID]*order.Order
	records       []earnings.Record
	pendingPayout map[kernel.UUID]kernel.Money
	notifications []notification.Notification
}

// NewStore returns an empty store. Share one store between every unit of work
// that should see the same data.
func NewStore() *Store {
	return &Store{state: newState()}
}

func newState() *state {
	return &state{
		orders:        make(map[kernel.UUID]*order.Order),
		pendingPayout: make(map[kernel.UUID]kernel.Money),
	}
}

func (s *state) clone() *state {
	cp := &state{
		orders:        make(map[kernel.UUID]*order.Order, len(s.orders)),
		records:       append([]earnings.Record(nil), s.records...),
		pendingPayout: make(map[kernel.UUID]kernel.Money, len(s.pendingPayout)),
		notifications: append([]notification.Notification(nil), s.notifications...),
	}
	for id, o := range s.orders {
		cp.orders[id] = o
	}
	for id, m := range s.pendingPayout {
		cp.pendingPayout[id] = m
	}
	return cp
}

// view runs fn against the state a repository should see: the transaction's
// private copy when one is open, the committed state otherwise.
func (s *Store) view(tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

// update runs fn against the transaction's private copy when one is open.
// Otherwise fn is applied to the committed state under the transaction lock.
func (s *Store) update(tx *state, fn func(st *state) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

func (s *Store) snapshot() *state {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *Store) commit(tx *state) {
	s.mu.Lock()
	s.state = tx
	s.mu.Unlock()
}
