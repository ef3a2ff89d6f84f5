// Package memstore keeps the engine's tables in memory. It implements the
// same repository interfaces as the postgres layer and serializes
// transactions behind one mutex, restoring a snapshot on rollback.
package memstore

import (
	"context"
	"maps"
	"sync"
	"time"

	"procurement-be/internal/cart"
	"procurement-be/internal/inventory"
	"procurement-be/internal/order"
)

type supplier struct {
	email         string
	acceptsOrders bool
}

type purchaser struct {
	email string
}

type tables struct {
	nextID int64

	suppliers   map[int64]supplier
	purchasers  map[int64]purchaser
	chainStores map[int64]int64 // chain store id -> purchaser id
	stocks      map[int64]inventory.Stock

	carts          map[int64]cart.Cart
	cartPositions  map[int64]cart.Position
	orders         map[int64]order.Order
	orderPositions map[int64]order.Position
}

func (t *tables) clone() *tables {
	return &tables{
		nextID:         t.nextID,
		suppliers:      maps.Clone(t.suppliers),
		purchasers:     maps.Clone(t.purchasers),
		chainStores:    maps.Clone(t.chainStores),
		stocks:         maps.Clone(t.stocks),
		carts:          maps.Clone(t.carts),
		cartPositions:  maps.Clone(t.cartPositions),
		orders:         maps.Clone(t.orders),
		orderPositions: maps.Clone(t.orderPositions),
	}
}

func (t *tables) id() int64 {
	t.nextID++
	return t.nextID
}

type Store struct {
	mu  sync.Mutex
	t   *tables
	now func() time.Time
}

func New() *Store {
	return &Store{
		t: &tables{
			suppliers:      map[int64]supplier{},
			purchasers:     map[int64]purchaser{},
			chainStores:    map[int64]int64{},
			stocks:         map[int64]inventory.Stock{},
			carts:          map[int64]cart.Cart{},
			cartPositions:  map[int64]cart.Position{},
			orders:         map[int64]order.Order{},
			orderPositions: map[int64]order.Position{},
		},
		now: time.Now,
	}
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// WithTx runs fn while holding the store exclusively. Any error restores the
// tables to their state before fn started.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.t.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.t = snapshot
		return err
	}
	return nil
}

// lock is taken by every table access. Inside WithTx the store is already
// held.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) Stocks() inventory.Repository { return &stockRepo{s} }

func (s *Store) Carts() cart.Repository { return &cartRepo{s} }

func (s *Store) Orders() order.Repository { return &orderRepo{s} }

func (s *Store) Directory() order.Directory { return &directory{s} }
