package memstore

import (
	"procurement-be/internal/cart"
	"procurement-be/internal/inventory"
	"procurement-be/internal/order"

	"github.com/shopspring/decimal"
)

func (s *Store) AddSupplier(email string, acceptsOrders bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.t.id()
	s.t.suppliers[id] = supplier{email: email, acceptsOrders: acceptsOrders}
	return id
}

func (s *Store) SetAcceptsOrders(supplierID int64, accepts bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp := s.t.suppliers[supplierID]
	sp.acceptsOrders = accepts
	s.t.suppliers[supplierID] = sp
}

// AddPurchaser creates the purchaser together with its cart.
func (s *Store) AddPurchaser(email string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.t.id()
	s.t.purchasers[id] = purchaser{email: email}
	cartID := s.t.id()
	s.t.carts[cartID] = cart.Cart{ID: cartID, PurchaserID: id}
	return id
}

func (s *Store) AddChainStore(purchaserID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.t.id()
	s.t.chainStores[id] = purchaserID
	return id
}

func (s *Store) AddStock(supplierID int64, name, article string, quantity int, price decimal.Decimal) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.t.id()
	s.t.stocks[id] = inventory.Stock{
		ID:          id,
		SupplierID:  supplierID,
		ProductID:   id,
		Article:     article,
		ProductName: name,
		Quantity:    quantity,
		Price:       price,
		PriceRRC:    price,
	}
	return id
}

// Quantity returns the free quantity of a stock line, -1 when it is unknown.
func (s *Store) Quantity(stockID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.t.stocks[stockID]
	if !ok {
		return -1
	}
	return st.Quantity
}

// Held sums the quantity of stockID held by cart positions and by order
// positions of saved orders.
func (s *Store) Held(stockID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	held := 0
	for _, p := range s.t.cartPositions {
		if p.StockID == stockID {
			held += p.Quantity
		}
	}
	for _, p := range s.t.orderPositions {
		if p.StockID == stockID && s.t.orders[p.OrderID].Status == order.StatusSaved {
			held += p.Quantity
		}
	}
	return held
}
