package order

import (
	"slices"
	"time"

	"procurement-be/internal/access"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusSaved     OrderStatus = "saved"
	StatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	return s == StatusSaved || s == StatusCancelled
}

type Order struct {
	ID           int64
	PurchaserID  int64
	ChainStoreID int64
	Status       OrderStatus
	DateTime     time.Time
	Positions    []*Position
}

// Position is an order line. Price is inherited from the cart position and
// never changes; Confirmed and Delivered are owned by the stock's supplier.
type Position struct {
	ID        int64
	OrderID   int64
	StockID   int64
	Quantity  int
	Price     decimal.Decimal
	Confirmed bool
	Delivered bool

	SupplierID  int64
	PurchaserID int64
	OrderStatus OrderStatus
	ProductName string
	Article     string
}

func (p *Position) Amount() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

func (p *Position) Latches() Latches {
	return Latches{Confirmed: p.Confirmed, Delivered: p.Delivered}
}

func (p *Position) Target() access.Target {
	return access.Target{PurchaserID: p.PurchaserID, SupplierIDs: []int64{p.SupplierID}}
}

func (o *Order) TotalQuantity() int {
	total := 0
	for _, p := range o.Positions {
		total += p.Quantity
	}
	return total
}

func (o *Order) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, p := range o.Positions {
		total = total.Add(p.Amount())
	}
	return total
}

// FullyPending reports whether no position has been confirmed or delivered.
func (o *Order) FullyPending() bool {
	for _, p := range o.Positions {
		if p.State() != StatePending {
			return false
		}
	}
	return true
}

func (o *Order) SupplierIDs() []int64 {
	ids := make([]int64, 0, len(o.Positions))
	for _, p := range o.Positions {
		if !slices.Contains(ids, p.SupplierID) {
			ids = append(ids, p.SupplierID)
		}
	}
	return ids
}

func (o *Order) Target() access.Target {
	return access.Target{PurchaserID: o.PurchaserID, SupplierIDs: o.SupplierIDs()}
}

// VisibleTo returns the order as seen through scope: a supplier only sees
// the positions that reference its own stock.
func (o *Order) VisibleTo(scope access.Scope) *Order {
	if scope.SupplierID == 0 {
		return o
	}
	cp := *o
	cp.Positions = make([]*Position, 0, len(o.Positions))
	for _, p := range o.Positions {
		if p.SupplierID == scope.SupplierID {
			cp.Positions = append(cp.Positions, p)
		}
	}
	return &cp
}

type OrderFilter struct {
	Status *OrderStatus
}

type PositionFilter struct {
	OrderStatus *OrderStatus
	OrderID     *int64
}

// AmendParams is a partial order update. Only the chain store may change.
type AmendParams struct {
	ChainStoreID *int64
	PurchaserID  *int64
	Fields       []string
}
