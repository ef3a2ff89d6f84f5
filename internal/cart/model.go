package cart

import (
	"time"

	"procurement-be/internal/access"

	"github.com/shopspring/decimal"
)

// Cart is the single shopping cart of a purchaser.
type Cart struct {
	ID          int64
	PurchaserID int64
}

// Position is a reservation held in a cart. Price is a snapshot of the
// stock price taken when the position was created.
type Position struct {
	ID       int64
	CartID   int64
	StockID  int64
	Quantity int
	Price    decimal.Decimal

	PurchaserID int64
	SupplierID  int64
	ProductName string
	Article     string
	CreatedAt   time.Time
}

func (p *Position) Amount() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

func (p *Position) Target() access.Target {
	return access.Target{PurchaserID: p.PurchaserID, SupplierIDs: []int64{p.SupplierID}}
}

// Summary is a cart with totals derived from its live positions.
type Summary struct {
	CartID        int64
	PurchaserID   int64
	Positions     []*Position
	TotalQuantity int
	TotalAmount   decimal.Decimal
}

func Summarize(c *Cart, positions []*Position) *Summary {
	s := &Summary{
		CartID:      c.ID,
		PurchaserID: c.PurchaserID,
		Positions:   positions,
		TotalAmount: decimal.Zero,
	}
	for _, p := range positions {
		s.TotalQuantity += p.Quantity
		s.TotalAmount = s.TotalAmount.Add(p.Amount())
	}
	return s
}

type AddParams struct {
	StockID  *int64
	Quantity *int
}

// AmendParams carries a partial update. Fields lists every field the
// caller sent so that attempts to touch anything but quantity are refused.
type AmendParams struct {
	Quantity *int
	Fields   []string
}
