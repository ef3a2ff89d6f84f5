package inventory

import (
	"github.com/shopspring/decimal"
)

// Stock is one priced, quantified inventory line of a supplier.
// Quantity is the amount still free to reserve.
type Stock struct {
	ID         int64
	SupplierID int64
	ProductID  int64
	CategoryID int64
	Article    string

	ProductName string
	Model       string

	Quantity   int
	Price      decimal.Decimal
	PriceRRC   decimal.Decimal
	Parameters map[string]string

	// SupplierAcceptsOrders mirrors suppliers.order_status at read time.
	SupplierAcceptsOrders bool
}

type StockFilter struct {
	SupplierID *int64
	CategoryID *int64
	Search     string
	Limit      int
	Offset     int
}

const (
	defaultStockLimit = 50
	maxStockLimit     = 200
)

func (f StockFilter) limit() int {
	switch {
	case f.Limit <= 0:
		return defaultStockLimit
	case f.Limit > maxStockLimit:
		return maxStockLimit
	}
	return f.Limit
}
