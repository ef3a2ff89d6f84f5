package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type PositionView struct {
	ID          int64           `json:"id"`
	Order       int64           `json:"order"`
	Stock       int64           `json:"stock"`
	ProductName string          `json:"product_name"`
	Article     string          `json:"article"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Amount      decimal.Decimal `json:"amount"`
	Confirmed   bool            `json:"confirmed"`
	Delivered   bool            `json:"delivered"`
	State       string          `json:"state"`
}

type OrderView struct {
	ID            int64           `json:"id"`
	Purchaser     int64           `json:"purchaser"`
	ChainStore    int64           `json:"chain_store"`
	Status        OrderStatus     `json:"status"`
	DateTime      string          `json:"date_time"`
	Positions     []PositionView  `json:"positions"`
	TotalQuantity int             `json:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

func MapPosition(p *Position) PositionView {
	return PositionView{
		ID:          p.ID,
		Order:       p.OrderID,
		Stock:       p.StockID,
		ProductName: p.ProductName,
		Article:     p.Article,
		Quantity:    p.Quantity,
		Price:       p.Price,
		Amount:      p.Amount(),
		Confirmed:   p.Confirmed,
		Delivered:   p.Delivered,
		State:       p.State().String(),
	}
}

func MapPositions(ps []*Position) []PositionView {
	out := make([]PositionView, 0, len(ps))
	for _, p := range ps {
		out = append(out, MapPosition(p))
	}
	return out
}

func MapOrder(o *Order) OrderView {
	return OrderView{
		ID:            o.ID,
		Purchaser:     o.PurchaserID,
		ChainStore:    o.ChainStoreID,
		Status:        o.Status,
		DateTime:      o.DateTime.Format(time.RFC3339),
		Positions:     MapPositions(o.Positions),
		TotalQuantity: o.TotalQuantity(),
		TotalAmount:   o.TotalAmount(),
	}
}

func MapOrders(os []*Order) []OrderView {
	out := make([]OrderView, 0, len(os))
	for _, o := range os {
		out = append(out, MapOrder(o))
	}
	return out
}
