package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

type PositionView struct {
	ID          int64           `json:"id"`
	Cart        int64           `json:"shopping_cart"`
	Stock       int64           `json:"stock"`
	ProductName string          `json:"product_name"`
	Article     string          `json:"article"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   string          `json:"created_at"`
}

type CartView struct {
	ID            int64           `json:"id"`
	Purchaser     int64           `json:"purchaser"`
	Positions     []PositionView  `json:"positions"`
	TotalQuantity int             `json:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

func MapPosition(p *Position) PositionView {
	return PositionView{
		ID:          p.ID,
		Cart:        p.CartID,
		Stock:       p.StockID,
		ProductName: p.ProductName,
		Article:     p.Article,
		Quantity:    p.Quantity,
		Price:       p.Price,
		Amount:      p.Amount(),
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}

func MapPositions(ps []*Position) []PositionView {
	out := make([]PositionView, 0, len(ps))
	for _, p := range ps {
		out = append(out, MapPosition(p))
	}
	return out
}

func MapSummary(s *Summary) CartView {
	return CartView{
		ID:            s.CartID,
		Purchaser:     s.PurchaserID,
		Positions:     MapPositions(s.Positions),
		TotalQuantity: s.TotalQuantity,
		TotalAmount:   s.TotalAmount,
	}
}
