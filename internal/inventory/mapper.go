package inventory

import "github.com/shopspring/decimal"

type StockView struct {
	ID          int64             `json:"id"`
	Supplier    int64             `json:"supplier"`
	Product     int64             `json:"product"`
	Category    int64             `json:"category"`
	Article     string            `json:"article"`
	ProductName string            `json:"product_name"`
	Model       string            `json:"model"`
	Quantity    int               `json:"quantity"`
	Price       decimal.Decimal   `json:"price"`
	PriceRRC    decimal.Decimal   `json:"price_rrc"`
	Parameters  map[string]string `json:"parameters"`
}

func MapStock(s *Stock) StockView {
	params := s.Parameters
	if params == nil {
		params = map[string]string{}
	}
	return StockView{
		ID:          s.ID,
		Supplier:    s.SupplierID,
		Product:     s.ProductID,
		Category:    s.CategoryID,
		Article:     s.Article,
		ProductName: s.ProductName,
		Model:       s.Model,
		Quantity:    s.Quantity,
		Price:       s.Price,
		PriceRRC:    s.PriceRRC,
		Parameters:  params,
	}
}

func MapStocks(ss []*Stock) []StockView {
	out := make([]StockView, 0, len(ss))
	for _, s := range ss {
		out = append(out, MapStock(s))
	}
	return out
}
