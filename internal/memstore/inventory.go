package memstore

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"

	"procurement-be/internal/inventory"
)

// errNegativeQuantity mirrors the stocks.quantity >= 0 check constraint.
var errNegativeQuantity = errors.New("memstore: stock quantity would become negative")

type stockRepo struct{ s *Store }

func (r *stockRepo) read(id int64) (*inventory.Stock, error) {
	st, ok := r.s.t.stocks[id]
	if !ok {
		return nil, inventory.ErrStockNotFound
	}
	st.SupplierAcceptsOrders = r.s.t.suppliers[st.SupplierID].acceptsOrders
	return &st, nil
}

func (r *stockRepo) GetStock(ctx context.Context, id int64) (*inventory.Stock, error) {
	defer r.s.lock(ctx)()
	return r.read(id)
}

func (r *stockRepo) LockStock(ctx context.Context, id int64) (*inventory.Stock, error) {
	defer r.s.lock(ctx)()
	return r.read(id)
}

func (r *stockRepo) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	defer r.s.lock(ctx)()
	st, ok := r.s.t.stocks[id]
	if !ok {
		return inventory.ErrStockNotFound
	}
	if quantity < 0 {
		return errNegativeQuantity
	}
	st.Quantity = quantity
	r.s.t.stocks[id] = st
	return nil
}

func (r *stockRepo) ListStocks(ctx context.Context, filter inventory.StockFilter) ([]*inventory.Stock, error) {
	defer r.s.lock(ctx)()

	ids := slices.Sorted(maps.Keys(r.s.t.stocks))
	out := make([]*inventory.Stock, 0)
	q := strings.ToLower(strings.TrimSpace(filter.Search))
	for _, id := range ids {
		st, _ := r.read(id)
		if filter.SupplierID != nil && st.SupplierID != *filter.SupplierID {
			continue
		}
		if filter.CategoryID != nil && st.CategoryID != *filter.CategoryID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(st.ProductName+" "+st.Model), q) {
			continue
		}
		out = append(out, st)
	}

	out = out[min(max(filter.Offset, 0), len(out)):]
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}
