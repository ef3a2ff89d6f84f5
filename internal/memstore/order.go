package memstore

import (
	"cmp"
	"context"
	"maps"
	"slices"

	"procurement-be/internal/access"
	"procurement-be/internal/order"
)

type orderRepo struct{ s *Store }

func (r *orderRepo) CreateOrder(ctx context.Context, o *order.Order) error {
	defer r.s.lock(ctx)()
	o.ID = r.s.t.id()
	o.DateTime = r.s.now()
	r.s.t.orders[o.ID] = order.Order{
		ID:           o.ID,
		PurchaserID:  o.PurchaserID,
		ChainStoreID: o.ChainStoreID,
		Status:       o.Status,
		DateTime:     o.DateTime,
	}
	return nil
}

func (r *orderRepo) CreatePosition(ctx context.Context, p *order.Position) error {
	defer r.s.lock(ctx)()
	for _, existing := range r.s.t.orderPositions {
		if existing.OrderID == p.OrderID && existing.StockID == p.StockID {
			return order.ErrDuplicatePosition
		}
	}
	p.ID = r.s.t.id()
	r.s.t.orderPositions[p.ID] = order.Position{
		ID:       p.ID,
		OrderID:  p.OrderID,
		StockID:  p.StockID,
		Quantity: p.Quantity,
		Price:    p.Price,
	}
	return nil
}

func (r *orderRepo) view(p order.Position) *order.Position {
	st := r.s.t.stocks[p.StockID]
	o := r.s.t.orders[p.OrderID]
	p.SupplierID = st.SupplierID
	p.ProductName = st.ProductName
	p.Article = st.Article
	p.PurchaserID = o.PurchaserID
	p.OrderStatus = o.Status
	return &p
}

func (r *orderRepo) positions(keep func(order.Position) bool) []*order.Position {
	out := make([]*order.Position, 0)
	for _, id := range slices.Sorted(maps.Keys(r.s.t.orderPositions)) {
		p := r.s.t.orderPositions[id]
		if keep(p) {
			out = append(out, r.view(p))
		}
	}
	return out
}

func (r *orderRepo) load(id int64) (*order.Order, error) {
	o, ok := r.s.t.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	o.Positions = r.positions(func(p order.Position) bool { return p.OrderID == id })
	return &o, nil
}

func (r *orderRepo) GetOrder(ctx context.Context, id int64) (*order.Order, error) {
	defer r.s.lock(ctx)()
	return r.load(id)
}

func (r *orderRepo) LockOrder(ctx context.Context, id int64) (*order.Order, error) {
	return r.GetOrder(ctx, id)
}

func (r *orderRepo) ListOrders(ctx context.Context, scope access.Scope, filter order.OrderFilter) ([]*order.Order, error) {
	defer r.s.lock(ctx)()

	out := make([]*order.Order, 0)
	for id, row := range r.s.t.orders {
		if filter.Status != nil && row.Status != *filter.Status {
			continue
		}
		o, _ := r.load(id)
		if scope.Permits(o.Target()) {
			out = append(out, o)
		}
	}
	slices.SortFunc(out, func(a, b *order.Order) int {
		if c := b.DateTime.Compare(a.DateTime); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id int64, status order.OrderStatus) error {
	defer r.s.lock(ctx)()
	o, ok := r.s.t.orders[id]
	if !ok {
		return order.ErrOrderNotFound
	}
	o.Status = status
	r.s.t.orders[id] = o
	return nil
}

func (r *orderRepo) UpdateChainStore(ctx context.Context, id, chainStoreID int64) error {
	defer r.s.lock(ctx)()
	o, ok := r.s.t.orders[id]
	if !ok {
		return order.ErrOrderNotFound
	}
	o.ChainStoreID = chainStoreID
	r.s.t.orders[id] = o
	return nil
}

func (r *orderRepo) GetPosition(ctx context.Context, id int64) (*order.Position, error) {
	defer r.s.lock(ctx)()
	p, ok := r.s.t.orderPositions[id]
	if !ok {
		return nil, order.ErrPositionNotFound
	}
	return r.view(p), nil
}

func (r *orderRepo) LockPosition(ctx context.Context, id int64) (*order.Position, error) {
	return r.GetPosition(ctx, id)
}

func (r *orderRepo) ListPositions(ctx context.Context, scope access.Scope, filter order.PositionFilter) ([]*order.Position, error) {
	defer r.s.lock(ctx)()
	return r.positions(func(p order.Position) bool {
		v := r.view(p)
		switch {
		case filter.OrderID != nil && v.OrderID != *filter.OrderID:
			return false
		case filter.OrderStatus != nil && v.OrderStatus != *filter.OrderStatus:
			return false
		}
		return scope.Permits(v.Target())
	}), nil
}

func (r *orderRepo) UpdateFulfillment(ctx context.Context, id int64, l order.Latches) error {
	defer r.s.lock(ctx)()
	p, ok := r.s.t.orderPositions[id]
	if !ok {
		return order.ErrPositionNotFound
	}
	p.Confirmed, p.Delivered = l.Confirmed, l.Delivered
	r.s.t.orderPositions[id] = p
	return nil
}
