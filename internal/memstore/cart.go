package memstore

import (
	"context"
	"maps"
	"slices"

	"procurement-be/internal/access"
	"procurement-be/internal/cart"
)

type cartRepo struct{ s *Store }

func (r *cartRepo) CreateCart(ctx context.Context, purchaserID int64) (*cart.Cart, error) {
	defer r.s.lock(ctx)()
	c := cart.Cart{ID: r.s.t.id(), PurchaserID: purchaserID}
	r.s.t.carts[c.ID] = c
	return &c, nil
}

func (r *cartRepo) GetCartByPurchaser(ctx context.Context, purchaserID int64) (*cart.Cart, error) {
	defer r.s.lock(ctx)()
	for _, c := range r.s.t.carts {
		if c.PurchaserID == purchaserID {
			return &c, nil
		}
	}
	return nil, cart.ErrCartNotFound
}

// LockCart needs no row lock here: transactions already run one at a time.
func (r *cartRepo) LockCart(ctx context.Context, purchaserID int64) (*cart.Cart, error) {
	return r.GetCartByPurchaser(ctx, purchaserID)
}

// view joins a stored row with its cart and stock.
func (r *cartRepo) view(p cart.Position) *cart.Position {
	st := r.s.t.stocks[p.StockID]
	p.PurchaserID = r.s.t.carts[p.CartID].PurchaserID
	p.SupplierID = st.SupplierID
	p.ProductName = st.ProductName
	p.Article = st.Article
	return &p
}

func (r *cartRepo) where(keep func(cart.Position) bool) []*cart.Position {
	out := make([]*cart.Position, 0)
	for _, id := range slices.Sorted(maps.Keys(r.s.t.cartPositions)) {
		p := r.s.t.cartPositions[id]
		if keep(p) {
			out = append(out, r.view(p))
		}
	}
	return out
}

func (r *cartRepo) GetPosition(ctx context.Context, id int64) (*cart.Position, error) {
	defer r.s.lock(ctx)()
	p, ok := r.s.t.cartPositions[id]
	if !ok {
		return nil, cart.ErrPositionNotFound
	}
	return r.view(p), nil
}

func (r *cartRepo) LockPosition(ctx context.Context, id int64) (*cart.Position, error) {
	return r.GetPosition(ctx, id)
}

func (r *cartRepo) FindPosition(ctx context.Context, cartID, stockID int64) (*cart.Position, error) {
	defer r.s.lock(ctx)()
	found := r.where(func(p cart.Position) bool { return p.CartID == cartID && p.StockID == stockID })
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

func (r *cartRepo) ListPositions(ctx context.Context, scope access.Scope) ([]*cart.Position, error) {
	defer r.s.lock(ctx)()
	return r.where(func(p cart.Position) bool { return scope.Permits(r.view(p).Target()) }), nil
}

func (r *cartRepo) CartPositions(ctx context.Context, cartID int64) ([]*cart.Position, error) {
	defer r.s.lock(ctx)()
	return r.where(func(p cart.Position) bool { return p.CartID == cartID }), nil
}

func (r *cartRepo) LockCartPositions(ctx context.Context, cartID int64) ([]*cart.Position, error) {
	return r.CartPositions(ctx, cartID)
}

func (r *cartRepo) CreatePosition(ctx context.Context, p *cart.Position) error {
	defer r.s.lock(ctx)()
	for _, existing := range r.s.t.cartPositions {
		if existing.CartID == p.CartID && existing.StockID == p.StockID {
			return cart.ErrDuplicatePosition
		}
	}
	p.ID = r.s.t.id()
	p.CreatedAt = r.s.now()
	r.s.t.cartPositions[p.ID] = cart.Position{
		ID:        p.ID,
		CartID:    p.CartID,
		StockID:   p.StockID,
		Quantity:  p.Quantity,
		Price:     p.Price,
		CreatedAt: p.CreatedAt,
	}
	return nil
}

func (r *cartRepo) UpdatePositionQuantity(ctx context.Context, id int64, quantity int) error {
	defer r.s.lock(ctx)()
	p, ok := r.s.t.cartPositions[id]
	if !ok {
		return cart.ErrPositionNotFound
	}
	p.Quantity = quantity
	r.s.t.cartPositions[id] = p
	return nil
}

func (r *cartRepo) DeletePosition(ctx context.Context, id int64) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.t.cartPositions[id]; !ok {
		return cart.ErrPositionNotFound
	}
	delete(r.s.t.cartPositions, id)
	return nil
}

func (r *cartRepo) DeleteCartPositions(ctx context.Context, cartID int64) (int64, error) {
	defer r.s.lock(ctx)()
	var n int64
	for id, p := range r.s.t.cartPositions {
		if p.CartID == cartID {
			delete(r.s.t.cartPositions, id)
			n++
		}
	}
	return n, nil
}
