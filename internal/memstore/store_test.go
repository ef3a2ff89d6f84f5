package memstore

import (
	"context"
	"errors"
	"testing"

	"procurement-be/internal/access"
	"procurement-be/internal/cart"
	"procurement-be/internal/inventory"
	"procurement-be/internal/profile"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_WithTx(t *testing.T) {
	ctx := context.Background()

	t.Run("RollbackRestoresTables", func(t *testing.T) {
		s := New()
		sp := s.AddSupplier("s@example.com", true)
		stock := s.AddStock(sp, "Tomato", "T-1", 10, decimal.NewFromInt(1))

		err := s.WithTx(ctx, func(ctx context.Context) error {
			require.NoError(t, s.Stocks().UpdateQuantity(ctx, stock, 3))
			return errors.New("boom")
		})
		assert.EqualError(t, err, "boom")
		assert.Equal(t, 10, s.Quantity(stock))
	})

	t.Run("NestedJoinsOuter", func(t *testing.T) {
		s := New()
		sp := s.AddSupplier("s@example.com", true)
		stock := s.AddStock(sp, "Tomato", "T-1", 10, decimal.NewFromInt(1))

		err := s.WithTx(ctx, func(ctx context.Context) error {
			return s.WithTx(ctx, func(ctx context.Context) error {
				return s.Stocks().UpdateQuantity(ctx, stock, 4)
			})
		})
		require.NoError(t, err)
		assert.Equal(t, 4, s.Quantity(stock))
	})

	t.Run("NegativeQuantityRejected", func(t *testing.T) {
		s := New()
		sp := s.AddSupplier("s@example.com", true)
		stock := s.AddStock(sp, "Tomato", "T-1", 10, decimal.NewFromInt(1))

		assert.Error(t, s.Stocks().UpdateQuantity(ctx, stock, -1))
		assert.ErrorIs(t, s.Stocks().UpdateQuantity(ctx, 999, 1), inventory.ErrStockNotFound)
	})
}

func TestStore_Repositories(t *testing.T) {
	ctx := context.Background()
	s := New()

	sp := s.AddSupplier("s@example.com", false)
	stock := s.AddStock(sp, "Tomato", "T-1", 10, decimal.NewFromInt(150))
	buyer := s.AddPurchaser("b@example.com")
	shop := s.AddChainStore(buyer)

	st, err := s.Stocks().GetStock(ctx, stock)
	require.NoError(t, err)
	assert.False(t, st.SupplierAcceptsOrders)
	s.SetAcceptsOrders(sp, true)
	st, _ = s.Stocks().GetStock(ctx, stock)
	assert.True(t, st.SupplierAcceptsOrders)

	found, err := s.Stocks().ListStocks(ctx, inventory.StockFilter{Search: "tom"})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	c, err := s.Carts().GetCartByPurchaser(ctx, buyer)
	require.NoError(t, err)

	p := &cart.Position{CartID: c.ID, StockID: stock, Quantity: 2, Price: decimal.NewFromInt(150)}
	require.NoError(t, s.Carts().CreatePosition(ctx, p))
	assert.ErrorIs(t, s.Carts().CreatePosition(ctx, &cart.Position{CartID: c.ID, StockID: stock, Quantity: 1}), cart.ErrDuplicatePosition)

	got, err := s.Carts().GetPosition(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, buyer, got.PurchaserID)
	assert.Equal(t, sp, got.SupplierID)
	assert.Equal(t, "Tomato", got.ProductName)

	visible, err := s.Carts().ListPositions(ctx, access.Scope{SupplierID: sp})
	require.NoError(t, err)
	assert.Len(t, visible, 1)
	hidden, err := s.Carts().ListPositions(ctx, access.Scope{PurchaserID: buyer + 100})
	require.NoError(t, err)
	assert.Empty(t, hidden)

	owner, err := s.Directory().ChainStoreOwner(ctx, shop)
	require.NoError(t, err)
	assert.Equal(t, buyer, owner)
	_, err = s.Directory().ChainStoreOwner(ctx, 999)
	assert.ErrorIs(t, err, profile.ErrChainStoreNotFound)

	email, err := s.Directory().SupplierEmail(ctx, sp)
	require.NoError(t, err)
	assert.Equal(t, "s@example.com", email)
}
