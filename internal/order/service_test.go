package order

import (
	"context"
	"errors"
	"testing"

	"procurement-be/internal/access"
	"procurement-be/internal/apperr"
	"procurement-be/internal/cart"
	"procurement-be/internal/notify"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateOrder(ctx context.Context, o *Order) error {
	args := m.Called(ctx, o)
	if args.Error(0) == nil {
		o.ID = 77
	}
	return args.Error(0)
}

func (m *MockRepository) CreatePosition(ctx context.Context, p *Position) error {
	args := m.Called(ctx, p)
	if args.Error(0) == nil {
		p.ID = 1000 + p.StockID
	}
	return args.Error(0)
}

func (m *MockRepository) GetOrder(ctx context.Context, id int64) (*Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) LockOrder(ctx context.Context, id int64) (*Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) ListOrders(ctx context.Context, scope access.Scope, filter OrderFilter) ([]*Order, error) {
	args := m.Called(ctx, scope, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Order), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, id int64, status OrderStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockRepository) UpdateChainStore(ctx context.Context, id, chainStoreID int64) error {
	return m.Called(ctx, id, chainStoreID).Error(0)
}

func (m *MockRepository) GetPosition(ctx context.Context, id int64) (*Position, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Position), args.Error(1)
}

func (m *MockRepository) LockPosition(ctx context.Context, id int64) (*Position, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Position), args.Error(1)
}

func (m *MockRepository) ListPositions(ctx context.Context, scope access.Scope, filter PositionFilter) ([]*Position, error) {
	args := m.Called(ctx, scope, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Position), args.Error(1)
}

func (m *MockRepository) UpdateFulfillment(ctx context.Context, id int64, l Latches) error {
	return m.Called(ctx, id, l).Error(0)
}

// MockCartRepository only implements what the order engine calls; the
// embedded interface panics on anything else.
type MockCartRepository struct {
	cart.Repository
	mock.Mock
}

func (m *MockCartRepository) LockCart(ctx context.Context, purchaserID int64) (*cart.Cart, error) {
	args := m.Called(ctx, purchaserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartRepository) LockCartPositions(ctx context.Context, cartID int64) ([]*cart.Position, error) {
	args := m.Called(ctx, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*cart.Position), args.Error(1)
}

func (m *MockCartRepository) DeleteCartPositions(ctx context.Context, cartID int64) (int64, error) {
	args := m.Called(ctx, cartID)
	return args.Get(0).(int64), args.Error(1)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Reserve(ctx context.Context, stockID int64, qty int) error {
	return m.Called(ctx, stockID, qty).Error(0)
}

func (m *MockLedger) Release(ctx context.Context, stockID int64, qty int) error {
	return m.Called(ctx, stockID, qty).Error(0)
}

func (m *MockLedger) Adjust(ctx context.Context, stockID int64, delta int) error {
	return m.Called(ctx, stockID, delta).Error(0)
}

type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) ChainStoreOwner(ctx context.Context, chainStoreID int64) (int64, error) {
	args := m.Called(ctx, chainStoreID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDirectory) PurchaserEmail(ctx context.Context, purchaserID int64) (string, error) {
	args := m.Called(ctx, purchaserID)
	return args.String(0), args.Error(1)
}

func (m *MockDirectory) SupplierEmail(ctx context.Context, supplierID int64) (string, error) {
	args := m.Called(ctx, supplierID)
	return args.String(0), args.Error(1)
}

type recordingNotifier struct {
	msgs []notify.Message
}

func (n *recordingNotifier) Notify(ctx context.Context, msgs ...notify.Message) {
	n.msgs = append(n.msgs, msgs...)
}

type passTx struct{}

func (passTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func idPtr(v int64) *int64 { return &v }
func boolPtr(v bool) *bool { return &v }

type testDeps struct {
	repo     *MockRepository
	carts    *MockCartRepository
	ledger   *MockLedger
	dir      *MockDirectory
	notifier *recordingNotifier
}

func newTestService(policy DeliveryPolicy) (*service, *testDeps) {
	d := &testDeps{
		repo:     new(MockRepository),
		carts:    new(MockCartRepository),
		ledger:   new(MockLedger),
		dir:      new(MockDirectory),
		notifier: &recordingNotifier{},
	}
	svc := NewService(d.repo, d.carts, d.ledger, passTx{}, d.dir, d.notifier, policy).(*service)
	return svc, d
}

func cartLines() []*cart.Position {
	return []*cart.Position{
		{ID: 1, CartID: 5, StockID: 20, Quantity: 200, Price: decimal.NewFromInt(150), SupplierID: 3, ProductName: "Tomato", Article: "T-1"},
		{ID: 2, CartID: 5, StockID: 10, Quantity: 700, Price: decimal.NewFromInt(150), SupplierID: 3, ProductName: "Tomato", Article: "T-2"},
		{ID: 3, CartID: 5, StockID: 30, Quantity: 4, Price: decimal.RequireFromString("2.5"), SupplierID: 4, ProductName: "Salt", Article: "S-1"},
	}
}

func savedOrder() *Order {
	return &Order{
		ID: 77, PurchaserID: 9, ChainStoreID: 1, Status: StatusSaved,
		Positions: []*Position{
			{ID: 1, OrderID: 77, StockID: 20, Quantity: 200, SupplierID: 3, OrderStatus: StatusSaved},
			{ID: 2, OrderID: 77, StockID: 10, Quantity: 700, SupplierID: 3, OrderStatus: StatusSaved},
		},
	}
}

// --- Tests ---

func TestService_PlaceOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, d := newTestService(DeliverAnytime)
		d.carts.On("LockCart", ctx, int64(9)).Return(&cart.Cart{ID: 5, PurchaserID: 9}, nil)
		d.dir.On("ChainStoreOwner", ctx, int64(1)).Return(int64(9), nil)
		d.carts.On("LockCartPositions", ctx, int64(5)).Return(cartLines(), nil)
		d.repo.On("CreateOrder", ctx, mock.AnythingOfType("*order.Order")).Return(nil)
		d.repo.On("CreatePosition", ctx, mock.AnythingOfType("*order.Position")).Return(nil)
		d.carts.On("DeleteCartPositions", ctx, int64(5)).Return(int64(3), nil)
		d.dir.On("SupplierEmail", ctx, int64(3)).Return("farm@example.com", nil)
		d.dir.On("SupplierEmail", ctx, int64(4)).Return("salt@example.com", nil)
		d.dir.On("PurchaserEmail", ctx, int64(9)).Return("buyer@example.com", nil)

		o, err := svc.PlaceOrder(ctx, 9, idPtr(1))

		require.NoError(t, err)
		assert.Equal(t, int64(77), o.ID)
		assert.Equal(t, StatusSaved, o.Status)
		require.Len(t, o.Positions, 3)
		assert.Equal(t, []int64{20, 10, 30}, []int64{o.Positions[0].StockID, o.Positions[1].StockID, o.Positions[2].StockID})
		assert.Equal(t, 904, o.TotalQuantity())
		assert.True(t, o.TotalAmount().Equal(decimal.NewFromInt(135010)))
		for _, p := range o.Positions {
			assert.Equal(t, StatePending, p.State())
		}

		require.Len(t, d.notifier.msgs, 3)
		assert.Equal(t, "farm@example.com", d.notifier.msgs[0].To)
		assert.Contains(t, d.notifier.msgs[0].Body, "T-1")
		assert.NotContains(t, d.notifier.msgs[0].Body, "S-1")
		assert.Equal(t, "salt@example.com", d.notifier.msgs[1].To)
		assert.Equal(t, "buyer@example.com", d.notifier.msgs[2].To)
		assert.Contains(t, d.notifier.msgs[2].Body, "135010.00")

		d.ledger.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything)
		d.ledger.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything)
		d.carts.AssertExpectations(t)
	})

	t.Run("MissingChainStore", func(t *testing.T) {
		svc, _ := newTestService(DeliverAnytime)
		_, err := svc.PlaceOrder(ctx, 9, nil)
		assert.ErrorIs(t, err, ErrMissingChainStore)
	})

	t.Run("NoPurchaser", func(t *testing.T) {
		svc, d := newTestService(DeliverAnytime)
		d.carts.On("LockCart", ctx, int64(9)).Return(nil, cart.ErrCartNotFound)

		_, err := svc.PlaceOrder(ctx, 9, idPtr(1))
		assert.ErrorIs(t, err, ErrNoPurchaser)
	})

	t.Run("ForeignChainStore", func(t *testing.T) {
		svc, d := newTestService(DeliverAnytime)
		d.carts.On("LockCart", ctx, int64(9)).Return(&cart.Cart{ID: 5}, nil)
		d.dir.On("ChainStoreOwner", ctx, int64(2)).Return(int64(8), nil)

		_, err := svc.PlaceOrder(ctx, 9, idPtr(2))
		assert.ErrorIs(t, err, ErrForeignChainStore)
		d.carts.AssertNotCalled(t, "LockCartPositions", mock.Anything, mock.Anything)
	})

	t.Run("UnknownChainStore", func(t *testing.T) {
		svc, d := newTestService(DeliverAnytime)
		d.carts.On("LockCart", ctx, int64(9)).Return(&cart.Cart{ID: 5}, nil)
		d.dir.On("ChainStoreOwner", ctx, int64(2)).Return(int64(0), apperr.New(apperr.KindNotFound, "Not found."))

		_, err := svc.PlaceOrder(ctx, 9, idPtr(2))
		assert.ErrorIs(t, err, ErrForeignChainStore)
	})

	t.Run("EmptyCart", func(t *testing.T) {
		svc, d := newTestService(DeliverAnytime)
		d.carts.On("LockCart", ctx, int64(9)).Return(&cart.Cart{ID: 5}, nil)
		d.dir.On("ChainStoreOwner", ctx, int64(1)).Return(int64(9), nil)
		d.carts.On("LockCartPositions", ctx, int64(5)).Return([]*cart.Position{}, nil)

		_, err := svc.PlaceOrder(ctx, 9, idPtr(1))
		assert.ErrorIs(t, err, ErrEmptyCart)
		d.repo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
		assert.Empty(t, d.notifier.msgs)
	})

	t.Run("PositionFailureSkipsNotification", func(t *testing.T) {
		svc, d := newTestService(DeliverAnytime)
		d.carts.On("LockCart", ctx, int64(9)).Return(&cart.Cart{ID: 5}, nil)
		d.dir.On("ChainStoreOwner", ctx, int64(1)).Return(int64(9), nil)
		d.carts.On("LockCartPositions", ctx, int64(5)).Return(cartLines(), nil)
		d.repo.On("CreateOrder", ctx, mock.Anything).Return(nil)
		d.repo.On("CreatePosition", ctx, mock.Anything).Return(errors.New("db down"))

		_, err := svc.PlaceOrder(ctx, 9, idPtr(1))
		assert.Error(t, err)
		d.carts.AssertNotCalled(t, "DeleteCartPositions", mock.Anything, mock.Anything)
		assert.Empty(t, d.notifier.msgs)
	})

	t.Run("LineAddedAfterLockIsNotDropped", func(t *testing.T) {
		svc, d := newTestService(DeliverAnytime)
		d.carts.On("LockCart", ctx, int64(9)).Return(&cart.Cart{ID: 5}, nil)
		d.dir.On("ChainStoreOwner", ctx, int64(1)).Return(int64(9), nil)
		d.carts.On("LockCartPositions", ctx, int64(5)).Return(cartLines()[:1], nil)
		d.repo.On("CreateOrder", ctx, mock.Anything).Return(nil)
		d.repo.On("CreatePosition", ctx, mock.Anything).Return(nil)
		d.carts.On("DeleteCartPositions", ctx, int64(5)).Return(int64(2), nil)

		_, err := svc.PlaceOrder(ctx, 9, idPtr(1))
		assert.ErrorIs(t, err, cart.ErrCartChanged)
		assert.Empty(t, d.notifier.msgs)
	})

	t.Run("EmailLookupFailureIsNotSurfaced", func(t *testing.T) {
		svc, d := newTestService(DeliverAnytime)
		d.carts.On("LockCart", ctx, int64(9)).Return(&cart.Cart{ID: 5}, nil)
		d.dir.On("ChainStoreOwner", ctx, int64(1)).Return(int64(9), nil)
		d.carts.On("LockCartPositions", ctx, int64(5)).Return(cartLines()[:1], nil)
		d.repo.On("CreateOrder", ctx, mock.Anything).Return(nil)
		d.repo.On("CreatePosition", ctx, mock.Anything).Return(nil)
		d.carts.On("DeleteCartPositions", ctx, int64(5)).Return(int64(1), nil)
		d.dir.On("SupplierEmail", ctx, int64(3)).Return("", errors.New("lookup failed"))
		d.dir.On("PurchaserEmail", ctx, int64(9)).Return("buyer@example.com", nil)

		o, err := svc.PlaceOrder(ctx, 9, idPtr(1))
		require.NoError(t, err)
		assert.NotNil(t, o)
		require.Len(t, d.notifier.msgs, 1)
		assert.Equal(t, "buyer@example.com", d.notifier.msgs[0].To)
	})
}

func TestService_CancelOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("ReleasesInStockOrder", func(t *testing.T) {
		svc, d := newTestService(DeliverAnytime)
		d.repo.On("LockOrder", ctx, int64(77)).Return(savedOrder(), nil)
		d.repo.On("UpdateStatus", ctx, int64(77), StatusCancelled).Return(nil)
		first := d.ledger.On("Release", ctx, int64(10), 700).Return(nil)
		d.ledger.On("Release", ctx, int64(20), 200).Return(nil).NotBefore(first)

		o, err := svc.CancelOrder(ctx, 77)

		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, o.Status)
		assert.Equal(t, StatusCancelled, o.Positions[0].OrderStatus)
		d.ledger.AssertExpectations(t)
	})

	t.Run("AlreadyCancelled", func(t *testing.T) {
		svc, d := newTestService(DeliverAnytime)
		o := savedOrder()
		o.Status = StatusCancelled
		d.repo.On("LockOrder", ctx, int64(77)).Return(o, nil)

		_, err := svc.CancelOrder(ctx, 77)
		assert.ErrorIs(t, err, ErrAlreadyCancelled)
		d.ledger.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("PartiallyFulfilled", func(t *testing.T) {
		svc, d := newTestService(DeliverAnytime)
		o := savedOrder()
		o.Positions[1].Confirmed = true
		d.repo.On("LockOrder", ctx, int64(77)).Return(o, nil)

		_, err := svc.CancelOrder(ctx, 77)
		assert.ErrorIs(t, err, ErrPartiallyFulfilled)
		assert.True(t, apperr.Is(err, apperr.KindIllegalState))
		d.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc, d := newTestService(DeliverAnytime)
		d.repo.On("LockOrder", ctx, int64(1)).Return(nil, ErrOrderNotFound)

		_, err := svc.CancelOrder(ctx, 1)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestService_AmendOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, d := newTestService(DeliverAnytime)
		d.repo.On("LockOrder", ctx, int64(77)).Return(savedOrder(), nil)
		d.dir.On("ChainStoreOwner", ctx, int64(2)).Return(int64(9), nil)
		d.repo.On("UpdateChainStore", ctx, int64(77), int64(2)).Return(nil)

		o, err := svc.AmendOrder(ctx, 77, AmendParams{ChainStoreID: idPtr(2), Fields: []string{"chain_store"}})
		require.NoError(t, err)
		assert.Equal(t, int64(2), o.ChainStoreID)
	})

	cases := []struct {
		name   string
		mutate func(o *Order)
		params AmendParams
		want   error
	}{
		{"Cancelled", func(o *Order) { o.Status = StatusCancelled }, AmendParams{ChainStoreID: idPtr(2)}, ErrAmendCancelled},
		{"Delivered", func(o *Order) { o.Positions[0].Delivered = true }, AmendParams{ChainStoreID: idPtr(2)}, ErrAmendPartial},
		{"Purchaser", func(*Order) {}, AmendParams{PurchaserID: idPtr(8), Fields: []string{"purchaser"}}, ErrPurchaserImmutable},
		{"OtherField", func(*Order) {}, AmendParams{ChainStoreID: idPtr(2), Fields: []string{"chain_store", "status"}}, ErrOnlyChainStore},
		{"NoChainStore", func(*Order) {}, AmendParams{}, ErrMissingChainStore},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, d := newTestService(DeliverAnytime)
			o := savedOrder()
			tc.mutate(o)
			d.repo.On("LockOrder", ctx, int64(77)).Return(o, nil)

			_, err := svc.AmendOrder(ctx, 77, tc.params)
			assert.ErrorIs(t, err, tc.want)
			d.repo.AssertNotCalled(t, "UpdateChainStore", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("ForeignChainStore", func(t *testing.T) {
		svc, d := newTestService(DeliverAnytime)
		d.repo.On("LockOrder", ctx, int64(77)).Return(savedOrder(), nil)
		d.dir.On("ChainStoreOwner", ctx, int64(3)).Return(int64(8), nil)

		_, err := svc.AmendOrder(ctx, 77, AmendParams{ChainStoreID: idPtr(3)})
		assert.ErrorIs(t, err, ErrForeignChainStore)
	})
}

func TestService_UpdatePositionStatus(t *testing.T) {
	ctx := context.Background()

	pending := func() *Position {
		return &Position{ID: 1, OrderID: 77, StockID: 10, OrderStatus: StatusSaved, SupplierID: 3}
	}

	t.Run("Confirm", func(t *testing.T) {
		svc, d := newTestService(DeliverAnytime)
		d.repo.On("LockPosition", ctx, int64(1)).Return(pending(), nil)
		d.repo.On("UpdateFulfillment", ctx, int64(1), Latches{Confirmed: true}).Return(nil)

		p, err := svc.UpdatePositionStatus(ctx, 1, Change{Confirmed: boolPtr(true)})
		require.NoError(t, err)
		assert.Equal(t, StateConfirmed, p.State())
	})

	t.Run("RepeatedConfirmIsNoWrite", func(t *testing.T) {
		svc, d := newTestService(DeliverAnytime)
		p := pending()
		p.Confirmed = true
		d.repo.On("LockPosition", ctx, int64(1)).Return(p, nil)

		_, err := svc.UpdatePositionStatus(ctx, 1, Change{Confirmed: boolPtr(true)})
		require.NoError(t, err)
		d.repo.AssertNotCalled(t, "UpdateFulfillment", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("DeliverRequiresConfirmation", func(t *testing.T) {
		svc, d := newTestService(DeliverAfterConfirmation)
		d.repo.On("LockPosition", ctx, int64(1)).Return(pending(), nil)

		_, err := svc.UpdatePositionStatus(ctx, 1, Change{Delivered: boolPtr(true)})
		assert.ErrorIs(t, err, ErrDeliveryBeforeConfirmation)
	})

	t.Run("CancelledOrder", func(t *testing.T) {
		svc, d := newTestService(DeliverAnytime)
		p := pending()
		p.OrderStatus = StatusCancelled
		d.repo.On("LockPosition", ctx, int64(1)).Return(p, nil)

		_, err := svc.UpdatePositionStatus(ctx, 1, Change{Confirmed: boolPtr(true)})
		assert.ErrorIs(t, err, ErrCancelledOrderImmutable)
	})
}

func TestService_ListOrders(t *testing.T) {
	ctx := context.Background()
	svc, d := newTestService(DeliverAnytime)

	o := savedOrder()
	o.Positions = append(o.Positions, &Position{ID: 3, StockID: 30, Quantity: 4, SupplierID: 4})
	scope := access.Scope{SupplierID: 4}
	d.repo.On("ListOrders", ctx, scope, OrderFilter{}).Return([]*Order{o}, nil)

	orders, err := svc.ListOrders(ctx, scope, OrderFilter{})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Positions, 1)
	assert.Equal(t, int64(30), orders[0].Positions[0].StockID)
	assert.Len(t, o.Positions, 3)
}
