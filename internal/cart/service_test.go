package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"procurement-be/internal/access"
	"procurement-be/internal/apperr"
	"procurement-be/internal/inventory"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateCart(ctx context.Context, purchaserID int64) (*Cart, error) {
	args := m.Called(ctx, purchaserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Cart), args.Error(1)
}

func (m *MockRepository) GetCartByPurchaser(ctx context.Context, purchaserID int64) (*Cart, error) {
	args := m.Called(ctx, purchaserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Cart), args.Error(1)
}

func (m *MockRepository) LockCart(ctx context.Context, purchaserID int64) (*Cart, error) {
	args := m.Called(ctx, purchaserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Cart), args.Error(1)
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

func (m *MockRepository) FindPosition(ctx context.Context, cartID, stockID int64) (*Position, error) {
	args := m.Called(ctx, cartID, stockID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Position), args.Error(1)
}

func (m *MockRepository) ListPositions(ctx context.Context, scope access.Scope) ([]*Position, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Position), args.Error(1)
}

func (m *MockRepository) CartPositions(ctx context.Context, cartID int64) ([]*Position, error) {
	args := m.Called(ctx, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Position), args.Error(1)
}

func (m *MockRepository) LockCartPositions(ctx context.Context, cartID int64) ([]*Position, error) {
	args := m.Called(ctx, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Position), args.Error(1)
}

func (m *MockRepository) CreatePosition(ctx context.Context, p *Position) error {
	args := m.Called(ctx, p)
	if args.Error(0) == nil {
		p.ID = 100
	}
	return args.Error(0)
}

func (m *MockRepository) UpdatePositionQuantity(ctx context.Context, id int64, quantity int) error {
	return m.Called(ctx, id, quantity).Error(0)
}

func (m *MockRepository) DeletePosition(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) DeleteCartPositions(ctx context.Context, cartID int64) (int64, error) {
	args := m.Called(ctx, cartID)
	return args.Get(0).(int64), args.Error(1)
}

type MockStockRepository struct {
	mock.Mock
}

func (m *MockStockRepository) GetStock(ctx context.Context, id int64) (*inventory.Stock, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Stock), args.Error(1)
}

func (m *MockStockRepository) LockStock(ctx context.Context, id int64) (*inventory.Stock, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Stock), args.Error(1)
}

func (m *MockStockRepository) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	return m.Called(ctx, id, quantity).Error(0)
}

func (m *MockStockRepository) ListStocks(ctx context.Context, filter inventory.StockFilter) ([]*inventory.Stock, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*inventory.Stock), args.Error(1)
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

type passTx struct{}

func (passTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func intPtr(v int) *int    { return &v }
func idPtr(v int64) *int64 { return &v }

func tomato(qty int) *inventory.Stock {
	return &inventory.Stock{
		ID: 10, SupplierID: 3, ProductName: "Tomato", Article: "T-1",
		Quantity: qty, Price: decimal.NewFromInt(150), SupplierAcceptsOrders: true,
	}
}

func newTestService() (*service, *MockRepository, *MockStockRepository, *MockLedger) {
	repo := new(MockRepository)
	stocks := new(MockStockRepository)
	ledger := new(MockLedger)
	svc := NewService(repo, stocks, ledger, passTx{}).(*service)
	return svc, repo, stocks, ledger
}

func TestService_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, repo, stocks, ledger := newTestService()
		repo.On("LockCart", ctx, int64(9)).Return(&Cart{ID: 5, PurchaserID: 9}, nil)
		stocks.On("LockStock", ctx, int64(10)).Return(tomato(1000), nil)
		repo.On("FindPosition", ctx, int64(5), int64(10)).Return(nil, nil)
		ledger.On("Reserve", ctx, int64(10), 200).Return(nil)
		repo.On("CreatePosition", ctx, mock.AnythingOfType("*cart.Position")).Return(nil)

		pos, err := svc.Add(ctx, 9, AddParams{StockID: idPtr(10), Quantity: intPtr(200)})

		require.NoError(t, err)
		assert.Equal(t, int64(100), pos.ID)
		assert.True(t, pos.Price.Equal(decimal.NewFromInt(150)))
		assert.True(t, pos.Amount().Equal(decimal.NewFromInt(30000)))
		assert.Equal(t, int64(3), pos.SupplierID)
		repo.AssertExpectations(t)
		ledger.AssertExpectations(t)
	})

	t.Run("MissingFields", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		_, err := svc.Add(ctx, 9, AddParams{Quantity: intPtr(1)})
		assert.ErrorIs(t, err, ErrMissingFields)
		repo.AssertNotCalled(t, "LockCart", mock.Anything, mock.Anything)
	})

	t.Run("NonPositiveQuantity", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		_, err := svc.Add(ctx, 9, AddParams{StockID: idPtr(10), Quantity: intPtr(0)})
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("NoCart", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		repo.On("LockCart", ctx, int64(9)).Return(nil, ErrCartNotFound)

		_, err := svc.Add(ctx, 9, AddParams{StockID: idPtr(10), Quantity: intPtr(1)})
		assert.ErrorIs(t, err, ErrNoPurchaser)
	})

	t.Run("UnknownStock", func(t *testing.T) {
		svc, repo, stocks, _ := newTestService()
		repo.On("LockCart", ctx, int64(9)).Return(&Cart{ID: 5}, nil)
		stocks.On("LockStock", ctx, int64(10)).Return(nil, inventory.ErrStockNotFound)

		_, err := svc.Add(ctx, 9, AddParams{StockID: idPtr(10), Quantity: intPtr(1)})
		assert.ErrorIs(t, err, ErrStockDoesNotExist)
	})

	t.Run("Duplicate", func(t *testing.T) {
		svc, repo, stocks, ledger := newTestService()
		repo.On("LockCart", ctx, int64(9)).Return(&Cart{ID: 5}, nil)
		stocks.On("LockStock", ctx, int64(10)).Return(tomato(1000), nil)
		repo.On("FindPosition", ctx, int64(5), int64(10)).Return(&Position{ID: 1}, nil)

		_, err := svc.Add(ctx, 9, AddParams{StockID: idPtr(10), Quantity: intPtr(1)})
		assert.ErrorIs(t, err, ErrDuplicatePosition)
		assert.True(t, apperr.Is(err, apperr.KindConflict))
		ledger.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("SupplierPaused", func(t *testing.T) {
		svc, repo, stocks, ledger := newTestService()
		paused := tomato(1000)
		paused.SupplierAcceptsOrders = false
		repo.On("LockCart", ctx, int64(9)).Return(&Cart{ID: 5}, nil)
		stocks.On("LockStock", ctx, int64(10)).Return(paused, nil)
		repo.On("FindPosition", ctx, int64(5), int64(10)).Return(nil, nil)

		_, err := svc.Add(ctx, 9, AddParams{StockID: idPtr(10), Quantity: intPtr(1)})
		assert.ErrorIs(t, err, ErrSupplierNotAccepting)
		ledger.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("InsufficientStock", func(t *testing.T) {
		svc, repo, stocks, ledger := newTestService()
		repo.On("LockCart", ctx, int64(9)).Return(&Cart{ID: 5}, nil)
		stocks.On("LockStock", ctx, int64(10)).Return(tomato(3), nil)
		repo.On("FindPosition", ctx, int64(5), int64(10)).Return(nil, nil)
		ledger.On("Reserve", ctx, int64(10), 4).Return(&inventory.InsufficientStockError{StockID: 10, Available: 3})

		_, err := svc.Add(ctx, 9, AddParams{StockID: idPtr(10), Quantity: intPtr(4)})
		assert.True(t, apperr.Is(err, apperr.KindInsufficientStock))
		repo.AssertNotCalled(t, "CreatePosition", mock.Anything, mock.Anything)
	})
}

func TestService_Amend(t *testing.T) {
	ctx := context.Background()

	t.Run("Increase", func(t *testing.T) {
		svc, repo, stocks, ledger := newTestService()
		repo.On("LockPosition", ctx, int64(1)).Return(&Position{ID: 1, StockID: 10, Quantity: 200, Price: decimal.NewFromInt(150)}, nil)
		stocks.On("LockStock", ctx, int64(10)).Return(tomato(800), nil)
		ledger.On("Adjust", ctx, int64(10), 700).Return(nil)
		repo.On("UpdatePositionQuantity", ctx, int64(1), 900).Return(nil)

		pos, err := svc.Amend(ctx, 1, AmendParams{Quantity: intPtr(900), Fields: []string{"quantity"}})

		require.NoError(t, err)
		assert.Equal(t, 900, pos.Quantity)
		assert.True(t, pos.Amount().Equal(decimal.NewFromInt(135000)))
	})

	t.Run("Decrease", func(t *testing.T) {
		svc, repo, stocks, ledger := newTestService()
		repo.On("LockPosition", ctx, int64(1)).Return(&Position{ID: 1, StockID: 10, Quantity: 200}, nil)
		ledger.On("Adjust", ctx, int64(10), -150).Return(nil)
		repo.On("UpdatePositionQuantity", ctx, int64(1), 50).Return(nil)

		_, err := svc.Amend(ctx, 1, AmendParams{Quantity: intPtr(50)})
		require.NoError(t, err)
		stocks.AssertNotCalled(t, "LockStock", mock.Anything, mock.Anything)
	})

	t.Run("DeltaTooLarge", func(t *testing.T) {
		svc, repo, stocks, ledger := newTestService()
		repo.On("LockPosition", ctx, int64(1)).Return(&Position{ID: 1, StockID: 10, Quantity: 200}, nil)
		stocks.On("LockStock", ctx, int64(10)).Return(tomato(800), nil)
		ledger.On("Adjust", ctx, int64(10), 900).Return(&inventory.InsufficientStockError{Available: 800, Delta: true})

		_, err := svc.Amend(ctx, 1, AmendParams{Quantity: intPtr(1100)})
		assert.EqualError(t, err, "Not enough stock. You can add only 800 to your initial quantity")
		repo.AssertNotCalled(t, "UpdatePositionQuantity", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ImmutableField", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		_, err := svc.Amend(ctx, 1, AmendParams{Quantity: intPtr(2), Fields: []string{"quantity", "stock"}})
		assert.ErrorIs(t, err, ErrOnlyQuantity)
		assert.True(t, apperr.Is(err, apperr.KindImmutableField))
		repo.AssertNotCalled(t, "LockPosition", mock.Anything, mock.Anything)
	})

	t.Run("InvalidQuantity", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		_, err := svc.Amend(ctx, 1, AmendParams{Quantity: intPtr(-1)})
		assert.ErrorIs(t, err, ErrInvalidQuantity)

		_, err = svc.Amend(ctx, 1, AmendParams{})
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("IncreaseWhileSupplierPaused", func(t *testing.T) {
		svc, repo, stocks, ledger := newTestService()
		paused := tomato(800)
		paused.SupplierAcceptsOrders = false
		repo.On("LockPosition", ctx, int64(1)).Return(&Position{ID: 1, StockID: 10, Quantity: 200}, nil)
		stocks.On("LockStock", ctx, int64(10)).Return(paused, nil)

		_, err := svc.Amend(ctx, 1, AmendParams{Quantity: intPtr(201)})
		assert.ErrorIs(t, err, ErrSupplierNotAccepting)
		ledger.AssertNotCalled(t, "Adjust", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_Remove(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, repo, _, ledger := newTestService()
		repo.On("LockPosition", ctx, int64(1)).Return(&Position{ID: 1, StockID: 10, Quantity: 200}, nil)
		ledger.On("Release", ctx, int64(10), 200).Return(nil)
		repo.On("DeletePosition", ctx, int64(1)).Return(nil)

		assert.NoError(t, svc.Remove(ctx, 1))
		repo.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc, repo, _, ledger := newTestService()
		repo.On("LockPosition", ctx, int64(1)).Return(nil, ErrPositionNotFound)

		assert.ErrorIs(t, svc.Remove(ctx, 1), ErrPositionNotFound)
		ledger.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_Clear(t *testing.T) {
	ctx := context.Background()

	t.Run("ReleasesAll", func(t *testing.T) {
		svc, repo, _, ledger := newTestService()
		repo.On("LockCart", ctx, int64(9)).Return(&Cart{ID: 5}, nil)
		repo.On("LockCartPositions", ctx, int64(5)).Return([]*Position{
			{ID: 1, StockID: 12, Quantity: 2},
			{ID: 2, StockID: 10, Quantity: 3},
		}, nil)
		ledger.On("Release", ctx, int64(10), 3).Return(nil).Once()
		ledger.On("Release", ctx, int64(12), 2).Return(nil).Once()
		repo.On("DeleteCartPositions", ctx, int64(5)).Return(int64(2), nil)

		assert.NoError(t, svc.Clear(ctx, 9))
		ledger.AssertExpectations(t)
	})

	t.Run("EmptyIsNotAnError", func(t *testing.T) {
		svc, repo, _, _ := newTestService()
		repo.On("LockCart", ctx, int64(9)).Return(&Cart{ID: 5}, nil)
		repo.On("LockCartPositions", ctx, int64(5)).Return([]*Position{}, nil)
		repo.On("DeleteCartPositions", ctx, int64(5)).Return(int64(0), nil)

		assert.NoError(t, svc.Clear(ctx, 9))
	})

	t.Run("PositionAddedConcurrently", func(t *testing.T) {
		svc, repo, _, ledger := newTestService()
		repo.On("LockCart", ctx, int64(9)).Return(&Cart{ID: 5}, nil)
		repo.On("LockCartPositions", ctx, int64(5)).Return([]*Position{{ID: 1, StockID: 10, Quantity: 3}}, nil)
		ledger.On("Release", ctx, int64(10), 3).Return(nil)
		repo.On("DeleteCartPositions", ctx, int64(5)).Return(int64(2), nil)

		assert.ErrorIs(t, svc.Clear(ctx, 9), ErrCartChanged)
	})

	t.Run("ReleaseError", func(t *testing.T) {
		svc, repo, _, ledger := newTestService()
		repo.On("LockCart", ctx, int64(9)).Return(&Cart{ID: 5}, nil)
		repo.On("LockCartPositions", ctx, int64(5)).Return([]*Position{{ID: 1, StockID: 10, Quantity: 1}}, nil)
		ledger.On("Release", ctx, int64(10), 1).Return(errors.New("db error"))

		assert.Error(t, svc.Clear(ctx, 9))
		repo.AssertNotCalled(t, "DeleteCartPositions", mock.Anything, mock.Anything)
	})
}

func TestService_GetCart(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newTestService()
	repo.On("GetCartByPurchaser", ctx, int64(9)).Return(&Cart{ID: 5, PurchaserID: 9}, nil)
	repo.On("CartPositions", ctx, int64(5)).Return([]*Position{
		{ID: 1, Quantity: 2, Price: decimal.NewFromInt(10)},
		{ID: 2, Quantity: 1, Price: decimal.NewFromInt(5)},
	}, nil)

	s, err := svc.GetCart(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, 3, s.TotalQuantity)
	assert.True(t, s.TotalAmount.Equal(decimal.NewFromInt(25)))
}

func TestService_ClearLocksCartBeforeDeleting(t *testing.T) {
	ctx := context.Background()
	conn, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	ledger := new(MockLedger)
	svc := NewService(NewRepository(conn), new(MockStockRepository), ledger, passTx{})
	now := time.Now()

	t.Run("Success", func(t *testing.T) {
		sqlMock.ExpectQuery(`SELECT id FROM shopping_carts WHERE purchaser_id = \$1 FOR UPDATE`).
			WithArgs(int64(9)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
		sqlMock.ExpectQuery(`WHERE cp.cart_id = \$1 ORDER BY cp.id FOR UPDATE OF cp`).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows(positionColumns).
				AddRow(1, 5, 10, 60, "150", 9, 3, "Tomato", "T-1", now))
		ledger.On("Release", ctx, int64(10), 60).Return(nil).Once()
		sqlMock.ExpectExec(`DELETE FROM cart_positions WHERE cart_id = \$1`).
			WithArgs(int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, svc.Clear(ctx, 9))
	})

	t.Run("DeleteRemovesUnlockedLine", func(t *testing.T) {
		sqlMock.ExpectQuery(`FROM shopping_carts WHERE purchaser_id = \$1 FOR UPDATE`).
			WithArgs(int64(9)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
		sqlMock.ExpectQuery(`WHERE cp.cart_id = \$1 ORDER BY cp.id FOR UPDATE OF cp`).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows(positionColumns).
				AddRow(1, 5, 10, 60, "150", 9, 3, "Tomato", "T-1", now))
		ledger.On("Release", ctx, int64(10), 60).Return(nil).Once()
		sqlMock.ExpectExec(`DELETE FROM cart_positions WHERE cart_id = \$1`).
			WithArgs(int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 2))

		assert.ErrorIs(t, svc.Clear(ctx, 9), ErrCartChanged)
	})

	assert.NoError(t, sqlMock.ExpectationsWereMet())
	ledger.AssertExpectations(t)
}

func TestService_AddLocksCartFirst(t *testing.T) {
	ctx := context.Background()
	conn, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	stocks := new(MockStockRepository)
	ledger := new(MockLedger)
	svc := NewService(NewRepository(conn), stocks, ledger, passTx{})

	sqlMock.ExpectQuery(`SELECT id FROM shopping_carts WHERE purchaser_id = \$1 FOR UPDATE`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	stocks.On("LockStock", ctx, int64(10)).Return(tomato(100), nil)
	sqlMock.ExpectQuery(`WHERE cp.cart_id = \$1 AND cp.stock_id = \$2`).
		WithArgs(int64(5), int64(10)).
		WillReturnRows(sqlmock.NewRows(positionColumns))
	ledger.On("Reserve", ctx, int64(10), 40).Return(nil)
	sqlMock.ExpectQuery(`INSERT INTO cart_positions`).
		WithArgs(int64(5), int64(10), 40, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(2, time.Now()))

	pos, err := svc.Add(ctx, 9, AddParams{StockID: idPtr(10), Quantity: intPtr(40)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), pos.ID)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}
