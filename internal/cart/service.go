package cart

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"procurement-be/internal/access"
	"procurement-be/internal/db"
	"procurement-be/internal/inventory"
	"procurement-be/internal/logger"

	"go.uber.org/zap"
)

// Service is the cart engine. Every mutation reserves or releases stock
// through the ledger in the same transaction as the position change.
// Callers are expected to have checked ownership of the position already.
type Service interface {
	Add(ctx context.Context, purchaserID int64, params AddParams) (*Position, error)
	Amend(ctx context.Context, positionID int64, params AmendParams) (*Position, error)
	Remove(ctx context.Context, positionID int64) error
	Clear(ctx context.Context, purchaserID int64) error

	GetCart(ctx context.Context, purchaserID int64) (*Summary, error)
	GetPosition(ctx context.Context, id int64) (*Position, error)
	ListPositions(ctx context.Context, scope access.Scope) ([]*Position, error)
}

type service struct {
	repo   Repository
	stocks inventory.Repository
	ledger inventory.Ledger
	tx     db.TxRunner
}

func NewService(repo Repository, stocks inventory.Repository, ledger inventory.Ledger, tx db.TxRunner) Service {
	return &service{repo: repo, stocks: stocks, ledger: ledger, tx: tx}
}

func (s *service) Add(ctx context.Context, purchaserID int64, params AddParams) (*Position, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Add"),
		zap.Int64("purchaser_id", purchaserID),
	)

	if params.StockID == nil || params.Quantity == nil {
		return nil, ErrMissingFields
	}
	if *params.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	stockID, qty := *params.StockID, *params.Quantity

	var pos *Position
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		cart, err := s.repo.LockCart(ctx, purchaserID)
		if errors.Is(err, ErrCartNotFound) {
			return ErrNoPurchaser
		}
		if err != nil {
			return err
		}

		stock, err := s.stocks.LockStock(ctx, stockID)
		if errors.Is(err, inventory.ErrStockNotFound) {
			return ErrStockDoesNotExist
		}
		if err != nil {
			return err
		}

		existing, err := s.repo.FindPosition(ctx, cart.ID, stockID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrDuplicatePosition
		}

		if !stock.SupplierAcceptsOrders {
			return ErrSupplierNotAccepting
		}

		if err := s.ledger.Reserve(ctx, stockID, qty); err != nil {
			return err
		}

		pos = &Position{
			CartID:      cart.ID,
			StockID:     stockID,
			Quantity:    qty,
			Price:       stock.Price,
			PurchaserID: purchaserID,
			SupplierID:  stock.SupplierID,
			ProductName: stock.ProductName,
			Article:     stock.Article,
		}
		return s.repo.CreatePosition(ctx, pos)
	})
	if err != nil {
		log.Warn("add to cart rejected", zap.Int64("stock_id", stockID), zap.Error(err))
		return nil, err
	}

	log.Info("cart position added",
		zap.Int64("position_id", pos.ID),
		zap.Int64("stock_id", stockID),
		zap.Int("quantity", qty),
	)
	return pos, nil
}

func (s *service) Amend(ctx context.Context, positionID int64, params AmendParams) (*Position, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Amend"),
		zap.Int64("position_id", positionID),
	)

	for _, f := range params.Fields {
		if f != "quantity" {
			return nil, ErrOnlyQuantity
		}
	}
	if params.Quantity == nil || *params.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	newQty := *params.Quantity

	var pos *Position
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		pos, err = s.repo.LockPosition(ctx, positionID)
		if err != nil {
			return err
		}

		delta := newQty - pos.Quantity
		if delta > 0 {
			stock, err := s.stocks.LockStock(ctx, pos.StockID)
			if err != nil {
				return err
			}
			if !stock.SupplierAcceptsOrders {
				return ErrSupplierNotAccepting
			}
		}

		if err := s.ledger.Adjust(ctx, pos.StockID, delta); err != nil {
			return err
		}
		if delta == 0 {
			return nil
		}
		if err := s.repo.UpdatePositionQuantity(ctx, pos.ID, newQty); err != nil {
			return err
		}
		pos.Quantity = newQty
		return nil
	})
	if err != nil {
		log.Warn("amend cart position rejected", zap.Int("quantity", newQty), zap.Error(err))
		return nil, err
	}

	log.Info("cart position amended", zap.Int("quantity", newQty))
	return pos, nil
}

func (s *service) Remove(ctx context.Context, positionID int64) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Remove"),
		zap.Int64("position_id", positionID),
	)

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		pos, err := s.repo.LockPosition(ctx, positionID)
		if err != nil {
			return err
		}
		if err := s.ledger.Release(ctx, pos.StockID, pos.Quantity); err != nil {
			return err
		}
		return s.repo.DeletePosition(ctx, pos.ID)
	})
	if err != nil {
		log.Warn("remove cart position failed", zap.Error(err))
		return err
	}

	log.Info("cart position removed")
	return nil
}

// Clear releases every position of the purchaser's cart. An empty cart is
// not an error.
func (s *service) Clear(ctx context.Context, purchaserID int64) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Clear"),
		zap.Int64("purchaser_id", purchaserID),
	)

	var released int
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		cart, err := s.repo.LockCart(ctx, purchaserID)
		if errors.Is(err, ErrCartNotFound) {
			return ErrNoPurchaser
		}
		if err != nil {
			return err
		}

		positions, err := s.repo.LockCartPositions(ctx, cart.ID)
		if err != nil {
			return err
		}

		// Stock rows are locked in id order to keep lock acquisition consistent
		// with other multi-line operations.
		byStock := slices.Clone(positions)
		slices.SortFunc(byStock, func(a, b *Position) int { return cmp.Compare(a.StockID, b.StockID) })
		for _, p := range byStock {
			if err := s.ledger.Release(ctx, p.StockID, p.Quantity); err != nil {
				return err
			}
		}
		released = len(positions)

		n, err := s.repo.DeleteCartPositions(ctx, cart.ID)
		if err != nil {
			return err
		}
		if n != int64(len(positions)) {
			return ErrCartChanged
		}
		return nil
	})
	if err != nil {
		log.Warn("clear cart failed", zap.Error(err))
		return err
	}

	log.Info("cart cleared", zap.Int("released_positions", released))
	return nil
}

func (s *service) GetCart(ctx context.Context, purchaserID int64) (*Summary, error) {
	cart, err := s.repo.GetCartByPurchaser(ctx, purchaserID)
	if errors.Is(err, ErrCartNotFound) {
		return nil, ErrNoPurchaser
	}
	if err != nil {
		return nil, err
	}

	positions, err := s.repo.CartPositions(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	return Summarize(cart, positions), nil
}

func (s *service) GetPosition(ctx context.Context, id int64) (*Position, error) {
	return s.repo.GetPosition(ctx, id)
}

func (s *service) ListPositions(ctx context.Context, scope access.Scope) ([]*Position, error) {
	return s.repo.ListPositions(ctx, scope)
}
