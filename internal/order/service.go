package order

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"procurement-be/internal/access"
	"procurement-be/internal/apperr"
	"procurement-be/internal/cart"
	"procurement-be/internal/db"
	"procurement-be/internal/inventory"
	"procurement-be/internal/logger"
	"procurement-be/internal/notify"

	"go.uber.org/zap"
)

// Service is the order engine. Placement drains the cart without touching
// the ledger; cancellation gives the reserved quantities back.
type Service interface {
	PlaceOrder(ctx context.Context, purchaserID int64, chainStoreID *int64) (*Order, error)
	CancelOrder(ctx context.Context, orderID int64) (*Order, error)
	AmendOrder(ctx context.Context, orderID int64, params AmendParams) (*Order, error)
	UpdatePositionStatus(ctx context.Context, positionID int64, ch Change) (*Position, error)

	GetOrder(ctx context.Context, id int64) (*Order, error)
	ListOrders(ctx context.Context, scope access.Scope, filter OrderFilter) ([]*Order, error)
	GetPosition(ctx context.Context, id int64) (*Position, error)
	ListPositions(ctx context.Context, scope access.Scope, filter PositionFilter) ([]*Position, error)
}

type service struct {
	repo     Repository
	carts    cart.Repository
	ledger   inventory.Ledger
	tx       db.TxRunner
	dir      Directory
	notifier notify.Notifier
	policy   DeliveryPolicy
}

func NewService(
	repo Repository,
	carts cart.Repository,
	ledger inventory.Ledger,
	tx db.TxRunner,
	dir Directory,
	notifier notify.Notifier,
	policy DeliveryPolicy,
) Service {
	return &service{
		repo:     repo,
		carts:    carts,
		ledger:   ledger,
		tx:       tx,
		dir:      dir,
		notifier: notifier,
		policy:   policy,
	}
}

func (s *service) checkChainStore(ctx context.Context, purchaserID, chainStoreID int64) error {
	owner, err := s.dir.ChainStoreOwner(ctx, chainStoreID)
	if apperr.Is(err, apperr.KindNotFound) {
		return ErrForeignChainStore
	}
	if err != nil {
		return err
	}
	if owner != purchaserID {
		return ErrForeignChainStore
	}
	return nil
}

func (s *service) PlaceOrder(ctx context.Context, purchaserID int64, chainStoreID *int64) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PlaceOrder"),
		zap.Int64("purchaser_id", purchaserID),
	)

	if chainStoreID == nil {
		return nil, ErrMissingChainStore
	}

	var o *Order
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		c, err := s.carts.LockCart(ctx, purchaserID)
		if errors.Is(err, cart.ErrCartNotFound) {
			return ErrNoPurchaser
		}
		if err != nil {
			return err
		}
		if err := s.checkChainStore(ctx, purchaserID, *chainStoreID); err != nil {
			return err
		}

		positions, err := s.carts.LockCartPositions(ctx, c.ID)
		if err != nil {
			return err
		}
		if len(positions) == 0 {
			return ErrEmptyCart
		}

		o = &Order{
			PurchaserID:  purchaserID,
			ChainStoreID: *chainStoreID,
			Status:       StatusSaved,
		}
		if err := s.repo.CreateOrder(ctx, o); err != nil {
			return err
		}

		// Reservations move from the cart to the order unchanged.
		for _, cp := range positions {
			op := &Position{
				OrderID:     o.ID,
				StockID:     cp.StockID,
				Quantity:    cp.Quantity,
				Price:       cp.Price,
				SupplierID:  cp.SupplierID,
				PurchaserID: purchaserID,
				OrderStatus: StatusSaved,
				ProductName: cp.ProductName,
				Article:     cp.Article,
			}
			if err := s.repo.CreatePosition(ctx, op); err != nil {
				return err
			}
			o.Positions = append(o.Positions, op)
		}

		n, err := s.carts.DeleteCartPositions(ctx, c.ID)
		if err != nil {
			return err
		}
		if n != int64(len(positions)) {
			return cart.ErrCartChanged
		}
		return nil
	})
	if err != nil {
		log.Warn("place order failed", zap.Int64("chain_store_id", *chainStoreID), zap.Error(err))
		return nil, err
	}

	log.Info("order placed",
		zap.Int64("order_id", o.ID),
		zap.Int("positions", len(o.Positions)),
		zap.Int("total_quantity", o.TotalQuantity()),
	)

	s.notifyPlaced(ctx, o)
	return o, nil
}

func (s *service) CancelOrder(ctx context.Context, orderID int64) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CancelOrder"),
		zap.Int64("order_id", orderID),
	)

	var o *Order
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.repo.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Status == StatusCancelled {
			return ErrAlreadyCancelled
		}
		if !o.FullyPending() {
			return ErrPartiallyFulfilled
		}

		if err := s.repo.UpdateStatus(ctx, o.ID, StatusCancelled); err != nil {
			return err
		}

		byStock := slices.Clone(o.Positions)
		slices.SortFunc(byStock, func(a, b *Position) int { return cmp.Compare(a.StockID, b.StockID) })
		for _, p := range byStock {
			if err := s.ledger.Release(ctx, p.StockID, p.Quantity); err != nil {
				return err
			}
		}

		o.Status = StatusCancelled
		for _, p := range o.Positions {
			p.OrderStatus = StatusCancelled
		}
		return nil
	})
	if err != nil {
		log.Warn("cancel order rejected", zap.Error(err))
		return nil, err
	}

	log.Info("order cancelled", zap.Int("released_positions", len(o.Positions)))
	return o, nil
}

func (s *service) AmendOrder(ctx context.Context, orderID int64, params AmendParams) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AmendOrder"),
		zap.Int64("order_id", orderID),
	)

	var o *Order
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.repo.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Status == StatusCancelled {
			return ErrAmendCancelled
		}
		if !o.FullyPending() {
			return ErrAmendPartial
		}
		if params.PurchaserID != nil {
			return ErrPurchaserImmutable
		}
		for _, f := range params.Fields {
			if f != "chain_store" {
				return ErrOnlyChainStore
			}
		}
		if params.ChainStoreID == nil {
			return ErrMissingChainStore
		}
		if err := s.checkChainStore(ctx, o.PurchaserID, *params.ChainStoreID); err != nil {
			return err
		}

		if err := s.repo.UpdateChainStore(ctx, o.ID, *params.ChainStoreID); err != nil {
			return err
		}
		o.ChainStoreID = *params.ChainStoreID
		return nil
	})
	if err != nil {
		log.Warn("amend order rejected", zap.Error(err))
		return nil, err
	}

	log.Info("order amended", zap.Int64("chain_store_id", o.ChainStoreID))
	return o, nil
}

func (s *service) UpdatePositionStatus(ctx context.Context, positionID int64, ch Change) (*Position, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdatePositionStatus"),
		zap.Int64("position_id", positionID),
	)

	var p *Position
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.repo.LockPosition(ctx, positionID)
		if err != nil {
			return err
		}

		next, err := Transition(p.Latches(), p.OrderStatus, ch, s.policy)
		if err != nil {
			return err
		}
		if next == p.Latches() {
			return nil
		}
		if err := s.repo.UpdateFulfillment(ctx, p.ID, next); err != nil {
			return err
		}
		p.Confirmed, p.Delivered = next.Confirmed, next.Delivered
		return nil
	})
	if err != nil {
		log.Warn("position status change rejected", zap.Error(err))
		return nil, err
	}

	log.Info("position status changed", zap.String("state", p.State().String()))
	return p, nil
}

func (s *service) GetOrder(ctx context.Context, id int64) (*Order, error) {
	return s.repo.GetOrder(ctx, id)
}

func (s *service) ListOrders(ctx context.Context, scope access.Scope, filter OrderFilter) ([]*Order, error) {
	orders, err := s.repo.ListOrders(ctx, scope, filter)
	if err != nil {
		return nil, err
	}
	for i, o := range orders {
		orders[i] = o.VisibleTo(scope)
	}
	return orders, nil
}

func (s *service) GetPosition(ctx context.Context, id int64) (*Position, error) {
	return s.repo.GetPosition(ctx, id)
}

func (s *service) ListPositions(ctx context.Context, scope access.Scope, filter PositionFilter) ([]*Position, error) {
	return s.repo.ListPositions(ctx, scope, filter)
}
