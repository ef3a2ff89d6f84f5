package profile

import (
	"context"
	"strings"

	"procurement-be/internal/cart"
	"procurement-be/internal/db"
	"procurement-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	CreatePurchaser(ctx context.Context, userID int64, params PurchaserParams) (*Purchaser, error)
	CreateSupplier(ctx context.Context, userID int64, params SupplierParams) (*Supplier, error)
	CreateChainStore(ctx context.Context, purchaserID *int64, params ChainStoreParams) (*ChainStore, error)
	ListChainStores(ctx context.Context, purchaserID *int64) ([]*ChainStore, error)
	SetAcceptsOrders(ctx context.Context, supplierID *int64, accepts *bool) (*Supplier, error)
	Resolve(ctx context.Context, userID int64) (IDs, error)
}

type service struct {
	repo  Repository
	carts cart.Repository
	tx    db.TxRunner
}

func NewService(repo Repository, carts cart.Repository, tx db.TxRunner) Service {
	return &service{repo: repo, carts: carts, tx: tx}
}

// CreatePurchaser creates the profile together with its only shopping cart.
func (s *service) CreatePurchaser(ctx context.Context, userID int64, params PurchaserParams) (*Purchaser, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreatePurchaser"),
		zap.Int64("user_id", userID),
	)

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	p := &Purchaser{UserID: userID, Name: name, Address: strings.TrimSpace(params.Address)}
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.CreatePurchaser(ctx, p); err != nil {
			return err
		}
		_, err := s.carts.CreateCart(ctx, p.ID)
		return err
	})
	if err != nil {
		log.Warn("create purchaser failed", zap.Error(err))
		return nil, err
	}

	log.Info("purchaser created", zap.Int64("purchaser_id", p.ID))
	return p, nil
}

func (s *service) CreateSupplier(ctx context.Context, userID int64, params SupplierParams) (*Supplier, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateSupplier"),
		zap.Int64("user_id", userID),
	)

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	sp := &Supplier{UserID: userID, Name: name, Address: strings.TrimSpace(params.Address), AcceptsOrders: true}
	if params.AcceptsOrders != nil {
		sp.AcceptsOrders = *params.AcceptsOrders
	}
	if err := s.repo.CreateSupplier(ctx, sp); err != nil {
		log.Warn("create supplier failed", zap.Error(err))
		return nil, err
	}

	log.Info("supplier created", zap.Int64("supplier_id", sp.ID))
	return sp, nil
}

func (s *service) CreateChainStore(ctx context.Context, purchaserID *int64, params ChainStoreParams) (*ChainStore, error) {
	if purchaserID == nil {
		return nil, ErrNoPurchaser
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	cs := &ChainStore{
		PurchaserID: *purchaserID,
		Name:        name,
		Address:     strings.TrimSpace(params.Address),
		Phone:       strings.TrimSpace(params.Phone),
	}
	if err := s.repo.CreateChainStore(ctx, cs); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("chain store created",
		zap.String("layer", "service"),
		zap.Int64("purchaser_id", cs.PurchaserID),
		zap.Int64("chain_store_id", cs.ID),
	)
	return cs, nil
}

func (s *service) ListChainStores(ctx context.Context, purchaserID *int64) ([]*ChainStore, error) {
	if purchaserID == nil {
		return []*ChainStore{}, nil
	}
	return s.repo.ListChainStores(ctx, *purchaserID)
}

func (s *service) SetAcceptsOrders(ctx context.Context, supplierID *int64, accepts *bool) (*Supplier, error) {
	if supplierID == nil {
		return nil, ErrNoSupplier
	}
	if accepts == nil {
		return nil, ErrMissingOrderStatus
	}

	sp, err := s.repo.SetAcceptsOrders(ctx, *supplierID, *accepts)
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("supplier order status changed",
		zap.String("layer", "service"),
		zap.Int64("supplier_id", sp.ID),
		zap.Bool("accepts_orders", sp.AcceptsOrders),
	)
	return sp, nil
}

func (s *service) Resolve(ctx context.Context, userID int64) (IDs, error) {
	return s.repo.ProfileIDs(ctx, userID)
}
