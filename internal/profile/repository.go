package profile

import (
	"context"
	"database/sql"
	"errors"

	"procurement-be/internal/db"
	"procurement-be/internal/logger"

	"go.uber.org/zap"
)

// Repository stores purchaser, supplier and chain store profiles. It also
// answers the ownership and contact lookups the order engine needs.
type Repository interface {
	CreatePurchaser(ctx context.Context, p *Purchaser) error
	CreateSupplier(ctx context.Context, s *Supplier) error
	CreateChainStore(ctx context.Context, cs *ChainStore) error
	ListChainStores(ctx context.Context, purchaserID int64) ([]*ChainStore, error)
	SetAcceptsOrders(ctx context.Context, supplierID int64, accepts bool) (*Supplier, error)

	ProfileIDs(ctx context.Context, userID int64) (IDs, error)
	ChainStoreOwner(ctx context.Context, chainStoreID int64) (int64, error)
	PurchaserEmail(ctx context.Context, purchaserID int64) (string, error)
	SupplierEmail(ctx context.Context, supplierID int64) (string, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(conn *sql.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) CreatePurchaser(ctx context.Context, p *Purchaser) error {
	err := db.Conn(ctx, r.db).QueryRowContext(ctx, `
		INSERT INTO purchasers (user_id, name, address)
		VALUES ($1, $2, $3)
		RETURNING id`,
		p.UserID, p.Name, p.Address,
	).Scan(&p.ID)
	if db.IsUniqueViolation(err) {
		return ErrPurchaserExists
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to insert purchaser",
			zap.String("layer", "repository"),
			zap.Int64("user_id", p.UserID),
			zap.Error(err),
		)
	}
	return err
}

func (r *repository) CreateSupplier(ctx context.Context, s *Supplier) error {
	err := db.Conn(ctx, r.db).QueryRowContext(ctx, `
		INSERT INTO suppliers (user_id, name, address, order_status)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		s.UserID, s.Name, s.Address, s.AcceptsOrders,
	).Scan(&s.ID)
	if db.IsUniqueViolation(err) {
		return ErrSupplierExists
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to insert supplier",
			zap.String("layer", "repository"),
			zap.Int64("user_id", s.UserID),
			zap.Error(err),
		)
	}
	return err
}

func (r *repository) CreateChainStore(ctx context.Context, cs *ChainStore) error {
	err := db.Conn(ctx, r.db).QueryRowContext(ctx, `
		INSERT INTO chain_stores (purchaser_id, name, address, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		cs.PurchaserID, cs.Name, cs.Address, cs.Phone,
	).Scan(&cs.ID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to insert chain store",
			zap.String("layer", "repository"),
			zap.Int64("purchaser_id", cs.PurchaserID),
			zap.Error(err),
		)
	}
	return err
}

func (r *repository) ListChainStores(ctx context.Context, purchaserID int64) ([]*ChainStore, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListChainStores"),
	)

	rows, err := db.Conn(ctx, r.db).QueryContext(ctx, `
		SELECT id, purchaser_id, name, address, phone
		FROM chain_stores
		WHERE purchaser_id = $1
		ORDER BY id`, purchaserID)
	if err != nil {
		log.Error("failed to query chain stores", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := make([]*ChainStore, 0)
	for rows.Next() {
		var cs ChainStore
		if err := rows.Scan(&cs.ID, &cs.PurchaserID, &cs.Name, &cs.Address, &cs.Phone); err != nil {
			log.Error("failed to scan chain store", zap.Error(err))
			return nil, err
		}
		out = append(out, &cs)
	}
	return out, rows.Err()
}

func (r *repository) SetAcceptsOrders(ctx context.Context, supplierID int64, accepts bool) (*Supplier, error) {
	var s Supplier
	err := db.Conn(ctx, r.db).QueryRowContext(ctx, `
		UPDATE suppliers SET order_status = $1
		WHERE id = $2
		RETURNING id, user_id, name, address, order_status`,
		accepts, supplierID,
	).Scan(&s.ID, &s.UserID, &s.Name, &s.Address, &s.AcceptsOrders)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSupplierNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to update supplier order status",
			zap.String("layer", "repository"),
			zap.Int64("supplier_id", supplierID),
			zap.Error(err),
		)
		return nil, err
	}
	return &s, nil
}

func (r *repository) ProfileIDs(ctx context.Context, userID int64) (IDs, error) {
	var purchaserID, supplierID sql.NullInt64
	err := db.Conn(ctx, r.db).QueryRowContext(ctx, `
		SELECT p.id, s.id
		FROM users u
		LEFT JOIN purchasers p ON p.user_id = u.id
		LEFT JOIN suppliers s ON s.user_id = u.id
		WHERE u.id = $1`, userID,
	).Scan(&purchaserID, &supplierID)
	if errors.Is(err, sql.ErrNoRows) {
		return IDs{}, nil
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to resolve profile ids",
			zap.String("layer", "repository"),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return IDs{}, err
	}

	var ids IDs
	if purchaserID.Valid {
		ids.PurchaserID = &purchaserID.Int64
	}
	if supplierID.Valid {
		ids.SupplierID = &supplierID.Int64
	}
	return ids, nil
}

func (r *repository) ChainStoreOwner(ctx context.Context, chainStoreID int64) (int64, error) {
	var owner int64
	err := db.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT purchaser_id FROM chain_stores WHERE id = $1`, chainStoreID,
	).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrChainStoreNotFound
	}
	return owner, err
}

func (r *repository) PurchaserEmail(ctx context.Context, purchaserID int64) (string, error) {
	return r.email(ctx, ErrPurchaserNotFound,
		`SELECT u.email FROM purchasers p JOIN users u ON u.id = p.user_id WHERE p.id = $1`, purchaserID)
}

func (r *repository) SupplierEmail(ctx context.Context, supplierID int64) (string, error) {
	return r.email(ctx, ErrSupplierNotFound,
		`SELECT u.email FROM suppliers s JOIN users u ON u.id = s.user_id WHERE s.id = $1`, supplierID)
}

func (r *repository) email(ctx context.Context, notFound error, query string, id int64) (string, error) {
	var email string
	err := db.Conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", notFound
	}
	return email, err
}
