package cart

import (
	"context"
	"database/sql"
	"errors"

	"procurement-be/internal/access"
	"procurement-be/internal/db"
	"procurement-be/internal/logger"

	"go.uber.org/zap"
)

// Repository stores carts and their positions. The Lock* methods take row
// locks and must be called inside a transaction.
type Repository interface {
	CreateCart(ctx context.Context, purchaserID int64) (*Cart, error)
	GetCartByPurchaser(ctx context.Context, purchaserID int64) (*Cart, error)
	LockCart(ctx context.Context, purchaserID int64) (*Cart, error)

	GetPosition(ctx context.Context, id int64) (*Position, error)
	LockPosition(ctx context.Context, id int64) (*Position, error)
	FindPosition(ctx context.Context, cartID, stockID int64) (*Position, error)
	ListPositions(ctx context.Context, scope access.Scope) ([]*Position, error)
	CartPositions(ctx context.Context, cartID int64) ([]*Position, error)
	LockCartPositions(ctx context.Context, cartID int64) ([]*Position, error)

	CreatePosition(ctx context.Context, p *Position) error
	UpdatePositionQuantity(ctx context.Context, id int64, quantity int) error
	DeletePosition(ctx context.Context, id int64) error
	DeleteCartPositions(ctx context.Context, cartID int64) (int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(conn *sql.DB) Repository {
	return &repository{db: conn}
}

const selectPosition = `
	SELECT cp.id, cp.cart_id, cp.stock_id, cp.quantity, cp.price,
	       sc.purchaser_id, s.supplier_id, p.name, s.article, cp.created_at
	FROM cart_positions cp
	JOIN shopping_carts sc ON sc.id = cp.cart_id
	JOIN stocks s ON s.id = cp.stock_id
	JOIN products p ON p.id = s.product_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPosition(row rowScanner) (*Position, error) {
	var p Position
	err := row.Scan(
		&p.ID, &p.CartID, &p.StockID, &p.Quantity, &p.Price,
		&p.PurchaserID, &p.SupplierID, &p.ProductName, &p.Article, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) CreateCart(ctx context.Context, purchaserID int64) (*Cart, error) {
	c := &Cart{PurchaserID: purchaserID}
	err := db.Conn(ctx, r.db).QueryRowContext(ctx,
		`INSERT INTO shopping_carts (purchaser_id) VALUES ($1) RETURNING id`,
		purchaserID,
	).Scan(&c.ID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to create cart",
			zap.String("layer", "repository"),
			zap.Int64("purchaser_id", purchaserID),
			zap.Error(err),
		)
		return nil, err
	}
	return c, nil
}

func (r *repository) GetCartByPurchaser(ctx context.Context, purchaserID int64) (*Cart, error) {
	return r.cart(ctx, `SELECT id FROM shopping_carts WHERE purchaser_id = $1`, purchaserID)
}

// LockCart serialises every operation that adds to or empties the cart, so a
// position cannot appear between reading the cart and deleting its lines.
func (r *repository) LockCart(ctx context.Context, purchaserID int64) (*Cart, error) {
	return r.cart(ctx, `SELECT id FROM shopping_carts WHERE purchaser_id = $1 FOR UPDATE`, purchaserID)
}

func (r *repository) cart(ctx context.Context, query string, purchaserID int64) (*Cart, error) {
	c := &Cart{PurchaserID: purchaserID}
	err := db.Conn(ctx, r.db).QueryRowContext(ctx, query, purchaserID).Scan(&c.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *repository) GetPosition(ctx context.Context, id int64) (*Position, error) {
	return r.onePosition(ctx, "GetPosition", selectPosition+` WHERE cp.id = $1`, id)
}

func (r *repository) LockPosition(ctx context.Context, id int64) (*Position, error) {
	return r.onePosition(ctx, "LockPosition", selectPosition+` WHERE cp.id = $1 FOR UPDATE OF cp`, id)
}

func (r *repository) FindPosition(ctx context.Context, cartID, stockID int64) (*Position, error) {
	p, err := r.onePosition(ctx, "FindPosition",
		selectPosition+` WHERE cp.cart_id = $1 AND cp.stock_id = $2`, cartID, stockID)
	if errors.Is(err, ErrPositionNotFound) {
		return nil, nil
	}
	return p, err
}

func (r *repository) onePosition(ctx context.Context, method, query string, args ...any) (*Position, error) {
	p, err := scanPosition(db.Conn(ctx, r.db).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPositionNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load cart position",
			zap.String("layer", "repository"),
			zap.String("method", method),
			zap.Error(err),
		)
		return nil, err
	}
	return p, nil
}

func (r *repository) ListPositions(ctx context.Context, scope access.Scope) ([]*Position, error) {
	if scope.None {
		return []*Position{}, nil
	}
	query := selectPosition
	cond, args := scope.Clause("sc.purchaser_id", "s.supplier_id", 1)
	if cond != "" {
		query += " WHERE " + cond
	}
	return r.manyPositions(ctx, "ListPositions", query+" ORDER BY cp.id", args...)
}

func (r *repository) CartPositions(ctx context.Context, cartID int64) ([]*Position, error) {
	return r.manyPositions(ctx, "CartPositions",
		selectPosition+` WHERE cp.cart_id = $1 ORDER BY cp.id`, cartID)
}

func (r *repository) LockCartPositions(ctx context.Context, cartID int64) ([]*Position, error) {
	return r.manyPositions(ctx, "LockCartPositions",
		selectPosition+` WHERE cp.cart_id = $1 ORDER BY cp.id FOR UPDATE OF cp`, cartID)
}

func (r *repository) manyPositions(ctx context.Context, method, query string, args ...any) ([]*Position, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", method),
	)

	rows, err := db.Conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query cart positions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	positions := make([]*Position, 0)
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			log.Error("failed to scan cart position", zap.Error(err))
			return nil, err
		}
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration error", zap.Error(err))
		return nil, err
	}
	return positions, nil
}

func (r *repository) CreatePosition(ctx context.Context, p *Position) error {
	err := db.Conn(ctx, r.db).QueryRowContext(ctx, `
		INSERT INTO cart_positions (cart_id, stock_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		p.CartID, p.StockID, p.Quantity, p.Price,
	).Scan(&p.ID, &p.CreatedAt)
	if db.IsUniqueViolation(err) {
		return ErrDuplicatePosition
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to create cart position",
			zap.String("layer", "repository"),
			zap.Int64("cart_id", p.CartID),
			zap.Int64("stock_id", p.StockID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (r *repository) UpdatePositionQuantity(ctx context.Context, id int64, quantity int) error {
	res, err := db.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE cart_positions SET quantity = $1 WHERE id = $2`,
		quantity, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPositionNotFound
	}
	return nil
}

func (r *repository) DeletePosition(ctx context.Context, id int64) error {
	res, err := db.Conn(ctx, r.db).ExecContext(ctx, `DELETE FROM cart_positions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPositionNotFound
	}
	return nil
}

func (r *repository) DeleteCartPositions(ctx context.Context, cartID int64) (int64, error) {
	res, err := db.Conn(ctx, r.db).ExecContext(ctx, `DELETE FROM cart_positions WHERE cart_id = $1`, cartID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
