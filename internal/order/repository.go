package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"procurement-be/internal/access"
	"procurement-be/internal/db"
	"procurement-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Repository stores orders and order positions. LockOrder and LockPosition
// take row locks and must run inside a transaction.
type Repository interface {
	CreateOrder(ctx context.Context, o *Order) error
	CreatePosition(ctx context.Context, p *Position) error

	GetOrder(ctx context.Context, id int64) (*Order, error)
	LockOrder(ctx context.Context, id int64) (*Order, error)
	ListOrders(ctx context.Context, scope access.Scope, filter OrderFilter) ([]*Order, error)
	UpdateStatus(ctx context.Context, id int64, status OrderStatus) error
	UpdateChainStore(ctx context.Context, id, chainStoreID int64) error

	GetPosition(ctx context.Context, id int64) (*Position, error)
	LockPosition(ctx context.Context, id int64) (*Position, error)
	ListPositions(ctx context.Context, scope access.Scope, filter PositionFilter) ([]*Position, error)
	UpdateFulfillment(ctx context.Context, id int64, l Latches) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(conn *sql.DB) Repository {
	return &repository{db: conn}
}

const (
	selectOrder = `
	SELECT o.id, o.purchaser_id, o.chain_store_id, o.status, o.date_time
	FROM orders o`

	selectPosition = `
	SELECT op.id, op.order_id, op.stock_id, op.quantity, op.price, op.confirmed, op.delivered,
	       s.supplier_id, o.purchaser_id, o.status, p.name, s.article
	FROM order_positions op
	JOIN orders o ON o.id = op.order_id
	JOIN stocks s ON s.id = op.stock_id
	JOIN products p ON p.id = s.product_id`
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var o Order
	if err := row.Scan(&o.ID, &o.PurchaserID, &o.ChainStoreID, &o.Status, &o.DateTime); err != nil {
		return nil, err
	}
	return &o, nil
}

func scanPosition(row rowScanner) (*Position, error) {
	var p Position
	err := row.Scan(
		&p.ID, &p.OrderID, &p.StockID, &p.Quantity, &p.Price, &p.Confirmed, &p.Delivered,
		&p.SupplierID, &p.PurchaserID, &p.OrderStatus, &p.ProductName, &p.Article,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) CreateOrder(ctx context.Context, o *Order) error {
	err := db.Conn(ctx, r.db).QueryRowContext(ctx, `
		INSERT INTO orders (purchaser_id, chain_store_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, date_time`,
		o.PurchaserID, o.ChainStoreID, o.Status,
	).Scan(&o.ID, &o.DateTime)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to insert order",
			zap.String("layer", "repository"),
			zap.Int64("purchaser_id", o.PurchaserID),
			zap.Error(err),
		)
	}
	return err
}

func (r *repository) CreatePosition(ctx context.Context, p *Position) error {
	err := db.Conn(ctx, r.db).QueryRowContext(ctx, `
		INSERT INTO order_positions (order_id, stock_id, quantity, price, confirmed, delivered)
		VALUES ($1, $2, $3, $4, FALSE, FALSE)
		RETURNING id`,
		p.OrderID, p.StockID, p.Quantity, p.Price,
	).Scan(&p.ID)
	if db.IsUniqueViolation(err) {
		return ErrDuplicatePosition
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to insert order position",
			zap.String("layer", "repository"),
			zap.Int64("order_id", p.OrderID),
			zap.Int64("stock_id", p.StockID),
			zap.Error(err),
		)
	}
	return err
}

func (r *repository) GetOrder(ctx context.Context, id int64) (*Order, error) {
	return r.loadOrder(ctx, id, "")
}

func (r *repository) LockOrder(ctx context.Context, id int64) (*Order, error) {
	return r.loadOrder(ctx, id, " FOR UPDATE")
}

func (r *repository) loadOrder(ctx context.Context, id int64, lock string) (*Order, error) {
	o, err := scanOrder(db.Conn(ctx, r.db).QueryRowContext(ctx, selectOrder+` WHERE o.id = $1`+lock, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load order",
			zap.String("layer", "repository"),
			zap.Int64("order_id", id),
			zap.Error(err),
		)
		return nil, err
	}

	if lock != "" {
		lock = " FOR UPDATE OF op"
	}
	o.Positions, err = r.positions(ctx, "loadOrder",
		selectPosition+` WHERE op.order_id = $1 ORDER BY op.id`+lock, id)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func orderScope(scope access.Scope, argIndex int) (string, []any) {
	if scope.SupplierID != 0 && !scope.All && !scope.None {
		return fmt.Sprintf(`EXISTS (
			SELECT 1 FROM order_positions op
			JOIN stocks s ON s.id = op.stock_id
			WHERE op.order_id = o.id AND s.supplier_id = $%d)`, argIndex), []any{scope.SupplierID}
	}
	return scope.Clause("o.purchaser_id", "", argIndex)
}

func (r *repository) ListOrders(ctx context.Context, scope access.Scope, filter OrderFilter) ([]*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListOrders"),
	)

	if scope.None {
		return []*Order{}, nil
	}

	var (
		where []string
		args  []any
	)
	if cond, a := orderScope(scope, 1); cond != "" {
		where = append(where, cond)
		args = append(args, a...)
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where = append(where, fmt.Sprintf("o.status = $%d", len(args)))
	}

	query := selectOrder
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY o.date_time DESC, o.id DESC"

	rows, err := db.Conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	orders := make([]*Order, 0)
	byID := make(map[int64]*Order)
	ids := make([]int64, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, o)
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration error", zap.Error(err))
		return nil, err
	}
	if len(ids) == 0 {
		return orders, nil
	}

	positions, err := r.positions(ctx, "ListOrders",
		selectPosition+` WHERE op.order_id = ANY($1) ORDER BY op.order_id, op.id`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	for _, p := range positions {
		if o, ok := byID[p.OrderID]; ok {
			o.Positions = append(o.Positions, p)
		}
	}

	log.Info("orders fetched", zap.Int("count", len(orders)))
	return orders, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status OrderStatus) error {
	return r.execOne(ctx, ErrOrderNotFound, `UPDATE orders SET status = $1 WHERE id = $2`, status, id)
}

func (r *repository) UpdateChainStore(ctx context.Context, id, chainStoreID int64) error {
	return r.execOne(ctx, ErrOrderNotFound, `UPDATE orders SET chain_store_id = $1 WHERE id = $2`, chainStoreID, id)
}

func (r *repository) GetPosition(ctx context.Context, id int64) (*Position, error) {
	return r.onePosition(ctx, selectPosition+` WHERE op.id = $1`, id)
}

// LockPosition locks the parent order before the position, the same order
// LockOrder uses, so it waits for a concurrent cancel and then reads the
// committed status.
func (r *repository) LockPosition(ctx context.Context, id int64) (*Position, error) {
	var orderID int64
	err := db.Conn(ctx, r.db).QueryRowContext(ctx, `
		SELECT o.id FROM orders o
		JOIN order_positions op ON op.order_id = o.id
		WHERE op.id = $1
		FOR UPDATE OF o`, id,
	).Scan(&orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPositionNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to lock order of position",
			zap.String("layer", "repository"),
			zap.Int64("position_id", id),
			zap.Error(err),
		)
		return nil, err
	}
	return r.onePosition(ctx, selectPosition+` WHERE op.id = $1 FOR UPDATE OF op`, id)
}

func (r *repository) ListPositions(ctx context.Context, scope access.Scope, filter PositionFilter) ([]*Position, error) {
	if scope.None {
		return []*Position{}, nil
	}

	var (
		where []string
		args  []any
	)
	if cond, a := scope.Clause("o.purchaser_id", "s.supplier_id", 1); cond != "" {
		where = append(where, cond)
		args = append(args, a...)
	}
	if filter.OrderStatus != nil {
		args = append(args, *filter.OrderStatus)
		where = append(where, fmt.Sprintf("o.status = $%d", len(args)))
	}
	if filter.OrderID != nil {
		args = append(args, *filter.OrderID)
		where = append(where, fmt.Sprintf("op.order_id = $%d", len(args)))
	}

	query := selectPosition
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	return r.positions(ctx, "ListPositions", query+" ORDER BY op.id", args...)
}

func (r *repository) UpdateFulfillment(ctx context.Context, id int64, l Latches) error {
	return r.execOne(ctx, ErrPositionNotFound,
		`UPDATE order_positions SET confirmed = $1, delivered = $2 WHERE id = $3`,
		l.Confirmed, l.Delivered, id,
	)
}

func (r *repository) onePosition(ctx context.Context, query string, args ...any) (*Position, error) {
	p, err := scanPosition(db.Conn(ctx, r.db).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPositionNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load order position",
			zap.String("layer", "repository"),
			zap.Error(err),
		)
		return nil, err
	}
	return p, nil
}

func (r *repository) positions(ctx context.Context, method, query string, args ...any) ([]*Position, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", method),
	)

	rows, err := db.Conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query order positions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := make([]*Position, 0)
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			log.Error("failed to scan order position", zap.Error(err))
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration error", zap.Error(err))
		return nil, err
	}
	return out, nil
}

func (r *repository) execOne(ctx context.Context, notFound error, query string, args ...any) error {
	res, err := db.Conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to update order",
			zap.String("layer", "repository"),
			zap.Error(err),
		)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
