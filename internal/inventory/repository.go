package inventory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"procurement-be/internal/db"
	"procurement-be/internal/logger"

	"go.uber.org/zap"
)

// Repository is the storage side of the ledger. LockStock must be called
// inside a transaction; it holds the row until commit.
type Repository interface {
	GetStock(ctx context.Context, id int64) (*Stock, error)
	LockStock(ctx context.Context, id int64) (*Stock, error)
	UpdateQuantity(ctx context.Context, id int64, quantity int) error
	ListStocks(ctx context.Context, filter StockFilter) ([]*Stock, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(conn *sql.DB) Repository {
	return &repository{db: conn}
}

const selectStock = `
	SELECT s.id, s.supplier_id, s.product_id, p.category_id, s.article,
	       p.name, p.model, s.quantity, s.price, s.price_rrc, s.parameters,
	       sp.order_status
	FROM stocks s
	JOIN products p ON p.id = s.product_id
	JOIN suppliers sp ON sp.id = s.supplier_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStock(row rowScanner) (*Stock, error) {
	var (
		s      Stock
		params []byte
	)
	err := row.Scan(
		&s.ID, &s.SupplierID, &s.ProductID, &s.CategoryID, &s.Article,
		&s.ProductName, &s.Model, &s.Quantity, &s.Price, &s.PriceRRC, &params,
		&s.SupplierAcceptsOrders,
	)
	if err != nil {
		return nil, err
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &s.Parameters); err != nil {
			return nil, fmt.Errorf("decode stock parameters: %w", err)
		}
	}
	return &s, nil
}

func (r *repository) GetStock(ctx context.Context, id int64) (*Stock, error) {
	return r.getStock(ctx, id, "GetStock", "")
}

func (r *repository) LockStock(ctx context.Context, id int64) (*Stock, error) {
	return r.getStock(ctx, id, "LockStock", " FOR UPDATE OF s")
}

func (r *repository) getStock(ctx context.Context, id int64, method, suffix string) (*Stock, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", method),
		zap.Int64("stock_id", id),
	)

	row := db.Conn(ctx, r.db).QueryRowContext(ctx, selectStock+` WHERE s.id = $1`+suffix, id)
	s, err := scanStock(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStockNotFound
	}
	if err != nil {
		log.Error("failed to load stock", zap.Error(err))
		return nil, err
	}
	return s, nil
}

func (r *repository) UpdateQuantity(ctx context.Context, id int64, quantity int) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdateQuantity"),
		zap.Int64("stock_id", id),
		zap.Int("quantity", quantity),
	)

	res, err := db.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE stocks SET quantity = $1, updated_at = NOW() WHERE id = $2`,
		quantity, id,
	)
	if err != nil {
		log.Error("failed to update stock quantity", zap.Error(err))
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStockNotFound
	}
	return nil
}

func (r *repository) ListStocks(ctx context.Context, filter StockFilter) ([]*Stock, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListStocks"),
	)

	var (
		where []string
		args  []any
	)
	if filter.SupplierID != nil {
		args = append(args, *filter.SupplierID)
		where = append(where, fmt.Sprintf("s.supplier_id = $%d", len(args)))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		where = append(where, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		args = append(args, "%"+q+"%")
		where = append(where, fmt.Sprintf("(p.name ILIKE $%d OR p.model ILIKE $%d)", len(args), len(args)))
	}

	query := selectStock
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, filter.limit(), max(filter.Offset, 0))
	query += fmt.Sprintf(" ORDER BY s.id LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := db.Conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query stocks", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	stocks := make([]*Stock, 0)
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			log.Error("failed to scan stock row", zap.Error(err))
			return nil, err
		}
		stocks = append(stocks, s)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration error", zap.Error(err))
		return nil, err
	}

	return stocks, nil
}
