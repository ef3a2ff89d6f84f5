package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"procurement-be/internal/db"
	"procurement-be/internal/logger"

	"go.uber.org/zap"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

type Repository interface {
	List(ctx context.Context, f Filter) ([]*Product, error)
	Get(ctx context.Context, id int64) (*Product, error)
	// Create returns the existing row when the category, name and model
	// are already taken.
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(conn *sql.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) List(ctx context.Context, f Filter) ([]*Product, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	} else if limit > maxLimit {
		limit = maxLimit
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListProducts"),
	)

	var (
		where []string
		args  []any
	)
	if f.ID != nil {
		args = append(args, *f.ID)
		where = append(where, fmt.Sprintf("p.id = $%d", len(args)))
	}
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		where = append(where, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if f.Name != "" {
		args = append(args, "%"+f.Name+"%")
		where = append(where, fmt.Sprintf("p.name ILIKE $%d", len(args)))
	}

	query := `SELECT p.id, p.category_id, p.name, p.model FROM products p`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY p.id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, max(f.Offset, 0))

	rows, err := db.Conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query products", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := make([]*Product, 0)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Model); err != nil {
			log.Error("failed to scan product", zap.Error(err))
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Product, error) {
	var p Product
	err := db.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, category_id, name, model FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.CategoryID, &p.Name, &p.Model)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) Create(ctx context.Context, p *Product) error {
	err := db.Conn(ctx, r.db).QueryRowContext(ctx, `
		INSERT INTO products (category_id, name, model) VALUES ($1, $2, $3)
		ON CONFLICT (category_id, name, model) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`,
		p.CategoryID, p.Name, p.Model,
	).Scan(&p.ID)
	if db.IsForeignKeyViolation(err) {
		return ErrCategoryNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to insert product",
			zap.String("layer", "repository"),
			zap.Int64("category_id", p.CategoryID),
			zap.Error(err),
		)
	}
	return err
}

func (r *repository) Update(ctx context.Context, p *Product) error {
	res, err := db.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE products SET category_id = $1, name = $2, model = $3 WHERE id = $4`,
		p.CategoryID, p.Name, p.Model, p.ID,
	)
	switch {
	case db.IsForeignKeyViolation(err):
		return ErrCategoryNotFound
	case db.IsUniqueViolation(err):
		return ErrDuplicate
	case err != nil:
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	res, err := db.Conn(ctx, r.db).ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if db.IsForeignKeyViolation(err) {
		return ErrInUse
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
