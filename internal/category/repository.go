package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"procurement-be/internal/db"
	"procurement-be/internal/logger"

	"go.uber.org/zap"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

type Repository interface {
	List(ctx context.Context, f Filter) ([]*Category, error)
	Get(ctx context.Context, id int64) (*Category, error)
	Create(ctx context.Context, name string) (*Category, error)
	Rename(ctx context.Context, id int64, name string) (*Category, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(conn *sql.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) List(ctx context.Context, f Filter) ([]*Category, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	} else if limit > maxLimit {
		limit = maxLimit
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListCategories"),
		zap.String("search", f.Search),
	)

	query := `SELECT c.id, c.name FROM categories c`
	args := []any{}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		query += fmt.Sprintf(" WHERE c.name ILIKE $%d", len(args))
	}
	query += fmt.Sprintf(" ORDER BY c.name ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, max(f.Offset, 0))

	rows, err := db.Conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query categories", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	out := make([]*Category, 0)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			log.Error("failed to scan category", zap.Error(err))
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Category, error) {
	var c Category
	err := db.Conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, name FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) Create(ctx context.Context, name string) (*Category, error) {
	c := Category{Name: name}
	err := db.Conn(ctx, r.db).QueryRowContext(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id`, name,
	).Scan(&c.ID)
	if db.IsUniqueViolation(err) {
		return nil, ErrNameTaken
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to insert category",
			zap.String("layer", "repository"),
			zap.String("name", name),
			zap.Error(err),
		)
		return nil, err
	}
	return &c, nil
}

func (r *repository) Rename(ctx context.Context, id int64, name string) (*Category, error) {
	c := Category{ID: id}
	err := db.Conn(ctx, r.db).QueryRowContext(ctx,
		`UPDATE categories SET name = $1 WHERE id = $2 RETURNING name`, name, id,
	).Scan(&c.Name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNotFound
	case db.IsUniqueViolation(err):
		return nil, ErrNameTaken
	case err != nil:
		return nil, err
	}
	return &c, nil
}

// Delete removes the category with its products, their stock and any cart
// positions holding that stock. Stock that appears in an order blocks it.
func (r *repository) Delete(ctx context.Context, id int64) error {
	res, err := db.Conn(ctx, r.db).ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
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
