package user

import (
	"context"
	"database/sql"
	"errors"

	"procurement-be/internal/access"
	"procurement-be/internal/db"
	"procurement-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, email, passwordHash string, role access.Role) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(conn *sql.DB) Repository {
	return &repository{db: conn}
}

func (r *repository) Create(ctx context.Context, email, passwordHash string, role access.Role) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
	)

	var u User
	err := db.Conn(ctx, r.db).QueryRowContext(ctx,
		`INSERT INTO users (email, password, role) VALUES ($1, $2, $3) RETURNING id, email, password, role, created_at`,
		email, passwordHash, role,
	).Scan(&u.ID, &u.Email, &u.Password, &u.Role, &u.CreatedAt)
	if db.IsUniqueViolation(err) {
		return nil, ErrEmailExists
	}
	if err != nil {
		log.Error("failed to insert user", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.one(ctx, `SELECT id, email, password, role, created_at FROM users WHERE email = $1`, email)
}

func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.one(ctx, `SELECT id, email, password, role, created_at FROM users WHERE id = $1`, id)
}

func (r *repository) one(ctx context.Context, query string, arg any) (*User, error) {
	var u User
	err := db.Conn(ctx, r.db).QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Email, &u.Password, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load user",
			zap.String("layer", "repository"),
			zap.Error(err),
		)
		return nil, err
	}
	return &u, nil
}
