package category

import (
	"context"
	"strings"

	"procurement-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context, f Filter) ([]*Category, error)
	Get(ctx context.Context, id int64) (*Category, error)
	Create(ctx context.Context, name string) (*Category, error)
	Rename(ctx context.Context, id int64, name *string) (*Category, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, f Filter) ([]*Category, error) {
	f.Search = strings.TrimSpace(f.Search)
	return s.repo.List(ctx, f)
}

func (s *service) Get(ctx context.Context, id int64) (*Category, error) {
	return s.repo.Get(ctx, id)
}

func (s *service) Create(ctx context.Context, name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	c, err := s.repo.Create(ctx, name)
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("category created",
		zap.String("layer", "service"),
		zap.Int64("category_id", c.ID),
	)
	return c, nil
}

// Rename with a nil name is a no-op that returns the current row.
func (s *service) Rename(ctx context.Context, id int64, name *string) (*Category, error) {
	if name == nil {
		return s.repo.Get(ctx, id)
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil, ErrNameRequired
	}
	return s.repo.Rename(ctx, id, trimmed)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "DeleteCategory"),
		zap.Int64("category_id", id),
	)

	if err := s.repo.Delete(ctx, id); err != nil {
		log.Warn("delete category failed", zap.Error(err))
		return err
	}

	log.Info("category deleted")
	return nil
}
