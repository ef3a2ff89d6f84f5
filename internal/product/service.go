package product

import (
	"context"
	"strings"

	"procurement-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context, f Filter) ([]*Product, error)
	Get(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, params CreateParams) (*Product, error)
	Update(ctx context.Context, id int64, params UpdateParams) (*Product, error)
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, f Filter) ([]*Product, error) {
	f.Name = strings.TrimSpace(f.Name)
	return s.repo.List(ctx, f)
}

func (s *service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *service) Create(ctx context.Context, params CreateParams) (*Product, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if params.CategoryID == nil {
		return nil, ErrCategoryRequired
	}

	p := &Product{CategoryID: *params.CategoryID, Name: name, Model: strings.TrimSpace(params.Model)}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("product saved",
		zap.String("layer", "service"),
		zap.Int64("product_id", p.ID),
		zap.Int64("category_id", p.CategoryID),
	)
	return p, nil
}

func (s *service) Update(ctx context.Context, id int64, params UpdateParams) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateProduct"),
		zap.Int64("product_id", id),
	)

	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		p.Name = name
	}
	if params.CategoryID != nil {
		p.CategoryID = *params.CategoryID
	}
	if params.Model != nil {
		p.Model = strings.TrimSpace(*params.Model)
	}

	if err := s.repo.Update(ctx, p); err != nil {
		log.Warn("update product failed", zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		logger.FromCtx(ctx).Warn("delete product failed",
			zap.String("layer", "service"),
			zap.Int64("product_id", id),
			zap.Error(err),
		)
		return err
	}
	return nil
}
