package inventory

import (
	"context"
)

// Service exposes the read side of the catalog and the bulk import.
type Service interface {
	GetStock(ctx context.Context, id int64) (*Stock, error)
	ListStocks(ctx context.Context, filter StockFilter) ([]*Stock, error)
	Import(ctx context.Context, supplierID int64, rawURL string) (*ImportResult, error)
}

type service struct {
	repo     Repository
	importer *Importer
}

func NewService(repo Repository, importer *Importer) Service {
	return &service{repo: repo, importer: importer}
}

func (s *service) GetStock(ctx context.Context, id int64) (*Stock, error) {
	return s.repo.GetStock(ctx, id)
}

func (s *service) ListStocks(ctx context.Context, filter StockFilter) ([]*Stock, error) {
	return s.repo.ListStocks(ctx, filter)
}

func (s *service) Import(ctx context.Context, supplierID int64, rawURL string) (*ImportResult, error) {
	return s.importer.Import(ctx, supplierID, rawURL)
}
