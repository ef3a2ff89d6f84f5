package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"procurement-be/internal/db"
	"procurement-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Fetcher downloads a catalog file.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error)
}

type httpFetcher struct {
	client *http.Client
}

func NewHTTPFetcher(timeout time.Duration) Fetcher {
	return &httpFetcher{client: &http.Client{Timeout: timeout}}
}

func (f *httpFetcher) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch catalog: unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

type ImportResult struct {
	Shop       string `json:"shop"`
	Categories int    `json:"categories"`
	Goods      int    `json:"goods"`
	Zeroed     int64  `json:"zeroed"`
}

type Importer struct {
	repo  CatalogRepository
	tx    db.TxRunner
	fetch Fetcher
}

func NewImporter(repo CatalogRepository, tx db.TxRunner, fetch Fetcher) *Importer {
	return &Importer{repo: repo, tx: tx, fetch: fetch}
}

func validateURL(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}

// Import replaces a supplier's price list: every stock line of the supplier is
// zeroed first, then the file's lines are upserted, all in one transaction.
func (i *Importer) Import(ctx context.Context, supplierID int64, rawURL string) (*ImportResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "importer"),
		zap.Int64("supplier_id", supplierID),
		zap.String("url", rawURL),
	)

	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	body, err := i.fetch.Fetch(ctx, rawURL)
	if err != nil {
		log.Warn("catalog download failed", zap.Error(err))
		return nil, errors.Join(ErrDownloadFailed, err)
	}
	defer body.Close()

	file, err := ParseCatalog(body)
	if err != nil {
		log.Warn("catalog rejected", zap.Error(err))
		return nil, err
	}

	goods, err := file.stocks(supplierID)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Shop: file.Shop, Categories: len(file.Categories), Goods: len(goods)}

	err = i.tx.WithTx(ctx, func(ctx context.Context) error {
		for _, c := range file.Categories {
			stored, err := i.repo.EnsureCategory(ctx, c.ID, c.Name)
			if err != nil {
				return err
			}
			if stored != c.Name {
				return ErrCategoryConflict
			}
			if err := i.repo.LinkSupplierCategory(ctx, supplierID, c.ID); err != nil {
				return err
			}
		}

		zeroed, err := i.repo.ZeroSupplierStock(ctx, supplierID)
		if err != nil {
			return err
		}
		result.Zeroed = zeroed

		for _, s := range goods {
			productID, err := i.repo.UpsertProduct(ctx, s.CategoryID, s.ProductName, s.Model)
			if err != nil {
				return err
			}
			s.ProductID = productID
			if s.ID, err = i.repo.UpsertStock(ctx, s); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("catalog import failed", zap.Error(err))
		return nil, err
	}

	log.Info("catalog imported",
		zap.String("shop", result.Shop),
		zap.Int("goods", result.Goods),
		zap.Int64("zeroed", result.Zeroed),
	)
	return result, nil
}

func (f *CatalogFile) stocks(supplierID int64) ([]*Stock, error) {
	out := make([]*Stock, 0, len(f.Goods))
	for _, g := range f.Goods {
		price, err := decimal.NewFromString(string(g.Price))
		if err != nil || price.IsNegative() {
			return nil, ErrInvalidCatalog
		}
		priceRRC, err := decimal.NewFromString(string(g.PriceRRC))
		if err != nil || priceRRC.IsNegative() {
			return nil, ErrInvalidCatalog
		}

		params := make(map[string]string, len(g.Parameters))
		for k, v := range g.Parameters {
			params[k] = string(v)
		}

		out = append(out, &Stock{
			SupplierID:  supplierID,
			CategoryID:  g.Category,
			Article:     string(g.ID),
			ProductName: g.Name,
			Model:       g.Model,
			Quantity:    g.Quantity,
			Price:       price,
			PriceRRC:    priceRRC,
			Parameters:  params,
		})
	}
	return out, nil
}
