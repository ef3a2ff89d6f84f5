package inventory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"

	"procurement-be/internal/db"
	"procurement-be/internal/logger"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// CatalogFile is the supplier price list format accepted by the importer.
type CatalogFile struct {
	Shop       string            `yaml:"shop"`
	Categories []CatalogCategory `yaml:"categories"`
	Goods      []CatalogGood     `yaml:"goods"`
}

type CatalogCategory struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
}

type CatalogGood struct {
	ID         scalar            `yaml:"id"`
	Category   int64             `yaml:"category"`
	Name       string            `yaml:"name"`
	Model      string            `yaml:"model"`
	Price      scalar            `yaml:"price"`
	PriceRRC   scalar            `yaml:"price_rrc"`
	Quantity   int               `yaml:"quantity"`
	Parameters map[string]scalar `yaml:"parameters"`
}

// scalar keeps the literal text of a YAML scalar so numeric articles and
// prices are not rounded through float64.
type scalar string

func (s *scalar) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar value", value.Line)
	}
	*s = scalar(value.Value)
	return nil
}

func ParseCatalog(r io.Reader) (*CatalogFile, error) {
	var f CatalogFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if f.Shop == "" || len(f.Goods) == 0 {
		return nil, ErrInvalidCatalog
	}

	known := make(map[int64]bool, len(f.Categories))
	for _, c := range f.Categories {
		known[c.ID] = true
	}
	for _, g := range f.Goods {
		if !known[g.Category] {
			return nil, ErrUnknownCategory
		}
		if g.ID == "" || g.Name == "" || g.Quantity < 0 {
			return nil, ErrInvalidCatalog
		}
	}
	return &f, nil
}

// CatalogRepository holds the bulk writes used by the importer. They bypass
// the ledger and overwrite quantities directly.
type CatalogRepository interface {
	// EnsureCategory creates the category when missing and returns the name
	// stored for id.
	EnsureCategory(ctx context.Context, id int64, name string) (string, error)
	LinkSupplierCategory(ctx context.Context, supplierID, categoryID int64) error
	ZeroSupplierStock(ctx context.Context, supplierID int64) (int64, error)
	UpsertProduct(ctx context.Context, categoryID int64, name, model string) (int64, error)
	UpsertStock(ctx context.Context, s *Stock) (int64, error)
}

type catalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(conn *sql.DB) CatalogRepository {
	return &catalogRepository{db: conn}
}

func (r *catalogRepository) EnsureCategory(ctx context.Context, id int64, name string) (string, error) {
	var stored string
	err := db.Conn(ctx, r.db).QueryRowContext(ctx, `
		INSERT INTO categories (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET id = EXCLUDED.id
		RETURNING name`,
		id, name,
	).Scan(&stored)
	if db.IsUniqueViolation(err) {
		return "", ErrCategoryConflict
	}
	return stored, err
}

func (r *catalogRepository) LinkSupplierCategory(ctx context.Context, supplierID, categoryID int64) error {
	_, err := db.Conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO supplier_categories (supplier_id, category_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		supplierID, categoryID,
	)
	return err
}

func (r *catalogRepository) ZeroSupplierStock(ctx context.Context, supplierID int64) (int64, error) {
	res, err := db.Conn(ctx, r.db).ExecContext(ctx,
		`UPDATE stocks SET quantity = 0, updated_at = NOW() WHERE supplier_id = $1`,
		supplierID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *catalogRepository) UpsertProduct(ctx context.Context, categoryID int64, name, model string) (int64, error) {
	var id int64
	err := db.Conn(ctx, r.db).QueryRowContext(ctx, `
		INSERT INTO products (category_id, name, model) VALUES ($1, $2, $3)
		ON CONFLICT (category_id, name, model) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`,
		categoryID, name, model,
	).Scan(&id)
	return id, err
}

func (r *catalogRepository) UpsertStock(ctx context.Context, s *Stock) (int64, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpsertStock"),
		zap.String("article", s.Article),
	)

	params, err := json.Marshal(s.Parameters)
	if err != nil {
		return 0, err
	}

	var id int64
	err = db.Conn(ctx, r.db).QueryRowContext(ctx, `
		INSERT INTO stocks (supplier_id, product_id, article, quantity, price, price_rrc, parameters)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (product_id, supplier_id, article) DO UPDATE
		SET quantity = EXCLUDED.quantity,
		    price = EXCLUDED.price,
		    price_rrc = EXCLUDED.price_rrc,
		    parameters = EXCLUDED.parameters,
		    updated_at = NOW()
		RETURNING id`,
		s.SupplierID, s.ProductID, s.Article, s.Quantity, s.Price, s.PriceRRC, params,
	).Scan(&id)
	if err != nil {
		log.Error("failed to upsert stock", zap.Error(err))
		return 0, err
	}
	return id, nil
}
