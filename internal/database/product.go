package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/maltedev/storefront-scraper/internal/models"
)

const (
	AggregateProduct = "product"

	EventProductScraped  = "PRODUCT_SCRAPED"
	EventProductEnriched = "PRODUCT_ENRICHED"
)

const productColumns = `id, sku, name, price, original_price, description, image_url, url,
	brand, category, color, material, images, sizes, specifications`

// ProductRepository stores scraped products keyed by SKU.
type ProductRepository struct {
	db     *DB
	outbox *OutboxRepository
}

func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{db: db, outbox: NewOutboxRepository(db)}
}

// Save upserts the product by SKU and records a PRODUCT_SCRAPED event in the
// same transaction. The returned product carries the database id.
func (r *ProductRepository) Save(ctx context.Context, p *models.Product) (*models.Product, error) {
	images, err := marshalJSON(p.Images, "[]")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal images: %w", err)
	}
	sizes, err := marshalJSON(p.Sizes, "[]")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sizes: %w", err)
	}
	specs, err := marshalJSON(p.Specifications, "{}")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal specifications: %w", err)
	}

	query := `
		INSERT INTO products (
			sku, name, price, original_price, description, image_url, url,
			brand, category, color, material, images, sizes, specifications
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
		ON CONFLICT (sku) DO UPDATE SET
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			original_price = EXCLUDED.original_price,
			description = EXCLUDED.description,
			image_url = EXCLUDED.image_url,
			url = EXCLUDED.url,
			brand = EXCLUDED.brand,
			category = EXCLUDED.category,
			color = EXCLUDED.color,
			material = EXCLUDED.material,
			images = EXCLUDED.images,
			sizes = EXCLUDED.sizes,
			specifications = EXCLUDED.specifications,
			updated_at = NOW()
		RETURNING id`

	saved := *p
	err = r.db.Transaction(ctx, func(tx pgx.Tx) error {
		var id int64
		if err := tx.QueryRow(ctx, query,
			nullString(p.SKU), p.Name, nullString(p.Price), nullString(p.OriginalPrice),
			nullString(p.Description), nullString(p.ImageURL), nullString(p.URL),
			nullString(p.Brand), nullString(p.Category), nullString(p.Color), nullString(p.Material),
			images, sizes, specs,
		).Scan(&id); err != nil {
			return fmt.Errorf("failed to upsert product: %w", err)
		}
		saved.SetID(id)

		event, err := NewProductEvent(EventProductScraped, id, saved.Fields())
		if err != nil {
			return err
		}
		return r.outbox.InsertWithTx(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	return &saved, nil
}

// FindBySKU returns ErrNotFound when no product has the SKU.
func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE sku = $1`

	p, err := scanProduct(r.db.pool.QueryRow(ctx, query, sku))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("product %q: %w", sku, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// FindAll returns every product, newest first.
func (r *ProductRepository) FindAll(ctx context.Context) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC, id DESC`

	rows, err := r.db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return products, nil
}

func scanProduct(row pgx.Row, extra ...any) (*models.Product, error) {
	var p models.Product
	var sku, price, originalPrice, description, imageURL sql.NullString
	var url, brand, category, color, material sql.NullString
	var images, sizes, specs []byte

	dest := []any{
		&p.ID, &sku, &p.Name, &price, &originalPrice, &description, &imageURL, &url,
		&brand, &category, &color, &material, &images, &sizes, &specs,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	p.SKU = sku.String
	p.Price = price.String
	p.OriginalPrice = originalPrice.String
	p.Description = description.String
	p.ImageURL = imageURL.String
	p.URL = url.String
	p.Brand = brand.String
	p.Category = category.String
	p.Color = color.String
	p.Material = material.String

	if err := unmarshalJSON(images, &p.Images); err != nil {
		return nil, fmt.Errorf("failed to decode images: %w", err)
	}
	if err := unmarshalJSON(sizes, &p.Sizes); err != nil {
		return nil, fmt.Errorf("failed to decode sizes: %w", err)
	}
	if err := unmarshalJSON(specs, &p.Specifications); err != nil {
		return nil, fmt.Errorf("failed to decode specifications: %w", err)
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Sizes == nil {
		p.Sizes = []string{}
	}
	if p.Specifications == nil {
		p.Specifications = map[string]string{}
	}

	return &p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// marshalJSON encodes v, substituting empty when v is a nil slice or map.
func marshalJSON(v any, empty string) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return []byte(empty), nil
	}
	return b, nil
}

func unmarshalJSON(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
