package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/maltedev/storefront-scraper/internal/models"
)

// CatalogQuery reads products together with their latest enrichment.
type CatalogQuery struct {
	db *DB
}

func NewCatalogQuery(db *DB) *CatalogQuery {
	return &CatalogQuery{db: db}
}

var catalogSelect = `
	SELECT ` + qualify("p", productColumns) + `, ` + qualify("e", enrichmentColumns) + `
	FROM products p
	LEFT JOIN LATERAL (
		SELECT * FROM product_enrichments pe
		WHERE pe.product_id = p.id
		ORDER BY pe.enriched_at DESC, pe.id DESC
		LIMIT 1
	) e ON TRUE`

func (q *CatalogQuery) FindAll(ctx context.Context) ([]*models.Product, error) {
	rows, err := q.db.pool.Query(ctx, catalogSelect+` ORDER BY p.created_at DESC, p.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		p, err := scanCatalogRow(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return products, nil
}

// FindByID returns ErrNotFound when the product does not exist.
func (q *CatalogQuery) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	p, err := scanCatalogRow(q.db.pool.QueryRow(ctx, catalogSelect+` WHERE p.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func scanCatalogRow(row pgx.Row) (*models.Product, error) {
	var e enrichmentRow
	p, err := scanProduct(row, e.dest()...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan catalog row: %w", err)
	}

	enrichment, err := e.toEnrichment()
	if err != nil {
		return nil, err
	}
	p.SetEnrichedData(enrichment)
	return p, nil
}

func qualify(alias, columns string) string {
	cols := strings.Split(columns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}
