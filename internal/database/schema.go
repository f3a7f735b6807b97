package database

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		sku TEXT UNIQUE,
		name TEXT NOT NULL,
		price TEXT,
		original_price TEXT,
		description TEXT,
		image_url TEXT,
		url TEXT,
		brand TEXT,
		category TEXT,
		color TEXT,
		material TEXT,
		images JSONB NOT NULL DEFAULT '[]',
		sizes JSONB NOT NULL DEFAULT '[]',
		specifications JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS product_enrichments (
		id BIGSERIAL PRIMARY KEY,
		product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		sleeve_type TEXT NOT NULL DEFAULT '',
		neckline TEXT NOT NULL DEFAULT '',
		fit TEXT NOT NULL DEFAULT '',
		closure_type TEXT NOT NULL DEFAULT '',
		pattern TEXT NOT NULL DEFAULT '',
		heel_height TEXT NOT NULL DEFAULT '',
		toe_style TEXT NOT NULL DEFAULT '',
		uv_protection TEXT NOT NULL DEFAULT '',
		material_parsed JSONB,
		care_instructions JSONB,
		key_features JSONB NOT NULL DEFAULT '[]',
		occasions JSONB NOT NULL DEFAULT '[]',
		seasons JSONB NOT NULL DEFAULT '[]',
		style_tags JSONB NOT NULL DEFAULT '[]',
		target_gender TEXT,
		target_age_group TEXT,
		target_age_range TEXT,
		search_keywords JSONB NOT NULL DEFAULT '[]',
		complementary_categories JSONB NOT NULL DEFAULT '[]',
		seo_title TEXT NOT NULL DEFAULT '',
		meta_description TEXT NOT NULL DEFAULT '',
		short_description TEXT NOT NULL DEFAULT '',
		marketing_highlights JSONB NOT NULL DEFAULT '[]',
		image_alt_text TEXT NOT NULL DEFAULT '',
		model TEXT,
		version TEXT,
		enriched_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_product_enrichments_latest
		ON product_enrichments (product_id, enriched_at DESC)`,
	`CREATE TABLE IF NOT EXISTS outbox_event (
		id UUID PRIMARY KEY,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		payload JSONB NOT NULL,
		target_stream TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		retry_count INT NOT NULL DEFAULT 0,
		error_message TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		processed_at TIMESTAMPTZ,
		next_retry_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_event_pending
		ON outbox_event (status, next_retry_at)`,
}

// Migrate creates the tables used by the repositories. It is safe to run
// repeatedly.
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
