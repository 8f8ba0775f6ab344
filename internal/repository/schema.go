package repository

import (
	"context"
	"fmt"
)

const catalogSchema = `
CREATE TABLE IF NOT EXISTS categories (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	icon     TEXT NOT NULL DEFAULT '',
	position INT  NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS products (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	part_number    TEXT NOT NULL DEFAULT '',
	description    TEXT NOT NULL DEFAULT '',
	category_id    TEXT NOT NULL REFERENCES categories (id),
	price          BIGINT NOT NULL CHECK (price >= 0),
	original_price BIGINT CHECK (original_price >= 0),
	stock_quantity INT NOT NULL DEFAULT 0,
	delivery_time  TEXT NOT NULL DEFAULT '',
	is_popular     BOOLEAN NOT NULL DEFAULT FALSE,
	is_fast_track  BOOLEAN NOT NULL DEFAULT FALSE,
	image_url      TEXT NOT NULL DEFAULT '',
	rating         DOUBLE PRECISION NOT NULL DEFAULT 0,
	review_count   INT NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS products_category_idx ON products (category_id);
`

// EnsureSchema creates the catalog tables when they are missing.
func (r *catalogRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, catalogSchema); err != nil {
		return fmt.Errorf("failed to ensure catalog schema: %w", err)
	}
	return nil
}
