package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"partshop/storefront/internal/catalog"
	"partshop/storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogRepository is the postgres-backed catalog store. It also accepts
// imported catalog data.
type CatalogRepository interface {
	catalog.Store
	SaveCategories(ctx context.Context, categories []domain.Category) error
	SaveProducts(ctx context.Context, products []domain.Product) error
	EnsureSchema(ctx context.Context) error
}

type catalogRepository struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) CatalogRepository {
	return &catalogRepository{
		db: db,
	}
}

const productColumns = `p.id, p.name, p.part_number, p.description, p.category_id, p.price,
	p.original_price, p.stock_quantity, p.delivery_time, p.is_popular, p.is_fast_track,
	p.image_url, p.rating, p.review_count, p.created_at`

func (r *catalogRepository) QueryProducts(ctx context.Context, filter domain.ProductFilter) (*domain.ProductPage, error) {
	where, args := buildProductWhere(filter)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM products p WHERE %s`, where)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	page := &domain.ProductPage{TotalCount: total, Items: []domain.Product{}}
	if filter.Offset() >= total {
		return page, nil
	}

	dataQuery := fmt.Sprintf(`SELECT %s FROM products p WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		productColumns, where, buildOrderClause(filter.Sort), len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := r.db.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}

	page.Items = products
	return page, nil
}

func (r *catalogRepository) MatchCategories(ctx context.Context, term string, limit int) ([]domain.Category, error) {
	query := `
	SELECT c.id, c.name, c.icon, (SELECT COUNT(*) FROM products p WHERE p.category_id = c.id)
	FROM categories c
	WHERE c.name ILIKE $1
	ORDER BY c.position, c.id
	LIMIT $2`
	rows, err := r.db.Query(ctx, query, likePattern(term), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to match categories: %w", err)
	}

	categories, err := pgx.CollectRows(rows, scanCategory)
	if err != nil {
		return nil, fmt.Errorf("failed to scan categories: %w", err)
	}
	return categories, nil
}

func (r *catalogRepository) MatchProducts(ctx context.Context, term string, limit int) ([]domain.Product, error) {
	query := fmt.Sprintf(`
	SELECT %s
	FROM products p
	WHERE p.name ILIKE $1 OR p.part_number ILIKE $1
	ORDER BY p.id
	LIMIT $2`, productColumns)
	rows, err := r.db.Query(ctx, query, likePattern(term), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to match products: %w", err)
	}

	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}
	return products, nil
}

func (r *catalogRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products p WHERE p.id = $1`, productColumns)
	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}

	product, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %s: %w", id, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan product %s: %w", id, err)
	}
	return &product, nil
}

func (r *catalogRepository) GetProducts(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	out := make(map[string]domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM products p WHERE p.id = ANY($1)`, productColumns)
	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}

	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

func (r *catalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	query := `
	SELECT c.id, c.name, c.icon, (SELECT COUNT(*) FROM products p WHERE p.category_id = c.id)
	FROM categories c
	ORDER BY c.position, c.id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories, err := pgx.CollectRows(rows, scanCategory)
	if err != nil {
		return nil, fmt.Errorf("failed to scan categories: %w", err)
	}
	return categories, nil
}

func (r *catalogRepository) SaveCategories(ctx context.Context, categories []domain.Category) error {
	query := `
	INSERT INTO categories (id, name, icon, position)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (id)
	DO UPDATE SET name = $2, icon = $3, position = $4`

	batch := &pgx.Batch{}
	for i, c := range categories {
		batch.Queue(query, c.ID, c.Name, c.Icon, i)
	}

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save categories: %w", err)
	}
	return nil
}

func (r *catalogRepository) SaveProducts(ctx context.Context, products []domain.Product) error {
	query := `
	INSERT INTO products (id, name, part_number, description, category_id, price, original_price,
		stock_quantity, delivery_time, is_popular, is_fast_track, image_url, rating, review_count, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (id)
	DO UPDATE SET name = $2, part_number = $3, description = $4, category_id = $5, price = $6,
		original_price = $7, stock_quantity = $8, delivery_time = $9, is_popular = $10,
		is_fast_track = $11, image_url = $12, rating = $13, review_count = $14`

	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(query, p.ID, p.Name, p.PartNumber, p.Description, p.CategoryID, p.Price,
			p.OriginalPrice, p.StockQuantity, p.DeliveryTime, p.IsPopular, p.IsFastTrack,
			p.ImageURL, p.Rating, p.ReviewCount, p.CreatedAt)
	}

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to save products: %w", err)
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.PartNumber, &p.Description, &p.CategoryID, &p.Price,
		&p.OriginalPrice, &p.StockQuantity, &p.DeliveryTime, &p.IsPopular, &p.IsFastTrack,
		&p.ImageURL, &p.Rating, &p.ReviewCount, &p.CreatedAt)
	return p, err
}

func scanCategory(row pgx.CollectableRow) (domain.Category, error) {
	var c domain.Category
	err := row.Scan(&c.ID, &c.Name, &c.Icon, &c.ProductCount)
	return c, err
}

// buildProductWhere renders the filter predicates with positional arguments.
func buildProductWhere(filter domain.ProductFilter) (string, []any) {
	conditions := []string{"TRUE"}
	args := []any{}

	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Text != "" {
		ph := next(likePattern(filter.Text))
		conditions = append(conditions,
			fmt.Sprintf("(p.name ILIKE %[1]s OR p.part_number ILIKE %[1]s OR p.description ILIKE %[1]s)", ph))
	}
	if filter.CategoryID != "" {
		conditions = append(conditions, "p.category_id = "+next(filter.CategoryID))
	}
	if filter.PriceMin != nil {
		conditions = append(conditions, "p.price >= "+next(*filter.PriceMin))
	}
	if filter.PriceMax != nil {
		conditions = append(conditions, "p.price <= "+next(*filter.PriceMax))
	}
	if filter.InStockOnly {
		conditions = append(conditions, "p.stock_quantity > 0")
	}

	return strings.Join(conditions, " AND "), args
}

// buildOrderClause always ends on p.id so pages stay stable under ties.
func buildOrderClause(sort domain.SortKey) string {
	switch sort {
	case domain.SortPriceAsc:
		return "p.price ASC, p.id ASC"
	case domain.SortPriceDesc:
		return "p.price DESC, p.id ASC"
	case domain.SortNewest:
		return "p.created_at DESC, p.id ASC"
	case domain.SortBestSelling:
		return "p.review_count DESC, p.id ASC"
	default:
		return "p.rating DESC, p.id ASC"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
