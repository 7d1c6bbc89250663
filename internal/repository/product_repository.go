package repository

import (
	"context"
	"errors"
	"fmt"

	"flora-kart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `p.id, p.name, p.slug, p.description, p.short_description, p.price, p.sale_price,
	p.image, p.category_id, COALESCE(c.name, ''), p.supplier_id, p.stock, p.is_best_seller, p.is_new,
	p.created_at, p.updated_at`

const productFrom = ` FROM products p LEFT JOIN categories c ON c.id = p.category_id`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	txStarter
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	logger = logger.With().Str("repository", "product").Logger()
	return &productRepository{
		txStarter: txStarter{pool: pool, logger: logger},
		pool:      pool,
		logger:    logger,
	}
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.ShortDescription,
		&p.Price,
		&p.SalePrice,
		&p.Image,
		&p.CategoryID,
		&p.CategoryName,
		&p.SupplierID,
		&p.Stock,
		&p.IsBestSeller,
		&p.IsNew,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) collect(rows pgx.Rows) ([]model.Product, error) {
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func slugConflict(slug string) *model.DomainError {
	return model.Conflict(model.ErrCodeSlugTaken, "Product with slug %s already exists", slug)
}

// Create inserts a product inside tx.
func (r *productRepository) Create(ctx context.Context, tx pgx.Tx, p *model.Product) error {
	query := `
		INSERT INTO products (id, name, slug, description, short_description, price, sale_price, image,
			category_id, supplier_id, stock, is_best_seller, is_new, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := tx.Exec(ctx, query,
		p.ID, p.Name, p.Slug, p.Description, p.ShortDescription, p.Price, p.SalePrice, p.Image,
		p.CategoryID, p.SupplierID, p.Stock, p.IsBestSeller, p.IsNew, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("slug", p.Slug).Msg("failed to create product")
		if terr := translateError(err, slugConflict(p.Slug), model.ErrCategoryNotFound); terr != err {
			return terr
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

func (r *productRepository) getOne(ctx context.Context, cond string, arg any) (*model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+productFrom+` WHERE `+cond, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Interface("key", arg).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Interface("key", arg).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}
	return p, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return r.getOne(ctx, "p.id = $1", id)
}

// GetBySlug retrieves a single product by slug.
func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return r.getOne(ctx, "p.slug = $1", slug)
}

// GetByIDs retrieves multiple products by their IDs.
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `SELECT ` + productColumns + productFrom + ` WHERE p.id = ANY($1::uuid[]) ORDER BY p.name`

	rows, err := r.pool.Query(ctx, query, uuidStrings(ids))
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	return r.collect(rows)
}

// SlugExists reports whether a product other than excludeID uses slug.
func (r *productRepository) SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE slug = $1 AND ($2::uuid IS NULL OR id <> $2))`,
		slug, excludeID,
	).Scan(&exists)
	if err != nil {
		r.logger.Error().Err(err).Str("slug", slug).Msg("failed to check product slug")
		return false, fmt.Errorf("failed to check product slug: %w", err)
	}
	return exists, nil
}

// List retrieves one page of products matching filter.
func (r *productRepository) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, int64, error) {
	page := filter.Page.Normalize()

	var w whereBuilder
	if filter.CategoryID != nil {
		w.add("p.category_id = ?", *filter.CategoryID)
	}
	if filter.SupplierID != nil {
		w.add("p.supplier_id = ?", *filter.SupplierID)
	}
	if filter.IsBestSeller != nil {
		w.add("p.is_best_seller = ?", *filter.IsBestSeller)
	}
	if filter.IsNew != nil {
		w.add("p.is_new = ?", *filter.IsNew)
	}
	if filter.MinPrice != nil {
		w.add("p.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		w.add("p.price <= ?", *filter.MaxPrice)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		w.add("(p.name ILIKE ? OR p.description ILIKE ? OR p.short_description ILIKE ?)", pattern, pattern, pattern)
	}
	where := w.clause()

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products p`+where, w.args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count products")
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	sort := filter.Sort
	column, ok := model.ProductSortFields[sort.Field]
	if !ok {
		sort = model.DefaultProductSort
		column = model.ProductSortFields[sort.Field]
	}
	direction := "ASC"
	if sort.Desc {
		direction = "DESC"
	}

	query := `SELECT ` + productColumns + productFrom + where +
		` ORDER BY p.` + column + ` ` + direction + `, p.id` +
		` LIMIT ` + w.next(page.Limit) + ` OFFSET ` + w.next(page.Offset())

	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}

	products, err := r.collect(rows)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// Update writes every mutable column of p inside tx.
func (r *productRepository) Update(ctx context.Context, tx pgx.Tx, p *model.Product) error {
	query := `
		UPDATE products
		SET name = $2, slug = $3, description = $4, short_description = $5, price = $6, sale_price = $7,
			image = $8, category_id = $9, supplier_id = $10, stock = $11, is_best_seller = $12, is_new = $13,
			updated_at = $14
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query,
		p.ID, p.Name, p.Slug, p.Description, p.ShortDescription, p.Price, p.SalePrice,
		p.Image, p.CategoryID, p.SupplierID, p.Stock, p.IsBestSeller, p.IsNew, p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", p.ID.String()).Msg("failed to update product")
		if terr := translateError(err, slugConflict(p.Slug), model.ErrCategoryNotFound); terr != err {
			return terr
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}

// Delete removes a product inside tx.
func (r *productRepository) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

// LockForUpdate row-locks the given products in id order so concurrent orders cannot deadlock.
func (r *productRepository) LockForUpdate(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `SELECT ` + productColumns + productFrom + `
		WHERE p.id = ANY($1::uuid[])
		ORDER BY p.id
		FOR UPDATE OF p`

	rows, err := tx.Query(ctx, query, uuidStrings(ids))
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to lock products")
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}

	return r.collect(rows)
}

// AdjustStock applies signed deltas in one batch. Products that no longer exist are skipped.
func (r *productRepository) AdjustStock(ctx context.Context, tx pgx.Tx, deltas []model.StockDelta) error {
	if len(deltas) == 0 {
		return nil
	}

	query := `UPDATE products SET stock = stock + $2, updated_at = NOW() WHERE id = $1`

	batch := &pgx.Batch{}
	for _, d := range deltas {
		batch.Queue(query, d.ProductID, d.Delta)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for _, d := range deltas {
		tag, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("product_id", d.ProductID.String()).
				Int("delta", d.Delta).
				Msg("failed to adjust stock")
			return fmt.Errorf("failed to adjust stock: %w", err)
		}
		if tag.RowsAffected() == 0 {
			r.logger.Warn().
				Str("product_id", d.ProductID.String()).
				Int("delta", d.Delta).
				Msg("stock adjustment skipped for missing product")
		}
	}

	r.logger.Debug().Int("count", len(deltas)).Msg("stock adjusted")

	return nil
}

// SetImage stores the product image URL.
func (r *productRepository) SetImage(ctx context.Context, id uuid.UUID, url string) (*model.Product, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET image = $2, updated_at = NOW() WHERE id = $1`, id, url)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to set product image")
		return nil, fmt.Errorf("failed to set product image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}
