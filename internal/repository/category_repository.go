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

const categoryColumns = `id, name, slug, description, image, product_count, created_at, updated_at`

type categoryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(pool *pgxpool.Pool, logger zerolog.Logger) CategoryRepository {
	return &categoryRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "category").Logger(),
	}
}

func scanCategory(row pgx.Row) (*model.Category, error) {
	var c model.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Image, &c.ProductCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func categorySlugConflict(slug string) *model.DomainError {
	return model.Conflict(model.ErrCodeSlugTaken, "Category with slug %s already exists", slug)
}

func (r *categoryRepository) Create(ctx context.Context, c *model.Category) error {
	query := `
		INSERT INTO categories (` + categoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query, c.ID, c.Name, c.Slug, c.Description, c.Image, c.ProductCount, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("slug", c.Slug).Msg("failed to create category")
		if terr := translateError(err, categorySlugConflict(c.Slug), nil); terr != err {
			return terr
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *categoryRepository) getOne(ctx context.Context, cond string, arg any) (*model.Category, error) {
	c, err := scanCategory(r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE `+cond, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Interface("key", arg).Msg("failed to query category")
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return c, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	return r.getOne(ctx, "slug = $1", slug)
}

func (r *categoryRepository) SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE slug = $1 AND ($2::uuid IS NULL OR id <> $2))`,
		slug, excludeID,
	).Scan(&exists)
	if err != nil {
		r.logger.Error().Err(err).Str("slug", slug).Msg("failed to check category slug")
		return false, fmt.Errorf("failed to check category slug: %w", err)
	}
	return exists, nil
}

// List returns categories sorted by name.
func (r *categoryRepository) List(ctx context.Context, filter model.CategoryFilter) ([]model.Category, int64, error) {
	page := filter.Page.Normalize()

	var w whereBuilder
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		w.add("(name ILIKE ? OR description ILIKE ?)", pattern, pattern)
	}
	where := w.clause()

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories`+where, w.args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count categories")
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}

	query := `SELECT ` + categoryColumns + ` FROM categories` + where +
		` ORDER BY name, id LIMIT ` + w.next(page.Limit) + ` OFFSET ` + w.next(page.Offset())

	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query categories")
		return nil, 0, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, total, nil
}

func (r *categoryRepository) Update(ctx context.Context, c *model.Category) error {
	query := `
		UPDATE categories
		SET name = $2, slug = $3, description = $4, image = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, c.ID, c.Name, c.Slug, c.Description, c.Image, c.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("category_id", c.ID.String()).Msg("failed to update category")
		if terr := translateError(err, categorySlugConflict(c.Slug), nil); terr != err {
			return terr
		}
		return fmt.Errorf("failed to update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCategoryNotFound
	}
	return nil
}

// Delete removes a category. Categories still referenced by products are a Conflict.
func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("category_id", id.String()).Msg("failed to delete category")
		inUse := model.Conflict(model.ErrCodeConflict, "Category still has products")
		if terr := translateError(err, nil, inUse); terr != err {
			return terr
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCategoryNotFound
	}
	return nil
}

func (r *categoryRepository) AdjustProductCount(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta int) error {
	tag, err := tx.Exec(ctx,
		`UPDATE categories SET product_count = product_count + $2, updated_at = NOW() WHERE id = $1`,
		id, delta,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("category_id", id.String()).Int("delta", delta).Msg("failed to adjust product count")
		return fmt.Errorf("failed to adjust product count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrCategoryNotFound
	}
	return nil
}
