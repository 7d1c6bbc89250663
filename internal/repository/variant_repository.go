package repository

import (
	"context"
	"fmt"

	"flora-kart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type variantRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewVariantRepository creates a new PostgreSQL-backed variant repository.
func NewVariantRepository(pool *pgxpool.Pool, logger zerolog.Logger) VariantRepository {
	return &variantRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "variant").Logger(),
	}
}

func (r *variantRepository) Create(ctx context.Context, v *model.Variant) error {
	query := `
		INSERT INTO variants (id, product_id, size, variant, price, stock_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query, v.ID, v.ProductID, v.Size, v.Variant, v.Price, v.StockQuantity, v.CreatedAt, v.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", v.ProductID.String()).Msg("failed to create variant")
		if terr := translateError(err, nil, model.ErrProductNotFound); terr != err {
			return terr
		}
		return fmt.Errorf("failed to create variant: %w", err)
	}
	return nil
}

func (r *variantRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.Variant, error) {
	query := `
		SELECT id, product_id, size, variant, price, stock_quantity, created_at, updated_at
		FROM variants
		WHERE product_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to query variants")
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}
	defer rows.Close()

	variants := []model.Variant{}
	for rows.Next() {
		var v model.Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Size, &v.Variant, &v.Price, &v.StockQuantity, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating variants: %w", err)
	}

	return variants, nil
}

func (r *variantRepository) DeleteByProduct(ctx context.Context, tx pgx.Tx, productID uuid.UUID) (int64, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM variants WHERE product_id = $1`, productID)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to delete variants")
		return 0, fmt.Errorf("failed to delete variants: %w", err)
	}
	return tag.RowsAffected(), nil
}
