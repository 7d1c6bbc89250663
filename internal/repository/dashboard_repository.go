package repository

import (
	"context"
	"fmt"

	"flora-kart/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type dashboardRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewDashboardRepository creates the read-only aggregate repository.
func NewDashboardRepository(pool *pgxpool.Pool, logger zerolog.Logger) DashboardRepository {
	return &dashboardRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "dashboard").Logger(),
	}
}

func (r *dashboardRepository) count(ctx context.Context, what, query string, args ...any) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		r.logger.Error().Err(err).Str("aggregate", what).Msg("failed to count")
		return 0, fmt.Errorf("failed to count %s: %w", what, err)
	}
	return n, nil
}

func (r *dashboardRepository) CountOrders(ctx context.Context, status model.OrderStatus) (int64, error) {
	if status == "" {
		return r.count(ctx, "orders", `SELECT COUNT(*) FROM orders`)
	}
	return r.count(ctx, "orders", `SELECT COUNT(*) FROM orders WHERE status = $1`, status)
}

func (r *dashboardRepository) SumOrderTotal(ctx context.Context, status model.OrderStatus, window *model.TimeWindow) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(total), 0) FROM orders WHERE status = $1`
	args := []any{status}
	if window != nil {
		query += ` AND created_at >= $2 AND created_at < $3`
		args = append(args, window.From, window.To)
	}

	var sum decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&sum); err != nil {
		r.logger.Error().Err(err).Str("status", string(status)).Msg("failed to sum order totals")
		return decimal.Zero, fmt.Errorf("failed to sum order totals: %w", err)
	}
	return sum, nil
}

func (r *dashboardRepository) RecentOrders(ctx context.Context, limit int) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id LIMIT $1`, limit)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query recent orders")
		return nil, fmt.Errorf("failed to query recent orders: %w", err)
	}

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

func (r *dashboardRepository) CountUsers(ctx context.Context) (int64, error) {
	return r.count(ctx, "users", `SELECT COUNT(*) FROM users`)
}

func (r *dashboardRepository) CountProducts(ctx context.Context) (int64, error) {
	return r.count(ctx, "products", `SELECT COUNT(*) FROM products`)
}

func (r *dashboardRepository) CountCategories(ctx context.Context) (int64, error) {
	return r.count(ctx, "categories", `SELECT COUNT(*) FROM categories`)
}

// ProductsPerCategory counts live products per category, including empty categories.
func (r *dashboardRepository) ProductsPerCategory(ctx context.Context) ([]model.CategoryProductCount, error) {
	query := `
		SELECT c.name, COUNT(p.id)
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id
		GROUP BY c.id, c.name
		ORDER BY c.name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products per category")
		return nil, fmt.Errorf("failed to query products per category: %w", err)
	}
	defer rows.Close()

	out := []model.CategoryProductCount{}
	for rows.Next() {
		var c model.CategoryProductCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category counts: %w", err)
	}
	return out, nil
}
