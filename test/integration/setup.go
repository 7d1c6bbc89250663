package integration

import (
	"context"
	"testing"
	"time"

	"flora-kart/internal/database"
	"flora-kart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a migrated PostgreSQL test instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB starts a PostgreSQL container and applies the embedded migrations.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	if err := database.Migrate(connStr, zerolog.Nop()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// CleanupDB removes all rows, children first.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		"TRUNCATE order_items, orders, variants, products, categories, users")
	if err != nil {
		t.Fatalf("failed to clean tables: %v", err)
	}
}

// SeedCategory inserts a category and returns its id.
func SeedCategory(t *testing.T, pool *pgxpool.Pool, slug string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		"INSERT INTO categories (id, name, slug) VALUES ($1, $2, $3)",
		id, slug, slug,
	)
	if err != nil {
		t.Fatalf("failed to seed category %s: %v", slug, err)
	}
	return id
}

// SeedProduct inserts a product with the given stock and price and returns it.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, categoryID uuid.UUID, name string, stock int, price int64) model.Product {
	t.Helper()

	p := model.Product{
		ID:         uuid.New(),
		Name:       name,
		Slug:       uuid.NewString(),
		Price:      decimal.NewFromInt(price),
		CategoryID: categoryID,
		Stock:      stock,
	}
	_, err := pool.Exec(context.Background(),
		`INSERT INTO products (id, name, slug, price, category_id, stock) VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Name, p.Slug, p.Price, p.CategoryID, p.Stock,
	)
	if err != nil {
		t.Fatalf("failed to seed product %s: %v", name, err)
	}
	_, err = pool.Exec(context.Background(),
		"UPDATE categories SET product_count = product_count + 1 WHERE id = $1", categoryID)
	if err != nil {
		t.Fatalf("failed to bump product count: %v", err)
	}
	return p
}

// StockOf reads a product's current stock.
func StockOf(t *testing.T, pool *pgxpool.Pool, id uuid.UUID) int {
	t.Helper()

	var stock int
	if err := pool.QueryRow(context.Background(), "SELECT stock FROM products WHERE id = $1", id).Scan(&stock); err != nil {
		t.Fatalf("failed to read stock: %v", err)
	}
	return stock
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()

	var n int
	if err := pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}
