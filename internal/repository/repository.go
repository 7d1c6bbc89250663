package repository

import (
	"context"

	"flora-kart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// OrderRepository defines the interface for order data access operations.
// Read methods return (nil, nil) when the order does not exist.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order header within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByRef retrieves an order and its items by native id or order code.
	GetByRef(ctx context.Context, ref model.OrderRef) (*model.Order, error)

	// LockByRef retrieves and row-locks an order and its items inside tx.
	LockByRef(ctx context.Context, tx pgx.Tx, ref model.OrderRef) (*model.Order, error)

	// GetItems retrieves the line items of an order.
	GetItems(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error)

	// GetItemsTx retrieves the line items of an order inside tx.
	GetItemsTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]model.OrderItem, error)

	// UpdateStatus sets status and payment status inside tx and returns the updated header.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus, payment model.PaymentStatus) (*model.Order, error)

	// UpdatePaymentStatus sets only the payment status and returns the updated header.
	UpdatePaymentStatus(ctx context.Context, ref model.OrderRef, payment model.PaymentStatus) (*model.Order, error)

	// DeleteOrderItems removes every line item of an order inside tx.
	DeleteOrderItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) (int64, error)

	// DeleteOrder removes the order header inside tx.
	DeleteOrder(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error

	// List returns one page of order headers matching filter and the total match count.
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, int64, error)
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Create inserts a product inside tx.
	Create(ctx context.Context, tx pgx.Tx, product *model.Product) error

	// GetByID retrieves a single product by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetBySlug retrieves a single product by slug.
	GetBySlug(ctx context.Context, slug string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)

	// SlugExists reports whether another product already uses slug.
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)

	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, int64, error)

	Update(ctx context.Context, tx pgx.Tx, product *model.Product) error

	Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error

	// LockForUpdate row-locks the given products inside tx, in id order.
	LockForUpdate(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) ([]model.Product, error)

	// AdjustStock applies signed stock deltas inside tx.
	AdjustStock(ctx context.Context, tx pgx.Tx, deltas []model.StockDelta) error

	// SetImage stores the product image URL.
	SetImage(ctx context.Context, id uuid.UUID, url string) (*model.Product, error)
}

// CategoryRepository defines the interface for category data access operations.
type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	List(ctx context.Context, filter model.CategoryFilter) ([]model.Category, int64, error)
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id uuid.UUID) error

	// AdjustProductCount adds delta to the denormalized product counter inside tx.
	AdjustProductCount(ctx context.Context, tx pgx.Tx, id uuid.UUID, delta int) error
}

// VariantRepository defines the interface for product variant data access.
type VariantRepository interface {
	Create(ctx context.Context, variant *model.Variant) error
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.Variant, error)
	DeleteByProduct(ctx context.Context, tx pgx.Tx, productID uuid.UUID) (int64, error)
}

// UserRepository defines the interface for user data access operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
}

// DashboardRepository defines the read-only aggregate queries behind the dashboard.
type DashboardRepository interface {
	// CountOrders counts orders, restricted to status when it is non-empty.
	CountOrders(ctx context.Context, status model.OrderStatus) (int64, error)

	// SumOrderTotal sums order totals with status, optionally within window.
	SumOrderTotal(ctx context.Context, status model.OrderStatus, window *model.TimeWindow) (decimal.Decimal, error)

	RecentOrders(ctx context.Context, limit int) ([]model.Order, error)
	CountUsers(ctx context.Context) (int64, error)
	CountProducts(ctx context.Context) (int64, error)
	CountCategories(ctx context.Context) (int64, error)
	ProductsPerCategory(ctx context.Context) ([]model.CategoryProductCount, error)
}
