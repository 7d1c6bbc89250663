package service

import (
	"context"
	"io"

	"flora-kart/internal/auth"
	"flora-kart/internal/model"

	"github.com/google/uuid"
)

// OrderService defines the order workflow.
type OrderService interface {
	// CreateOrder checks and decrements stock, persists the order with its items and,
	// for bank transfers, opens a payment with the gateway.
	CreateOrder(ctx context.Context, userID *uuid.UUID, req *model.OrderRequest) (*model.CreateOrderResult, error)

	// GetOrder retrieves an order with its items if p may view it.
	GetOrder(ctx context.Context, p auth.Principal, ref model.OrderRef) (*model.Order, error)

	// ListUserOrders lists the orders placed by userID, newest first.
	ListUserOrders(ctx context.Context, userID uuid.UUID, page model.Page) (model.PageResult[model.Order], error)

	// ListOrders lists all orders matching filter.
	ListOrders(ctx context.Context, filter model.OrderFilter) (model.PageResult[model.Order], error)

	// UpdateOrderStatus transitions an order, restoring stock when it is cancelled
	// and deriving its payment status.
	UpdateOrderStatus(ctx context.Context, p auth.Principal, ref model.OrderRef, status model.OrderStatus) (*model.Order, error)

	// MarkPaid sets the payment status to paid and moves a pending order to processing.
	MarkPaid(ctx context.Context, ref model.OrderRef) (*model.Order, error)

	// UpdatePaymentStatus sets the payment status with no side effects.
	UpdatePaymentStatus(ctx context.Context, ref model.OrderRef, status model.PaymentStatus) (*model.Order, error)

	// DeleteOrder restores stock for non-cancelled orders and removes the order and its items.
	DeleteOrder(ctx context.Context, p auth.Principal, ref model.OrderRef) error
}

// PaymentService handles payment provider callbacks.
type PaymentService interface {
	// HandleCallback verifies and applies a provider callback.
	HandleCallback(ctx context.Context, req *model.CallbackRequest) (*model.Order, error)
}

// ProductService defines operations for catalogue management.
type ProductService interface {
	Create(ctx context.Context, in *model.ProductInput) (*model.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	GetBySlug(ctx context.Context, slug string) (*model.Product, error)
	List(ctx context.Context, filter model.ProductFilter) (model.PageResult[model.Product], error)
	Update(ctx context.Context, id uuid.UUID, in *model.ProductInput) (*model.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// GetWithVariants retrieves a product together with its variants.
	GetWithVariants(ctx context.Context, id uuid.UUID) (*model.ProductWithVariants, error)

	ListVariants(ctx context.Context, productID uuid.UUID) ([]model.Variant, error)
	CreateVariant(ctx context.Context, productID uuid.UUID, in *model.VariantInput) (*model.Variant, error)

	// UploadImage stores an image and makes it the product's main image.
	UploadImage(ctx context.Context, id uuid.UUID, contentType string, body io.Reader) (*model.Product, error)
}

// CategoryService defines operations for category management.
type CategoryService interface {
	Create(ctx context.Context, in *model.CategoryInput) (*model.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
	List(ctx context.Context, filter model.CategoryFilter) (model.PageResult[model.Category], error)
	Update(ctx context.Context, id uuid.UUID, in *model.CategoryInput) (*model.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuthService defines account operations.
type AuthService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)
	Profile(ctx context.Context, userID uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, req *model.UpdatePasswordRequest) error
}

// DashboardService defines the admin reporting queries.
type DashboardService interface {
	Overview(ctx context.Context) (*model.DashboardOverview, error)
	RecentOrders(ctx context.Context) (*model.RecentOrders, error)
	Statistics(ctx context.Context) (*model.DashboardStatistics, error)
}
